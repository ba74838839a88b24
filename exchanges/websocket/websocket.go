package websocket

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

type Message struct {
	Msg  []byte
	Type int
}

type WsConn struct {
	Options

	conn              *websocket.Conn
	messageBufferChan chan Message
	done              chan struct{} // closed by Close
	lock              sync.Mutex
	once              sync.Once
}

func (w *WsConn) Connect(options ...Option) (err error) {
	for _, o := range options {
		o(&w.Options)
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}

	if w.ReadDeadLineTime == 0 {
		w.ReadDeadLineTime = time.Minute
	}
	if w.HeartbeatIntervalTime == 0 {
		w.HeartbeatIntervalTime = time.Hour
	}
	if w.ReconnectAttempts == 0 {
		w.ReconnectAttempts = 20
	}

	w.messageBufferChan = make(chan Message, 10)
	w.done = make(chan struct{})

	conn, err := w.dial()
	if err != nil {
		return err
	}
	if !w.start(conn) {
		_ = conn.Close()
	}
	return nil
}

func (w *WsConn) Close() {
	w.once.Do(func() {
		if w.done != nil {
			close(w.done)
		}
		w.lock.Lock()
		conn := w.conn
		w.lock.Unlock()
		if conn != nil {
			if err := conn.Close(); err != nil {
				w.logger.Warn("[WsConn] close websocket error", zap.String("exchange", w.ExchangeName), zap.Error(err))
			}
		}
		if w.closeHandler != nil {
			w.closeHandler(w.wsUrl)
		}
	})
}

func (w *WsConn) Url() string {
	return w.wsUrl
}

func (w *WsConn) SendMessage(msg []byte) {
	w.send(Message{Msg: msg, Type: websocket.TextMessage})
}

func (w *WsConn) SendJsonMessage(msg interface{}) error {
	data, err := jsoniter.Marshal(msg)
	if err != nil {
		return err
	}
	w.SendMessage(data)
	return nil
}

func (w *WsConn) SendPingMessage(msg []byte) {
	w.send(Message{Msg: msg, Type: websocket.PingMessage})
}

func (w *WsConn) SendPongMessage(msg []byte) {
	w.send(Message{Msg: msg, Type: websocket.PongMessage})
}

func (w *WsConn) send(msg Message) {
	select {
	case w.messageBufferChan <- msg:
	case <-w.done:
	}
}

func (w *WsConn) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
	}
	if w.ProxyUrl != "" {
		proxy, err := url.Parse(w.ProxyUrl)
		if err != nil {
			return nil, fmt.Errorf("[WsConn] %s - parse proxy url:%s error %s", w.ExchangeName, w.ProxyUrl, err)
		}
		dialer.Proxy = http.ProxyURL(proxy)
	}

	conn, _, err := dialer.Dial(w.wsUrl, http.Header(w.ReqHeaders))
	if err != nil {
		return nil, fmt.Errorf("[WsConn] %s - connect host: %s error:%s", w.ExchangeName, w.wsUrl, err)
	}
	return conn, nil
}

// start hands conn to a fresh pair of loops; stop is closed when the reader exits.
// It reports false, leaving conn to the caller, once the WsConn is closed.
func (w *WsConn) start(conn *websocket.Conn) bool {
	w.lock.Lock()
	if w.closed() {
		w.lock.Unlock()
		return false
	}
	w.conn = conn
	w.lock.Unlock()

	stop := make(chan struct{})
	go w.readLoop(conn, stop)
	go w.writeLoop(conn, stop)
	return true
}

func (w *WsConn) closed() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

func (w *WsConn) reconnect() {
	var err error
	var conn *websocket.Conn
	for retry := 0; retry < w.ReconnectAttempts; retry++ {
		if w.closed() {
			return
		}
		conn, err = w.dial()
		if err == nil {
			break
		}
		w.logger.Warn("[WsConn] reconnect failed", zap.String("exchange", w.ExchangeName), zap.Int("attempt", retry+1), zap.Error(err))
		time.Sleep(time.Second * time.Duration(retry/4+1))
	}

	if err != nil {
		w.logger.Error("[WsConn] giving up reconnect", zap.String("exchange", w.ExchangeName), zap.Int("attempts", w.ReconnectAttempts), zap.Error(err))
		w.Close()
		return
	}

	// Close may have run while the dial was in flight
	if !w.start(conn) {
		_ = conn.Close()
		return
	}
	if w.reConnectHandler != nil {
		w.reConnectHandler(w.wsUrl)
	}
}

func (w *WsConn) readLoop(conn *websocket.Conn, stop chan struct{}) {
	w.logger.Debug("[WsConn] start read loop", zap.String("exchange", w.ExchangeName))

	conn.SetPingHandler(func(appData string) error {
		w.SendPongMessage([]byte(appData))
		return conn.SetReadDeadline(time.Now().Add(w.ReadDeadLineTime))
	})

	conn.SetPongHandler(func(appData string) error {
		return conn.SetReadDeadline(time.Now().Add(w.ReadDeadLineTime))
	})

	for {
		_ = conn.SetReadDeadline(time.Now().Add(w.ReadDeadLineTime))
		t, msg, err := conn.ReadMessage()
		if err != nil {
			close(stop)
			if w.closed() {
				w.logger.Debug("[WsConn] websocket closed, exit read message loop", zap.String("exchange", w.ExchangeName))
				return
			}
			w.logger.Warn("[WsConn] read message error", zap.String("exchange", w.ExchangeName), zap.Error(err))

			if w.disConnectedHandler != nil {
				w.disConnectedHandler(w.wsUrl, err)
			}

			_ = conn.Close()
			if w.IsAutoReconnect {
				w.reconnect()
			} else {
				w.Close()
			}
			return
		}
		if w.messageHandler == nil {
			continue
		}
		switch t {
		case websocket.TextMessage, websocket.BinaryMessage:
			w.messageHandler(w.wsUrl, msg)
		}
	}
}

func (w *WsConn) writeLoop(conn *websocket.Conn, stop chan struct{}) {
	w.logger.Debug("[WsConn] start write loop", zap.String("exchange", w.ExchangeName))
	heartTimer := time.NewTimer(w.HeartbeatIntervalTime)
	defer heartTimer.Stop()
	for {
		select {
		case <-stop:
			w.logger.Debug("[WsConn] connection dropped, exit write message loop", zap.String("exchange", w.ExchangeName))
			return
		case <-w.done:
			w.logger.Debug("[WsConn] websocket closed, exit write message loop", zap.String("exchange", w.ExchangeName))
			return
		case msg := <-w.messageBufferChan:
			err := conn.WriteMessage(msg.Type, msg.Msg)
			if err != nil {
				if w.errorHandler != nil {
					w.errorHandler(w.wsUrl, fmt.Errorf("[WsConn] %s - write message error:%s", w.ExchangeName, err))
				}
			}
		case <-heartTimer.C:
			if w.heartbeatHandler != nil {
				go w.heartbeatHandler(w.wsUrl)
			}
			heartTimer.Reset(w.HeartbeatIntervalTime)
		}
	}
}
