package poloniex

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xiaolo66/polo"
	"github.com/xiaolo66/polo/exchanges"
	"github.com/xiaolo66/polo/exchanges/websocket"
)

const (
	tickerChannel    = 1002
	heartbeatChannel = 1010

	// the server sends a heartbeat every second while a channel is subscribed
	pushReadDeadline = 10 * time.Second
	pushPingInterval = 30 * time.Second
)

// PoloniexWs shares the BaseExchange of the rest client it resolves pair ids with.
type PoloniexWs struct {
	*exchanges.BaseExchange
	rest      *PoloniexRest
	pairs     map[int]string // pair id -> BASE_QUOTE
	pairsLock sync.RWMutex
}

// Init attaches the push side to an initialised rest client.
func (e *PoloniexWs) Init(rest *PoloniexRest) {
	e.BaseExchange = &rest.BaseExchange
	e.rest = rest
	e.pairs = make(map[int]string)
}

// SubscribeTicker streams ticker updates for every market into sub.
func (e *PoloniexWs) SubscribeTicker(sub polo.MessageChan) (string, error) {
	e.loadPairs()
	topic := strconv.Itoa(tickerChannel)
	conn, err := e.ConnectionMgr.GetConnection(e.Option.WsHost, e.connect)
	if err != nil {
		return "", err
	}
	conn.Subscribe(sub)
	if conn.Topics.Add(topic) {
		if err := conn.SendJsonMessage(Command{Command: "subscribe", Channel: tickerChannel}); err != nil {
			conn.Topics.Remove(topic)
			return "", err
		}
	}
	return topic, nil
}

// UnSubscribe detaches sub; the channel is unsubscribed once nobody listens.
func (e *PoloniexWs) UnSubscribe(topic string, sub polo.MessageChan) error {
	channel, err := strconv.Atoi(topic)
	if err != nil {
		return polo.ExError{Code: polo.ErrRequestParams, Message: "unknown topic " + topic, Err: err}
	}
	conn, err := e.ConnectionMgr.GetConnection(e.Option.WsHost, nil)
	if err != nil {
		return err
	}
	conn.UnSubscribe(sub)
	if conn.Subscribers() > 0 || !conn.Topics.Contains(topic) {
		return nil
	}
	conn.Topics.Remove(topic)
	return conn.SendJsonMessage(Command{Command: "unsubscribe", Channel: channel})
}

// Close drops every push connection.
func (e *PoloniexWs) Close() {
	e.ConnectionMgr.Close()
}

func (e *PoloniexWs) connect(url string) (*exchanges.Connection, error) {
	conn := exchanges.NewConnection()
	err := conn.Connect(
		websocket.SetExchangeName(e.Option.ExchangeName),
		websocket.SetWsUrl(url),
		websocket.SetProxyUrl(e.Option.ProxyUrl),
		websocket.SetReqHeaders("User-Agent", e.Option.UserAgent),
		websocket.SetIsAutoReconnect(e.Option.AutoReconnect),
		websocket.SetReconnectAttempts(e.Option.ReconnectAttempts),
		websocket.SetReadDeadLineTime(pushReadDeadline),
		websocket.SetHeartbeatIntervalTime(pushPingInterval),
		websocket.SetHeartbeatHandler(func(url string) { conn.SendPingMessage(nil) }),
		websocket.SetLogger(e.Logger),
		websocket.SetMessageHandler(e.messageHandler),
		websocket.SetReConnectedHandler(e.reConnectedHandler),
		websocket.SetDisConnectedHandler(e.disConnectedHandler),
		websocket.SetErrorHandler(e.errorHandler),
		websocket.SetCloseHandler(e.closeHandler),
	)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (e *PoloniexWs) messageHandler(url string, message []byte) {
	var frame []jsoniter.RawMessage
	if err := json.Unmarshal(message, &frame); err != nil {
		e.errorHandler(url, fmt.Errorf("[PoloniexWs] messageHandler - unexpected message %s: %v", message, err))
		return
	}
	if len(frame) == 0 {
		return
	}
	var channel int
	if err := json.Unmarshal(frame[0], &channel); err != nil {
		e.errorHandler(url, fmt.Errorf("[PoloniexWs] messageHandler - unexpected channel %s: %v", frame[0], err))
		return
	}

	switch channel {
	case heartbeatChannel:
	case tickerChannel:
		// [1002, 1] acknowledges the subscription
		if len(frame) < 3 {
			return
		}
		update, err := parseTickerUpdate(frame[2])
		if err != nil {
			e.errorHandler(url, polo.ExError{Code: polo.ErrDataParse, Message: err.Error(), Err: err})
			return
		}
		update.Symbol = e.symbol(update.PairID)
		e.ConnectionMgr.Publish(url, polo.Message{Type: polo.MsgTicker, Data: update})
	default:
		e.Logger.Debug("ignoring push message", zap.Int("channel", channel))
	}
}

func (e *PoloniexWs) reConnectedHandler(url string) {
	e.BaseExchange.ReConnectedHandler(url, func() {
		// the new session starts without subscriptions
		if conn, err := e.ConnectionMgr.GetConnection(url, nil); err == nil {
			conn.Topics.Clear()
		}
	})
}

func (e *PoloniexWs) disConnectedHandler(url string, err error) {
	e.BaseExchange.DisConnectedHandler(url, err, nil)
}

func (e *PoloniexWs) errorHandler(url string, err error) {
	e.BaseExchange.ErrorHandler(url, err, nil)
}

func (e *PoloniexWs) closeHandler(url string) {
	e.BaseExchange.CloseHandler(url, nil)
}

// loadPairs fills the pair id table from returnTicker once.
func (e *PoloniexWs) loadPairs() {
	e.pairsLock.RLock()
	loaded := len(e.pairs) > 0
	e.pairsLock.RUnlock()
	if loaded {
		return
	}

	res, err := e.rest.ReturnTicker()
	if err != nil {
		e.Logger.Warn("cannot resolve ticker pair ids", zap.Error(err))
		return
	}
	tickers, err := ParseTickers(res)
	if err != nil {
		e.Logger.Warn("cannot resolve ticker pair ids", zap.Error(err))
		return
	}

	e.pairsLock.Lock()
	defer e.pairsLock.Unlock()
	for symbol, ticker := range tickers {
		e.pairs[ticker.ID] = symbol
	}
}

func (e *PoloniexWs) symbol(id int) string {
	e.pairsLock.RLock()
	defer e.pairsLock.RUnlock()
	return e.pairs[id]
}
