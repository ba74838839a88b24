package exchanges

import (
	"fmt"
	"sync"

	set "github.com/deckarep/golang-set"

	"github.com/xiaolo66/polo"
	"github.com/xiaolo66/polo/exchanges/websocket"
)

type ConnectFunc func(url string) (*Connection, error)

// Connection is one push stream plus the channels listening on it and the
// topics it has been asked to stream.
type Connection struct {
	websocket.WsConn
	MsgChannels set.Set
	Topics      set.Set
}

func NewConnection() *Connection {
	return &Connection{
		MsgChannels: set.NewSet(),
		Topics:      set.NewSet(),
	}
}

func (c *Connection) Subscribe(msgChan polo.MessageChan) {
	c.MsgChannels.Add(msgChan)
}

func (c *Connection) UnSubscribe(msgChan polo.MessageChan) {
	c.MsgChannels.Remove(msgChan)
}

func (c *Connection) Subscribers() int {
	return c.MsgChannels.Cardinality()
}

func (c *Connection) Close() {
	c.WsConn.Close()
}

func (c *Connection) Publish(msg polo.Message, clear bool) {
	tmp := c.MsgChannels
	if clear {
		c.MsgChannels = set.NewSet()
	}
	tmp.Each(func(item interface{}) bool {
		msgChan, ok := item.(polo.MessageChan)
		if ok && msgChan != nil {
			// a blocked receiver must not stall Each, which holds the set's read lock
			go func() { msgChan <- msg }()
		}
		return false
	})
}

type ConnectionManager struct {
	sync.RWMutex
	conns map[string]*Connection // key: ws url
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{conns: make(map[string]*Connection)}
}

func (c *ConnectionManager) SetConnection(url string, connection *Connection) {
	c.Lock()
	defer c.Unlock()
	conn, ok := c.conns[url]
	if ok && conn != connection {
		conn.Close()
	}
	c.conns[url] = connection
}

func (c *ConnectionManager) RemoveConnection(url string) {
	c.Lock()
	defer c.Unlock()
	delete(c.conns, url)
}

func (c *ConnectionManager) Close() {
	c.Lock()
	conns := c.conns
	c.conns = make(map[string]*Connection)
	c.Unlock()
	// conn.Close runs the close handler, which calls back into the manager
	for _, conn := range conns {
		conn.Publish(polo.CloseMessage, false)
		conn.Close()
	}
}

func (c *ConnectionManager) GetConnection(url string, connectFunc ConnectFunc) (*Connection, error) {
	c.Lock()
	defer c.Unlock()
	conn, ok := c.conns[url]
	if !ok {
		if connectFunc != nil {
			var err error
			conn, err = connectFunc(url)
			if err != nil {
				return nil, err
			}
			c.conns[url] = conn
			return conn, nil
		}
		return nil, fmt.Errorf("not found websocket session, url:%s", url)
	}
	return conn, nil
}

func (c *ConnectionManager) Publish(url string, message polo.Message) {
	conn, _ := c.GetConnection(url, nil)
	if conn != nil {
		conn.Publish(message, false)
	}
}

// PublishAfterClear clear the subscribers and notify them
func (c *ConnectionManager) PublishAfterClear(url string, message polo.Message) {
	conn, _ := c.GetConnection(url, nil)
	if conn != nil {
		conn.Publish(message, true)
	}
}
