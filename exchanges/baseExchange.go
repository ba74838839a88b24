package exchanges

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiaolo66/polo"
	"github.com/xiaolo66/polo/utils"
)

type Request struct {
	Method  string
	Url     string
	Headers http.Header
	Body    string
}

const (
	Public  = "Public"
	Private = "Private"
	GET     = "GET"
	POST    = "POST"
)

// Transport executes a built request exactly once and reports the raw outcome.
type Transport interface {
	Do(request Request) (status int, body []byte, err error)
}

type FetchCallBack interface {
	Sign(access, method, function string, param url.Values, header http.Header) (Request, error)
	HandleError(request Request, response []byte) error
}

type BaseExchange struct {
	Option        polo.Options
	Transport     Transport
	Logger        *zap.Logger
	ConnectionMgr *ConnectionManager

	RwLock sync.RWMutex
}

func (b *BaseExchange) Init(option polo.Options) {
	b.Option = option.WithDefaults()
	b.Logger = b.Option.Logger
	if b.Transport == nil {
		b.Transport = NewRestyTransport(b.Option)
	}
	b.ConnectionMgr = NewConnectionManager()
	b.RwLock = sync.RWMutex{}
}

// Fetch builds the request through callBack, performs at most one network attempt
// and returns the body once callBack.HandleError accepts it.
func (b *BaseExchange) Fetch(callBack FetchCallBack, access, method, function string, param url.Values, header http.Header) (polo.Response, error) {
	request, err := callBack.Sign(access, method, function, param, header)
	if err != nil {
		return polo.Response{}, err
	}

	logger := b.Logger.With(
		zap.String("command", function),
		zap.String("access", access),
		zap.String("method", request.Method),
		zap.String("request_id", utils.GenerateRequestID()),
	)
	logger.Debug("sending request", zap.String("url", request.Url))

	start := time.Now()
	status, body, err := b.Transport.Do(request)
	elapsed := time.Since(start)
	if err != nil {
		logger.Debug("request failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return polo.Response{}, transportError(err)
	}
	logger.Debug("response received", zap.Int("status", status), zap.Int("size", len(body)), zap.Duration("elapsed", elapsed))

	if err := callBack.HandleError(request, body); err != nil {
		return polo.Response{}, err
	}
	return polo.Response{StatusCode: status, Body: body}, nil
}

func transportError(err error) error {
	var exErr polo.ExError
	if errors.As(err, &exErr) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return polo.ExError{Code: polo.ErrTimeout, Message: err.Error(), Err: err}
	}
	return polo.ExError{Code: polo.ErrBadRequest, Message: err.Error(), Err: err}
}

func (b *BaseExchange) ReConnectedHandler(url string, f func()) {
	if f != nil {
		f()
	}
	//Notify subscribers of reconnection message, then clean up the channel
	//because after receiving the reconnection notification, the subscribers will resubscribe and use the new channel
	b.ConnectionMgr.PublishAfterClear(url, polo.ReConnectedMessage)
}

func (b *BaseExchange) DisConnectedHandler(url string, err error, f func()) {
	b.RwLock.Lock()
	defer b.RwLock.Unlock()
	if f != nil {
		f()
	}
	b.ConnectionMgr.Publish(url, polo.DisConnectedMessage)
}

func (b *BaseExchange) CloseHandler(url string, f func()) {
	// clear cached state and the connection
	b.RwLock.Lock()
	defer b.RwLock.Unlock()
	if f != nil {
		f()
	}
	b.ConnectionMgr.Publish(url, polo.CloseMessage)
	b.ConnectionMgr.RemoveConnection(url)
}

func (b *BaseExchange) ErrorHandler(url string, err error, f func()) {
	if f != nil {
		f()
	}
	b.ConnectionMgr.Publish(url, polo.ErrorMessage(err))
}
