package polo

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

const Version = "1.0.0"

type ExchangeType string

const (
	Poloniex ExchangeType = "poloniex"
)

// Process-wide defaults, applied when the matching Options field is left empty.
// They are copied into a client when it is built, so changing one later only
// affects clients built afterwards. Set the Options field to change a live value.
var (
	DefaultTimeout            = 60 * time.Second
	DefaultUserAgent          = "polo/" + Version
	DefaultStrictSSL          = true
	DefaultTradeHistoryWindow = time.Hour
	DefaultReconnectAttempts  = 20
)

// Options
type Options struct {
	ExchangeName string // exchange name
	SecretKey    string // SecretKey key of this exchange account
	AccessKey    string // AccessKey key of this exchange account

	WsHost          string // push api host, the default value will be used if not set
	RestHost        string // rest public api url, the default value will be used if not set
	RestPrivateHost string // rest trading api url, the default value will be used if not set

	Timeout   time.Duration // transport timeout, DefaultTimeout if zero
	UserAgent string        // User-Agent header, DefaultUserAgent if empty
	StrictSSL *bool         // verify the server certificate, DefaultStrictSSL if nil

	// half width of the window used by trade history when no start/end is given.
	// The window straddles now to absorb clock skew between client and server.
	TradeHistoryWindow time.Duration

	AutoReconnect     bool   // whether enable auto reconnect
	ReconnectAttempts int    // dial attempts per reconnect, DefaultReconnectAttempts if zero
	ProxyUrl          string // proxy, http://host:port

	Logger *zap.Logger // nil disables logging
}

// WithDefaults returns a copy of o with every empty field replaced by its default.
func (o Options) WithDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.StrictSSL == nil {
		strict := DefaultStrictSSL
		o.StrictSSL = &strict
	}
	if o.ReconnectAttempts <= 0 {
		o.ReconnectAttempts = DefaultReconnectAttempts
	}
	if o.TradeHistoryWindow <= 0 {
		o.TradeHistoryWindow = DefaultTradeHistoryWindow
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// HasCredentials reports whether both halves of the key pair are present.
func (o Options) HasCredentials() bool {
	return o.AccessKey != "" && o.SecretKey != ""
}

// IsStrictSSL dereferences StrictSSL, falling back to DefaultStrictSSL.
func (o Options) IsStrictSSL() bool {
	if o.StrictSSL == nil {
		return DefaultStrictSSL
	}
	return *o.StrictSSL
}

func (o Options) String() string {
	secret := ""
	if o.SecretKey != "" {
		secret = "******"
	}
	return fmt.Sprintf("{ExchangeName:%s AccessKey:%s SecretKey:%s RestHost:%s RestPrivateHost:%s WsHost:%s Timeout:%v UserAgent:%s StrictSSL:%v}",
		o.ExchangeName, o.AccessKey, secret, o.RestHost, o.RestPrivateHost, o.WsHost, o.Timeout, o.UserAgent, o.IsStrictSSL())
}

func (o Options) GoString() string {
	return o.String()
}

// JoinCurrencies builds the BASE_QUOTE market symbol. An empty currencyB leaves
// currencyA untouched, which keeps sentinels such as "all" intact.
func JoinCurrencies(currencyA, currencyB string) string {
	if currencyB != "" {
		return currencyA + "_" + currencyB
	}
	return currencyA
}

// AllCurrencies is accepted by the order book, open orders and trade history commands.
const AllCurrencies = "all"

type Account string

const (
	AccountExchange Account = "exchange"
	AccountMargin   Account = "margin"
	AccountLending  Account = "lending"
)
