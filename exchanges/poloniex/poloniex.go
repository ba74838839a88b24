package poloniex

import (
	"github.com/xiaolo66/polo"
)

var _ polo.IExchange = (*Poloniex)(nil)

type Poloniex struct {
	PoloniexRest
	PoloniexWs
}

// New builds a client. Leaving AccessKey or SecretKey empty gives an instance
// limited to public commands; private ones fail before any request is sent.
func New(options polo.Options) *Poloniex {
	instance := &Poloniex{}
	instance.PoloniexRest.Init(options)
	instance.PoloniexWs.Init(&instance.PoloniexRest)
	return instance
}
