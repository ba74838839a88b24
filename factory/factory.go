package factory

import (
	"github.com/xiaolo66/polo"
	"github.com/xiaolo66/polo/exchanges/poloniex"
)

func NewExchange(t polo.ExchangeType, option polo.Options) polo.IExchange {
	switch t {
	case polo.Poloniex:
		return poloniex.New(option)
	}
	return nil
}
