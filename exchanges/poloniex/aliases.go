package poloniex

import (
	"time"

	"github.com/xiaolo66/polo"
)

func (e *PoloniexRest) GetTicker() (polo.Response, error) {
	return e.ReturnTicker()
}

func (e *PoloniexRest) Get24hVolume() (polo.Response, error) {
	return e.Return24hVolume()
}

func (e *PoloniexRest) GetOrderBook(currencyA, currencyB string) (polo.Response, error) {
	return e.ReturnOrderBook(currencyA, currencyB)
}

func (e *PoloniexRest) GetTradeHistory(currencyA, currencyB string, start, end time.Time) (polo.Response, error) {
	return e.ReturnTradeHistory(currencyA, currencyB, start, end)
}

func (e *PoloniexRest) GetChartData(currencyA, currencyB string, period int, start, end time.Time) (polo.Response, error) {
	return e.ReturnChartData(currencyA, currencyB, period, start, end)
}

func (e *PoloniexRest) MyBalances() (polo.Response, error) {
	return e.ReturnBalances()
}

func (e *PoloniexRest) MyOpenOrders(currencyA, currencyB string) (polo.Response, error) {
	return e.ReturnOpenOrders(currencyA, currencyB)
}

func (e *PoloniexRest) MyTradeHistory(currencyA, currencyB string, start, end time.Time) (polo.Response, error) {
	return e.ReturnTradeHistory(currencyA, currencyB, start, end)
}
