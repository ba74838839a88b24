package polo

import (
	"time"

	"github.com/shopspring/decimal"
)

type IPublicAPI interface {
	ReturnTicker() (Response, error)

	Return24hVolume() (Response, error)

	ReturnOrderBook(currencyA, currencyB string) (Response, error)

	ReturnChartData(currencyA, currencyB string, period int, start, end time.Time) (Response, error)

	ReturnCurrencies() (Response, error)

	ReturnLoanOrders(currency string) (Response, error)

	// public when unauthenticated, private otherwise
	ReturnTradeHistory(currencyA, currencyB string, start, end time.Time) (Response, error)
}

type IPrivateAPI interface {
	ReturnBalances() (Response, error)

	ReturnCompleteBalances(account Account) (Response, error)

	ReturnDepositAddresses() (Response, error)

	GenerateNewAddress(currency string) (Response, error)

	ReturnDepositsWithdrawals(start, end time.Time) (Response, error)

	ReturnOpenOrders(currencyA, currencyB string) (Response, error)

	ReturnOrderTrades(orderNumber int64) (Response, error)

	ReturnOrderStatus(orderNumber int64) (Response, error)

	Buy(currencyA, currencyB string, rate, amount decimal.Decimal) (Response, error)

	Sell(currencyA, currencyB string, rate, amount decimal.Decimal) (Response, error)

	CancelOrder(currencyA, currencyB string, orderNumber int64) (Response, error)

	MoveOrder(orderNumber int64, rate, amount decimal.Decimal) (Response, error)

	Withdraw(currency string, amount decimal.Decimal, address string) (Response, error)

	ReturnFeeInfo() (Response, error)

	ReturnAvailableAccountBalances(account Account) (Response, error)

	ReturnTradableBalances() (Response, error)

	TransferBalance(currency string, amount decimal.Decimal, fromAccount, toAccount Account) (Response, error)

	ReturnMarginAccountSummary() (Response, error)

	MarginBuy(currencyA, currencyB string, rate, amount, lendingRate decimal.Decimal) (Response, error)

	MarginSell(currencyA, currencyB string, rate, amount, lendingRate decimal.Decimal) (Response, error)

	GetMarginPosition(currencyA, currencyB string) (Response, error)

	CloseMarginPosition(currencyA, currencyB string) (Response, error)

	CreateLoanOffer(currency string, amount decimal.Decimal, duration int, autoRenew bool, lendingRate decimal.Decimal) (Response, error)

	CancelLoanOffer(orderNumber int64) (Response, error)

	ReturnOpenLoanOffers() (Response, error)

	ReturnActiveLoans() (Response, error)

	ReturnLendingHistory(start, end time.Time, limit int) (Response, error)

	ToggleAutoRenew(orderNumber int64) (Response, error)
}

// names kept for callers of the older method set
type ILegacyAPI interface {
	GetTicker() (Response, error)

	Get24hVolume() (Response, error)

	GetOrderBook(currencyA, currencyB string) (Response, error)

	GetTradeHistory(currencyA, currencyB string, start, end time.Time) (Response, error)

	GetChartData(currencyA, currencyB string, period int, start, end time.Time) (Response, error)

	MyBalances() (Response, error)

	MyOpenOrders(currencyA, currencyB string) (Response, error)

	MyTradeHistory(currencyA, currencyB string, start, end time.Time) (Response, error)
}

type IPushAPI interface {
	SubscribeTicker(sub MessageChan) (string, error)

	UnSubscribe(topic string, sub MessageChan) error
}

type IExchange interface {
	IPublicAPI
	IPrivateAPI
	ILegacyAPI
	IPushAPI

	IsAuthenticated() bool
}
