package poloniex

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiaolo66/polo"
	"github.com/xiaolo66/polo/utils"
)

func (e *PoloniexRest) ReturnBalances() (polo.Response, error) {
	return e.private(cmdBalances, url.Values{})
}

// ReturnCompleteBalances covers the exchange account unless account is given.
func (e *PoloniexRest) ReturnCompleteBalances(account polo.Account) (polo.Response, error) {
	params := url.Values{}
	setOptional(params, "account", string(account))
	return e.private(cmdCompleteBalances, params)
}

func (e *PoloniexRest) ReturnDepositAddresses() (polo.Response, error) {
	return e.private(cmdDepositAddresses, url.Values{})
}

func (e *PoloniexRest) GenerateNewAddress(currency string) (polo.Response, error) {
	params := url.Values{}
	params.Set("currency", currency)
	return e.private(cmdGenerateNewAddress, params)
}

func (e *PoloniexRest) ReturnDepositsWithdrawals(start, end time.Time) (polo.Response, error) {
	params := url.Values{}
	setOptional(params, "start", utils.FormatUnix(start))
	setOptional(params, "end", utils.FormatUnix(end))
	return e.private(cmdDepositsWithdrawals, params)
}

// ReturnOpenOrders accepts a pair, or polo.AllCurrencies with an empty currencyB.
func (e *PoloniexRest) ReturnOpenOrders(currencyA, currencyB string) (polo.Response, error) {
	return e.private(cmdOpenOrders, pairParams(currencyA, currencyB))
}

func (e *PoloniexRest) ReturnOrderTrades(orderNumber int64) (polo.Response, error) {
	return e.private(cmdOrderTrades, orderParams(orderNumber))
}

func (e *PoloniexRest) ReturnOrderStatus(orderNumber int64) (polo.Response, error) {
	return e.private(cmdOrderStatus, orderParams(orderNumber))
}

func (e *PoloniexRest) Buy(currencyA, currencyB string, rate, amount decimal.Decimal) (polo.Response, error) {
	return e.private(cmdBuy, limitOrderParams(currencyA, currencyB, rate, amount))
}

func (e *PoloniexRest) Sell(currencyA, currencyB string, rate, amount decimal.Decimal) (polo.Response, error) {
	return e.private(cmdSell, limitOrderParams(currencyA, currencyB, rate, amount))
}

func (e *PoloniexRest) CancelOrder(currencyA, currencyB string, orderNumber int64) (polo.Response, error) {
	params := pairParams(currencyA, currencyB)
	params.Set("orderNumber", strconv.FormatInt(orderNumber, 10))
	return e.private(cmdCancelOrder, params)
}

// MoveOrder keeps the remaining amount when amount is zero.
func (e *PoloniexRest) MoveOrder(orderNumber int64, rate, amount decimal.Decimal) (polo.Response, error) {
	params := orderParams(orderNumber)
	params.Set("rate", rate.String())
	setOptional(params, "amount", utils.FormatDecimal(amount))
	return e.private(cmdMoveOrder, params)
}

func (e *PoloniexRest) Withdraw(currency string, amount decimal.Decimal, address string) (polo.Response, error) {
	params := url.Values{}
	params.Set("currency", currency)
	params.Set("amount", amount.String())
	params.Set("address", address)
	return e.private(cmdWithdraw, params)
}

func (e *PoloniexRest) ReturnFeeInfo() (polo.Response, error) {
	return e.private(cmdFeeInfo, url.Values{})
}

// ReturnAvailableAccountBalances covers every account unless account is given.
func (e *PoloniexRest) ReturnAvailableAccountBalances(account polo.Account) (polo.Response, error) {
	params := url.Values{}
	setOptional(params, "account", string(account))
	return e.private(cmdAvailableAccountBalances, params)
}

func (e *PoloniexRest) ReturnTradableBalances() (polo.Response, error) {
	return e.private(cmdTradableBalances, url.Values{})
}

func (e *PoloniexRest) TransferBalance(currency string, amount decimal.Decimal, fromAccount, toAccount polo.Account) (polo.Response, error) {
	params := url.Values{}
	params.Set("currency", currency)
	params.Set("amount", amount.String())
	params.Set("fromAccount", string(fromAccount))
	params.Set("toAccount", string(toAccount))
	return e.private(cmdTransferBalance, params)
}

func (e *PoloniexRest) ReturnMarginAccountSummary() (polo.Response, error) {
	return e.private(cmdMarginAccountSummary, url.Values{})
}

// MarginBuy leaves the lending rate to the exchange when lendingRate is zero.
func (e *PoloniexRest) MarginBuy(currencyA, currencyB string, rate, amount, lendingRate decimal.Decimal) (polo.Response, error) {
	params := limitOrderParams(currencyA, currencyB, rate, amount)
	setOptional(params, "lendingRate", utils.FormatDecimal(lendingRate))
	return e.private(cmdMarginBuy, params)
}

// MarginSell leaves the lending rate to the exchange when lendingRate is zero.
func (e *PoloniexRest) MarginSell(currencyA, currencyB string, rate, amount, lendingRate decimal.Decimal) (polo.Response, error) {
	params := limitOrderParams(currencyA, currencyB, rate, amount)
	setOptional(params, "lendingRate", utils.FormatDecimal(lendingRate))
	return e.private(cmdMarginSell, params)
}

func (e *PoloniexRest) GetMarginPosition(currencyA, currencyB string) (polo.Response, error) {
	return e.private(cmdMarginPosition, pairParams(currencyA, currencyB))
}

func (e *PoloniexRest) CloseMarginPosition(currencyA, currencyB string) (polo.Response, error) {
	return e.private(cmdCloseMarginPosition, pairParams(currencyA, currencyB))
}

func orderParams(orderNumber int64) url.Values {
	params := url.Values{}
	params.Set("orderNumber", strconv.FormatInt(orderNumber, 10))
	return params
}

func limitOrderParams(currencyA, currencyB string, rate, amount decimal.Decimal) url.Values {
	params := pairParams(currencyA, currencyB)
	params.Set("rate", rate.String())
	params.Set("amount", amount.String())
	return params
}
