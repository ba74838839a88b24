package poloniex

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/xiaolo66/polo"
	"github.com/xiaolo66/polo/exchanges"
	"github.com/xiaolo66/polo/utils"
)

const (
	PublicApiUrl  = "https://poloniex.com/public"
	PrivateApiUrl = "https://poloniex.com/tradingApi"
	PushApiUrl    = "wss://api2.poloniex.com"
)

const (
	cmdTicker                   = "returnTicker"
	cmd24hVolume                = "return24hVolume"
	cmdOrderBook                = "returnOrderBook"
	cmdChartData                = "returnChartData"
	cmdCurrencies               = "returnCurrencies"
	cmdLoanOrders               = "returnLoanOrders"
	cmdTradeHistory             = "returnTradeHistory"
	cmdBalances                 = "returnBalances"
	cmdCompleteBalances         = "returnCompleteBalances"
	cmdDepositAddresses         = "returnDepositAddresses"
	cmdGenerateNewAddress       = "generateNewAddress"
	cmdDepositsWithdrawals      = "returnDepositsWithdrawals"
	cmdOpenOrders               = "returnOpenOrders"
	cmdOrderTrades              = "returnOrderTrades"
	cmdOrderStatus              = "returnOrderStatus"
	cmdBuy                      = "buy"
	cmdSell                     = "sell"
	cmdCancelOrder              = "cancelOrder"
	cmdMoveOrder                = "moveOrder"
	cmdWithdraw                 = "withdraw"
	cmdFeeInfo                  = "returnFeeInfo"
	cmdAvailableAccountBalances = "returnAvailableAccountBalances"
	cmdTradableBalances         = "returnTradableBalances"
	cmdTransferBalance          = "transferBalance"
	cmdMarginAccountSummary     = "returnMarginAccountSummary"
	cmdMarginBuy                = "marginBuy"
	cmdMarginSell               = "marginSell"
	cmdMarginPosition           = "getMarginPosition"
	cmdCloseMarginPosition      = "closeMarginPosition"
	cmdCreateLoanOffer          = "createLoanOffer"
	cmdCancelLoanOffer          = "cancelLoanOffer"
	cmdOpenLoanOffers           = "returnOpenLoanOffers"
	cmdActiveLoans              = "returnActiveLoans"
	cmdLendingHistory           = "returnLendingHistory"
	cmdToggleAutoRenew          = "toggleAutoRenew"
)

type PoloniexRest struct {
	exchanges.BaseExchange
	signer *signer
	now    func() time.Time
}

func (e *PoloniexRest) Init(option polo.Options) {
	e.signer = newSigner(option.AccessKey, option.SecretKey)
	option.SecretKey = ""

	if option.ExchangeName == "" {
		option.ExchangeName = string(polo.Poloniex)
	}
	if option.RestHost == "" {
		option.RestHost = PublicApiUrl
	}
	if option.RestPrivateHost == "" {
		option.RestPrivateHost = PrivateApiUrl
	}
	if option.WsHost == "" {
		option.WsHost = PushApiUrl
	}
	e.BaseExchange.Init(option)
	e.now = time.Now
}

// IsAuthenticated reports whether this instance was built with a full key pair.
func (e *PoloniexRest) IsAuthenticated() bool {
	return e.signer.authenticated()
}

// Sign turns a command and its parameters into a request. Public commands become a
// GET with a query string; private ones a signed POST whose body is the exact
// string passed to the signer.
func (e *PoloniexRest) Sign(access, method, function string, param url.Values, header http.Header) (request exchanges.Request, err error) {
	if header == nil {
		header = http.Header{}
	}
	request.Method = method
	request.Headers = header

	if access == exchanges.Public {
		if param == nil {
			param = url.Values{}
		}
		param.Set("command", function)
		request.Url = e.Option.RestHost + "?" + param.Encode()
		return request, nil
	}

	if !e.signer.authenticated() {
		return request, polo.ErrorAuthRequired
	}
	if param == nil {
		param = url.Values{}
	}
	param.Set("command", function)
	param.Set("nonce", strconv.FormatInt(utils.Nonce(), 10))
	payload := param.Encode()

	auth, err := e.signer.headers(payload)
	if err != nil {
		return request, err
	}
	for key, values := range auth {
		header[key] = values
	}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Url = e.Option.RestPrivateHost
	request.Body = payload
	return request, nil
}

// HandleError rejects bodies that carry nothing to relay. Error payloads sent by
// the exchange are valid JSON and pass through untouched.
func (e *PoloniexRest) HandleError(request exchanges.Request, response []byte) error {
	body := bytes.TrimSpace(response)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return polo.ErrorEmptyResponse
	}
	if !jsoniter.Valid(body) {
		return polo.ExError{Code: polo.ErrDataParse, Message: "invalid json from remote server: " + request.Url}
	}
	return nil
}

func (e *PoloniexRest) public(command string, params url.Values) (polo.Response, error) {
	return e.Fetch(e, exchanges.Public, exchanges.GET, command, params, http.Header{})
}

func (e *PoloniexRest) private(command string, params url.Values) (polo.Response, error) {
	return e.Fetch(e, exchanges.Private, exchanges.POST, command, params, http.Header{})
}

// setOptional skips empty values so absent arguments never reach the signature.
func setOptional(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func pairParams(currencyA, currencyB string) url.Values {
	params := url.Values{}
	params.Set("currencyPair", polo.JoinCurrencies(currencyA, currencyB))
	return params
}

func (e *PoloniexRest) ReturnTicker() (polo.Response, error) {
	return e.public(cmdTicker, url.Values{})
}

func (e *PoloniexRest) Return24hVolume() (polo.Response, error) {
	return e.public(cmd24hVolume, url.Values{})
}

// ReturnOrderBook accepts a pair, or polo.AllCurrencies with an empty currencyB.
func (e *PoloniexRest) ReturnOrderBook(currencyA, currencyB string) (polo.Response, error) {
	return e.public(cmdOrderBook, pairParams(currencyA, currencyB))
}

// ReturnChartData period is the candle width in seconds.
func (e *PoloniexRest) ReturnChartData(currencyA, currencyB string, period int, start, end time.Time) (polo.Response, error) {
	params := pairParams(currencyA, currencyB)
	if period > 0 {
		params.Set("period", strconv.Itoa(period))
	}
	setOptional(params, "start", utils.FormatUnix(start))
	setOptional(params, "end", utils.FormatUnix(end))
	return e.public(cmdChartData, params)
}

func (e *PoloniexRest) ReturnCurrencies() (polo.Response, error) {
	return e.public(cmdCurrencies, url.Values{})
}

func (e *PoloniexRest) ReturnLoanOrders(currency string) (polo.Response, error) {
	params := url.Values{}
	params.Set("currency", currency)
	return e.public(cmdLoanOrders, params)
}

// ReturnTradeHistory goes to the trading api when the instance holds credentials
// and to the public api otherwise, with the same parameters either way.
// currencyA == polo.AllCurrencies selects every market and currencyB is ignored.
// Zero start and end select a window of Options.TradeHistoryWindow on each side
// of the current time.
func (e *PoloniexRest) ReturnTradeHistory(currencyA, currencyB string, start, end time.Time) (polo.Response, error) {
	params := e.tradeHistoryParams(currencyA, currencyB, start, end)
	if e.IsAuthenticated() {
		return e.private(cmdTradeHistory, params)
	}
	return e.public(cmdTradeHistory, params)
}

func (e *PoloniexRest) tradeHistoryParams(currencyA, currencyB string, start, end time.Time) url.Values {
	pair := polo.JoinCurrencies(currencyA, currencyB)
	if currencyA == polo.AllCurrencies {
		pair = polo.AllCurrencies
	}
	if start.IsZero() && end.IsZero() {
		now := e.now()
		start = now.Add(-e.Option.TradeHistoryWindow)
		end = now.Add(e.Option.TradeHistoryWindow)
	}

	params := url.Values{}
	params.Set("currencyPair", pair)
	setOptional(params, "start", utils.FormatUnix(start))
	setOptional(params, "end", utils.FormatUnix(end))
	return params
}
