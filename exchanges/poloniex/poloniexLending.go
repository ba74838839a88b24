package poloniex

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiaolo66/polo"
	"github.com/xiaolo66/polo/utils"
)

// CreateLoanOffer duration is in days.
func (e *PoloniexRest) CreateLoanOffer(currency string, amount decimal.Decimal, duration int, autoRenew bool, lendingRate decimal.Decimal) (polo.Response, error) {
	params := url.Values{}
	params.Set("currency", currency)
	params.Set("amount", amount.String())
	params.Set("duration", strconv.Itoa(duration))
	params.Set("autoRenew", utils.FormatBool(autoRenew))
	params.Set("lendingRate", lendingRate.String())
	return e.private(cmdCreateLoanOffer, params)
}

func (e *PoloniexRest) CancelLoanOffer(orderNumber int64) (polo.Response, error) {
	return e.private(cmdCancelLoanOffer, orderParams(orderNumber))
}

func (e *PoloniexRest) ReturnOpenLoanOffers() (polo.Response, error) {
	return e.private(cmdOpenLoanOffers, url.Values{})
}

func (e *PoloniexRest) ReturnActiveLoans() (polo.Response, error) {
	return e.private(cmdActiveLoans, url.Values{})
}

// ReturnLendingHistory omits start, end and limit when they are zero.
func (e *PoloniexRest) ReturnLendingHistory(start, end time.Time, limit int) (polo.Response, error) {
	params := url.Values{}
	setOptional(params, "start", utils.FormatUnix(start))
	setOptional(params, "end", utils.FormatUnix(end))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return e.private(cmdLendingHistory, params)
}

func (e *PoloniexRest) ToggleAutoRenew(orderNumber int64) (polo.Response, error) {
	return e.private(cmdToggleAutoRenew, orderParams(orderNumber))
}
