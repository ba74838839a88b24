package poloniex

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/xiaolo66/polo"
	"github.com/xiaolo66/polo/exchanges"
)

const (
	testKey    = "K-0123"
	testSecret = "S-very-secret"
)

type mockTransport struct {
	sync.Mutex
	requests []exchanges.Request
	status   int
	body     []byte
	err      error
}

func (m *mockTransport) Do(request exchanges.Request) (int, []byte, error) {
	m.Lock()
	defer m.Unlock()
	m.requests = append(m.requests, request)
	return m.status, m.body, m.err
}

func (m *mockTransport) last(t *testing.T) exchanges.Request {
	m.Lock()
	defer m.Unlock()
	if len(m.requests) == 0 {
		t.Fatal("no request sent")
	}
	return m.requests[len(m.requests)-1]
}

func (m *mockTransport) count() int {
	m.Lock()
	defer m.Unlock()
	return len(m.requests)
}

func newMocked(t *testing.T, options polo.Options) (*Poloniex, *mockTransport) {
	options.Logger = zaptest.NewLogger(t)
	e := New(options)
	transport := &mockTransport{status: 200, body: []byte(`{}`)}
	e.PoloniexRest.Transport = transport
	return e, transport
}

func sign(body, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

// requestParams returns the parameters of a request, from the query string for
// GET and from the form body for POST.
func requestParams(t *testing.T, request exchanges.Request) url.Values {
	raw := request.Body
	if request.Method == exchanges.GET {
		u, err := url.Parse(request.Url)
		if err != nil {
			t.Fatal(err)
		}
		raw = u.RawQuery
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatal(err)
	}
	return values
}

func TestPoloniexRest_ReturnOrderBookPublic(t *testing.T) {
	e, transport := newMocked(t, polo.Options{})
	if _, err := e.ReturnOrderBook("BTC", "ETH"); err != nil {
		t.Fatal(err)
	}

	request := transport.last(t)
	if request.Method != http.MethodGet {
		t.Errorf("method %s", request.Method)
	}
	if !strings.HasPrefix(request.Url, PublicApiUrl+"?") {
		t.Errorf("url %s", request.Url)
	}
	params := requestParams(t, request)
	want := url.Values{"command": {"returnOrderBook"}, "currencyPair": {"BTC_ETH"}}
	if params.Encode() != want.Encode() {
		t.Errorf("params %v", params)
	}
	if request.Headers.Get("Key") != "" || request.Headers.Get("Sign") != "" {
		t.Errorf("public request carries auth headers: %v", request.Headers)
	}
	if request.Body != "" {
		t.Errorf("public request has a body: %q", request.Body)
	}
}

func TestPoloniexRest_ReturnBalancesSigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.Method != http.MethodPost {
			t.Errorf("method %s", r.Method)
		}
		if r.Header.Get("Key") != testKey {
			t.Errorf("Key %q", r.Header.Get("Key"))
		}
		if r.Header.Get("Sign") != sign(string(body), testSecret) {
			t.Errorf("Sign %q does not match body %q", r.Header.Get("Sign"), body)
		}
		if r.Header.Get("User-Agent") != polo.DefaultUserAgent {
			t.Errorf("User-Agent %q", r.Header.Get("User-Agent"))
		}
		form, _ := url.ParseQuery(string(body))
		if form.Get("command") != "returnBalances" || form.Get("nonce") == "" || len(form) != 2 {
			t.Errorf("form %v", form)
		}
		_, _ = w.Write([]byte(`{"BTC":"0.25","ETH":"0"}`))
	}))
	defer srv.Close()

	e := New(polo.Options{AccessKey: testKey, SecretKey: testSecret, RestPrivateHost: srv.URL, Logger: zaptest.NewLogger(t)})
	res, err := e.ReturnBalances()
	if err != nil {
		t.Fatal(err)
	}
	balances, err := ParseBalances(res)
	if err != nil {
		t.Fatal(err)
	}
	if !balances["BTC"].Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("balances %v", balances)
	}
}

func TestPoloniexRest_PrivateRequiresCredentials(t *testing.T) {
	for _, options := range []polo.Options{{}, {AccessKey: testKey}, {SecretKey: testSecret}} {
		e, transport := newMocked(t, options)
		if e.IsAuthenticated() {
			t.Fatalf("%v reported as authenticated", options)
		}
		calls := []func() (polo.Response, error){
			e.ReturnBalances,
			e.ReturnDepositAddresses,
			e.ReturnFeeInfo,
			e.ReturnTradableBalances,
			e.ReturnMarginAccountSummary,
			e.ReturnOpenLoanOffers,
			e.ReturnActiveLoans,
			e.MyBalances,
			func() (polo.Response, error) { return e.ReturnCompleteBalances("") },
			func() (polo.Response, error) { return e.ReturnOpenOrders("BTC", "ETH") },
			func() (polo.Response, error) {
				return e.Buy("BTC", "ETH", decimal.NewFromFloat(0.1), decimal.NewFromInt(1))
			},
			func() (polo.Response, error) { return e.CancelOrder("BTC", "ETH", 42) },
			func() (polo.Response, error) { return e.ToggleAutoRenew(42) },
		}
		for i, call := range calls {
			_, err := call()
			if !errors.Is(err, polo.ErrorAuthRequired) {
				t.Errorf("call %d: err = %v", i, err)
			}
		}
		if transport.count() != 0 {
			t.Errorf("transport received %d requests", transport.count())
		}
	}
}

func TestPoloniexRest_InstancesDoNotShareCredentials(t *testing.T) {
	authed, _ := newMocked(t, polo.Options{AccessKey: testKey, SecretKey: testSecret})
	anonymous, transport := newMocked(t, polo.Options{})
	if !authed.IsAuthenticated() || anonymous.IsAuthenticated() {
		t.Fatal("authentication state leaked between instances")
	}
	if _, err := anonymous.ReturnBalances(); !errors.Is(err, polo.ErrorAuthRequired) {
		t.Errorf("err = %v", err)
	}
	if transport.count() != 0 {
		t.Error("anonymous instance sent a private request")
	}
}

func TestPoloniexRest_SecretNotExposed(t *testing.T) {
	e, _ := newMocked(t, polo.Options{AccessKey: testKey, SecretKey: testSecret})
	if e.PoloniexRest.Option.SecretKey != "" || e.PoloniexWs.Option.SecretKey != "" {
		t.Error("secret kept in options")
	}
	for _, s := range []string{fmt.Sprintf("%+v", e), fmt.Sprintf("%v", e.PoloniexRest.Option), e.signer.String()} {
		if strings.Contains(s, testSecret) {
			t.Errorf("secret leaked: %s", s)
		}
	}
}

func TestPoloniexRest_SignedBodyIsTransmittedBody(t *testing.T) {
	e, transport := newMocked(t, polo.Options{AccessKey: testKey, SecretKey: testSecret})
	_, err := e.Buy("BTC", "ETH", decimal.RequireFromString("0.0123"), decimal.RequireFromString("10.5"))
	if err != nil {
		t.Fatal(err)
	}
	request := transport.last(t)
	if request.Method != http.MethodPost || request.Url != PrivateApiUrl {
		t.Errorf("request %s %s", request.Method, request.Url)
	}
	if request.Headers.Get("Sign") != sign(request.Body, testSecret) {
		t.Error("signature does not cover the body")
	}
	if request.Headers.Get("Key") != testKey {
		t.Errorf("Key %q", request.Headers.Get("Key"))
	}
	params := requestParams(t, request)
	if params.Get("currencyPair") != "BTC_ETH" || params.Get("rate") != "0.0123" || params.Get("amount") != "10.5" {
		t.Errorf("params %v", params)
	}
}

func TestPoloniexRest_NoncesIncrease(t *testing.T) {
	e, transport := newMocked(t, polo.Options{AccessKey: testKey, SecretKey: testSecret})
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.ReturnBalances()
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, request := range transport.requests {
		nonce := requestParams(t, request).Get("nonce")
		if seen[nonce] {
			t.Fatalf("nonce %s reused", nonce)
		}
		seen[nonce] = true
	}
	if len(seen) != n {
		t.Errorf("%d distinct nonces, want %d", len(seen), n)
	}
}

func TestPoloniexRest_TradeHistoryRouting(t *testing.T) {
	now := time.Unix(1600000000, 0)
	start, end := now.Add(-time.Hour), now.Add(time.Hour)

	anonymous, publicTransport := newMocked(t, polo.Options{})
	anonymous.now = func() time.Time { return now }
	authed, privateTransport := newMocked(t, polo.Options{AccessKey: testKey, SecretKey: testSecret})
	authed.now = func() time.Time { return now }

	if _, err := anonymous.ReturnTradeHistory("BTC", "ETH", time.Time{}, time.Time{}); err != nil {
		t.Fatal(err)
	}
	if _, err := authed.ReturnTradeHistory("BTC", "ETH", time.Time{}, time.Time{}); err != nil {
		t.Fatal(err)
	}

	public := publicTransport.last(t)
	private := privateTransport.last(t)
	if public.Method != http.MethodGet || !strings.HasPrefix(public.Url, PublicApiUrl) {
		t.Errorf("public request %s %s", public.Method, public.Url)
	}
	if private.Method != http.MethodPost || private.Url != PrivateApiUrl {
		t.Errorf("private request %s %s", private.Method, private.Url)
	}

	publicParams := requestParams(t, public)
	privateParams := requestParams(t, private)
	privateParams.Del("nonce")
	if publicParams.Encode() != privateParams.Encode() {
		t.Errorf("public %v private %v", publicParams, privateParams)
	}
	if publicParams.Get("start") != fmt.Sprint(start.Unix()) || publicParams.Get("end") != fmt.Sprint(end.Unix()) {
		t.Errorf("default window %v", publicParams)
	}
}

func TestPoloniexRest_TradeHistoryShapes(t *testing.T) {
	e, transport := newMocked(t, polo.Options{TradeHistoryWindow: 10 * time.Minute})
	now := time.Unix(1600000000, 0)
	e.now = func() time.Time { return now }

	tests := []struct {
		a, b       string
		start, end time.Time
		want       url.Values
	}{
		{"all", "", time.Time{}, time.Time{}, url.Values{"currencyPair": {"all"}, "start": {"1599999400"}, "end": {"1600000600"}}},
		{"all", "ETH", time.Unix(100, 0), time.Unix(200, 0), url.Values{"currencyPair": {"all"}, "start": {"100"}, "end": {"200"}}},
		{"BTC", "ETH", time.Unix(100, 0), time.Time{}, url.Values{"currencyPair": {"BTC_ETH"}, "start": {"100"}}},
		{"BTC_ETH", "", time.Unix(100, 0), time.Unix(200, 0), url.Values{"currencyPair": {"BTC_ETH"}, "start": {"100"}, "end": {"200"}}},
	}
	for _, tt := range tests {
		if _, err := e.GetTradeHistory(tt.a, tt.b, tt.start, tt.end); err != nil {
			t.Fatal(err)
		}
		params := requestParams(t, transport.last(t))
		tt.want.Set("command", "returnTradeHistory")
		if params.Encode() != tt.want.Encode() {
			t.Errorf("(%q, %q) params %v, want %v", tt.a, tt.b, params, tt.want)
		}
	}
}

func TestPoloniexRest_DefaultWindowComputedPerCall(t *testing.T) {
	e, transport := newMocked(t, polo.Options{})
	clock := time.Unix(1600000000, 0)
	e.now = func() time.Time { return clock }

	_, _ = e.ReturnTradeHistory("BTC", "ETH", time.Time{}, time.Time{})
	first := requestParams(t, transport.last(t)).Get("start")
	clock = clock.Add(time.Minute)
	_, _ = e.ReturnTradeHistory("BTC", "ETH", time.Time{}, time.Time{})
	second := requestParams(t, transport.last(t)).Get("start")
	if first == second {
		t.Errorf("window not recomputed: %s", first)
	}
}

func TestPoloniexRest_Catalog(t *testing.T) {
	e, transport := newMocked(t, polo.Options{AccessKey: testKey, SecretKey: testSecret})
	d := decimal.RequireFromString
	start, end := time.Unix(1500000000, 0), time.Unix(1500086400, 0)

	tests := []struct {
		name    string
		call    func() (polo.Response, error)
		command string
		method  string
		params  url.Values
	}{
		{"ticker", e.ReturnTicker, "returnTicker", exchanges.GET, url.Values{}},
		{"ticker alias", e.GetTicker, "returnTicker", exchanges.GET, url.Values{}},
		{"24h volume", e.Return24hVolume, "return24hVolume", exchanges.GET, url.Values{}},
		{"24h volume alias", e.Get24hVolume, "return24hVolume", exchanges.GET, url.Values{}},
		{"order book all", func() (polo.Response, error) { return e.GetOrderBook("all", "") }, "returnOrderBook", exchanges.GET,
			url.Values{"currencyPair": {"all"}}},
		{"chart data", func() (polo.Response, error) { return e.ReturnChartData("BTC", "XMR", 300, start, end) }, "returnChartData", exchanges.GET,
			url.Values{"currencyPair": {"BTC_XMR"}, "period": {"300"}, "start": {"1500000000"}, "end": {"1500086400"}}},
		{"chart data alias", func() (polo.Response, error) { return e.GetChartData("BTC", "XMR", 0, time.Time{}, time.Time{}) }, "returnChartData", exchanges.GET,
			url.Values{"currencyPair": {"BTC_XMR"}}},
		{"currencies", e.ReturnCurrencies, "returnCurrencies", exchanges.GET, url.Values{}},
		{"loan orders", func() (polo.Response, error) { return e.ReturnLoanOrders("BTC") }, "returnLoanOrders", exchanges.GET,
			url.Values{"currency": {"BTC"}}},
		{"balances alias", e.MyBalances, "returnBalances", exchanges.POST, url.Values{}},
		{"complete balances", func() (polo.Response, error) { return e.ReturnCompleteBalances(polo.AccountMargin) }, "returnCompleteBalances", exchanges.POST,
			url.Values{"account": {"margin"}}},
		{"complete balances default", func() (polo.Response, error) { return e.ReturnCompleteBalances("") }, "returnCompleteBalances", exchanges.POST,
			url.Values{}},
		{"deposit addresses", e.ReturnDepositAddresses, "returnDepositAddresses", exchanges.POST, url.Values{}},
		{"new address", func() (polo.Response, error) { return e.GenerateNewAddress("BTC") }, "generateNewAddress", exchanges.POST,
			url.Values{"currency": {"BTC"}}},
		{"deposits withdrawals", func() (polo.Response, error) { return e.ReturnDepositsWithdrawals(start, end) }, "returnDepositsWithdrawals", exchanges.POST,
			url.Values{"start": {"1500000000"}, "end": {"1500086400"}}},
		{"open orders", func() (polo.Response, error) { return e.MyOpenOrders("all", "") }, "returnOpenOrders", exchanges.POST,
			url.Values{"currencyPair": {"all"}}},
		{"my trade history", func() (polo.Response, error) { return e.MyTradeHistory("BTC", "ETH", start, end) }, "returnTradeHistory", exchanges.POST,
			url.Values{"currencyPair": {"BTC_ETH"}, "start": {"1500000000"}, "end": {"1500086400"}}},
		{"order trades", func() (polo.Response, error) { return e.ReturnOrderTrades(120466) }, "returnOrderTrades", exchanges.POST,
			url.Values{"orderNumber": {"120466"}}},
		{"order status", func() (polo.Response, error) { return e.ReturnOrderStatus(120466) }, "returnOrderStatus", exchanges.POST,
			url.Values{"orderNumber": {"120466"}}},
		{"sell", func() (polo.Response, error) { return e.Sell("BTC", "ETH", d("0.05"), d("2")) }, "sell", exchanges.POST,
			url.Values{"currencyPair": {"BTC_ETH"}, "rate": {"0.05"}, "amount": {"2"}}},
		{"cancel", func() (polo.Response, error) { return e.CancelOrder("BTC", "ETH", 7) }, "cancelOrder", exchanges.POST,
			url.Values{"currencyPair": {"BTC_ETH"}, "orderNumber": {"7"}}},
		{"move keep amount", func() (polo.Response, error) { return e.MoveOrder(7, d("0.06"), decimal.Zero) }, "moveOrder", exchanges.POST,
			url.Values{"orderNumber": {"7"}, "rate": {"0.06"}}},
		{"move with amount", func() (polo.Response, error) { return e.MoveOrder(7, d("0.06"), d("3")) }, "moveOrder", exchanges.POST,
			url.Values{"orderNumber": {"7"}, "rate": {"0.06"}, "amount": {"3"}}},
		{"withdraw", func() (polo.Response, error) { return e.Withdraw("BTC", d("0.5"), "1Addr") }, "withdraw", exchanges.POST,
			url.Values{"currency": {"BTC"}, "amount": {"0.5"}, "address": {"1Addr"}}},
		{"fee info", e.ReturnFeeInfo, "returnFeeInfo", exchanges.POST, url.Values{}},
		{"available balances", func() (polo.Response, error) { return e.ReturnAvailableAccountBalances(polo.AccountExchange) }, "returnAvailableAccountBalances", exchanges.POST,
			url.Values{"account": {"exchange"}}},
		{"tradable balances", e.ReturnTradableBalances, "returnTradableBalances", exchanges.POST, url.Values{}},
		{"transfer", func() (polo.Response, error) {
			return e.TransferBalance("BTC", d("1.5"), polo.AccountExchange, polo.AccountLending)
		}, "transferBalance", exchanges.POST,
			url.Values{"currency": {"BTC"}, "amount": {"1.5"}, "fromAccount": {"exchange"}, "toAccount": {"lending"}}},
		{"margin summary", e.ReturnMarginAccountSummary, "returnMarginAccountSummary", exchanges.POST, url.Values{}},
		{"margin buy", func() (polo.Response, error) { return e.MarginBuy("BTC", "ETH", d("0.05"), d("2"), decimal.Zero) }, "marginBuy", exchanges.POST,
			url.Values{"currencyPair": {"BTC_ETH"}, "rate": {"0.05"}, "amount": {"2"}}},
		{"margin sell", func() (polo.Response, error) { return e.MarginSell("BTC", "ETH", d("0.05"), d("2"), d("0.0002")) }, "marginSell", exchanges.POST,
			url.Values{"currencyPair": {"BTC_ETH"}, "rate": {"0.05"}, "amount": {"2"}, "lendingRate": {"0.0002"}}},
		{"margin position", func() (polo.Response, error) { return e.GetMarginPosition("BTC", "ETH") }, "getMarginPosition", exchanges.POST,
			url.Values{"currencyPair": {"BTC_ETH"}}},
		{"close margin position", func() (polo.Response, error) { return e.CloseMarginPosition("BTC", "ETH") }, "closeMarginPosition", exchanges.POST,
			url.Values{"currencyPair": {"BTC_ETH"}}},
		{"loan offer", func() (polo.Response, error) { return e.CreateLoanOffer("BTC", d("1"), 2, true, d("0.0001")) }, "createLoanOffer", exchanges.POST,
			url.Values{"currency": {"BTC"}, "amount": {"1"}, "duration": {"2"}, "autoRenew": {"1"}, "lendingRate": {"0.0001"}}},
		{"cancel loan offer", func() (polo.Response, error) { return e.CancelLoanOffer(9) }, "cancelLoanOffer", exchanges.POST,
			url.Values{"orderNumber": {"9"}}},
		{"open loan offers", e.ReturnOpenLoanOffers, "returnOpenLoanOffers", exchanges.POST, url.Values{}},
		{"active loans", e.ReturnActiveLoans, "returnActiveLoans", exchanges.POST, url.Values{}},
		{"lending history", func() (polo.Response, error) { return e.ReturnLendingHistory(start, end, 100) }, "returnLendingHistory", exchanges.POST,
			url.Values{"start": {"1500000000"}, "end": {"1500086400"}, "limit": {"100"}}},
		{"lending history no limit", func() (polo.Response, error) { return e.ReturnLendingHistory(time.Time{}, time.Time{}, 0) }, "returnLendingHistory", exchanges.POST,
			url.Values{}},
		{"auto renew", func() (polo.Response, error) { return e.ToggleAutoRenew(9) }, "toggleAutoRenew", exchanges.POST,
			url.Values{"orderNumber": {"9"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.call(); err != nil {
				t.Fatal(err)
			}
			request := transport.last(t)
			if request.Method != tt.method {
				t.Errorf("method %s, want %s", request.Method, tt.method)
			}
			params := requestParams(t, request)
			if tt.method == exchanges.POST {
				if params.Get("nonce") == "" {
					t.Error("nonce missing")
				}
				params.Del("nonce")
				if request.Headers.Get("Sign") != sign(request.Body, testSecret) {
					t.Error("bad signature")
				}
			}
			want := url.Values{}
			for k, v := range tt.params {
				want[k] = v
			}
			want.Set("command", tt.command)
			if params.Encode() != want.Encode() {
				t.Errorf("params %s, want %s", params.Encode(), want.Encode())
			}
		})
	}
}

func TestPoloniexRest_ResponseNormalization(t *testing.T) {
	boom := errors.New("connection reset by peer")
	tests := []struct {
		name   string
		body   []byte
		err    error
		code   int
		remote string
	}{
		{"nil body", nil, nil, polo.ErrEmptyResponse, ""},
		{"blank body", []byte("  \n"), nil, polo.ErrEmptyResponse, ""},
		{"null body", []byte("null"), nil, polo.ErrEmptyResponse, ""},
		{"html body", []byte("<html>bad gateway</html>"), nil, polo.ErrDataParse, ""},
		{"transport error", nil, boom, polo.ErrBadRequest, ""},
		{"remote error", []byte(`{"error":"Invalid command."}`), nil, 0, "Invalid command."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, transport := newMocked(t, polo.Options{})
			transport.body, transport.err = tt.body, tt.err

			res, err := e.ReturnTicker()
			if tt.code == 0 {
				if err != nil {
					t.Fatalf("err = %v", err)
				}
				if res.RemoteError() != tt.remote {
					t.Errorf("remote error %q", res.RemoteError())
				}
				return
			}
			var exErr polo.ExError
			if !errors.As(err, &exErr) || exErr.Code != tt.code {
				t.Fatalf("err = %v, want code %d", err, tt.code)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Error("transport error not surfaced")
			}
			if transport.count() != 1 {
				t.Errorf("%d attempts", transport.count())
			}
		})
	}
}

func TestPoloniexRest_AsyncDelivery(t *testing.T) {
	e, transport := newMocked(t, polo.Options{})
	transport.body = nil

	future := polo.Async(e.ReturnTicker)
	_, getErr := future.Get()

	got := make(chan error, 1)
	future.OnComplete(func(err error, res polo.Response) { got <- err })
	select {
	case cbErr := <-got:
		if !errors.Is(cbErr, polo.ErrorEmptyResponse) || !errors.Is(getErr, polo.ErrorEmptyResponse) {
			t.Errorf("callback %v, get %v", cbErr, getErr)
		}
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
	if transport.count() != 1 {
		t.Errorf("%d requests for one future", transport.count())
	}
}
