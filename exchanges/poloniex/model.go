package poloniex

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/xiaolo66/polo"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Ticker struct {
	ID            int             `json:"id"`
	Last          decimal.Decimal `json:"last"`
	LowestAsk     decimal.Decimal `json:"lowestAsk"`
	HighestBid    decimal.Decimal `json:"highestBid"`
	PercentChange decimal.Decimal `json:"percentChange"`
	BaseVolume    decimal.Decimal `json:"baseVolume"`
	QuoteVolume   decimal.Decimal `json:"quoteVolume"`
	IsFrozen      string          `json:"isFrozen"`
	High24hr      decimal.Decimal `json:"high24hr"`
	Low24hr       decimal.Decimal `json:"low24hr"`
}

// ParseTickers decodes a returnTicker response keyed by market symbol.
func ParseTickers(res polo.Response) (map[string]Ticker, error) {
	tickers := make(map[string]Ticker)
	if err := res.Decode(&tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

// ParseBalances decodes a returnBalances response keyed by currency.
func ParseBalances(res polo.Response) (map[string]decimal.Decimal, error) {
	balances := make(map[string]decimal.Decimal)
	if err := res.Decode(&balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// DepthItem is one [price, amount] level; price arrives quoted, amount as a number.
type DepthItem struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

func (d *DepthItem) UnmarshalJSON(data []byte) error {
	var raw [2]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Price, d.Amount = raw[0], raw[1]
	return nil
}

type OrderBook struct {
	Asks     []DepthItem `json:"asks"`
	Bids     []DepthItem `json:"bids"`
	IsFrozen string      `json:"isFrozen"`
	Seq      int64       `json:"seq"`
}

// ParseOrderBook decodes a single-market returnOrderBook response.
func ParseOrderBook(res polo.Response) (OrderBook, error) {
	var book OrderBook
	err := res.Decode(&book)
	return book, err
}

// Command is a push api control frame.
type Command struct {
	Command string `json:"command"`
	Channel int    `json:"channel"`
}

// TickerUpdate is one entry of the push ticker channel.
type TickerUpdate struct {
	PairID        int
	Symbol        string // empty when the pair id is unknown
	Last          decimal.Decimal
	LowestAsk     decimal.Decimal
	HighestBid    decimal.Decimal
	PercentChange decimal.Decimal
	BaseVolume    decimal.Decimal
	QuoteVolume   decimal.Decimal
	IsFrozen      bool
	High24hr      decimal.Decimal
	Low24hr       decimal.Decimal
}

// parseTickerUpdate reads
// [id, last, lowestAsk, highestBid, percentChange, baseVolume, quoteVolume, isFrozen, high24hr, low24hr].
func parseTickerUpdate(data []byte) (update TickerUpdate, err error) {
	var raw []jsoniter.RawMessage
	if err = json.Unmarshal(data, &raw); err != nil {
		return
	}
	if len(raw) < 10 {
		return update, fmt.Errorf("ticker update has %d fields, want 10", len(raw))
	}
	if err = json.Unmarshal(raw[0], &update.PairID); err != nil {
		return
	}
	fields := []*decimal.Decimal{
		&update.Last, &update.LowestAsk, &update.HighestBid, &update.PercentChange,
		&update.BaseVolume, &update.QuoteVolume,
	}
	for i, field := range fields {
		if err = json.Unmarshal(raw[i+1], field); err != nil {
			return
		}
	}
	var frozen int
	if err = json.Unmarshal(raw[7], &frozen); err != nil {
		return
	}
	update.IsFrozen = frozen != 0
	if err = json.Unmarshal(raw[8], &update.High24hr); err != nil {
		return
	}
	err = json.Unmarshal(raw[9], &update.Low24hr)
	return
}
