package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"

	"github.com/xiaolo66/polo"
	"github.com/xiaolo66/polo/exchanges/poloniex"
	"github.com/xiaolo66/polo/factory"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Println(aurora.Red(err))
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, running unauthenticated unless the environment has keys")
	}

	options := polo.Options{
		AccessKey: os.Getenv("POLONIEX_API_KEY"),
		SecretKey: os.Getenv("POLONIEX_API_SECRET"),
		Logger:    logger,
	}
	if os.Getenv("POLONIEX_INSECURE_SSL") == "1" {
		strict := false
		options.StrictSSL = &strict
	}
	client := factory.NewExchange(polo.Poloniex, options)

	// future style
	tickers, err := polo.Async(client.ReturnTicker).Get()
	if err != nil {
		fmt.Println(aurora.Red(fmt.Sprintf("ticker: %v", err)))
	} else if parsed, err := poloniex.ParseTickers(tickers); err == nil {
		if btc, ok := parsed["USDT_BTC"]; ok {
			fmt.Printf("USDT_BTC last %s\n", aurora.Bold(aurora.Green(btc.Last.String())))
		}
	}

	// completion style
	done := make(chan struct{})
	polo.Async(func() (polo.Response, error) {
		return client.ReturnOrderBook("USDT", "BTC")
	}).OnComplete(func(err error, res polo.Response) {
		defer close(done)
		if err != nil {
			fmt.Println(aurora.Red(fmt.Sprintf("order book: %v", err)))
			return
		}
		book, err := poloniex.ParseOrderBook(res)
		if err != nil || len(book.Asks) == 0 || len(book.Bids) == 0 {
			fmt.Println(aurora.Yellow(res.String()))
			return
		}
		fmt.Printf("USDT_BTC best ask %s best bid %s\n",
			aurora.Bold(aurora.Red(book.Asks[0].Price.String())),
			aurora.Bold(aurora.Green(book.Bids[0].Price.String())))
	})
	select {
	case <-done:
	case <-time.After(options.WithDefaults().Timeout):
	}

	if !client.IsAuthenticated() {
		fmt.Println(aurora.Yellow("set POLONIEX_API_KEY and POLONIEX_API_SECRET to query balances"))
		return
	}
	res, err := client.ReturnBalances()
	if err != nil {
		fmt.Println(aurora.Red(fmt.Sprintf("balances: %v", err)))
		return
	}
	if msg := res.RemoteError(); msg != "" {
		fmt.Println(aurora.Red(msg))
		return
	}
	balances, err := poloniex.ParseBalances(res)
	if err != nil {
		fmt.Println(aurora.Red(err))
		return
	}
	for currency, amount := range balances {
		if amount.IsPositive() {
			fmt.Printf("%s %s\n", currency, aurora.Blue(amount.String()))
		}
	}
}
