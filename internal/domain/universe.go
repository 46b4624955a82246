package domain

import "strings"

// Universe is the fixed set of large-cap US equities the engine operates on.
// Kept stable across experiments for reproducibility; overridable via config.
var Universe = []string{
	"AAPL",
	"MSFT",
	"NVDA",
	"AMZN",
	"META",
	"GOOGL",
	"TSLA",
	"JPM",
	"UNH",
	"XOM",
}

// InUniverse reports whether ticker is part of the given universe,
// case-insensitively.
func InUniverse(universe []string, ticker string) bool {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, t := range universe {
		if t == ticker {
			return true
		}
	}
	return false
}
