package entity

// Ticker is a rolling 24-hour summary for one symbol.
// Numeric fields keep the exchange's decimal string representation.
type Ticker struct {
	Symbol             string
	LastPrice          string
	PriceChangePercent string
	Volume             string
	QuoteVolume        string
}
