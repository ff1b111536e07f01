// Package entity defines the domain models for the market feature.
package entity

import "time"

// Candle represents one OHLCV bar for a trading symbol.
type Candle struct {
	Time   time.Time // Open time of the bar
	Open   float64   // Opening price
	High   float64   // Highest price during the bar
	Low    float64   // Lowest price during the bar
	Close  float64   // Closing price
	Volume float64   // Base asset volume
}
