// Package entity defines the domain models for the favorites feature.
package entity

import "time"

// Favorite is a trading symbol the user keeps on the watchlist.
// Symbol is the business key and is unique across all favorites.
type Favorite struct {
	ID        int64     // Server-assigned identity
	Symbol    string    // Exchange symbol as submitted (e.g., "BTCUSDT")
	CreatedAt time.Time // Insert time, immutable
}

// InsertFavorite is the client-supplied subset of Favorite.
type InsertFavorite struct {
	Symbol string
}
