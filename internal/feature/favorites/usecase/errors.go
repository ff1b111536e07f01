package usecase

import "errors"

// ErrFavoriteNotFound is returned when removing a symbol that is not in the watchlist.
var ErrFavoriteNotFound = errors.New("favorite not found")
