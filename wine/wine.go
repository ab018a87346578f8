// Package wine loads a user's cellar and summarizes it for the sommelier.
package wine

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoWines is returned when a collection is empty.
var ErrNoWines = errors.New("no wines found in collection")

// Record is one wine of a user's collection, joined with its owner and
// tasting note.
type Record struct {
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	Name       string          `json:"wine_name"`
	Producer   string          `json:"producer"`
	Grapes     string          `json:"grapes"`
	Country    string          `json:"country"`
	Region     string          `json:"region"`
	Year       int             `json:"year"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	BottleSize decimal.Decimal `json:"bottle_size"`
	Note       string          `json:"note_text,omitempty"`
}
