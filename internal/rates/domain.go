package rates

import (
	"errors"
	"time"
)

// ExchangeRate is one bolívar-per-dollar observation. Rates are append
// only; the newest entry is the current rate.
type ExchangeRate struct {
	ID        int64     `json:"id"`
	Rate      float64   `json:"rate"`
	Source    *string   `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrInvalidRate rejects zero or negative rates.
	ErrInvalidRate = errors.New("rates: rate must be positive")
	// ErrNoRate indicates no rate has been recorded yet.
	ErrNoRate = errors.New("rates: no exchange rate recorded")
)
