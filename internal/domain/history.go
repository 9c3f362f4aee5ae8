package domain

import "time"

type PricePoint struct {
	Symbol     string
	Price      float64
	RecordedAt time.Time
	Source     string
}
