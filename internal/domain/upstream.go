package domain

// SpotPrices maps an upstream asset id ("bitcoin") to its USD spot price.
type SpotPrices map[string]float64

// RateSheet is one exchange-rate response: the base currency it was
// queried for and its quote rates as decimal strings.
type RateSheet struct {
	Currency string
	Rates    map[string]string
}
