package domain

// PriceSnapshot is the cached artifact the service writes and serves.
// Prices maps an output symbol ("BTC", "EUR") to its USD price.
// LastUpdate is human-readable text and is never parsed back.
type PriceSnapshot struct {
	Prices     map[string]float64 `json:"prices"`
	LastUpdate string             `json:"last_update"`
}
