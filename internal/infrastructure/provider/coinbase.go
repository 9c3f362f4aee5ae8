package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"pricecache-service/internal/application"
	"pricecache-service/internal/domain"
	"pricecache-service/internal/infrastructure/httpx"
)

const (
	coinbaseExchangeRatesPath = "/v2/exchange-rates"
)

// Coinbase reads the exchange-rate sheet for a base currency. Rates stay
// decimal strings here; the caller decides how to parse them.
type Coinbase struct {
	BaseURL string
	Fetch   *httpx.Client
}

var _ application.RateClient = (*Coinbase)(nil)

type cbExchangeRatesResp struct {
	Data struct {
		Currency string            `json:"currency"`
		Rates    map[string]string `json:"rates"`
	} `json:"data"`
}

func (p *Coinbase) Rates(ctx context.Context, base string) (domain.RateSheet, error) {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return domain.RateSheet{}, fmt.Errorf("coinbase: invalid base url: %w", err)
	}
	u.Path = coinbaseExchangeRatesPath
	q := u.Query()
	q.Set("currency", base)
	u.RawQuery = q.Encode()

	body := p.Fetch.FetchText(ctx, u.String())
	if body == "" {
		return domain.RateSheet{}, fmt.Errorf("coinbase: %w", domain.ErrNoData)
	}

	var parsed cbExchangeRatesResp
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return domain.RateSheet{}, fmt.Errorf("coinbase: decode response: %w", err)
	}
	if len(parsed.Data.Rates) == 0 {
		return domain.RateSheet{}, fmt.Errorf("coinbase: no rates for %s", base)
	}

	return domain.RateSheet{
		Currency: parsed.Data.Currency,
		Rates:    parsed.Data.Rates,
	}, nil
}
