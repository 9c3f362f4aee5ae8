package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"pricecache-service/internal/application"
	"pricecache-service/internal/domain"
	"pricecache-service/internal/infrastructure/httpx"
)

const (
	coinGeckoSimplePricePath = "/api/v3/simple/price"
)

// CoinGecko reads USD spot prices for a set of asset ids from the
// simple-price endpoint.
type CoinGecko struct {
	BaseURL string
	Fetch   *httpx.Client
}

var _ application.SpotClient = (*CoinGecko)(nil)

type cgSimplePriceResp map[string]struct {
	USD float64 `json:"usd"`
}

func (p *CoinGecko) Latest(ctx context.Context, ids []string) (domain.SpotPrices, error) {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("coingecko: invalid base url: %w", err)
	}
	u.Path = coinGeckoSimplePricePath
	q := u.Query()
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	u.RawQuery = q.Encode()

	body := p.Fetch.FetchText(ctx, u.String())
	if body == "" {
		return nil, fmt.Errorf("coingecko: %w", domain.ErrNoData)
	}

	var parsed cgSimplePriceResp
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("coingecko: decode response: %w", err)
	}

	prices := make(domain.SpotPrices, len(parsed))
	for id, entry := range parsed {
		prices[id] = entry.USD
	}
	return prices, nil
}
