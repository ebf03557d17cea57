package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const wrappedSOL = "So11111111111111111111111111111111111111112"

// fallbackSOLPrice is used until the first successful quote. Stale but sane
// beats zero: pump.fun payloads are denominated in SOL and a zero price would
// drop every candidate below the liquidity floor.
const fallbackSOLPrice = 150.0

// solPriceCache quotes SOL/USD from DexScreener with a 60s cache so the
// websocket firehose does not turn into an HTTP firehose.
type solPriceCache struct {
	baseURL string
	client  *http.Client

	mu      sync.Mutex
	price   float64
	fetched time.Time
}

func newSolPriceCache(baseURL string, client *http.Client) *solPriceCache {
	return &solPriceCache{baseURL: baseURL, client: client, price: fallbackSOLPrice}
}

func (c *solPriceCache) Price(ctx context.Context) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.fetched) < 60*time.Second {
		return c.price
	}

	p, err := c.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Float64("stale_price", c.price).Msg("SOL price refresh failed, using last known")
		c.fetched = time.Now() // back off for a full interval even on failure
		return c.price
	}

	c.price = p
	c.fetched = time.Now()
	return p
}

func (c *solPriceCache) fetch(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, wrappedSOL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("dexscreener HTTP %d", resp.StatusCode)
	}

	var body struct {
		Pairs []struct {
			PriceUsd  string `json:"priceUsd"`
			Liquidity struct {
				USD float64 `json:"usd"`
			} `json:"liquidity"`
		} `json:"pairs"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&body); err != nil {
		return 0, err
	}

	best, bestLiq := 0.0, 0.0
	for _, p := range body.Pairs {
		price, err := strconv.ParseFloat(p.PriceUsd, 64)
		if err != nil || price <= 0 {
			continue
		}
		if p.Liquidity.USD > bestLiq {
			best, bestLiq = price, p.Liquidity.USD
		}
	}
	if best <= 0 {
		return 0, fmt.Errorf("no usable SOL pair in response")
	}
	return best, nil
}
