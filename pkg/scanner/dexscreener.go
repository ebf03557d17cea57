package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

// DexScreenerScanner polls the latest token profiles for Solana and resolves
// each fresh address through the pair endpoint. This catches tokens past the
// bonding-curve phase that PumpPortal no longer surfaces.
type DexScreenerScanner struct {
	baseURL  string
	client   *http.Client
	interval time.Duration
	seen     *seenSet
}

func NewDexScreenerScanner(baseURL string, client *http.Client, interval time.Duration) *DexScreenerScanner {
	return &DexScreenerScanner{
		baseURL:  baseURL,
		client:   client,
		interval: interval,
		seen:     newSeenSet(50_000),
	}
}

func (s *DexScreenerScanner) Name() string { return "dexscreener" }

func (s *DexScreenerScanner) Run(ctx context.Context, out chan<- model.TokenData) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("📡 dexscreener poller started")

	for {
		if err := s.poll(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("dexscreener poll failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *DexScreenerScanner) poll(ctx context.Context, out chan<- model.TokenData) error {
	profiles, err := s.fetchProfiles(ctx)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		if p.ChainID != "solana" || p.TokenAddress == "" {
			continue
		}
		if !s.seen.markNew(p.TokenAddress) {
			continue
		}

		token, err := s.resolvePair(ctx, p.TokenAddress)
		if err != nil {
			log.Debug().Err(err).Str("address", p.TokenAddress).Msg("pair lookup failed, skipping")
			continue
		}
		if !emit(ctx, out, token) {
			return ctx.Err()
		}
	}
	return nil
}

type tokenProfile struct {
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
}

func (s *DexScreenerScanner) fetchProfiles(ctx context.Context) ([]tokenProfile, error) {
	var profiles []tokenProfile
	if err := s.getJSON(ctx, s.baseURL+"/token-profiles/latest/v1", &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// pairData is the slice of DexScreener's pair object this scanner reads.
type pairData struct {
	PriceUsd  string `json:"priceUsd"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		M5 float64 `json:"m5"`
		H1 float64 `json:"h1"`
	} `json:"priceChange"`
	FDV           float64 `json:"fdv"`
	PairCreatedAt int64   `json:"pairCreatedAt"` // unix millis
	BaseToken     struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
}

func (s *DexScreenerScanner) resolvePair(ctx context.Context, address string) (model.TokenData, error) {
	var body struct {
		Pairs []pairData `json:"pairs"`
	}
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", s.baseURL, address)
	if err := s.getJSON(ctx, url, &body); err != nil {
		return model.TokenData{}, err
	}
	if len(body.Pairs) == 0 {
		return model.TokenData{}, fmt.Errorf("no pairs for %s", address)
	}

	// Deepest pair is the canonical one.
	best := body.Pairs[0]
	for _, p := range body.Pairs[1:] {
		if p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}

	price, _ := strconv.ParseFloat(best.PriceUsd, 64)
	created := time.UnixMilli(best.PairCreatedAt).UTC()
	age := int64(0)
	if best.PairCreatedAt > 0 {
		age = int64(time.Since(created).Seconds())
	}

	return model.TokenData{
		Address:         address,
		Symbol:          best.BaseToken.Symbol,
		Name:            best.BaseToken.Name,
		LiquidityUSD:    best.Liquidity.USD,
		MarketCap:       best.FDV,
		PriceUSD:        price,
		Volume24h:       best.Volume.H24,
		AgeSeconds:      age,
		PriceChange5Min: best.PriceChange.M5,
		PriceChange1H:   best.PriceChange.H1,
		Source:          s.Name(),
		CreatedAt:       created,
	}, nil
}

func (s *DexScreenerScanner) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(v)
}
