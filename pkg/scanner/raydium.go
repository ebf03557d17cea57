package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

const defaultRaydiumAPI = "https://api-v3.raydium.io"

// RaydiumScanner polls Raydium's pool listing, newest first, for tokens that
// graduated out of pump.fun or launched directly on an AMM pool. Coarser and
// slower than the websocket feed, but it is the only source for direct AMM
// launches.
type RaydiumScanner struct {
	baseURL  string
	client   *http.Client
	interval time.Duration
	seen     *seenSet
}

func NewRaydiumScanner(client *http.Client, interval time.Duration) *RaydiumScanner {
	return &RaydiumScanner{
		baseURL:  defaultRaydiumAPI,
		client:   client,
		interval: interval,
		seen:     newSeenSet(50_000),
	}
}

func (s *RaydiumScanner) Name() string { return "raydium" }

func (s *RaydiumScanner) Run(ctx context.Context, out chan<- model.TokenData) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Msg("📡 raydium poller started")

	for {
		if err := s.poll(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("raydium poll failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

type raydiumPool struct {
	MintA struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
		Name    string `json:"name"`
	} `json:"mintA"`
	MintB struct {
		Address string `json:"address"`
	} `json:"mintB"`
	TVL      float64 `json:"tvl"`
	Price    float64 `json:"price"`
	OpenTime string  `json:"openTime"` // unix seconds as string
	Day      struct {
		Volume float64 `json:"volume"`
	} `json:"day"`
}

func (s *RaydiumScanner) poll(ctx context.Context, out chan<- model.TokenData) error {
	url := s.baseURL + "/pools/info/list?poolType=standard&poolSortField=default&sortType=desc&pageSize=100&page=1"
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
		return fmt.Errorf("raydium HTTP %d", resp.StatusCode)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Data []raydiumPool `json:"data"`
		} `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&body); err != nil {
		return err
	}
	if !body.Success {
		return fmt.Errorf("raydium API reported failure")
	}

	for _, pool := range body.Data.Data {
		// Only the SOL-quoted side matters; mintA carries the new token.
		if pool.MintB.Address != wrappedSOL || pool.MintA.Address == "" {
			continue
		}
		if !s.seen.markNew(pool.MintA.Address) {
			continue
		}

		token := model.TokenData{
			Address:      pool.MintA.Address,
			Symbol:       pool.MintA.Symbol,
			Name:         pool.MintA.Name,
			LiquidityUSD: pool.TVL,
			PriceUSD:     pool.Price,
			Volume24h:    pool.Day.Volume,
			AgeSeconds:   poolAge(pool.OpenTime),
			Source:       s.Name(),
			CreatedAt:    time.Now().UTC(),
		}

		log.Debug().Str("mint", token.Address).Str("symbol", token.Symbol).
			Float64("tvl", pool.TVL).Msg("new raydium pool")

		if !emit(ctx, out, token) {
			return ctx.Err()
		}
	}
	return nil
}

func poolAge(openTime string) int64 {
	var ts int64
	if _, err := fmt.Sscan(openTime, &ts); err != nil || ts <= 0 {
		return 0
	}
	age := time.Now().Unix() - ts
	if age < 0 {
		return 0
	}
	return age
}
