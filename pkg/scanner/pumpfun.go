package scanner

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

// PumpFunScanner subscribes to PumpPortal's new-token websocket feed. Every
// mint event arrives within seconds of the bonding curve going live, which is
// what makes the fast-sniper window reachable at all.
type PumpFunScanner struct {
	wsURL    string
	solPrice *solPriceCache
	seen     *seenSet
}

func NewPumpFunScanner(wsURL, dexScreenerURL string, client *http.Client) *PumpFunScanner {
	return &PumpFunScanner{
		wsURL:    wsURL,
		solPrice: newSolPriceCache(dexScreenerURL, client),
		seen:     newSeenSet(50_000),
	}
}

func (s *PumpFunScanner) Name() string { return "pumpfun" }

// Run connects, subscribes and pumps events until ctx is done, reconnecting
// with capped backoff on any connection failure.
func (s *PumpFunScanner) Run(ctx context.Context, out chan<- model.TokenData) error {
	backoff := time.Second
	for {
		if err := s.stream(ctx, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("🔌 pumpportal stream dropped, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}

// newTokenEvent is PumpPortal's payload for a fresh launch. All amounts are
// SOL-denominated.
type newTokenEvent struct {
	Mint               string  `json:"mint"`
	Name               string  `json:"name"`
	Symbol             string  `json:"symbol"`
	SolAmount          float64 `json:"solAmount"`
	MarketCapSol       float64 `json:"marketCapSol"`
	VSolInBondingCurve float64 `json:"vSolInBondingCurve"`
	TxType             string  `json:"txType"`
}

func (s *PumpFunScanner) stream(ctx context.Context, out chan<- model.TokenData) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"method": "subscribeNewToken"}); err != nil {
		return err
	}
	log.Info().Str("url", s.wsURL).Msg("🚀 pumpportal connected, watching new launches")

	// Unblock ReadMessage on shutdown. The watcher lives exactly as long as
	// this stream, so reconnect cycles do not stack goroutines.
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var ev newTokenEvent
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Mint == "" {
			continue // subscription acks and trade events land here too
		}
		if !s.seen.markNew(ev.Mint) {
			continue
		}

		sol := s.solPrice.Price(ctx)
		token := model.TokenData{
			Address:      ev.Mint,
			Symbol:       ev.Symbol,
			Name:         ev.Name,
			LiquiditySOL: ev.VSolInBondingCurve,
			LiquidityUSD: ev.VSolInBondingCurve * sol,
			MarketCap:    ev.MarketCapSol * sol,
			AgeSeconds:   0, // on-feed means just launched
			Source:       s.Name(),
			CreatedAt:    time.Now().UTC(),
		}

		log.Debug().Str("mint", ev.Mint).Str("symbol", ev.Symbol).
			Float64("liquidity_usd", token.LiquidityUSD).Msg("new pump.fun token")

		if !emit(ctx, out, token) {
			return ctx.Err()
		}
	}
}
