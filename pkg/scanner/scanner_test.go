package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

func TestSeenSet_MarkNew(t *testing.T) {
	s := newSeenSet(100)

	assert.True(t, s.markNew("a"))
	assert.False(t, s.markNew("a"))
	assert.True(t, s.markNew("b"))
}

func TestSeenSet_BoundedReset(t *testing.T) {
	s := newSeenSet(3)
	for i := 0; i < 3; i++ {
		assert.True(t, s.markNew(fmt.Sprintf("mint%d", i)))
	}

	// At capacity the set resets wholesale; an old address can re-emit once.
	assert.True(t, s.markNew("mint99"))
	assert.True(t, s.markNew("mint0"))
}

func TestEmit_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan model.TokenData) // unbuffered, no reader
	assert.False(t, emit(ctx, out, model.TokenData{Address: "x"}))
}

func TestNewTokenEvent_Parse(t *testing.T) {
	raw := `{"mint": "MintAddr111", "name": "Test Coin", "symbol": "TC",
		"solAmount": 2.5, "marketCapSol": 35.2, "vSolInBondingCurve": 40.1, "txType": "create"}`

	var ev newTokenEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))

	assert.Equal(t, "MintAddr111", ev.Mint)
	assert.Equal(t, "TC", ev.Symbol)
	assert.InDelta(t, 40.1, ev.VSolInBondingCurve, 0.001)
	assert.InDelta(t, 35.2, ev.MarketCapSol, 0.001)
}

func TestPumpFunStream_NoGoroutinePileupAcrossReconnects(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close() // drop straight away so every stream attempt ends fast
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	s := NewPumpFunScanner(wsURL, server.URL, server.Client())
	out := make(chan model.TokenData, 1)

	before := runtime.NumGoroutine()
	for i := 0; i < 20; i++ {
		assert.Error(t, s.stream(context.Background(), out))
	}
	time.Sleep(100 * time.Millisecond) // let finished watchers unwind

	// The shutdown watcher must die with its stream, not linger per reconnect.
	assert.LessOrEqual(t, runtime.NumGoroutine(), before+4)
}

func TestSolPriceCache_FetchAndCache(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"pairs": [
			{"priceUsd": "150.25", "liquidity": {"usd": 9000000}},
			{"priceUsd": "149.00", "liquidity": {"usd": 1000}}
		]}`))
	}))
	defer server.Close()

	c := newSolPriceCache(server.URL, &http.Client{Timeout: 5 * time.Second})

	// Deepest pair's quote wins; second call hits the cache.
	assert.InDelta(t, 150.25, c.Price(context.Background()), 0.001)
	assert.InDelta(t, 150.25, c.Price(context.Background()), 0.001)
	assert.Equal(t, 1, calls)
}

func TestSolPriceCache_FallbackOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newSolPriceCache(server.URL, &http.Client{Timeout: 5 * time.Second})
	assert.InDelta(t, fallbackSOLPrice, c.Price(context.Background()), 0.001)
}

func TestDexScreenerScanner_ResolvePair(t *testing.T) {
	createdAt := time.Now().Add(-10 * time.Minute).UnixMilli()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"pairs": [{
			"priceUsd": "0.0042",
			"liquidity": {"usd": 35000},
			"volume": {"h24": 120000},
			"priceChange": {"m5": 12.5, "h1": 80},
			"fdv": 400000,
			"pairCreatedAt": %d,
			"baseToken": {"address": "MintAddr111", "name": "Test Coin", "symbol": "TC"}
		}]}`, createdAt)
	}))
	defer server.Close()

	s := NewDexScreenerScanner(server.URL, &http.Client{Timeout: 5 * time.Second}, time.Minute)
	token, err := s.resolvePair(context.Background(), "MintAddr111")
	require.NoError(t, err)

	assert.Equal(t, "TC", token.Symbol)
	assert.InDelta(t, 35_000, token.LiquidityUSD, 0.001)
	assert.InDelta(t, 0.0042, token.PriceUSD, 0.0001)
	assert.InDelta(t, 12.5, token.PriceChange5Min, 0.001)
	assert.InDelta(t, 400_000, token.MarketCap, 0.001)
	assert.InDelta(t, 600, float64(token.AgeSeconds), 30)
	assert.Equal(t, "dexscreener", token.Source)
}

func TestPoolAge(t *testing.T) {
	assert.EqualValues(t, 0, poolAge(""))
	assert.EqualValues(t, 0, poolAge("garbage"))

	future := fmt.Sprintf("%d", time.Now().Add(time.Hour).Unix())
	assert.EqualValues(t, 0, poolAge(future))

	past := fmt.Sprintf("%d", time.Now().Add(-5*time.Minute).Unix())
	assert.InDelta(t, 300, float64(poolAge(past)), 5)
}
