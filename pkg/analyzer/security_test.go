package analyzer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azeflow10/solana-ml-scanner/pkg/config"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		RugCheckAPI:      baseURL,
		DexScreenerAPI:   baseURL,
		RequestTimeout:   5 * time.Second,
		MaxRetries:       2,
		AnalyzerCacheTTL: time.Minute,
	}
}

const sampleReport = `{
	"risks": {
		"topHolders": {"level": "warning", "description": "Top holders hold a large share"},
		"lpUnlocked": {"level": "danger", "description": "LP is unlocked"}
	},
	"tokenMeta": {"mint": {"mintAuthority": null, "freezeAuthority": "SomeAuthority111"}},
	"topHolders": [
		{"pct": 12.0}, {"pct": 8.0}, {"pct": 5.0}, {"pct": 4.0}, {"pct": 3.0},
		{"pct": 2.5}, {"pct": 2.0}, {"pct": 1.5}, {"pct": 1.0}, {"pct": 1.0},
		{"pct": 0.5}
	],
	"markets": [{"lp": {"lpLockedPct": 95.0, "lpBurnPct": 0}}]
}`

func TestSecurityAnalyzer_ParsesReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens/mint1/report", r.URL.Path)
		w.Write([]byte(sampleReport))
	}))
	defer server.Close()

	a := NewSecurityAnalyzer(testConfig(server.URL))
	report := a.Analyze(context.Background(), "mint1")
	require.NotNil(t, report)

	// 10 - 2.0 (danger) - 0.5 (warning)
	assert.InDelta(t, 7.5, report.OverallScore, 0.001)
	assert.True(t, report.MintAuthorityFrozen)
	assert.False(t, report.FreezeAuthorityRevoked)
	assert.InDelta(t, 40.0, report.Top10HoldersPercent, 0.001) // first 10 of 11
	assert.True(t, report.LPLocked)
	assert.False(t, report.LPBurned)
	assert.False(t, report.IsHoneypot)
	assert.True(t, report.CanSell)
	assert.False(t, report.Degraded)
	assert.Len(t, report.KnownRisks, 2)
}

func TestSecurityAnalyzer_HoneypotDetection(t *testing.T) {
	body := `{"risks": {"hp": {"level": "danger", "description": "Honeypot: selling disabled"}},
		"topHolders": [{"pct": 50}], "markets": []}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	report := NewSecurityAnalyzer(testConfig(server.URL)).Analyze(context.Background(), "mint1")
	assert.True(t, report.IsHoneypot)
	assert.False(t, report.CanSell)
}

func TestSecurityAnalyzer_NotFoundDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	report := NewSecurityAnalyzer(testConfig(server.URL)).Analyze(context.Background(), "unknown")
	require.NotNil(t, report)
	assert.True(t, report.Degraded)
	assert.InDelta(t, 5.0, report.OverallScore, 0.001)
	assert.InDelta(t, 100.0, report.Top10HoldersPercent, 0.001)
	assert.False(t, report.MintAuthorityFrozen)
}

func TestSecurityAnalyzer_RetriesRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(sampleReport))
	}))
	defer server.Close()

	report := NewSecurityAnalyzer(testConfig(server.URL)).Analyze(context.Background(), "mint1")
	assert.False(t, report.Degraded)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestSecurityAnalyzer_CachesResult(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(sampleReport))
	}))
	defer server.Close()

	a := NewSecurityAnalyzer(testConfig(server.URL))
	first := a.Analyze(context.Background(), "mint1")
	second := a.Analyze(context.Background(), "mint1")

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestParseSecurityResponse_EmptyPayload(t *testing.T) {
	report := parseSecurityResponse([]byte(`{}`))
	assert.True(t, report.Degraded)
	assert.InDelta(t, 5.0, report.OverallScore, 0.001)
}

func TestParseSecurityResponse_Garbage(t *testing.T) {
	report := parseSecurityResponse([]byte(`not json`))
	assert.True(t, report.Degraded)
}
