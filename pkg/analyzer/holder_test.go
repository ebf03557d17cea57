package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

func TestEstimateConcentration_Tiers(t *testing.T) {
	cases := []struct {
		holders      int
		top10, top20 float64
	}{
		{1500, 25, 35},
		{600, 35, 45},
		{300, 45, 60},
		{80, 60, 75},
		{10, 80, 90},
	}
	for _, tc := range cases {
		t10, t20 := EstimateConcentration(tc.holders)
		assert.InDelta(t, tc.top10, t10, 0.001, "holders=%d", tc.holders)
		assert.InDelta(t, tc.top20, t20, 0.001, "holders=%d", tc.holders)
	}
}

func TestDistributionScore(t *testing.T) {
	// Best case: many holders, dispersed, tiny dev bag.
	assert.InDelta(t, 100.0, DistributionScore(1500, 15, 2), 0.001)

	// Worst case.
	assert.InDelta(t, 0.0, DistributionScore(5, 80, 50), 0.001)

	// Mid: 250 holders (25) + top10 35% (20) + dev 12% (10)
	assert.InDelta(t, 55.0, DistributionScore(250, 35, 12), 0.001)
}

func TestHolderAnalyzer_NoRPCKeyEstimates(t *testing.T) {
	cfg := testConfig("http://unused")
	token := &model.TokenData{Holders: 600, HolderGrowthRate: 8}

	report := NewHolderAnalyzer(cfg).Analyze(context.Background(), "mint1", token)
	require.NotNil(t, report)

	assert.True(t, report.Degraded)
	assert.Equal(t, 600, report.TotalHolders)
	assert.InDelta(t, 35, report.Top10Concentration, 0.001)
	assert.InDelta(t, 45, report.Top20Concentration, 0.001)
	assert.InDelta(t, 8, report.GrowthRatePerMin, 0.001)
}

func TestHolderAnalyzer_DirectConcentration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch req.Method {
		case "getTokenLargestAccounts":
			w.Write([]byte(`{"result": {"value": [
				{"uiAmount": 200}, {"uiAmount": 100}, {"uiAmount": 50},
				{"uiAmount": 25}, {"uiAmount": 25}
			]}}`))
		case "getTokenSupply":
			w.Write([]byte(`{"result": {"value": {"uiAmount": 1000}}}`))
		default:
			t.Fatalf("unexpected rpc method %s", req.Method)
		}
	}))
	defer server.Close()

	a := &HolderAnalyzer{
		rpcURL: server.URL,
		client: &http.Client{Timeout: 5 * time.Second},
		cache:  newTTLCache[*model.HolderReport](time.Minute),
	}
	token := &model.TokenData{Holders: 120}

	report := a.Analyze(context.Background(), "mint1", token)
	require.NotNil(t, report)

	assert.False(t, report.Degraded)
	assert.InDelta(t, 40.0, report.Top10Concentration, 0.001) // 400 of 1000
	assert.InDelta(t, 20.0, report.DevWalletPercent, 0.001)   // largest account
}

func TestHolderAnalyzer_RPCErrorDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"message": "mint not found"}}`))
	}))
	defer server.Close()

	a := &HolderAnalyzer{
		rpcURL: server.URL,
		client: &http.Client{Timeout: 5 * time.Second},
		cache:  newTTLCache[*model.HolderReport](time.Minute),
	}

	report := a.Analyze(context.Background(), "mint1", &model.TokenData{Holders: 30})
	assert.True(t, report.Degraded)
	assert.InDelta(t, 80, report.Top10Concentration, 0.001) // tier estimate
}
