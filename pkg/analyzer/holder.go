package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Azeflow10/solana-ml-scanner/pkg/config"
	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

// HolderAnalyzer derives holder distribution. With a Helius key it reads the
// largest token accounts on-chain and computes concentration directly; without
// one (or on failure) it estimates concentration from holder-count tiers on
// the token observation.
type HolderAnalyzer struct {
	rpcURL     string
	client     *http.Client
	maxRetries int
	cache      *ttlCache[*model.HolderReport]
}

func NewHolderAnalyzer(cfg *config.Config) *HolderAnalyzer {
	rpcURL := ""
	if cfg.HeliusAPIKey != "" {
		rpcURL = "https://mainnet.helius-rpc.com/?api-key=" + cfg.HeliusAPIKey
	}
	return &HolderAnalyzer{
		rpcURL:     rpcURL,
		client:     &http.Client{Timeout: cfg.RequestTimeout},
		maxRetries: cfg.MaxRetries,
		cache:      newTTLCache[*model.HolderReport](cfg.AnalyzerCacheTTL),
	}
}

func (a *HolderAnalyzer) Analyze(ctx context.Context, tokenAddress string, token *model.TokenData) *model.HolderReport {
	if cached, ok := a.cache.get(tokenAddress); ok {
		return cached
	}

	totalHolders := 0
	growthRate := 0.0
	if token != nil {
		totalHolders = token.Holders
		growthRate = token.HolderGrowthRate
	}

	top10, top20, devPct, direct := a.fetchConcentration(ctx, tokenAddress)
	if !direct {
		top10, top20 = EstimateConcentration(totalHolders)
	}

	report := &model.HolderReport{
		TotalHolders:       totalHolders,
		Top10Concentration: top10,
		Top20Concentration: top20,
		DevWalletPercent:   devPct,
		GrowthRatePerMin:   growthRate,
		DistributionScore:  DistributionScore(totalHolders, top10, devPct),
		Degraded:           !direct,
	}
	a.cache.put(tokenAddress, report)
	return report
}

// EstimateConcentration maps a holder count to assumed top-10/top-20
// concentration bands: more holders, better assumed spread.
func EstimateConcentration(holders int) (top10, top20 float64) {
	switch {
	case holders >= 1000:
		return 25, 35
	case holders >= 500:
		return 35, 45
	case holders >= 200:
		return 45, 60
	case holders >= 50:
		return 60, 75
	default:
		return 80, 90
	}
}

// DistributionScore is 0-100: holder-count tier (up to 40) + concentration
// tier (up to 40, lower concentration better) + dev-wallet tier (up to 20,
// lower holding better).
func DistributionScore(holders int, top10Concentration, devWalletPct float64) float64 {
	score := 0.0

	switch {
	case holders >= 1000:
		score += 40
	case holders >= 500:
		score += 30
	case holders >= 200:
		score += 25
	case holders >= 100:
		score += 20
	case holders >= 50:
		score += 10
	case holders >= 20:
		score += 5
	}

	switch {
	case top10Concentration < 20:
		score += 40
	case top10Concentration < 30:
		score += 30
	case top10Concentration < 40:
		score += 20
	case top10Concentration < 50:
		score += 10
	}

	switch {
	case devWalletPct < 5:
		score += 20
	case devWalletPct < 10:
		score += 15
	case devWalletPct < 15:
		score += 10
	case devWalletPct < 20:
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// fetchConcentration reads the 20 largest token accounts plus total supply
// over Solana RPC. direct is false when either call fails or no key is set.
func (a *HolderAnalyzer) fetchConcentration(ctx context.Context, tokenAddress string) (top10, top20, devPct float64, direct bool) {
	if a.rpcURL == "" {
		return 0, 0, 0, false
	}

	largest, err := a.rpcCall(ctx, "getTokenLargestAccounts", tokenAddress)
	if err != nil {
		log.Warn().Err(err).Str("token", tokenAddress).Msg("holder accounts fetch failed")
		return 0, 0, 0, false
	}
	var accounts struct {
		Value []struct {
			UIAmount float64 `json:"uiAmount"`
		} `json:"value"`
	}
	if json.Unmarshal(largest, &accounts) != nil || len(accounts.Value) == 0 {
		return 0, 0, 0, false
	}

	supplyRaw, err := a.rpcCall(ctx, "getTokenSupply", tokenAddress)
	if err != nil {
		return 0, 0, 0, false
	}
	var supply struct {
		Value struct {
			UIAmount float64 `json:"uiAmount"`
		} `json:"value"`
	}
	if json.Unmarshal(supplyRaw, &supply) != nil || supply.Value.UIAmount <= 0 {
		return 0, 0, 0, false
	}

	total := supply.Value.UIAmount
	for i, acct := range accounts.Value {
		pct := 100 * acct.UIAmount / total
		if i < 10 {
			top10 += pct
		}
		top20 += pct
	}
	// The single largest account is the best available proxy for the
	// deployer's wallet until wallet attribution lands.
	devPct = 100 * accounts.Value[0].UIAmount / total
	return top10, top20, devPct, true
}

func (a *HolderAnalyzer) rpcCall(ctx context.Context, method, tokenAddress string) (json.RawMessage, error) {
	payload, _ := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  []string{tokenAddress},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from rpc %s", resp.StatusCode, method)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}
	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, err
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc %s: %s", method, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}
