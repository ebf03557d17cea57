package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/Azeflow10/solana-ml-scanner/pkg/config"
	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

// LiquidityAnalyzer reads pool depth from DexScreener and LP lock/burn
// percentages from the RugCheck markets payload. Either source failing
// degrades independently; with no pair data at all it falls back to the
// fields already present on the token observation.
type LiquidityAnalyzer struct {
	dexURL      string
	rugcheckURL string
	client      *http.Client
	maxRetries  int
	cache       *ttlCache[*model.LiquidityReport]
	breaker     *gobreaker.CircuitBreaker
}

func NewLiquidityAnalyzer(cfg *config.Config) *LiquidityAnalyzer {
	return &LiquidityAnalyzer{
		dexURL:      strings.TrimRight(cfg.DexScreenerAPI, "/"),
		rugcheckURL: strings.TrimRight(cfg.RugCheckAPI, "/"),
		client:      &http.Client{Timeout: cfg.RequestTimeout},
		maxRetries:  cfg.MaxRetries,
		cache:       newTTLCache[*model.LiquidityReport](cfg.AnalyzerCacheTTL),
		breaker:     newRugCheckBreaker("rugcheck-lp"),
	}
}

func (a *LiquidityAnalyzer) Analyze(ctx context.Context, tokenAddress string, token *model.TokenData) *model.LiquidityReport {
	if cached, ok := a.cache.get(tokenAddress); ok {
		return cached
	}

	liqUSD, liqSOL, ok := a.fetchPairLiquidity(ctx, tokenAddress)
	degraded := !ok
	if !ok {
		// No pair data: the token observation is the next best source.
		if token != nil && (token.LiquidityUSD > 0 || token.LiquiditySOL > 0) {
			liqUSD, liqSOL = token.LiquidityUSD, token.LiquiditySOL
		}
	}

	lockedPct, burnedPct := a.fetchLockPercents(ctx, tokenAddress)

	report := buildLiquidityReport(liqUSD, liqSOL, lockedPct, burnedPct)
	report.Degraded = degraded
	a.cache.put(tokenAddress, report)
	return report
}

// buildLiquidityReport derives price impact and the stability score from raw
// depth and lock figures. Split out for direct testing.
func buildLiquidityReport(liqUSD, liqSOL, lockedPct, burnedPct float64) *model.LiquidityReport {
	return &model.LiquidityReport{
		TotalLiquidityUSD: liqUSD,
		LiquiditySOL:      liqSOL,
		LockedPercent:     lockedPct,
		BurnedPercent:     burnedPct,
		PriceImpact1KUSD:  PriceImpact(1000, liqUSD),
		PriceImpact5KUSD:  PriceImpact(5000, liqUSD),
		StabilityScore:    stabilityScore(liqUSD, lockedPct, burnedPct),
	}
}

// PriceImpact estimates the move a trade of tradeUSD causes against a pool of
// liquidityUSD. Zero liquidity means maximal impact.
func PriceImpact(tradeUSD, liquidityUSD float64) float64 {
	if liquidityUSD <= 0 {
		return 100
	}
	impact := 100 * tradeUSD / liquidityUSD
	if impact > 100 {
		return 100
	}
	return impact
}

// stabilityScore is 0-100: depth tier (up to 40) + secured-LP share (up to 40)
// + price-impact tier (up to 20).
func stabilityScore(liqUSD, lockedPct, burnedPct float64) float64 {
	score := 0.0

	switch {
	case liqUSD >= 100_000:
		score += 40
	case liqUSD >= 50_000:
		score += 30
	case liqUSD >= 20_000:
		score += 20
	case liqUSD >= 10_000:
		score += 10
	}

	secured := 0.4 * (lockedPct + burnedPct)
	if secured > 40 {
		secured = 40
	}
	score += secured

	// Finer impact on the deeper $5k probe scores higher.
	switch impact := PriceImpact(5000, liqUSD); {
	case impact <= 1:
		score += 20
	case impact <= 3:
		score += 15
	case impact <= 5:
		score += 10
	case impact <= 10:
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

func (a *LiquidityAnalyzer) fetchPairLiquidity(ctx context.Context, tokenAddress string) (usd, sol float64, ok bool) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", a.dexURL, tokenAddress)
	body, err := getJSONRetry(ctx, a.client, url, a.maxRetries)
	if err != nil {
		if err != errNoData {
			log.Warn().Err(err).Str("token", tokenAddress).Msg("liquidity fetch failed")
		}
		return 0, 0, false
	}

	var resp struct {
		Pairs []struct {
			Liquidity struct {
				USD   float64 `json:"usd"`
				Quote float64 `json:"quote"`
			} `json:"liquidity"`
		} `json:"pairs"`
	}
	if json.Unmarshal(body, &resp) != nil || len(resp.Pairs) == 0 {
		return 0, 0, false
	}

	// Deepest pair wins; thin duplicate listings would otherwise understate depth.
	for _, p := range resp.Pairs {
		if p.Liquidity.USD > usd {
			usd = p.Liquidity.USD
			sol = p.Liquidity.Quote
		}
	}
	return usd, sol, usd > 0
}

func (a *LiquidityAnalyzer) fetchLockPercents(ctx context.Context, tokenAddress string) (lockedPct, burnedPct float64) {
	url := fmt.Sprintf("%s/tokens/%s/report", a.rugcheckURL, tokenAddress)
	raw, err := a.breaker.Execute(func() (interface{}, error) {
		return getJSONRetry(ctx, a.client, url, a.maxRetries)
	})
	if err != nil {
		return 0, 0
	}
	body := raw.([]byte)

	var resp struct {
		Markets []struct {
			LP struct {
				LockedPct float64 `json:"lpLockedPct"`
				BurnPct   float64 `json:"lpBurnPct"`
			} `json:"lp"`
		} `json:"markets"`
	}
	if json.Unmarshal(body, &resp) != nil {
		return 0, 0
	}
	for _, m := range resp.Markets {
		if m.LP.LockedPct > lockedPct {
			lockedPct = m.LP.LockedPct
		}
		if m.LP.BurnPct > burnedPct {
			burnedPct = m.LP.BurnPct
		}
	}
	return lockedPct, burnedPct
}
