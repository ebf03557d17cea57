package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/Azeflow10/solana-ml-scanner/pkg/config"
	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

// SecurityAnalyzer wraps the RugCheck report API. Analyze never returns an
// error: any fetch or parse failure degrades to a conservative default report
// so the token can still be scored.
type SecurityAnalyzer struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	cache      *ttlCache[*model.SecurityReport]
	breaker    *gobreaker.CircuitBreaker
}

func NewSecurityAnalyzer(cfg *config.Config) *SecurityAnalyzer {
	return &SecurityAnalyzer{
		baseURL:    strings.TrimRight(cfg.RugCheckAPI, "/"),
		client:     &http.Client{Timeout: cfg.RequestTimeout},
		maxRetries: cfg.MaxRetries,
		cache:      newTTLCache[*model.SecurityReport](cfg.AnalyzerCacheTTL),
		breaker:    newRugCheckBreaker("rugcheck"),
	}
}

// newRugCheckBreaker guards one caller's RugCheck calls: trip after five
// consecutive failures, retry after a minute. Every code path hitting that
// host goes through one of these so an outage is not hammered.
func newRugCheckBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

func (a *SecurityAnalyzer) Analyze(ctx context.Context, tokenAddress string) *model.SecurityReport {
	if cached, ok := a.cache.get(tokenAddress); ok {
		return cached
	}

	url := fmt.Sprintf("%s/tokens/%s/report", a.baseURL, tokenAddress)

	raw, err := a.breaker.Execute(func() (interface{}, error) {
		return getJSONRetry(ctx, a.client, url, a.maxRetries)
	})
	if err != nil {
		if err == errNoData {
			// Provider has never seen this token; an empty payload parses to
			// the same conservative defaults the original used.
			report := defaultSecurityReport("no data available")
			a.cache.put(tokenAddress, report)
			return report
		}
		log.Warn().Err(err).Str("token", tokenAddress).Msg("security analysis failed")
		return defaultSecurityReport("analysis failed: " + err.Error())
	}

	report := parseSecurityResponse(raw.([]byte))
	a.cache.put(tokenAddress, report)
	log.Debug().Str("token", tokenAddress).Float64("score", report.OverallScore).Msg("security analysis complete")
	return report
}

// defaultSecurityReport is the fail-open answer: midpoint score, every
// protective flag unset, worst-case concentration.
func defaultSecurityReport(reason string) *model.SecurityReport {
	return &model.SecurityReport{
		OverallScore:           5.0,
		MintAuthorityFrozen:    false,
		FreezeAuthorityRevoked: false,
		Top10HoldersPercent:    100.0,
		LPLocked:               false,
		LPBurned:               false,
		KnownRisks:             []string{reason},
		IsHoneypot:             false,
		CanSell:                true,
		Degraded:               true,
	}
}

type rugcheckResponse struct {
	Risks     map[string]rugcheckRisk `json:"risks"`
	TokenMeta struct {
		Mint struct {
			MintAuthority   *string `json:"mintAuthority"`
			FreezeAuthority *string `json:"freezeAuthority"`
		} `json:"mint"`
	} `json:"tokenMeta"`
	TopHolders []struct {
		Pct float64 `json:"pct"`
	} `json:"topHolders"`
	Markets []struct {
		LP struct {
			LockedPct float64 `json:"lpLockedPct"`
			BurnPct   float64 `json:"lpBurnPct"`
		} `json:"lp"`
	} `json:"markets"`
}

type rugcheckRisk struct {
	Level       string `json:"level"`
	Description string `json:"description"`
}

func parseSecurityResponse(body []byte) *model.SecurityReport {
	var resp rugcheckResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Warn().Err(err).Msg("security response parse error")
		return defaultSecurityReport("parse error")
	}
	if len(resp.Risks) == 0 && len(resp.TopHolders) == 0 && len(resp.Markets) == 0 {
		return defaultSecurityReport("no data available")
	}

	// Synthesize a 0-10 score: perfect minus 2.0 per danger, 0.5 per warning.
	score := 10.0
	var knownRisks []string
	for name, risk := range resp.Risks {
		switch risk.Level {
		case "danger":
			score -= 2.0
		case "warning":
			score -= 0.5
		default:
			continue
		}
		desc := risk.Description
		if desc == "" {
			desc = name
		}
		knownRisks = append(knownRisks, desc)
	}
	score = clamp(score, 0, 10)

	top10 := 0.0
	for i, h := range resp.TopHolders {
		if i >= 10 {
			break
		}
		top10 += h.Pct
	}

	var lpLocked, lpBurned bool
	for _, m := range resp.Markets {
		if m.LP.LockedPct > 0 {
			lpLocked = true
		}
		if m.LP.BurnPct > 0 {
			lpBurned = true
		}
	}

	honeypot := false
	for _, r := range knownRisks {
		if strings.Contains(strings.ToLower(r), "honeypot") {
			honeypot = true
			break
		}
	}

	return &model.SecurityReport{
		OverallScore:           score,
		MintAuthorityFrozen:    resp.TokenMeta.Mint.MintAuthority == nil,
		FreezeAuthorityRevoked: resp.TokenMeta.Mint.FreezeAuthority == nil,
		Top10HoldersPercent:    top10,
		LPLocked:               lpLocked,
		LPBurned:               lpBurned,
		KnownRisks:             knownRisks,
		IsHoneypot:             honeypot,
		CanSell:                !honeypot,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
