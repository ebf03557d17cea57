package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Azeflow10/solana-ml-scanner/pkg/db"
	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

// Notifier is one delivery channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text, tokenAddress string) error
}

// Manager fans an alert out to every configured channel. An alert counts as
// sent when at least one channel accepted it.
type Manager struct {
	channels []Notifier
}

func NewManager(channels ...Notifier) *Manager {
	return &Manager{channels: channels}
}

func (m *Manager) HasChannels() bool { return len(m.channels) > 0 }

// SendAlert formats and delivers one opportunity alert. Telegram gets the
// detailed layout, everything else the compact line.
func (m *Manager) SendAlert(ctx context.Context, r *model.AnalysisResult) bool {
	detailed := FormatAlert(r)
	compact := FormatCompactAlert(r)

	sent := false
	for _, ch := range m.channels {
		text := compact
		if ch.Name() == "telegram" {
			text = detailed
		}
		if err := ch.Send(ctx, text, r.Token.Address); err != nil {
			log.Error().Err(err).Str("channel", ch.Name()).
				Str("address", r.Token.Address).Msg("alert delivery failed")
			continue
		}
		sent = true
	}

	if sent {
		log.Info().Str("address", r.Token.Address).Str("symbol", r.Token.Symbol).
			Float64("score", r.Scoring.ScoreCombined).
			Str("category", string(r.Scoring.Category)).Msg("🚨 alert sent")
	}
	return sent
}

// SendDailySummary pushes the digest to every channel; no token address, so
// no keyboard.
func (m *Manager) SendDailySummary(ctx context.Context, st *db.Stats, date time.Time) {
	text := FormatDailySummary(st, date)
	for _, ch := range m.channels {
		if err := ch.Send(ctx, text, ""); err != nil {
			log.Error().Err(err).Str("channel", ch.Name()).Msg("daily summary delivery failed")
		}
	}
}
