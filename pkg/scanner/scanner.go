// Package scanner discovers candidate tokens and streams them to the
// orchestrator. Each source implements Scanner and handles its own dedup, so
// a token that stays visible across polls is emitted once.
package scanner

import (
	"context"
	"sync"

	"github.com/Azeflow10/solana-ml-scanner/pkg/model"
)

// Scanner is one token source. Run blocks until ctx is done, emitting each
// newly seen token on out exactly once. Transient upstream failures are
// handled internally; Run only returns on ctx cancellation or a permanent
// setup failure.
type Scanner interface {
	Name() string
	Run(ctx context.Context, out chan<- model.TokenData) error
}

// seenSet tracks emitted addresses. Bounded: once the set grows past cap it
// is dropped wholesale, which at worst re-emits an old token once.
type seenSet struct {
	mu   sync.Mutex
	max  int
	addr map[string]struct{}
}

func newSeenSet(max int) *seenSet {
	return &seenSet{max: max, addr: make(map[string]struct{})}
}

// markNew records addr and reports whether it was unseen.
func (s *seenSet) markNew(addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.addr[addr]; ok {
		return false
	}
	if len(s.addr) >= s.max {
		s.addr = make(map[string]struct{})
	}
	s.addr[addr] = struct{}{}
	return true
}

func emit(ctx context.Context, out chan<- model.TokenData, t model.TokenData) bool {
	select {
	case out <- t:
		return true
	case <-ctx.Done():
		return false
	}
}
