package weather

import (
	"context"
	"sync"

	"github.com/osse101/liveops/internal/domain"
)

// Static reports a fixed condition. Used when no live provider is
// configured and by the admin API to force a condition.
type Static struct {
	mu   sync.RWMutex
	cond domain.WeatherCondition
}

// NewStatic creates a provider reporting condition
func NewStatic(condition string) *Static {
	s := &Static{}
	s.Set(condition)
	return s
}

// Set changes the reported condition
func (s *Static) Set(condition string) {
	c := Normalize(condition)
	s.mu.Lock()
	s.cond = domain.WeatherCondition{Type: c, GameplayModifiers: Modifiers(c)}
	s.mu.Unlock()
}

func (s *Static) CurrentConditionAt(ctx context.Context, lat, lon float64) (domain.WeatherCondition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.cond
	out.GameplayModifiers = Modifiers(out.Type)
	return out, nil
}

var _ domain.WeatherProvider = (*Static)(nil)
