package recurring

import (
	"context"
	"time"

	"github.com/osse101/liveops/internal/domain"
)

// runSpecial always creates an offer; these are meant to stack.
func (s *service) runSpecial(ctx context.Context, now time.Time) (Outcome, error) {
	cfg := s.catalog.Special
	offer := cfg.Offers[s.intn(len(cfg.Offers))]

	duration := cfg.MinDuration
	if span := int((cfg.MaxDuration - cfg.MinDuration) / time.Minute); span > 0 {
		duration += time.Duration(s.intn(span+1)) * time.Minute
	}
	start := now.Truncate(time.Second)

	return s.create(ctx, ClassSpecial, domain.EventSpec{
		Title:        offer.Title,
		Description:  offer.Description,
		EventType:    domain.EventTypeSpecialOffer,
		StartTime:    start,
		EndTime:      start.Add(duration),
		Timezone:     "UTC",
		Priority:     cfg.Priority,
		Requirements: copyRequirements(offer.Requirements),
		Rewards:      domain.FlatRewards(offer.Rewards),
		Metadata:     withSource(nil, ClassSpecial),
	})
}
