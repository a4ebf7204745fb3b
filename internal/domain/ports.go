package domain

import "context"

// GrantRequest is a single reward credit. Reference identifies the
// (event, player, reward) triple so the economy can dedupe redelivery.
type GrantRequest struct {
	PlayerID  string `json:"player_id"`
	RewardKey string `json:"reward_key"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

// EconomyPort credits rewards to a player's economy.
type EconomyPort interface {
	Grant(ctx context.Context, req GrantRequest) error
}

// WeatherProvider reads current conditions at a location.
type WeatherProvider interface {
	CurrentConditionAt(ctx context.Context, lat, lon float64) (WeatherCondition, error)
}
