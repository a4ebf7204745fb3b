package weather

import "strings"

// groups maps provider condition groups onto the game's condition types
var groups = map[string]string{
	"clear":        ConditionClear,
	"rain":         ConditionRain,
	"drizzle":      ConditionRain,
	"snow":         ConditionSnow,
	"thunderstorm": ConditionThunderstorm,
	"fog":          ConditionFog,
	"mist":         ConditionFog,
	"haze":         ConditionFog,
	"smoke":        ConditionFog,
	"clouds":       ConditionClouds,
}

var modifiers = map[string]map[string]float64{
	ConditionRain:         {"speed": 0.9, "water_damage": 1.25},
	ConditionSnow:         {"speed": 0.8, "ice_damage": 1.25},
	ConditionThunderstorm: {"speed": 0.9, "lightning_damage": 1.5, "xp": 1.2},
	ConditionFog:          {"visibility": 0.5, "stealth": 1.3},
	ConditionClouds:       {"xp": 1.05},
}

// Normalize maps a provider's condition group to a condition type.
// Unknown groups are lower-cased and passed through.
func Normalize(group string) string {
	g := strings.ToLower(strings.TrimSpace(group))
	if t, ok := groups[g]; ok {
		return t
	}
	return g
}

// Modifiers returns a copy of the gameplay modifiers for a condition type.
func Modifiers(condition string) map[string]float64 {
	src := modifiers[condition]
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
