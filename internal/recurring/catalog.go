package recurring

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/osse101/liveops/internal/domain"
	"github.com/osse101/liveops/internal/validation"
)

// Template describes one auto-created event
type Template struct {
	Title        string             `koanf:"title"`
	Description  string             `koanf:"description"`
	Requirements map[string]float64 `koanf:"requirements"`
	Rewards      map[string]int64   `koanf:"rewards"`
}

// DailyCatalog rotates its templates by day of year
type DailyCatalog struct {
	Priority  int        `koanf:"priority"`
	Templates []Template `koanf:"templates"`
}

// WeeklyCatalog is the weekly tournament; rewards are ranked tiers
type WeeklyCatalog struct {
	Title        string                      `koanf:"title"`
	Description  string                      `koanf:"description"`
	Priority     int                         `koanf:"priority"`
	Requirements map[string]float64          `koanf:"requirements"`
	Rewards      map[string]map[string]int64 `koanf:"rewards"`
}

// SeasonalCatalog titles are "<Season> <TitleSuffix>"
type SeasonalCatalog struct {
	TitleSuffix  string             `koanf:"title_suffix"`
	Description  string             `koanf:"description"`
	Priority     int                `koanf:"priority"`
	Requirements map[string]float64 `koanf:"requirements"`
	Rewards      map[string]int64   `koanf:"rewards"`
}

// WeatherCatalog rewards are keyed by condition type with a "default" fallback
type WeatherCatalog struct {
	Duration     time.Duration               `koanf:"duration"`
	Priority     int                         `koanf:"priority"`
	Requirements map[string]float64          `koanf:"requirements"`
	Rewards      map[string]map[string]int64 `koanf:"rewards"`
}

// SpecialCatalog offers are picked uniformly at random
type SpecialCatalog struct {
	MinDuration time.Duration `koanf:"min_duration"`
	MaxDuration time.Duration `koanf:"max_duration"`
	Priority    int           `koanf:"priority"`
	Offers      []Template    `koanf:"offers"`
}

// PatternCatalog configures RRULE-driven occurrences
type PatternCatalog struct {
	OccurrenceDuration time.Duration `koanf:"occurrence_duration"`
}

// Catalog is the recurring-event configuration
type Catalog struct {
	Daily    DailyCatalog    `koanf:"daily"`
	Weekly   WeeklyCatalog   `koanf:"weekly"`
	Seasonal SeasonalCatalog `koanf:"seasonal"`
	Weather  WeatherCatalog  `koanf:"weather"`
	Special  SpecialCatalog  `koanf:"special"`
	Pattern  PatternCatalog  `koanf:"pattern"`
}

// DefaultCatalog is used for every section the catalog file leaves out
func DefaultCatalog() Catalog {
	return Catalog{
		Daily: DailyCatalog{
			Priority: 10,
			Templates: []Template{
				{
					Title:        "Level Rush",
					Description:  "Clear five levels before midnight UTC.",
					Requirements: map[string]float64{"levels_completed": 5},
					Rewards:      map[string]int64{"coins": 100},
				},
				{
					Title:        "Collector",
					Description:  "Gather resources across any level.",
					Requirements: map[string]float64{"items_collected": 50},
					Rewards:      map[string]int64{"coins": 80, "gems": 2},
				},
				{
					Title:        "Sharpshooter",
					Description:  "Land precise hits in a single day.",
					Requirements: map[string]float64{"perfect_hits": 25},
					Rewards:      map[string]int64{"coins": 120},
				},
			},
		},
		Weekly: WeeklyCatalog{
			Title:        "Weekly Tournament",
			Description:  "Climb the leaderboard before Monday.",
			Priority:     50,
			Requirements: map[string]float64{"matches_played": 10},
			Rewards: map[string]map[string]int64{
				"first":                        {"coins": 5000, "gems": 50},
				"second":                       {"coins": 2500, "gems": 25},
				"third":                        {"coins": 1000, "gems": 10},
				domain.RewardTierParticipation: {"coins": 100},
			},
		},
		Seasonal: SeasonalCatalog{
			TitleSuffix:  "Festival",
			Description:  "A month-long seasonal celebration.",
			Priority:     30,
			Requirements: map[string]float64{"seasonal_tokens": 100},
			Rewards:      map[string]int64{"coins": 2000, "gems": 20},
		},
		Weather: WeatherCatalog{
			Duration:     4 * time.Hour,
			Priority:     40,
			Requirements: map[string]float64{"weather_levels": 3},
			Rewards: map[string]map[string]int64{
				"rain":         {"coins": 150},
				"snow":         {"coins": 200, "gems": 2},
				"thunderstorm": {"coins": 300, "gems": 5},
				"fog":          {"coins": 120},
				"clouds":       {"coins": 100},
				"default":      {"coins": 100},
			},
		},
		Special: SpecialCatalog{
			MinDuration: time.Hour,
			MaxDuration: 3 * time.Hour,
			Priority:    60,
			Offers: []Template{
				{
					Title:        "Double Coins Hour",
					Requirements: map[string]float64{"levels_completed": 1},
					Rewards:      map[string]int64{"coins": 200},
				},
				{
					Title:        "Gem Rush",
					Requirements: map[string]float64{"levels_completed": 3},
					Rewards:      map[string]int64{"gems": 10},
				},
				{
					Title:        "Booster Bonanza",
					Requirements: map[string]float64{"boosters_used": 2},
					Rewards:      map[string]int64{"boosters": 3},
				},
			},
		},
		Pattern: PatternCatalog{
			OccurrenceDuration: time.Hour,
		},
	}
}

// withDefaults fills every empty section or field from DefaultCatalog
func (c Catalog) withDefaults() Catalog {
	d := DefaultCatalog()

	if len(c.Daily.Templates) == 0 {
		c.Daily.Templates = d.Daily.Templates
	}
	if c.Daily.Priority == 0 {
		c.Daily.Priority = d.Daily.Priority
	}

	if c.Weekly.Title == "" {
		c.Weekly.Title = d.Weekly.Title
		c.Weekly.Description = d.Weekly.Description
	}
	if c.Weekly.Priority == 0 {
		c.Weekly.Priority = d.Weekly.Priority
	}
	if len(c.Weekly.Requirements) == 0 {
		c.Weekly.Requirements = d.Weekly.Requirements
	}
	if len(c.Weekly.Rewards) == 0 {
		c.Weekly.Rewards = d.Weekly.Rewards
	}

	if c.Seasonal.TitleSuffix == "" {
		c.Seasonal.TitleSuffix = d.Seasonal.TitleSuffix
	}
	if c.Seasonal.Description == "" {
		c.Seasonal.Description = d.Seasonal.Description
	}
	if c.Seasonal.Priority == 0 {
		c.Seasonal.Priority = d.Seasonal.Priority
	}
	if len(c.Seasonal.Requirements) == 0 {
		c.Seasonal.Requirements = d.Seasonal.Requirements
	}
	if len(c.Seasonal.Rewards) == 0 {
		c.Seasonal.Rewards = d.Seasonal.Rewards
	}

	if c.Weather.Duration <= 0 {
		c.Weather.Duration = d.Weather.Duration
	}
	if c.Weather.Priority == 0 {
		c.Weather.Priority = d.Weather.Priority
	}
	if len(c.Weather.Requirements) == 0 {
		c.Weather.Requirements = d.Weather.Requirements
	}
	if len(c.Weather.Rewards) == 0 {
		c.Weather.Rewards = d.Weather.Rewards
	}

	if c.Special.MinDuration <= 0 {
		c.Special.MinDuration = d.Special.MinDuration
	}
	if c.Special.MaxDuration <= 0 {
		c.Special.MaxDuration = d.Special.MaxDuration
	}
	if c.Special.MaxDuration < c.Special.MinDuration {
		c.Special.MaxDuration = c.Special.MinDuration
	}
	if c.Special.Priority == 0 {
		c.Special.Priority = d.Special.Priority
	}
	if len(c.Special.Offers) == 0 {
		c.Special.Offers = d.Special.Offers
	}

	if c.Pattern.OccurrenceDuration <= 0 {
		c.Pattern.OccurrenceDuration = d.Pattern.OccurrenceDuration
	}
	return c
}

// LoadCatalog reads the YAML catalog at path, validates it against the
// embedded schema and applies CATALOG_* environment overrides
// (CATALOG_WEATHER__DURATION=2h sets weather.duration). A missing file
// yields the defaults.
func LoadCatalog(path string, schemas validation.SchemaValidator) (Catalog, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Catalog{}, fmt.Errorf("%s: %w", ErrMsgCatalogLoad, err)
			}
			if schemas != nil {
				if err := schemas.ValidateDocument(k.Raw(), validation.SchemaEventCatalog); err != nil {
					return Catalog{}, fmt.Errorf("%s %s: %w", ErrMsgCatalogInvalid, path, err)
				}
			}
		} else if !os.IsNotExist(err) {
			return Catalog{}, fmt.Errorf("%s: %w", ErrMsgCatalogLoad, err)
		}
	}

	envProvider := env.Provider(CatalogEnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, CatalogEnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", ErrMsgCatalogLoad, err)
	}

	var c Catalog
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Catalog{}, fmt.Errorf("%s: %w", ErrMsgCatalogDecode, err)
	}
	return c.withDefaults(), nil
}
