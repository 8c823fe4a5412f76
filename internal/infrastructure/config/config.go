package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/doctoshotgun/internal/domain/booking"
)

const envPrefix = "DOCTOSHOTGUN"

// DefaultMotivePattern selects first-dose motives of the mRNA and vector
// vaccines.
const DefaultMotivePattern = `.*(Pfizer|Moderna|Janssen)`

// DefaultRefMotiveIDs are the visit motive ids the city search is
// filtered with.
var DefaultRefMotiveIDs = []string{"6768", "6936", "7109", "7978"}

// DefaultFallbackCenters are appended to the search results of a city.
// Berlin's vaccination centers are not listed by the search.
var DefaultFallbackCenters = map[string][]booking.Center{
	"berlin": {{
		NameWithTitle: "Corona Impfzentren - Berlin",
		URL:           "/institut/berlin/ciz-berlin-berlin",
	}},
}

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Rate caps requests per second; 0 means unlimited.
	Rate float64

	Pause             time.Duration
	MotivePattern     *regexp.Regexp
	RefMotiveIDs      []string
	AvailabilityLimit int
	FallbackCenters   map[string][]booking.Center

	Debug        bool
	PatientIndex int
}

// Load reads flags first, then DOCTOSHOTGUN_* environment variables, then
// defaults. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("base-url", "https://www.doctolib.de")
	v.SetDefault("user-agent", "")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("rate", 0.0)
	v.SetDefault("pause", time.Second)
	v.SetDefault("motive-pattern", DefaultMotivePattern)
	v.SetDefault("ref-motive-ids", DefaultRefMotiveIDs)
	v.SetDefault("availability-limit", 4)
	v.SetDefault("debug", false)
	v.SetDefault("patient", -1)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := Config{
		BaseURL:           strings.TrimRight(strings.TrimSpace(v.GetString("base-url")), "/"),
		UserAgent:         v.GetString("user-agent"),
		Timeout:           v.GetDuration("timeout"),
		Rate:              v.GetFloat64("rate"),
		Pause:             v.GetDuration("pause"),
		RefMotiveIDs:      v.GetStringSlice("ref-motive-ids"),
		AvailabilityLimit: v.GetInt("availability-limit"),
		FallbackCenters:   DefaultFallbackCenters,
		Debug:             v.GetBool("debug"),
		PatientIndex:      v.GetInt("patient"),
	}

	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("%s_BASE_URL must not be empty", envPrefix)
	}
	if cfg.Timeout <= 0 {
		return Config{}, fmt.Errorf("invalid %s_TIMEOUT", envPrefix)
	}
	if cfg.Pause < 0 {
		return Config{}, fmt.Errorf("invalid %s_PAUSE", envPrefix)
	}
	if cfg.Rate < 0 {
		return Config{}, fmt.Errorf("invalid %s_RATE", envPrefix)
	}
	if cfg.AvailabilityLimit < 1 {
		return Config{}, fmt.Errorf("%s_AVAILABILITY_LIMIT must be >= 1", envPrefix)
	}
	re, err := regexp.Compile(v.GetString("motive-pattern"))
	if err != nil {
		return Config{}, fmt.Errorf("%s_MOTIVE_PATTERN: %w", envPrefix, err)
	}
	cfg.MotivePattern = re

	return cfg, nil
}
