// internal/workers/matching/rank-candidates/config.go
package rankcandidates

import (
	"fmt"
	"time"

	"pawmatch-workers/internal/common/config"
)

type Config struct {
	Timeout           time.Duration
	TopK              int
	MinScore          float64
	SearchRadiusMiles int
	SearchLimit       int
	PreferenceFilter  bool
	PersistMatches    bool
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:           10 * time.Second,
		TopK:              10,
		MinScore:          0.5,
		SearchRadiusMiles: 50,
		SearchLimit:       100,
		PreferenceFilter:  true,
		PersistMatches:    true,
	}
}

// ConfigFrom builds the worker config from the service configuration.
func ConfigFrom(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if w := config.GetWorkerConfig(cfg, TaskType); w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	m := cfg.Matching
	if m.TopK > 0 {
		c.TopK = m.TopK
	}
	c.MinScore = m.MinScore
	if m.SearchRadiusMiles > 0 {
		c.SearchRadiusMiles = m.SearchRadiusMiles
	}
	if m.SearchLimit > 0 {
		c.SearchLimit = m.SearchLimit
	}
	c.PreferenceFilter = m.PreferenceFilter
	c.PersistMatches = m.PersistMatches
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min_score must be between 0 and 1")
	}
	return nil
}
