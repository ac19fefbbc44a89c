// internal/workers/matching/notify-shortlist/config.go
package notifyshortlist

import (
	"fmt"
	"time"

	"pawmatch-workers/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	EmailEnabled  bool
	FromEmail     string
	Subject       string
	EventsEnabled bool
	TopicARN      string
	MaxMatches    int
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:    15 * time.Second,
		Subject:    "Your pet matches are ready",
		MaxMatches: 5,
	}
}

// ConfigFrom builds the worker config from the notifications section.
func ConfigFrom(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if w := config.GetWorkerConfig(cfg, TaskType); w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	n := cfg.Notifications
	c.EmailEnabled = n.Email.Enabled
	c.FromEmail = n.Email.FromEmail
	if n.Email.Subject != "" {
		c.Subject = n.Email.Subject
	}
	c.EventsEnabled = n.Events.Enabled
	c.TopicARN = n.Events.TopicARN
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.EmailEnabled && c.FromEmail == "" {
		return fmt.Errorf("from_email is required when email is enabled")
	}
	if c.EventsEnabled && c.TopicARN == "" {
		return fmt.Errorf("topic_arn is required when events are enabled")
	}
	if c.MaxMatches <= 0 {
		return fmt.Errorf("max_matches must be positive")
	}
	return nil
}
