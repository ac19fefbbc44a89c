// internal/common/database/health.go
package database

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Pinger is implemented by every backing store client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckAll pings every named dependency with a shared deadline and returns the
// failures keyed by name. A nil pinger is reported as not configured.
func CheckAll(ctx context.Context, timeout time.Duration, deps map[string]Pinger) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	failures := make(map[string]error)
	for _, name := range names {
		p := deps[name]
		if p == nil {
			failures[name] = fmt.Errorf("%s not configured", name)
			continue
		}
		if err := p.Ping(ctx); err != nil {
			failures[name] = err
		}
	}
	return failures
}
