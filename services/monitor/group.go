package monitor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group runs independent monitors side by side, one goroutine each. They
// share nothing, a failing target never affects the others.
type Group struct {
	monitors []*Monitor
}

func (g *Group) Add(m *Monitor) {
	g.monitors = append(g.monitors, m)
}

func (g *Group) Len() int {
	return len(g.monitors)
}

// Run blocks until ctx is cancelled and every monitor has stopped.
func (g *Group) Run(ctx context.Context) error {
	var eg errgroup.Group
	for _, m := range g.monitors {
		eg.Go(func() error {
			return m.Run(ctx)
		})
	}
	return eg.Wait()
}
