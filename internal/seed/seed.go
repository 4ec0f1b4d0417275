// Package seed generates example IR swap trades for demos and tests.
//
// Output is deterministic for a given seed and base date, so seeded stores
// can back golden snapshots.
package seed

import (
	"fmt"

	"github.com/roach88/tcstore/internal/audit"
	"github.com/roach88/tcstore/internal/trade"
)

// Load generates n trades and saves each through svc.SaveNew under octx.
// Returns the ids in generation order. Stops at the first failure; trades
// saved before it remain.
func Load(svc *trade.Service, g *Generator, n int, octx audit.Context) ([]string, error) {
	trades, err := g.Trades(n)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(trades))
	for _, t := range trades {
		if _, err := svc.SaveNew(t.ID, t.Data, octx); err != nil {
			return ids, fmt.Errorf("seed %s: %w", t.ID, err)
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}
