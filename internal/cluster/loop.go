package cluster

import (
	"context"

	"github.com/google/uuid"
)

// LoopResult summarizes a convergence run.
type LoopResult struct {
	RunID          string
	FacesAssigned  int
	PersonsCreated int
	Iterations     int
	Converged      bool
}

// ClusterNewLoop alternates reconciliation and mining until a pass makes
// no assignments and mints no identities — the fixed point. Matches are
// permanent, so progress is monotonic; MaxIterations is a safety net
// against unexpected oscillation, not a correctness guarantee.
//
// A failing iteration counts as zero progress: the loop stops and returns
// the totals accumulated so far alongside the error.
func (e *Engine) ClusterNewLoop(ctx context.Context, p Params) (*LoopResult, error) {
	p = p.withDefaults()
	res := &LoopResult{RunID: uuid.NewString()}

	for i := 1; i <= p.MaxIterations; i++ {
		res.Iterations = i

		pass, err := e.ClusterNew(ctx, p)
		if err != nil {
			return res, err
		}

		res.FacesAssigned += pass.FacesAssigned
		res.PersonsCreated += pass.PersonsCreated

		if pass.FacesAssigned == 0 && pass.PersonsCreated == 0 {
			res.Converged = true
			break
		}
	}
	return res, nil
}
