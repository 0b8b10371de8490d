package monitor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// tabulateConcurrency bounds the parallel per-address vote queries.
const tabulateConcurrency = 8

// VoteOutcome is a voter's recorded choice on one proposal. The integer
// values are the contract's wire encoding and must not change.
type VoteOutcome uint8

const (
	VoteNone VoteOutcome = 0 // no vote cast
	VoteNo   VoteOutcome = 1
	VoteYes  VoteOutcome = 2
)

// outcomeFromCode validates a raw wire code. Codes outside the contract's
// {0,1,2} encoding abort the run rather than being skipped.
func outcomeFromCode(code uint8) (VoteOutcome, error) {
	switch v := VoteOutcome(code); v {
	case VoteNone, VoteNo, VoteYes:
		return v, nil
	default:
		return 0, fmt.Errorf("unknown vote code %d", code)
	}
}

// VoteTally buckets one address's votes by outcome. Each list holds proposal
// ids in ascending order.
type VoteTally struct {
	NoVote []uint32
	No     []uint32
	Yes    []uint32
}

func (t *VoteTally) record(proposalID uint32, outcome VoteOutcome) {
	switch outcome {
	case VoteNone:
		t.NoVote = append(t.NoVote, proposalID)
	case VoteNo:
		t.No = append(t.No, proposalID)
	case VoteYes:
		t.Yes = append(t.Yes, proposalID)
	}
}

// Tabulate queries every (address, proposal) vote for proposals 1..best and
// buckets the outcomes per address. Addresses are queried concurrently; each
// address owns its tally, and its proposals are walked ascending, so the
// result does not depend on scheduling.
func (m *Monitor) Tabulate(ctx context.Context, addresses []string, best uint32) (map[string]*VoteTally, error) {
	tallies := make(map[string]*VoteTally, len(addresses))
	for _, addr := range addresses {
		tallies[addr] = &VoteTally{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tabulateConcurrency)
	for _, addr := range addresses {
		addr := addr
		tally := tallies[addr]
		g.Go(func() error {
			for id := uint32(1); id <= best; id++ {
				code, err := m.dao.GetVote(gctx, id, addr)
				if err != nil {
					return fmt.Errorf("query vote of %s on proposal %d: %w", addr, id, err)
				}
				outcome, err := outcomeFromCode(code)
				if err != nil {
					return fmt.Errorf("vote of %s on proposal %d: %w", addr, id, err)
				}
				tally.record(id, outcome)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tallies, nil
}
