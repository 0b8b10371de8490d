package monitor

import (
	"context"
	"fmt"
)

// LastCompletedProposalID returns the highest proposal id whose voting
// deadline has passed. A proposal is completed iff its deadline height is
// nonzero and strictly below the current chain height. Defaults to 1 when no
// proposal qualifies; callers decide what an under-populated history means.
func (m *Monitor) LastCompletedProposalID(ctx context.Context, tip uint64) (uint32, error) {
	highest, err := m.dao.LastProposalId(ctx)
	if err != nil {
		return 0, fmt.Errorf("query last proposal id: %w", err)
	}

	best := uint32(1)
	for id := uint32(1); id <= highest; id++ {
		deadline, err := m.dao.GetVotingDeadline(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("query deadline of proposal %d: %w", id, err)
		}
		if deadline != 0 && deadline < tip {
			best = id
		}
	}
	return best, nil
}
