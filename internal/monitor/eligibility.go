package monitor

import (
	"context"
	"fmt"
)

// FilterWhitelisted keeps the addresses the governance contract currently
// authorizes to vote. One independent read call per address; input order is
// preserved.
func (m *Monitor) FilterWhitelisted(ctx context.Context, addresses []string) ([]string, error) {
	whitelisted := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		ok, err := m.dao.IsWhitelisted(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("whitelist check %s: %w", addr, err)
		}
		if ok {
			whitelisted = append(whitelisted, addr)
		}
	}
	return whitelisted, nil
}

// FilterEligible keeps the addresses whose signing key was a federation
// member when the third-to-last completed proposal's voting window closed.
// A member that joined after that checkpoint could not have voted in any of
// the last three rounds and must not be flagged for them.
func (m *Monitor) FilterEligible(ctx context.Context, addresses []string, addrToFedkey map[string]string, best uint32) ([]string, error) {
	checkpoint, err := m.dao.GetVotingDeadline(ctx, best-2)
	if err != nil {
		return nil, fmt.Errorf("query eligibility checkpoint: %w", err)
	}

	federation, err := m.node.FederationAtHeight(ctx, checkpoint)
	if err != nil {
		return nil, fmt.Errorf("query federation at checkpoint %d: %w", checkpoint, err)
	}
	memberSet := make(map[string]struct{}, len(federation))
	for _, fedkey := range federation {
		memberSet[fedkey] = struct{}{}
	}

	eligible := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if _, ok := memberSet[addrToFedkey[addr]]; ok {
			eligible = append(eligible, addr)
		}
	}
	return eligible, nil
}
