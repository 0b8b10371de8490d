package monitor

import (
	"context"
	"testing"

	"fedvote-monitor/internal/chain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAddressMapFirstSeenWins(t *testing.T) {
	node := &fakeNode{
		height: 105,
		miners: map[uint64]string{
			100: "PKA",
			101: "PKB",
			102: "PKA",
			103: "PKC",
			104: "PKB",
		},
		blocks: map[uint64]chain.Block{
			100: blockPaying("A"),
			101: blockPaying("B"),
			102: blockPaying("A2"),
			103: blockPaying("C"),
			104: blockPaying("B2"),
		},
	}
	m := newTestMonitor(node, &fakeDAO{}, 0)

	got, err := m.ResolveAddressMap(context.Background(), 105, 5)
	require.NoError(t, err)

	// Later sightings of an already-seen key are ignored.
	assert.Equal(t, map[string]string{"A": "PKA", "B": "PKB", "C": "PKC"}, got)
}

func TestResolveAddressMapInjective(t *testing.T) {
	node := &fakeNode{
		height: 105,
		miners: map[uint64]string{100: "PKA", 101: "PKA", 102: "PKA"},
		blocks: map[uint64]chain.Block{
			100: blockPaying("A"),
			101: blockPaying("A"),
			102: blockPaying("A3"),
		},
	}
	m := newTestMonitor(node, &fakeDAO{}, 0)

	got, err := m.ResolveAddressMap(context.Background(), 105, 5)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "PKA"}, got)
}

func TestResolveAddressMapSkipsEmptyHeights(t *testing.T) {
	node := &fakeNode{
		height: 103,
		// 100: no producer known; 101: producer but no standard output.
		miners: map[uint64]string{101: "PKA", 102: "PKB"},
		blocks: map[uint64]chain.Block{
			101: {Transactions: []chain.Transaction{
				{VOut: []chain.VOut{{ScriptPubKey: chain.ScriptPubKey{Type: "nulldata"}}}},
			}},
			102: blockPaying("B"),
		},
	}
	m := newTestMonitor(node, &fakeDAO{}, 0)

	got, err := m.ResolveAddressMap(context.Background(), 103, 3)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"B": "PKB"}, got)
}

func TestLastCompletedProposalID(t *testing.T) {
	dao := &fakeDAO{
		lastID:    5,
		deadlines: map[uint32]uint64{1: 50, 2: 80, 3: 120, 4: 150, 5: 0},
	}
	m := newTestMonitor(&fakeNode{}, dao, 0)

	// Proposal 5 has no deadline set and is excluded.
	best, err := m.LastCompletedProposalID(context.Background(), 160)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), best)

	// A deadline at or above the tip is not completed.
	best, err = m.LastCompletedProposalID(context.Background(), 120)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), best)
}

func TestLastCompletedProposalIDDefaultsToOne(t *testing.T) {
	dao := &fakeDAO{lastID: 0}
	m := newTestMonitor(&fakeNode{}, dao, 0)

	best, err := m.LastCompletedProposalID(context.Background(), 160)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), best)
}

func TestFilterWhitelisted(t *testing.T) {
	dao := &fakeDAO{whitelist: map[string]bool{"A": true, "C": true}}
	m := newTestMonitor(&fakeNode{}, dao, 0)

	got, err := m.FilterWhitelisted(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, got)
}

func TestFilterEligible(t *testing.T) {
	node := &fakeNode{fedAt: map[uint64][]string{80: {"PKA"}}}
	dao := &fakeDAO{deadlines: map[uint32]uint64{3: 80}}
	m := newTestMonitor(node, dao, 0)

	// best = 5, checkpoint = deadline(3) = 80; only PKA was a member then.
	got, err := m.FilterEligible(context.Background(), []string{"A", "B"},
		map[string]string{"A": "PKA", "B": "PKB"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got)
}

func TestTabulateBucketsVotes(t *testing.T) {
	dao := &fakeDAO{
		votes: map[voteKey]uint8{
			{1, "A"}: 2,
			{2, "A"}: 1,
			// proposal 3 unset: reads as 0 (no vote cast)
		},
	}
	m := newTestMonitor(&fakeNode{}, dao, 0)

	tallies, err := m.Tabulate(context.Background(), []string{"A"}, 3)
	require.NoError(t, err)
	require.Contains(t, tallies, "A")
	assert.Equal(t, []uint32{3}, tallies["A"].NoVote)
	assert.Equal(t, []uint32{2}, tallies["A"].No)
	assert.Equal(t, []uint32{1}, tallies["A"].Yes)
}

func TestTabulateRejectsUnknownVoteCode(t *testing.T) {
	dao := &fakeDAO{votes: map[voteKey]uint8{{1, "A"}: 7}}
	m := newTestMonitor(&fakeNode{}, dao, 0)

	_, err := m.Tabulate(context.Background(), []string{"A"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown vote code 7")
}
