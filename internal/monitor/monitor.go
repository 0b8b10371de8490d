// Package monitor implements the federation vote audit: it associates signing
// keys with payout addresses, finds the completed governance proposals,
// tabulates each eligible member's votes and reports the members that
// abstained on the last three completed proposals.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"fedvote-monitor/internal/chain"
	"fedvote-monitor/internal/logger"
)

// ErrInsufficientHistory is returned when fewer than three proposals have
// completed, so "the last three completed proposals" is not yet a meaningful
// question.
var ErrInsufficientHistory = errors.New("fewer than 3 completed proposals")

// NodeClient is the node query surface the monitor consumes.
type NodeClient interface {
	BlockCount(ctx context.Context) (uint64, error)
	MinerAtHeight(ctx context.Context, height uint64) (string, error)
	BlockAtHeight(ctx context.Context, height uint64) (chain.Block, error)
	FederationMembers(ctx context.Context) ([]string, error)
	FederationAtHeight(ctx context.Context, height uint64) ([]string, error)
}

// DAOReader is the governance contract's read-only surface.
type DAOReader interface {
	IsWhitelisted(ctx context.Context, address string) (bool, error)
	GetVote(ctx context.Context, proposalID uint32, address string) (uint8, error)
	LastProposalId(ctx context.Context) (uint32, error)
	GetVotingDeadline(ctx context.Context, proposalID uint32) (uint64, error)
}

// Monitor runs the audit pipeline. It holds no state between runs; every Run
// recomputes everything from current chain state.
type Monitor struct {
	node     NodeClient
	dao      DAOReader
	log      *logger.Logger
	lookback uint64 // 0 = derive from federation size
}

func New(node NodeClient, dao DAOReader, log *logger.Logger, lookback uint64) *Monitor {
	return &Monitor{
		node:     node,
		dao:      dao,
		log:      log,
		lookback: lookback,
	}
}

// Result is the outcome of one full audit run.
type Result struct {
	Report         string   // markdown report, ready for delivery
	Flagged        []string // flagged fedkeys, lexicographically sorted
	ChainHeight    uint64
	BestProposalID uint32 // highest completed proposal id
	Lookback       uint64 // block window actually scanned
}

// Run executes the full pipeline once. Any node or contract failure aborts
// the run; no partial report is produced.
func (m *Monitor) Run(ctx context.Context) (Result, error) {
	members, err := m.node.FederationMembers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("query federation: %w", err)
	}

	// Every member is expected to produce at least one block in 3x the
	// federation size worth of slots. A member that produced no block in the
	// window stays invisible to this run; raise the lookback for sensitivity.
	lookback := m.lookback
	if lookback == 0 {
		lookback = 3 * uint64(len(members))
	}

	tip, err := m.node.BlockCount(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("query chain height: %w", err)
	}
	m.log.Printf("audit run: height=%d members=%d lookback=%d", tip, len(members), lookback)

	addrToFedkey, err := m.ResolveAddressMap(ctx, tip, lookback)
	if err != nil {
		return Result{}, err
	}
	m.log.Printf("resolved %d payout addresses", len(addrToFedkey))

	best, err := m.LastCompletedProposalID(ctx, tip)
	if err != nil {
		return Result{}, err
	}
	if best < 3 {
		return Result{}, fmt.Errorf("%w (highest completed id %d)", ErrInsufficientHistory, best)
	}
	m.log.Printf("highest completed proposal: %d", best)

	addresses := make([]string, 0, len(addrToFedkey))
	for addr := range addrToFedkey {
		addresses = append(addresses, addr)
	}
	// Map iteration order is random; keep query order reproducible.
	sort.Strings(addresses)

	whitelisted, err := m.FilterWhitelisted(ctx, addresses)
	if err != nil {
		return Result{}, err
	}
	m.log.Printf("%d of %d addresses whitelisted", len(whitelisted), len(addresses))

	eligible, err := m.FilterEligible(ctx, whitelisted, addrToFedkey, best)
	if err != nil {
		return Result{}, err
	}
	m.log.Printf("%d addresses eligible at checkpoint", len(eligible))

	tallies, err := m.Tabulate(ctx, eligible, best)
	if err != nil {
		return Result{}, err
	}

	flagged := FlagDelinquents(tallies, addrToFedkey, best)

	return Result{
		Report:         FormatReport(flagged),
		Flagged:        flagged,
		ChainHeight:    tip,
		BestProposalID: best,
		Lookback:       lookback,
	}, nil
}
