package monitor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// resolverConcurrency bounds the parallel height fetches during the scan.
const resolverConcurrency = 8

// keyAddressPair is one scanned height's producer key and payout address.
// Either field may be empty when the node has no data for the height.
type keyAddressPair struct {
	fedkey  string
	address string
}

// ResolveAddressMap scans the blocks in [tip-lookback, tip) and returns a map
// from payout address to the signing key that produced blocks paying it.
//
// Heights are fetched concurrently but reconciled in one ascending pass with
// first-seen-wins per key, so the result is deterministic for a fixed chain
// state and window. Keys that produced no block in the window are absent.
func (m *Monitor) ResolveAddressMap(ctx context.Context, tip, lookback uint64) (map[string]string, error) {
	start := uint64(0)
	if tip > lookback {
		start = tip - lookback
	}

	pairs := make([]keyAddressPair, tip-start)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolverConcurrency)
	for height := start; height < tip; height++ {
		height := height
		g.Go(func() error {
			pair, err := m.scanHeight(gctx, height)
			if err != nil {
				return err
			}
			pairs[height-start] = pair
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Ascending pass: the earliest sighting of a key in the window wins.
	fedkeyToAddress := make(map[string]string)
	for _, p := range pairs {
		if p.fedkey == "" || p.address == "" {
			continue
		}
		if _, seen := fedkeyToAddress[p.fedkey]; !seen {
			fedkeyToAddress[p.fedkey] = p.address
		}
	}

	// Invert to address -> fedkey. The intermediate map records one address
	// per key, so the inverse maps each address to exactly one key.
	addressToFedkey := make(map[string]string, len(fedkeyToAddress))
	for fedkey, address := range fedkeyToAddress {
		addressToFedkey[address] = fedkey
	}
	return addressToFedkey, nil
}

// scanHeight resolves the producer key and the first standard pay-to-address
// output of the block at height. A height with no known producer contributes
// nothing; that is not an error.
func (m *Monitor) scanHeight(ctx context.Context, height uint64) (keyAddressPair, error) {
	fedkey, err := m.node.MinerAtHeight(ctx, height)
	if err != nil {
		return keyAddressPair{}, fmt.Errorf("scan height %d: %w", height, err)
	}
	if fedkey == "" {
		return keyAddressPair{}, nil
	}

	blk, err := m.node.BlockAtHeight(ctx, height)
	if err != nil {
		return keyAddressPair{}, fmt.Errorf("scan height %d: %w", height, err)
	}
	return keyAddressPair{fedkey: fedkey, address: blk.PayoutAddress()}, nil
}
