// Package chain is a thin REST client for the Cirrus node API. It carries no
// monitoring logic; every method is a single blocking query whose failure is
// fatal to the caller's run.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// BlockCount returns the current chain height.
func (c *Client) BlockCount(ctx context.Context) (uint64, error) {
	var count uint64
	if err := c.getJSON(ctx, "/api/BlockStore/getblockcount", nil, &count); err != nil {
		return 0, fmt.Errorf("get block count: %w", err)
	}
	return count, nil
}

// MinerAtHeight returns the signing key of the block producer at the given
// height, or "" when the node does not know the producer. An unknown producer
// is not an error; the height simply contributes nothing to the scan.
func (c *Client) MinerAtHeight(ctx context.Context, height uint64) (string, error) {
	q := url.Values{"blockHeight": {fmt.Sprintf("%d", height)}}
	var pubkey string
	if err := c.getJSON(ctx, "/api/Federation/mineratheight", q, &pubkey); err != nil {
		return "", fmt.Errorf("miner at height %d: %w", height, err)
	}
	return pubkey, nil
}

// BlockAtHeight fetches the block at the given height with full transaction
// detail. The node addresses blocks by hash, so this is two queries.
func (c *Client) BlockAtHeight(ctx context.Context, height uint64) (Block, error) {
	q := url.Values{"height": {fmt.Sprintf("%d", height)}}
	var hash string
	if err := c.getJSON(ctx, "/api/Consensus/getblockhash", q, &hash); err != nil {
		return Block{}, fmt.Errorf("get block hash at %d: %w", height, err)
	}

	q = url.Values{
		"Hash":                   {hash},
		"OutputJson":             {"true"},
		"ShowTransactionDetails": {"true"},
	}
	var blk Block
	if err := c.getJSON(ctx, "/api/BlockStore/block", q, &blk); err != nil {
		return Block{}, fmt.Errorf("get block %s: %w", hash, err)
	}
	return blk, nil
}

// FederationMembers returns the signing keys of the current federation.
func (c *Client) FederationMembers(ctx context.Context) ([]string, error) {
	var members []federationMember
	if err := c.getJSON(ctx, "/api/Federation/members/current", nil, &members); err != nil {
		return nil, fmt.Errorf("get federation members: %w", err)
	}
	keys := make([]string, 0, len(members))
	for _, m := range members {
		if m.PubKey != "" {
			keys = append(keys, m.PubKey)
		}
	}
	return keys, nil
}

// FederationAtHeight returns the signing keys of the federation as it stood at
// a historical height.
func (c *Client) FederationAtHeight(ctx context.Context, height uint64) ([]string, error) {
	q := url.Values{"blockHeight": {fmt.Sprintf("%d", height)}}
	var keys []string
	if err := c.getJSON(ctx, "/api/Federation/federationatheight", q, &keys); err != nil {
		return nil, fmt.Errorf("get federation at height %d: %w", height, err)
	}
	return keys, nil
}

// LocalCall executes a read-only smart contract call on the node. A reverted
// call or a call with an error message is returned as an error; the contract
// protocol here has no legitimate reverting reads.
func (c *Client) LocalCall(ctx context.Context, req LocalCallRequest) (LocalCallResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return LocalCallResult{}, fmt.Errorf("marshal local call: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/SmartContracts/local-call", bytes.NewReader(body))
	if err != nil {
		return LocalCallResult{}, fmt.Errorf("build local call request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return LocalCallResult{}, fmt.Errorf("local call %s: %w", req.MethodName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return LocalCallResult{}, fmt.Errorf("local call %s: node returned %s: %s", req.MethodName, resp.Status, strings.TrimSpace(string(snippet)))
	}

	var res LocalCallResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return LocalCallResult{}, fmt.Errorf("decode local call %s response: %w", req.MethodName, err)
	}
	if res.Revert {
		return LocalCallResult{}, fmt.Errorf("local call %s reverted", req.MethodName)
	}
	if res.ErrorMessage != "" {
		return LocalCallResult{}, fmt.Errorf("local call %s failed: %s", req.MethodName, res.ErrorMessage)
	}
	return res, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("node returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
