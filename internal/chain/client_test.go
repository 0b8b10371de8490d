package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestBlockCount(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"/api/BlockStore/getblockcount": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("1048576"))
		},
	})

	count, err := c.BlockCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1048576), count)
}

func TestMinerAtHeight(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"/api/Federation/mineratheight": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1200", r.URL.Query().Get("blockHeight"))
			w.Write([]byte(`"02d56f"`))
		},
	})

	pubkey, err := c.MinerAtHeight(context.Background(), 1200)
	require.NoError(t, err)
	assert.Equal(t, "02d56f", pubkey)
}

func TestBlockAtHeight(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"/api/Consensus/getblockhash": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1200", r.URL.Query().Get("height"))
			w.Write([]byte(`"deadbeef"`))
		},
		"/api/BlockStore/block": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "deadbeef", r.URL.Query().Get("Hash"))
			assert.Equal(t, "true", r.URL.Query().Get("OutputJson"))
			json.NewEncoder(w).Encode(Block{
				Hash:   "deadbeef",
				Height: 1200,
				Transactions: []Transaction{
					{VOut: []VOut{
						{ScriptPubKey: ScriptPubKey{Type: ScriptTypePubKeyHash, Addresses: []string{"CaddrX"}}},
					}},
				},
			})
		},
	})

	blk, err := c.BlockAtHeight(context.Background(), 1200)
	require.NoError(t, err)
	assert.Equal(t, "CaddrX", blk.PayoutAddress())
}

func TestLocalCallRevertIsError(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"/api/SmartContracts/local-call": func(w http.ResponseWriter, r *http.Request) {
			var req LocalCallRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "GetVote", req.MethodName)
			json.NewEncoder(w).Encode(LocalCallResult{Revert: true})
		},
	})

	_, err := c.LocalCall(context.Background(), LocalCallRequest{MethodName: "GetVote"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reverted")
}

func TestNodeErrorStatusIsError(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"/api/BlockStore/getblockcount": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "node still syncing", http.StatusInternalServerError)
		},
	})

	_, err := c.BlockCount(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node still syncing")
}

func TestPayoutAddressSkipsNonStandardOutputs(t *testing.T) {
	blk := Block{
		Transactions: []Transaction{
			{VOut: []VOut{
				{ScriptPubKey: ScriptPubKey{Type: "nulldata"}},
				{ScriptPubKey: ScriptPubKey{Type: ScriptTypePubKey, Addresses: []string{"CaddrY"}}},
			}},
		},
	}
	assert.Equal(t, "CaddrY", blk.PayoutAddress())

	empty := Block{Transactions: []Transaction{{VOut: []VOut{{ScriptPubKey: ScriptPubKey{Type: "nonstandard"}}}}}}
	assert.Equal(t, "", empty.PayoutAddress())
}
