package chain

import "encoding/json"

// Output script types that carry a standard pay-to-address destination.
const (
	ScriptTypePubKey     = "pubkey"
	ScriptTypePubKeyHash = "pubkeyhash"
)

// Block is the subset of the node's verbose block model the monitor consumes.
type Block struct {
	Hash         string        `json:"hash"`
	Height       uint64        `json:"height"`
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	TxID string `json:"txid"`
	VOut []VOut `json:"vout"`
}

type VOut struct {
	N            uint32       `json:"n"`
	ScriptPubKey ScriptPubKey `json:"scriptPubKey"`
}

type ScriptPubKey struct {
	Type      string   `json:"type"`
	Addresses []string `json:"addresses"`
}

// PayoutAddress returns the first standard pay-to-address destination in the
// block's first transaction, or "" when the block carries none.
func (b Block) PayoutAddress() string {
	for _, tx := range b.Transactions {
		for _, out := range tx.VOut {
			spk := out.ScriptPubKey
			if (spk.Type == ScriptTypePubKey || spk.Type == ScriptTypePubKeyHash) && len(spk.Addresses) > 0 {
				return spk.Addresses[0]
			}
		}
	}
	return ""
}

type federationMember struct {
	PubKey string `json:"pubkey"`
}

// LocalCallRequest is the node's read-only contract invocation model.
type LocalCallRequest struct {
	ContractAddress string   `json:"contractAddress"`
	MethodName      string   `json:"methodName"`
	Amount          string   `json:"amount"`
	GasPrice        uint64   `json:"gasPrice"`
	GasLimit        uint64   `json:"gasLimit"`
	Sender          string   `json:"sender"`
	Parameters      []string `json:"parameters"`
}

// LocalCallResult carries the typed return payload of a local call. Return is
// left raw; the contract layer knows the expected shape per method.
type LocalCallResult struct {
	Return       json.RawMessage `json:"return"`
	Revert       bool            `json:"revert"`
	ErrorMessage string          `json:"errorMessage"`
}
