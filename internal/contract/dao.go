// Package contract wraps the governance (SDA DAO) contract's read-only
// methods. Method names, parameter typing and the gas pair are a fixed
// external protocol; changing any of them breaks the calls.
package contract

import (
	"context"
	"encoding/json"
	"fmt"

	"fedvote-monitor/internal/chain"
)

// Smart contract parameter type codes, as serialized in local-call parameters.
const (
	ParamBool    = 1
	ParamUInt32  = 5
	ParamUInt64  = 7
	ParamAddress = 9
)

// Fixed gas pair used for every read-only call.
const (
	localCallGasPrice = 100
	localCallGasLimit = 250000
)

// Caller is the local-call surface the DAO wrapper needs from the node client.
type Caller interface {
	LocalCall(ctx context.Context, req chain.LocalCallRequest) (chain.LocalCallResult, error)
}

// DAO issues read-only calls against one governance contract on behalf of a
// fixed sender address.
type DAO struct {
	caller   Caller
	contract string
	sender   string
}

func NewDAO(caller Caller, contractAddress, senderAddress string) *DAO {
	return &DAO{
		caller:   caller,
		contract: contractAddress,
		sender:   senderAddress,
	}
}

// EncodeParam serializes one typed smart contract parameter as the node
// expects it: "<typeCode>#<value>".
func EncodeParam(typeCode int, value string) string {
	return fmt.Sprintf("%d#%s", typeCode, value)
}

func (d *DAO) call(ctx context.Context, method string, params []string, out interface{}) error {
	res, err := d.caller.LocalCall(ctx, chain.LocalCallRequest{
		ContractAddress: d.contract,
		MethodName:      method,
		Amount:          "0",
		GasPrice:        localCallGasPrice,
		GasLimit:        localCallGasLimit,
		Sender:          d.sender,
		Parameters:      params,
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res.Return, out); err != nil {
		return fmt.Errorf("decode %s return value %q: %w", method, res.Return, err)
	}
	return nil
}

// IsWhitelisted reports whether an address is authorized to vote.
func (d *DAO) IsWhitelisted(ctx context.Context, address string) (bool, error) {
	var whitelisted bool
	err := d.call(ctx, "IsWhitelisted", []string{
		EncodeParam(ParamAddress, address),
	}, &whitelisted)
	return whitelisted, err
}

// GetVote returns the raw wire code of an address's vote on a proposal:
// 0 = no vote cast, 1 = no, 2 = yes.
func (d *DAO) GetVote(ctx context.Context, proposalID uint32, address string) (uint8, error) {
	var code uint8
	err := d.call(ctx, "GetVote", []string{
		EncodeParam(ParamUInt32, fmt.Sprintf("%d", proposalID)),
		EncodeParam(ParamAddress, address),
	}, &code)
	return code, err
}

// LastProposalId returns the highest proposal id known to the contract.
// Proposal ids are 1-indexed.
func (d *DAO) LastProposalId(ctx context.Context) (uint32, error) {
	var id uint32
	err := d.call(ctx, "LastProposalId", nil, &id)
	return id, err
}

// GetVotingDeadline returns the ending block height of a proposal's voting
// window. Zero means the proposal has no deadline set.
func (d *DAO) GetVotingDeadline(ctx context.Context, proposalID uint32) (uint64, error) {
	var deadline uint64
	err := d.call(ctx, "GetVotingDeadline", []string{
		EncodeParam(ParamUInt32, fmt.Sprintf("%d", proposalID)),
	}, &deadline)
	return deadline, err
}
