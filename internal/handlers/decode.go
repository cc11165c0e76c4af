package handlers

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

// decodeLog unpacks both the indexed topics and the data section of a log
// into a name-keyed map.
func decodeLog(event abi.Event, log types.Log) (map[string]interface{}, error) {
	indexed := indexedArguments(event.Inputs)
	if len(log.Topics) != len(indexed)+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", len(indexed)+1, len(log.Topics))
	}

	out := make(map[string]interface{})
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(out, indexed, log.Topics[1:]); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
	}
	if len(log.Data) > 0 {
		values, err := event.Inputs.NonIndexed().Unpack(log.Data)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
		}
		for i, arg := range event.Inputs.NonIndexed() {
			out[arg.Name] = values[i]
		}
	}
	return out, nil
}

func asAddress(value interface{}) (common.Address, error) {
	address, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("expected address, got %T", value)
	}
	return address, nil
}

func asHash(value interface{}) (common.Hash, error) {
	switch typed := value.(type) {
	case [32]byte:
		return common.Hash(typed), nil
	case common.Hash:
		return typed, nil
	default:
		return common.Hash{}, fmt.Errorf("expected bytes32, got %T", value)
	}
}

// convert maps an anonymous ABI tuple value onto a concrete struct with
// matching field names. abi.ConvertType panics on shape mismatch; that is
// turned into an error so a malformed log stays a per-event failure.
func convert[T any](value interface{}) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected tuple shape %T: %v", value, r)
		}
	}()
	converted := abi.ConvertType(value, new(T))
	typed, ok := converted.(*T)
	if !ok {
		return result, fmt.Errorf("unexpected tuple shape %T", value)
	}
	return *typed, nil
}
