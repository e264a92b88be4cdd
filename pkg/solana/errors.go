package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

// TransactionErrorKey is the string key the cluster returns for a rejected
// transaction.
//
// Source: https://github.com/solana-labs/solana/blob/fc2bf2d3b669d1c6655ae48b0a05f470938f3676/sdk/src/transaction/mod.rs#L37
type TransactionErrorKey string

const (
	TransactionErrorAccountNotFound         TransactionErrorKey = "AccountNotFound"
	TransactionErrorInsufficientFundsForFee TransactionErrorKey = "InsufficientFundsForFee"
	TransactionErrorDuplicateSignature      TransactionErrorKey = "DuplicateSignature"
	TransactionErrorBlockhashNotFound       TransactionErrorKey = "BlockhashNotFound"
	TransactionErrorInstructionError        TransactionErrorKey = "InstructionError"
	TransactionErrorSignatureFailure        TransactionErrorKey = "SignatureFailure"
	TransactionErrorUnhandled               TransactionErrorKey = "Unhandled"
)

// TransactionError is a transaction rejected by the cluster, either during
// preflight simulation or on submission.
type TransactionError struct {
	Key TransactionErrorKey

	// Set when Key is TransactionErrorInstructionError.
	InstructionIndex int
	InstructionErr   string
	CustomCode       *int

	// Program logs from preflight simulation, when the node returned them.
	Logs []string
}

func (e *TransactionError) Error() string {
	if e.Key != TransactionErrorInstructionError {
		return string(e.Key)
	}
	if e.CustomCode != nil {
		return fmt.Sprintf("error processing instruction %d: custom program error: 0x%x", e.InstructionIndex, *e.CustomCode)
	}
	return fmt.Sprintf("error processing instruction %d: %s", e.InstructionIndex, e.InstructionErr)
}

// ParseRPCError extracts a TransactionError from the data attached to an RPC
// error. A nil result means the RPC error carried no transaction error.
func ParseRPCError(err *jsonrpc.RPCError) (*TransactionError, error) {
	if err == nil {
		return nil, nil
	}

	data, ok := err.Data.(map[string]interface{})
	if !ok {
		return nil, errors.New("expected map type")
	}

	raw, ok := data["err"]
	if !ok || raw == nil {
		return nil, nil
	}

	txErr, parseErr := ParseTransactionError(raw)
	if txErr == nil {
		return nil, parseErr
	}

	if logs, ok := data["logs"].([]interface{}); ok {
		for _, l := range logs {
			if s, ok := l.(string); ok {
				txErr.Logs = append(txErr.Logs, s)
			}
		}
	}

	return txErr, parseErr
}

// ParseTransactionError parses the JSON value of an "err" field.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return &TransactionError{Key: TransactionErrorKey(t)}, nil
	case map[string]interface{}:
		if len(t) != 1 {
			return &TransactionError{Key: TransactionErrorUnhandled}, errors.Errorf("invalid transaction result size: %d", len(t))
		}

		for k, v := range t {
			if k != string(TransactionErrorInstructionError) {
				return &TransactionError{Key: TransactionErrorKey(k)}, nil
			}

			txErr := &TransactionError{Key: TransactionErrorInstructionError}
			if err := parseInstructionError(txErr, v); err != nil {
				return txErr, errors.Wrap(err, "failed to parse instruction error")
			}
			return txErr, nil
		}
	}

	return nil, errors.Errorf("unhandled error type: %T", raw)
}

// parseInstructionError parses the [index, error] tuple where error is either
// a string key or {"Custom": code}.
func parseInstructionError(txErr *TransactionError, v interface{}) (err error) {
	values, ok := v.([]interface{})
	if !ok {
		return errors.New("unexpected instruction error format")
	}
	if len(values) != 2 {
		return errors.Errorf("unexpected entries in InstructionError tuple: %d", len(values))
	}

	txErr.InstructionIndex, err = parseJSONNumber(values[0])
	if err != nil {
		return err
	}

	switch t := values[1].(type) {
	case string:
		txErr.InstructionErr = t
	case map[string]interface{}:
		for k, v := range t {
			txErr.InstructionErr = k
			if k != "Custom" {
				continue
			}

			code, err := parseJSONNumber(v)
			if err != nil {
				return err
			}
			txErr.CustomCode = &code
		}
	default:
		return errors.Errorf("unexpected instruction error value: %T", t)
	}

	return nil
}

func parseJSONNumber(v interface{}) (int, error) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, errors.Errorf("non int64 value: %v", v)
		}
		return int(n), nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, errors.Errorf("non numeric value: %v", v)
		}
		return int(n), nil
	case float64:
		return int(t), nil
	}

	return 0, errors.Errorf("non numeric value: %v", v)
}
