package chain

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// CallFrame is one node of a callTracer trace.
type CallFrame struct {
	Type   string         `json:"type"`
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Value  *hexutil.Big   `json:"value,omitempty"`
	Input  hexutil.Bytes  `json:"input"`
	Output hexutil.Bytes  `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
	Calls  []CallFrame    `json:"calls,omitempty"`
}

// SearchCall walks the trace depth-first and returns the nth call (0-based)
// whose input starts with the given 4-byte selector. Reverted frames are
// skipped. Returns nil when fewer than n+1 matches exist.
func SearchCall(frame *CallFrame, selector []byte, n int) *CallFrame {
	if frame == nil {
		return nil
	}
	match, _ := searchCall(frame, selector, n)
	return match
}

func searchCall(frame *CallFrame, selector []byte, remaining int) (*CallFrame, int) {
	if frame.Error == "" && len(frame.Input) >= 4 && bytes.Equal(frame.Input[:4], selector) {
		if remaining == 0 {
			return frame, 0
		}
		remaining--
	}
	for i := range frame.Calls {
		match, left := searchCall(&frame.Calls[i], selector, remaining)
		if match != nil {
			return match, 0
		}
		remaining = left
	}
	return nil, remaining
}
