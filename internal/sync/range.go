package sync

import "fmt"

// BlockRange is an inclusive [From, To] window of block numbers.
type BlockRange struct {
	From uint64
	To   uint64
}

// SplitRange cuts [from, to] into consecutive windows of at most batchSize
// blocks, sized to what one eth_getLogs call can serve.
func SplitRange(from, to, batchSize uint64) ([]BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be positive")
	}
	if to < from {
		return nil, fmt.Errorf("invalid block range [%d, %d]", from, to)
	}

	total := to - from + 1
	count := total / batchSize
	if total%batchSize != 0 {
		count++
	}

	ranges := make([]BlockRange, 0, count)
	for start := from; ; start += batchSize {
		end := to
		if to-start >= batchSize {
			end = start + batchSize - 1
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			return ranges, nil
		}
	}
}
