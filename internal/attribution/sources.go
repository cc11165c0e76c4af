package attribution

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type sourceRecord struct {
	ID             int64  `json:"id"`
	Domain         string `json:"domain"`
	Router         string `json:"router,omitempty"`
	CalldataMarker string `json:"calldata_marker,omitempty"`
}

// LoadSources reads a source registry from a JSON file. Router is a hex
// address; calldata_marker is 0x-prefixed hex bytes.
func LoadSources(path string) ([]Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	var records []sourceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	sources := make([]Source, 0, len(records))
	for _, record := range records {
		source := Source{
			ID:     record.ID,
			Domain: record.Domain,
		}
		if record.Router != "" {
			if !common.IsHexAddress(record.Router) {
				return nil, fmt.Errorf("source %q: invalid router %q", record.Domain, record.Router)
			}
			router := common.HexToAddress(record.Router)
			source.Router = &router
		}
		if record.CalldataMarker != "" {
			marker, err := hexutil.Decode(record.CalldataMarker)
			if err != nil {
				return nil, fmt.Errorf("source %q: invalid calldata marker: %w", record.Domain, err)
			}
			source.CalldataMarker = marker
		}
		sources = append(sources, source)
	}

	return sources, nil
}
