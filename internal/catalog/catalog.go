package catalog

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Protocol identifies an exchange protocol family. The set is closed:
// handler dispatch switches exhaustively over these values.
type Protocol string

const (
	// ProtocolSeaport covers both Seaport v1.1 and v1.4: the two versions
	// are distinct kinds but share one handler partition so that the
	// matched-order adjacency heuristic sees all Seaport fills in order.
	ProtocolSeaport   Protocol = "seaport"
	ProtocolLooksRare Protocol = "looks-rare"
	ProtocolX2Y2      Protocol = "x2y2"
	ProtocolZeroExV4  Protocol = "zeroex-v4"
	ProtocolElement   Protocol = "element"
	ProtocolRarible   Protocol = "rarible"
	ProtocolUniverse  Protocol = "universe"
	ProtocolForward   Protocol = "forward"
	ProtocolSuperRare Protocol = "superrare"
	ProtocolERC20     Protocol = "erc20"
)

// Protocols lists every protocol that owns a handler partition, in the
// fixed order the orchestrator dispatches them.
var Protocols = []Protocol{
	ProtocolSeaport,
	ProtocolLooksRare,
	ProtocolX2Y2,
	ProtocolZeroExV4,
	ProtocolElement,
	ProtocolRarible,
	ProtocolUniverse,
	ProtocolForward,
	ProtocolSuperRare,
}

// Kind tags a single (protocol, event) pair.
type Kind string

// Entry describes how to recognize and decode one event kind.
type Entry struct {
	Kind      Kind
	Protocol  Protocol
	Topic     common.Hash
	NumTopics int
	// Addresses is an optional allow-list of emitting contracts. When nil,
	// any address matches.
	Addresses map[common.Address]struct{}
	ABI       abi.ABI
}

var registry []Entry

func register(entries ...Entry) {
	registry = append(registry, entries...)
}

// Lookup returns the catalog entries for the requested kinds, in
// registration order. With no kinds it returns the full catalog. The
// returned slice must not be mutated.
func Lookup(kinds ...Kind) []Entry {
	if len(kinds) == 0 {
		return registry
	}
	wanted := make(map[Kind]struct{}, len(kinds))
	for _, kind := range kinds {
		wanted[kind] = struct{}{}
	}
	out := make([]Entry, 0, len(kinds))
	for _, entry := range registry {
		if _, ok := wanted[entry.Kind]; ok {
			out = append(out, entry)
		}
	}
	return out
}

// Topics returns the deduplicated topic0 union for the requested kinds
// (or the whole catalog), for building a combined log filter.
func Topics(kinds ...Kind) []common.Hash {
	seen := make(map[common.Hash]struct{})
	out := make([]common.Hash, 0, len(registry))
	for _, entry := range Lookup(kinds...) {
		if _, ok := seen[entry.Topic]; ok {
			continue
		}
		seen[entry.Topic] = struct{}{}
		out = append(out, entry.Topic)
	}
	return out
}

func mustABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

func allowList(addresses ...string) map[common.Address]struct{} {
	out := make(map[common.Address]struct{}, len(addresses))
	for _, address := range addresses {
		out[common.HexToAddress(address)] = struct{}{}
	}
	return out
}
