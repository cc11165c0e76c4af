package sync

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"marketScope/internal/catalog"
	"marketScope/internal/handlers"
	"marketScope/internal/model"
)

// classify matches a raw log against the event catalog. A log matches an
// entry when the topic0, the exact topic count and (when the entry carries
// an allow-list) the emitting address all agree; the first matching entry
// in registration order wins. Unmatched logs are silently skipped.
func classify(log types.Log, block model.Block) (handlers.ClassifiedEvent, bool) {
	if len(log.Topics) == 0 {
		return handlers.ClassifiedEvent{}, false
	}
	for _, entry := range catalog.Lookup() {
		if log.Topics[0] != entry.Topic {
			continue
		}
		if len(log.Topics) != entry.NumTopics {
			continue
		}
		if entry.Addresses != nil {
			if _, ok := entry.Addresses[log.Address]; !ok {
				continue
			}
		}
		return handlers.ClassifiedEvent{
			Kind:  entry.Kind,
			Entry: entry,
			BaseEventParams: model.BaseEventParams{
				Address:    "0x" + common.Bytes2Hex(log.Address.Bytes()),
				Block:      log.BlockNumber,
				BlockHash:  log.BlockHash.Hex(),
				TxHash:     log.TxHash.Hex(),
				TxIndex:    uint64(log.TxIndex),
				LogIndex:   uint64(log.Index),
				BatchIndex: 1,
				Timestamp:  block.Timestamp,
			},
			Log: log,
		}, true
	}
	return handlers.ClassifiedEvent{}, false
}

// erc20Consumers lists the partitions that want ERC-20 events mixed in to
// feed their per-transaction log buffers.
var erc20Consumers = []catalog.Protocol{
	catalog.ProtocolSeaport,
	catalog.ProtocolLooksRare,
	catalog.ProtocolX2Y2,
	catalog.ProtocolZeroExV4,
	catalog.ProtocolElement,
	catalog.ProtocolRarible,
	catalog.ProtocolUniverse,
	catalog.ProtocolForward,
}

// partition groups classified events per protocol, preserving on-chain
// order. ERC-20 events are not a partition of their own: they are copied
// into every partition whose handler inspects co-occurring transfers.
func partition(events []handlers.ClassifiedEvent) map[catalog.Protocol][]handlers.ClassifiedEvent {
	out := make(map[catalog.Protocol][]handlers.ClassifiedEvent)
	for _, event := range events {
		if event.Entry.Protocol == catalog.ProtocolERC20 {
			for _, protocol := range erc20Consumers {
				out[protocol] = append(out[protocol], event)
			}
			continue
		}
		out[event.Entry.Protocol] = append(out[event.Entry.Protocol], event)
	}
	return out
}
