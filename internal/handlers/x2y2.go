package handlers

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketScope/internal/attribution"
	"marketScope/internal/catalog"
	"marketScope/internal/model"
)

type x2y2OrderItem struct {
	Price *big.Int
	Data  []byte
}

type x2y2Fee struct {
	Percentage *big.Int
	To         common.Address
}

type x2y2SettleDetail struct {
	Op                 uint8
	OrderIdx           *big.Int
	ItemIdx            *big.Int
	Price              *big.Int
	ItemHash           [32]byte
	ExecutionDelegate  common.Address
	DataReplacement    []byte
	BidIncentivePct    *big.Int
	AucMinIncrementPct *big.Int
	AucIncDurationSecs *big.Int
	Fees               []x2y2Fee
}

// X2Y2 settlement operations that complete a trade.
const (
	x2y2OpCompleteSellOffer = 1
	x2y2OpCompleteBuyOffer  = 2
	x2y2OpCompleteAuction   = 5
)

// The item payload encodes the traded tokens: (token, tokenId) pairs for
// ERC-721 delegates, (token, tokenId, amount) triples for ERC-1155.
var (
	x2y2PairsType = mustNewType("tuple[]", []abi.ArgumentMarshaling{
		{Name: "token", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
	})
	x2y2TriplesType = mustNewType("tuple[]", []abi.ArgumentMarshaling{
		{Name: "token", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
	})
)

func mustNewType(t string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, "", components)
	if err != nil {
		panic(err)
	}
	return typ
}

type x2y2Pair struct {
	Token   common.Address
	TokenId *big.Int
}

type x2y2Triple struct {
	Token   common.Address
	TokenId *big.Int
	Amount  *big.Int
}

// HandleX2Y2 processes X2Y2 exchange events. Fills carry the full
// settlement detail; bundle sales (more than one token in the item data)
// have no single-token interpretation and are skipped.
func HandleX2Y2(ctx context.Context, env *Env, events []ClassifiedEvent, out *OnChainData) error {
	logger := env.logger().Named("x2y2")
	orderKind := "x2y2"

	var txLogs txLogBuffer
	for i := range events {
		event := events[i]
		params := event.BaseEventParams
		currentTxLogs := txLogs.Observe(params, event.Log)

		if event.Entry.Protocol == catalog.ProtocolERC20 {
			continue
		}

		switch event.Kind {
		case catalog.KindX2Y2OrderCancelled:
			if len(event.Log.Topics) < 2 {
				continue
			}
			orderID := event.Log.Topics[1].Hex()

			out.Cancels = append(out.Cancels, model.CancelEvent{
				OrderKind:       orderKind,
				OrderID:         orderID,
				BaseEventParams: params,
			})
			out.OrderTriggers = append(out.OrderTriggers, model.OrderTrigger{
				Context:     "cancelled-" + orderID,
				OrderID:     orderID,
				Trigger:     model.TriggerCancel,
				TxHash:      params.TxHash,
				TxTimestamp: params.Timestamp,
				LogIndex:    params.LogIndex,
				BatchIndex:  params.BatchIndex,
				BlockHash:   params.BlockHash,
			})

		case catalog.KindX2Y2OrderFilled:
			decoded, err := decodeLog(event.Entry.ABI.Events["EvInventory"], event.Log)
			if err != nil {
				logger.Warn("undecodable fill", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			itemHash, err := asHash(decoded["itemHash"])
			if err != nil {
				continue
			}
			makerAddress, err := asAddress(decoded["maker"])
			if err != nil {
				continue
			}
			takerAddress, err := asAddress(decoded["taker"])
			if err != nil {
				continue
			}
			currencyAddress, err := asAddress(decoded["currency"])
			if err != nil {
				continue
			}
			delegateType, _ := decoded["delegateType"].(*big.Int)
			item, err := convert[x2y2OrderItem](decoded["item"])
			if err != nil {
				logger.Warn("undecodable fill item", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			detail, err := convert[x2y2SettleDetail](decoded["detail"])
			if err != nil {
				logger.Warn("undecodable settle detail", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}

			op := int(detail.Op)
			if op != x2y2OpCompleteSellOffer && op != x2y2OpCompleteBuyOffer && op != x2y2OpCompleteAuction {
				// Partial settlement steps carry no trade.
				continue
			}
			side := model.SideSell
			if op == x2y2OpCompleteBuyOffer {
				side = model.SideBuy
			}

			contract, tokenID, amount, ok := x2y2DecodeItemData(delegateType, item.Data)
			if !ok {
				continue
			}

			orderID := itemHash.Hex()
			maker := lower(makerAddress)
			taker := lower(takerAddress)

			var attr attribution.Data
			if env.Attribution != nil {
				attr, err = env.Attribution.Resolve(ctx, common.HexToHash(params.TxHash), orderKind, orderID)
				if err != nil {
					logger.Warn("attribution failed", zap.String("tx", params.TxHash), zap.Error(err))
					attr = attribution.Data{}
				}
			}
			if attr.Taker != nil {
				taker = lower(*attr.Taker)
			}

			currency := normalizeCurrency(currencyAddress)
			currencyPrice := unitPrice(item.Price, amount)
			conversion, err := env.Prices.ResolvePrices(ctx, currency, currencyPrice, params.Timestamp)
			if err != nil {
				return err
			}
			if conversion.NativePrice == nil {
				continue
			}

			usdPrice := ""
			if conversion.USDPrice != nil {
				usdPrice = conversion.USDPrice.String()
			}
			out.Fills = append(out.Fills, model.FillEvent{
				OrderKind:          orderKind,
				OrderID:            orderID,
				OrderSide:          side,
				Maker:              maker,
				Taker:              taker,
				Price:              conversion.NativePrice.String(),
				Currency:           lower(currency),
				CurrencyPrice:      currencyPrice.String(),
				USDPrice:           usdPrice,
				Contract:           lower(contract),
				TokenID:            tokenID.String(),
				Amount:             amount.String(),
				OrderSourceID:      attr.OrderSourceID,
				AggregatorSourceID: attr.AggregatorSourceID,
				FillSourceID:       attr.FillSourceID,
				BaseEventParams:    params,
			})

			out.OrderTriggers = append(out.OrderTriggers, model.OrderTrigger{
				Context:     "filled-" + orderID,
				OrderID:     orderID,
				Trigger:     model.TriggerSale,
				TxHash:      params.TxHash,
				TxTimestamp: params.Timestamp,
			})
			out.FillTriggers = append(out.FillTriggers, model.FillTrigger{
				Context:   orderID + "-" + params.TxHash,
				OrderID:   orderID,
				OrderSide: side,
				Contract:  lower(contract),
				TokenID:   tokenID.String(),
				Amount:    amount.String(),
				Price:     conversion.NativePrice.String(),
				Maker:     maker,
				Taker:     taker,
				Timestamp: params.Timestamp,
			})

			if side == model.SideBuy {
				if token, ok := findERC20Transfer(currentTxLogs); ok {
					out.MakerTriggers = append(out.MakerTriggers, model.MakerApprovalTrigger{
						Context:     params.TxHash + "-buy-approval",
						Maker:       maker,
						Trigger:     model.TriggerApprovalChange,
						TxHash:      params.TxHash,
						TxTimestamp: params.Timestamp,
						Kind:        model.BuyApproval,
						Contract:    lower(token),
						OrderKind:   orderKind,
					})
				}
			}
		}
	}

	return nil
}

// x2y2DecodeItemData extracts the traded token from the item payload.
// Bundles are rejected.
func x2y2DecodeItemData(delegateType *big.Int, data []byte) (common.Address, *big.Int, *big.Int, bool) {
	if delegateType != nil && delegateType.Cmp(big.NewInt(2)) == 0 {
		values, err := abi.Arguments{{Type: x2y2TriplesType}}.Unpack(data)
		if err != nil || len(values) != 1 {
			return common.Address{}, nil, nil, false
		}
		triples, err := convert[[]x2y2Triple](values[0])
		if err != nil || len(triples) != 1 {
			return common.Address{}, nil, nil, false
		}
		return triples[0].Token, triples[0].TokenId, triples[0].Amount, true
	}

	values, err := abi.Arguments{{Type: x2y2PairsType}}.Unpack(data)
	if err != nil || len(values) != 1 {
		return common.Address{}, nil, nil, false
	}
	pairs, err := convert[[]x2y2Pair](values[0])
	if err != nil || len(pairs) != 1 {
		return common.Address{}, nil, nil, false
	}
	return pairs[0].Token, pairs[0].TokenId, big.NewInt(1), true
}
