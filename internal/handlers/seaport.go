package handlers

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"marketScope/internal/attribution"
	"marketScope/internal/catalog"
	"marketScope/internal/chain"
	"marketScope/internal/model"
)

type seaportSpentItem struct {
	ItemType   uint8
	Token      common.Address
	Identifier *big.Int
	Amount     *big.Int
}

type seaportReceivedItem struct {
	ItemType   uint8
	Token      common.Address
	Identifier *big.Int
	Amount     *big.Int
	Recipient  common.Address
}

// seaportSale is the single-trade interpretation of an OrderFulfilled
// event's item lists, when one exists.
type seaportSale struct {
	Side              model.OrderSide
	Contract          common.Address
	TokenID           *big.Int
	Amount            *big.Int
	PaymentToken      common.Address
	Price             *big.Int
	RecipientOverride *common.Address
}

// deriveSeaportSale interprets the spent/received items of a fill as a
// basic sale. Item types 2 and above are NFTs (including criteria-based
// ones). Orders with multiple offer items or an NFT-for-NFT trade have no
// basic-sale interpretation and yield nil.
func deriveSeaportSale(offer []seaportSpentItem, consideration []seaportReceivedItem) *seaportSale {
	if len(offer) != 1 || len(consideration) == 0 {
		return nil
	}

	spent := offer[0]
	if spent.ItemType >= 2 {
		// NFT offered: a listing. The payment token is the first
		// consideration item; every consideration item in that token
		// (including fees) contributes to the total price.
		if consideration[0].ItemType >= 2 {
			return nil
		}
		paymentToken := consideration[0].Token
		price := new(big.Int)
		for _, item := range consideration {
			if item.Token == paymentToken {
				price.Add(price, item.Amount)
			}
		}
		return &seaportSale{
			Side:         model.SideSell,
			Contract:     spent.Token,
			TokenID:      spent.Identifier,
			Amount:       spent.Amount,
			PaymentToken: paymentToken,
			Price:        price,
		}
	}

	// Payment token offered: a bid. The NFT is the first consideration
	// item and the full offer amount is the price.
	nft := consideration[0]
	if nft.ItemType < 2 {
		return nil
	}
	sale := &seaportSale{
		Side:         model.SideBuy,
		Contract:     nft.Token,
		TokenID:      nft.Identifier,
		Amount:       nft.Amount,
		PaymentToken: spent.Token,
		Price:        spent.Amount,
	}
	if nft.Recipient != (common.Address{}) {
		recipient := nft.Recipient
		sale.RecipientOverride = &recipient
	}
	return sale
}

func seaportOrderKind(kind catalog.Kind) string {
	if strings.HasPrefix(string(kind), "seaport-v1.4") {
		return "seaport-v1.4"
	}
	return "seaport"
}

// HandleSeaport processes Seaport v1.1 and v1.4 events. Both versions share
// one partition so that fills via matchOrders, which emit two adjacent
// OrderFulfilled logs with a zero recipient, can be collapsed into a single
// trade with the counterparty recovered from the reciprocal log.
func HandleSeaport(ctx context.Context, env *Env, events []ClassifiedEvent, out *OnChainData) error {
	logger := env.logger().Named("seaport")

	var txLogs txLogBuffer
	skip := make(map[common.Hash]struct{})

	for i := range events {
		event := events[i]
		params := event.BaseEventParams
		currentTxLogs := txLogs.Observe(params, event.Log)

		if event.Entry.Protocol == catalog.ProtocolERC20 {
			// Routed in only to feed the per-transaction log buffer.
			continue
		}

		orderKind := seaportOrderKind(event.Kind)

		switch event.Kind {
		case catalog.KindSeaportOrderCancelled, catalog.KindSeaportV14OrderCancelled:
			decoded, err := decodeLog(event.Entry.ABI.Events["OrderCancelled"], event.Log)
			if err != nil {
				logger.Warn("undecodable cancel", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			orderHash, err := asHash(decoded["orderHash"])
			if err != nil {
				logger.Warn("undecodable cancel", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			orderID := orderHash.Hex()

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

		case catalog.KindSeaportCounterIncremented, catalog.KindSeaportV14CounterIncremented:
			decoded, err := decodeLog(event.Entry.ABI.Events["CounterIncremented"], event.Log)
			if err != nil {
				logger.Warn("undecodable counter increment", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			offerer, err := asAddress(decoded["offerer"])
			if err != nil {
				logger.Warn("undecodable counter increment", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			newCounter, ok := decoded["newCounter"].(*big.Int)
			if !ok {
				continue
			}

			out.ApplyBulkCancel(model.BulkCancelEvent{
				OrderKind:       orderKind,
				Maker:           lower(offerer),
				MinNonce:        newCounter.String(),
				BaseEventParams: params,
			})

		case catalog.KindSeaportOrderFilled, catalog.KindSeaportV14OrderFilled:
			if err := handleSeaportFill(ctx, env, events, i, orderKind, currentTxLogs, skip, out); err != nil {
				return err
			}

		case catalog.KindSeaportOrderValidated, catalog.KindSeaportV14OrderValidated:
			handleSeaportValidated(ctx, env, event, orderKind, out)
		}
	}

	return nil
}

func handleSeaportFill(
	ctx context.Context,
	env *Env,
	events []ClassifiedEvent,
	i int,
	orderKind string,
	currentTxLogs []types.Log,
	skip map[common.Hash]struct{},
	out *OnChainData,
) error {
	logger := env.logger().Named("seaport")
	event := events[i]
	params := event.BaseEventParams

	decoded, err := decodeLog(event.Entry.ABI.Events["OrderFulfilled"], event.Log)
	if err != nil {
		logger.Warn("undecodable fill", zap.String("tx", params.TxHash), zap.Error(err))
		return nil
	}
	orderHash, err := asHash(decoded["orderHash"])
	if err != nil {
		return nil
	}
	if _, skipped := skip[orderHash]; skipped {
		return nil
	}
	orderID := orderHash.Hex()

	offerer, err := asAddress(decoded["offerer"])
	if err != nil {
		return nil
	}
	recipient, err := asAddress(decoded["recipient"])
	if err != nil {
		return nil
	}
	offer, err := convert[[]seaportSpentItem](decoded["offer"])
	if err != nil {
		logger.Warn("undecodable fill items", zap.String("tx", params.TxHash), zap.Error(err))
		return nil
	}
	consideration, err := convert[[]seaportReceivedItem](decoded["consideration"])
	if err != nil {
		logger.Warn("undecodable fill items", zap.String("tx", params.TxHash), zap.Error(err))
		return nil
	}

	maker := lower(offerer)
	taker := lower(recipient)

	sale := deriveSeaportSale(offer, consideration)
	if sale != nil {
		// A fill via matchOrders emits two reciprocal logs with a zero
		// recipient. When the very next log mirrors this order's first
		// consideration item in its offer, the two logs are one trade:
		// take the counterparty from the second log and drop it.
		if recipient == (common.Address{}) &&
			i+1 < len(events) &&
			events[i+1].BaseEventParams.TxHash == params.TxHash &&
			events[i+1].BaseEventParams.LogIndex == params.LogIndex+1 &&
			events[i+1].Kind == event.Kind {
			if next, err := decodeLog(events[i+1].Entry.ABI.Events["OrderFulfilled"], events[i+1].Log); err == nil {
				offer2, err2 := convert[[]seaportSpentItem](next["offer"])
				if err2 == nil && len(offer2) > 0 &&
					offer2[0].ItemType == consideration[0].ItemType &&
					offer2[0].Token == consideration[0].Token &&
					offer2[0].Identifier.Cmp(consideration[0].Identifier) == 0 &&
					offer2[0].Amount.Cmp(consideration[0].Amount) == 0 {
					if offerer2, err2 := asAddress(next["offerer"]); err2 == nil {
						taker = lower(offerer2)
						if orderHash2, err2 := asHash(next["orderHash"]); err2 == nil {
							skip[orderHash2] = struct{}{}
						}
					}
				}
			}
		}

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
		if sale.RecipientOverride != nil {
			taker = lower(*sale.RecipientOverride)
		}

		currencyPrice := unitPrice(sale.Price, sale.Amount)
		conversion, err := env.Prices.ResolvePrices(ctx, sale.PaymentToken, currencyPrice, params.Timestamp)
		if err != nil {
			return fmt.Errorf("resolve prices: %w", err)
		}
		if conversion.NativePrice == nil {
			// A fill without a native price is dropped entirely.
			return nil
		}

		usdPrice := ""
		if conversion.USDPrice != nil {
			usdPrice = conversion.USDPrice.String()
		}
		out.Fills = append(out.Fills, model.FillEvent{
			OrderKind:          orderKind,
			OrderID:            orderID,
			OrderSide:          sale.Side,
			Maker:              maker,
			Taker:              taker,
			Price:              conversion.NativePrice.String(),
			Currency:           lower(sale.PaymentToken),
			CurrencyPrice:      currencyPrice.String(),
			USDPrice:           usdPrice,
			Contract:           lower(sale.Contract),
			TokenID:            sale.TokenID.String(),
			Amount:             sale.Amount.String(),
			OrderSourceID:      attr.OrderSourceID,
			AggregatorSourceID: attr.AggregatorSourceID,
			FillSourceID:       attr.FillSourceID,
			BaseEventParams:    params,
		})
		out.FillTriggers = append(out.FillTriggers, model.FillTrigger{
			Context:   orderID + "-" + params.TxHash,
			OrderID:   orderID,
			OrderSide: sale.Side,
			Contract:  lower(sale.Contract),
			TokenID:   sale.TokenID.String(),
			Amount:    sale.Amount.String(),
			Price:     conversion.NativePrice.String(),
			Maker:     maker,
			Taker:     taker,
			Timestamp: params.Timestamp,
		})
	}

	out.OrderTriggers = append(out.OrderTriggers, model.OrderTrigger{
		Context:     "filled-" + orderID + "-" + params.TxHash,
		OrderID:     orderID,
		Trigger:     model.TriggerSale,
		TxHash:      params.TxHash,
		TxTimestamp: params.Timestamp,
	})

	// An ERC-20 transfer in the same transaction can change the maker's
	// allowance to the exchange, so schedule a buy-approval recheck.
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

	return nil
}

// handleSeaportValidated reconstructs on-chain validated orders. The order
// parameters come from the event itself on v1.4; on v1.1 the event carries
// only the hash, so the validate(...) calls are dug out of the transaction
// trace. Every candidate is verified fail-closed: its hash, recomputed with
// the offerer's current counter, must equal the emitted order hash.
func handleSeaportValidated(ctx context.Context, env *Env, event ClassifiedEvent, orderKind string, out *OnChainData) {
	logger := env.logger().Named("seaport")
	params := event.BaseEventParams

	decoded, err := decodeLog(event.Entry.ABI.Events["OrderValidated"], event.Log)
	if err != nil {
		logger.Warn("undecodable validation", zap.String("tx", params.TxHash), zap.Error(err))
		return
	}
	orderHash, err := asHash(decoded["orderHash"])
	if err != nil {
		return
	}
	orderID := orderHash.Hex()

	var candidates []seaportOrderParameters
	if event.Kind == catalog.KindSeaportV14OrderValidated {
		parameters, err := convert[seaportOrderParameters](decoded["orderParameters"])
		if err != nil {
			logger.Warn("undecodable order parameters", zap.String("tx", params.TxHash), zap.Error(err))
			return
		}
		candidates = append(candidates, parameters)
	} else {
		trace, err := env.Chain.CallTrace(ctx, common.HexToHash(params.TxHash))
		if err != nil {
			// Without a trace the order cannot be verified.
			logger.Warn("trace unavailable", zap.String("tx", params.TxHash), zap.Error(err))
			return
		}
		for n := 0; n < 100; n++ {
			call := chain.SearchCall(trace, seaportValidateSelector, n)
			if call == nil {
				break
			}
			values, err := seaportFunctionsABI.Methods["validate"].Inputs.Unpack(call.Input[4:])
			if err != nil || len(values) != 1 {
				continue
			}
			orders, err := convert[[]seaportOrder](values[0])
			if err != nil {
				continue
			}
			for _, order := range orders {
				candidates = append(candidates, order.Parameters)
			}
		}
	}

	exchange := event.Log.Address
	for _, parameters := range candidates {
		counter, err := seaportCounter(ctx, env, exchange, parameters.Offerer)
		if err != nil {
			logger.Warn("counter lookup failed",
				zap.String("tx", params.TxHash),
				zap.String("offerer", lower(parameters.Offerer)),
				zap.Error(err))
			continue
		}
		if parameters.hash(counter) != orderHash {
			continue
		}

		out.NewOrders = append(out.NewOrders, model.NewOrder{
			OrderKind: orderKind,
			OrderID:   orderID,
			Maker:     lower(parameters.Offerer),
			Params: seaportOrderRecord{
				seaportOrderParameters: parameters,
				Counter:                counter,
			},
		})
		break
	}
}

// seaportOrderRecord is the full order payload handed to the orderbook.
type seaportOrderRecord struct {
	seaportOrderParameters
	Counter *big.Int `json:"counter"`
}

func seaportCounter(ctx context.Context, env *Env, exchange, offerer common.Address) (*big.Int, error) {
	data, err := seaportFunctionsABI.Pack("getCounter", offerer)
	if err != nil {
		return nil, err
	}
	result, err := env.Chain.CallContract(ctx, ethereum.CallMsg{To: &exchange, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	values, err := seaportFunctionsABI.Unpack("getCounter", result)
	if err != nil || len(values) != 1 {
		return nil, fmt.Errorf("unpack getCounter: %w", err)
	}
	counter, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected counter type %T", values[0])
	}
	return counter, nil
}
