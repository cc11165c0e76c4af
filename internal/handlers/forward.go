package handlers

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketScope/internal/attribution"
	"marketScope/internal/catalog"
	"marketScope/internal/model"
)

// HandleForward processes Forward exchange events. Forward only supports
// bids denominated in wrapped native, so every fill is buy-side and the
// unit price comes straight off the event.
func HandleForward(ctx context.Context, env *Env, events []ClassifiedEvent, out *OnChainData) error {
	logger := env.logger().Named("forward")
	orderKind := "forward"

	var txLogs txLogBuffer
	for i := range events {
		event := events[i]
		params := event.BaseEventParams
		currentTxLogs := txLogs.Observe(params, event.Log)

		if event.Entry.Protocol == catalog.ProtocolERC20 {
			continue
		}

		switch event.Kind {
		case catalog.KindForwardCounterIncremented:
			decoded, err := decodeLog(event.Entry.ABI.Events["CounterIncremented"], event.Log)
			if err != nil {
				logger.Warn("undecodable counter increment", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			maker, err := asAddress(decoded["maker"])
			if err != nil {
				continue
			}
			newCounter, ok := decoded["newCounter"].(*big.Int)
			if !ok {
				continue
			}

			out.ApplyBulkCancel(model.BulkCancelEvent{
				OrderKind:       orderKind,
				Maker:           lower(maker),
				MinNonce:        newCounter.String(),
				BaseEventParams: params,
			})

		case catalog.KindForwardOrderFilled:
			decoded, err := decodeLog(event.Entry.ABI.Events["OrderFilled"], event.Log)
			if err != nil {
				logger.Warn("undecodable fill", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			orderHash, err := asHash(decoded["orderHash"])
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
			token, err := asAddress(decoded["token"])
			if err != nil {
				continue
			}
			identifier, _ := decoded["identifier"].(*big.Int)
			filledAmount, _ := decoded["filledAmount"].(*big.Int)
			pricePerUnit, _ := decoded["unitPrice"].(*big.Int)
			if identifier == nil || filledAmount == nil || pricePerUnit == nil {
				continue
			}

			orderID := orderHash.Hex()
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

			conversion, err := env.Prices.ResolvePrices(ctx, wrappedNative, pricePerUnit, params.Timestamp)
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
				OrderSide:          model.SideBuy,
				Maker:              maker,
				Taker:              taker,
				Price:              conversion.NativePrice.String(),
				Currency:           lower(wrappedNative),
				CurrencyPrice:      pricePerUnit.String(),
				USDPrice:           usdPrice,
				Contract:           lower(token),
				TokenID:            identifier.String(),
				Amount:             filledAmount.String(),
				OrderSourceID:      attr.OrderSourceID,
				AggregatorSourceID: attr.AggregatorSourceID,
				FillSourceID:       attr.FillSourceID,
				BaseEventParams:    params,
			})

			out.OrderTriggers = append(out.OrderTriggers, model.OrderTrigger{
				Context:     "filled-" + orderID + "-" + params.TxHash,
				OrderID:     orderID,
				Trigger:     model.TriggerSale,
				TxHash:      params.TxHash,
				TxTimestamp: params.Timestamp,
			})
			out.FillTriggers = append(out.FillTriggers, model.FillTrigger{
				Context:   orderID + "-" + params.TxHash,
				OrderID:   orderID,
				OrderSide: model.SideBuy,
				Contract:  lower(token),
				TokenID:   identifier.String(),
				Amount:    filledAmount.String(),
				Price:     conversion.NativePrice.String(),
				Maker:     maker,
				Taker:     taker,
				Timestamp: params.Timestamp,
			})

			// Bid fills always move the maker's wrapped-native balance.
			if erc20, ok := findERC20Transfer(currentTxLogs); ok {
				out.MakerTriggers = append(out.MakerTriggers, model.MakerApprovalTrigger{
					Context:     params.TxHash + "-buy-approval",
					Maker:       maker,
					Trigger:     model.TriggerApprovalChange,
					TxHash:      params.TxHash,
					TxTimestamp: params.Timestamp,
					Kind:        model.BuyApproval,
					Contract:    lower(erc20),
					OrderKind:   orderKind,
				})
			}
		}
	}

	return nil
}
