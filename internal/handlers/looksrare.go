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

// HandleLooksRare processes LooksRare exchange events. Order nonces are
// fill-once, so every fill also emits a nonce cancel for the filled order.
func HandleLooksRare(ctx context.Context, env *Env, events []ClassifiedEvent, out *OnChainData) error {
	logger := env.logger().Named("looks-rare")
	orderKind := "looks-rare"

	var txLogs txLogBuffer
	for i := range events {
		event := events[i]
		params := event.BaseEventParams
		currentTxLogs := txLogs.Observe(params, event.Log)

		if event.Entry.Protocol == catalog.ProtocolERC20 {
			continue
		}

		switch event.Kind {
		case catalog.KindLooksRareCancelAllOrders:
			decoded, err := decodeLog(event.Entry.ABI.Events["CancelAllOrders"], event.Log)
			if err != nil {
				logger.Warn("undecodable event", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			user, err := asAddress(decoded["user"])
			if err != nil {
				continue
			}
			newMinNonce, ok := decoded["newMinNonce"].(*big.Int)
			if !ok {
				continue
			}

			out.ApplyBulkCancel(model.BulkCancelEvent{
				OrderKind:       orderKind,
				Maker:           lower(user),
				MinNonce:        newMinNonce.String(),
				BaseEventParams: params,
			})

		case catalog.KindLooksRareCancelMultipleOrders:
			decoded, err := decodeLog(event.Entry.ABI.Events["CancelMultipleOrders"], event.Log)
			if err != nil {
				logger.Warn("undecodable event", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			user, err := asAddress(decoded["user"])
			if err != nil {
				continue
			}
			nonces, ok := decoded["orderNonces"].([]*big.Int)
			if !ok {
				continue
			}

			for batch, nonce := range nonces {
				nonceParams := params
				nonceParams.BatchIndex = params.BatchIndex + uint64(batch)
				out.NonceCancels = append(out.NonceCancels, model.NonceCancelEvent{
					OrderKind:       orderKind,
					Maker:           lower(user),
					Nonce:           nonce.String(),
					BaseEventParams: nonceParams,
				})
			}

		case catalog.KindLooksRareTakerAsk, catalog.KindLooksRareTakerBid:
			// TakerAsk fills a maker bid (buy order), TakerBid fills a
			// maker listing (sell order).
			eventName := "TakerAsk"
			side := model.SideBuy
			if event.Kind == catalog.KindLooksRareTakerBid {
				eventName = "TakerBid"
				side = model.SideSell
			}

			decoded, err := decodeLog(event.Entry.ABI.Events[eventName], event.Log)
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
			currencyAddress, err := asAddress(decoded["currency"])
			if err != nil {
				continue
			}
			collection, err := asAddress(decoded["collection"])
			if err != nil {
				continue
			}
			orderNonce, _ := decoded["orderNonce"].(*big.Int)
			tokenID, _ := decoded["tokenId"].(*big.Int)
			amount, _ := decoded["amount"].(*big.Int)
			price, _ := decoded["price"].(*big.Int)
			if orderNonce == nil || tokenID == nil || amount == nil || price == nil {
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

			currency := normalizeCurrency(currencyAddress)
			currencyPrice := unitPrice(price, amount)
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
				Contract:           lower(collection),
				TokenID:            tokenID.String(),
				Amount:             amount.String(),
				OrderSourceID:      attr.OrderSourceID,
				AggregatorSourceID: attr.AggregatorSourceID,
				FillSourceID:       attr.FillSourceID,
				BaseEventParams:    params,
			})

			// The order nonce is consumed by the fill.
			out.NonceCancels = append(out.NonceCancels, model.NonceCancelEvent{
				OrderKind:       orderKind,
				Maker:           maker,
				Nonce:           orderNonce.String(),
				BaseEventParams: params,
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
				Contract:  lower(collection),
				TokenID:   tokenID.String(),
				Amount:    amount.String(),
				Price:     conversion.NativePrice.String(),
				Maker:     maker,
				Taker:     taker,
				Timestamp: params.Timestamp,
			})

			// A bid fill moves the maker's payment tokens, so their
			// allowance to the exchange needs a recheck.
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
