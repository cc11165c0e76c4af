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

// HandleUniverse processes Universe marketplace events. Universe shares
// Rarible's asset-class encoding but embeds both assets in the Match
// event, so no calldata reconstruction is needed.
func HandleUniverse(ctx context.Context, env *Env, events []ClassifiedEvent, out *OnChainData) error {
	logger := env.logger().Named("universe")
	orderKind := "universe"

	var txLogs txLogBuffer
	for i := range events {
		event := events[i]
		params := event.BaseEventParams
		currentTxLogs := txLogs.Observe(params, event.Log)

		if event.Entry.Protocol == catalog.ProtocolERC20 {
			continue
		}

		switch event.Kind {
		case catalog.KindUniverseCancel:
			decoded, err := decodeLog(event.Entry.ABI.Events["Cancel"], event.Log)
			if err != nil {
				logger.Warn("undecodable cancel", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			hash, err := asHash(decoded["hash"])
			if err != nil {
				continue
			}
			orderID := hash.Hex()

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

		case catalog.KindUniverseMatch:
			decoded, err := decodeLog(event.Entry.ABI.Events["Match"], event.Log)
			if err != nil {
				logger.Warn("undecodable match", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			leftHash, err := asHash(decoded["leftHash"])
			if err != nil {
				continue
			}
			leftMaker, err := asAddress(decoded["leftMaker"])
			if err != nil {
				continue
			}
			rightMaker, err := asAddress(decoded["rightMaker"])
			if err != nil {
				continue
			}
			newLeftFill, _ := decoded["newLeftFill"].(*big.Int)
			newRightFill, _ := decoded["newRightFill"].(*big.Int)
			if newLeftFill == nil || newRightFill == nil {
				continue
			}
			leftAsset, err := convert[raribleAssetType](decoded["leftAsset"])
			if err != nil {
				continue
			}
			rightAsset, err := convert[raribleAssetType](decoded["rightAsset"])
			if err != nil {
				continue
			}

			// The left order is the maker's.
			side := model.SideBuy
			nftAsset, currencyAsset := rightAsset, leftAsset
			if isNFTAssetClass(leftAsset.AssetClass) {
				side = model.SideSell
				nftAsset, currencyAsset = leftAsset, rightAsset
			}
			if !isNFTAssetClass(nftAsset.AssetClass) {
				continue
			}
			currency, ok := raribleResolveCurrency(raribleTrade{currencyAsset: &currencyAsset})
			if !ok {
				continue
			}
			contract, tokenID, ok := raribleDecodeNFT(nftAsset.Data)
			if !ok {
				continue
			}

			orderID := leftHash.Hex()
			maker := lower(leftMaker)
			taker := lower(rightMaker)

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

			totalPrice, amount := newLeftFill, newRightFill
			if side == model.SideBuy {
				totalPrice, amount = newRightFill, newLeftFill
			}
			currencyPrice := unitPrice(totalPrice, amount)
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
