package handlers

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"marketScope/internal/attribution"
	"marketScope/internal/catalog"
	"marketScope/internal/model"
)

// HandleSuperRare processes SuperRare bazaar events. SuperRare trades are
// not order-based: there is no order hash, so fills carry an empty order
// id and no order trigger is emitted.
func HandleSuperRare(ctx context.Context, env *Env, events []ClassifiedEvent, out *OnChainData) error {
	logger := env.logger().Named("superrare")
	orderKind := "superrare"

	for i := range events {
		event := events[i]
		params := event.BaseEventParams

		if event.Entry.Protocol == catalog.ProtocolERC20 {
			continue
		}

		var (
			eventName string
			buyerKey  string
			currency  common.Address
		)
		switch event.Kind {
		case catalog.KindSuperRareSold:
			eventName, buyerKey = "Sold", "buyer"
		case catalog.KindSuperRareAcceptOffer:
			eventName, buyerKey = "AcceptOffer", "bidder"
		case catalog.KindSuperRareAuctionSettled:
			eventName, buyerKey = "AuctionSettled", "bidder"
		default:
			continue
		}

		decoded, err := decodeLog(event.Entry.ABI.Events[eventName], event.Log)
		if err != nil {
			logger.Warn("undecodable event", zap.String("tx", params.TxHash), zap.Error(err))
			continue
		}

		contractKey := "originContract"
		if event.Kind == catalog.KindSuperRareAuctionSettled {
			contractKey = "contractAddress"
		}
		contract, err := asAddress(decoded[contractKey])
		if err != nil {
			continue
		}
		buyer, err := asAddress(decoded[buyerKey])
		if err != nil {
			continue
		}
		seller, err := asAddress(decoded["seller"])
		if err != nil {
			continue
		}
		totalPrice, _ := decoded["amount"].(*big.Int)
		tokenID, _ := decoded["tokenId"].(*big.Int)
		if totalPrice == nil || tokenID == nil {
			continue
		}

		if event.Kind == catalog.KindSuperRareAcceptOffer {
			currencyAddress, err := asAddress(decoded["currencyAddress"])
			if err != nil {
				continue
			}
			currency = normalizeCurrency(currencyAddress)
		}

		maker := lower(seller)
		taker := lower(buyer)

		var attr attribution.Data
		if env.Attribution != nil {
			attr, err = env.Attribution.Resolve(ctx, common.HexToHash(params.TxHash), orderKind, "")
			if err != nil {
				logger.Warn("attribution failed", zap.String("tx", params.TxHash), zap.Error(err))
				attr = attribution.Data{}
			}
		}
		if attr.Taker != nil {
			taker = lower(*attr.Taker)
		}

		conversion, err := env.Prices.ResolvePrices(ctx, currency, totalPrice, params.Timestamp)
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
			OrderSide:          model.SideSell,
			Maker:              maker,
			Taker:              taker,
			Price:              conversion.NativePrice.String(),
			Currency:           lower(currency),
			CurrencyPrice:      totalPrice.String(),
			USDPrice:           usdPrice,
			Contract:           lower(contract),
			TokenID:            tokenID.String(),
			Amount:             "1",
			OrderSourceID:      attr.OrderSourceID,
			AggregatorSourceID: attr.AggregatorSourceID,
			FillSourceID:       attr.FillSourceID,
			BaseEventParams:    params,
		})
		out.FillTriggers = append(out.FillTriggers, model.FillTrigger{
			Context:   fmt.Sprintf("superrare-%s-%s-%s", lower(contract), tokenID, params.TxHash),
			OrderSide: model.SideSell,
			Contract:  lower(contract),
			TokenID:   tokenID.String(),
			Amount:    "1",
			Price:     conversion.NativePrice.String(),
			Maker:     maker,
			Taker:     taker,
			Timestamp: params.Timestamp,
		})
	}

	return nil
}
