package handlers

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"marketScope/internal/attribution"
	"marketScope/internal/catalog"
	"marketScope/internal/model"
)

// HandleElement processes Element exchange events. The fill events mirror
// the 0x v4 layout but carry the order hash and an explicit side; a
// HashNonceIncremented event invalidates all of a maker's orders of both
// token standards at once.
func HandleElement(ctx context.Context, env *Env, events []ClassifiedEvent, out *OnChainData) error {
	logger := env.logger().Named("element")

	var txLogs txLogBuffer
	for i := range events {
		event := events[i]
		params := event.BaseEventParams
		currentTxLogs := txLogs.Observe(params, event.Log)

		if event.Entry.Protocol == catalog.ProtocolERC20 {
			continue
		}

		switch event.Kind {
		case catalog.KindElementERC721OrderCancelled, catalog.KindElementERC1155OrderCancelled:
			eventName := "ERC721OrderCancelled"
			orderKind := "element-erc721"
			if event.Kind == catalog.KindElementERC1155OrderCancelled {
				eventName = "ERC1155OrderCancelled"
				orderKind = "element-erc1155"
			}

			decoded, err := decodeLog(event.Entry.ABI.Events[eventName], event.Log)
			if err != nil {
				logger.Warn("undecodable cancel", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			maker, err := asAddress(decoded["maker"])
			if err != nil {
				continue
			}
			nonce, ok := decoded["nonce"].(*big.Int)
			if !ok {
				continue
			}

			out.NonceCancels = append(out.NonceCancels, model.NonceCancelEvent{
				OrderKind:       orderKind,
				Maker:           lower(maker),
				Nonce:           nonce.String(),
				BaseEventParams: params,
			})

		case catalog.KindElementHashNonceIncremented:
			decoded, err := decodeLog(event.Entry.ABI.Events["HashNonceIncremented"], event.Log)
			if err != nil {
				logger.Warn("undecodable event", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			maker, err := asAddress(decoded["maker"])
			if err != nil {
				continue
			}
			nonce, ok := decoded["nonce"].(*big.Int)
			if !ok {
				continue
			}

			// The hash nonce covers both order families. Each family gets
			// its own batch index: the records would otherwise collide on
			// (tx_hash, log_index, batch_index) and one would be lost.
			for batch, orderKind := range []string{"element-erc721", "element-erc1155"} {
				cancelParams := params
				cancelParams.BatchIndex = params.BatchIndex + uint64(batch)
				out.ApplyBulkCancel(model.BulkCancelEvent{
					OrderKind:       orderKind,
					Maker:           lower(maker),
					MinNonce:        nonce.String(),
					BaseEventParams: cancelParams,
				})
			}

		case catalog.KindElementERC721SellOrderFilled, catalog.KindElementERC721BuyOrderFilled:
			eventName := "ERC721SellOrderFilled"
			side := model.SideSell
			if event.Kind == catalog.KindElementERC721BuyOrderFilled {
				eventName = "ERC721BuyOrderFilled"
				side = model.SideBuy
			}
			decoded, err := decodeLog(event.Entry.ABI.Events[eventName], event.Log)
			if err != nil {
				logger.Warn("undecodable fill", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			if err := elementFill(ctx, env, out, params, currentTxLogs, elementFillArgs{
				orderKind:  "element-erc721",
				side:       side,
				decoded:    decoded,
				tokenKey:   "erc721Token",
				tokenIDKey: "erc721TokenId",
				priceKey:   "erc20TokenAmount",
			}); err != nil {
				return err
			}

		case catalog.KindElementERC1155SellOrderFilled, catalog.KindElementERC1155BuyOrderFilled:
			eventName := "ERC1155SellOrderFilled"
			side := model.SideSell
			if event.Kind == catalog.KindElementERC1155BuyOrderFilled {
				eventName = "ERC1155BuyOrderFilled"
				side = model.SideBuy
			}
			decoded, err := decodeLog(event.Entry.ABI.Events[eventName], event.Log)
			if err != nil {
				logger.Warn("undecodable fill", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			if err := elementFill(ctx, env, out, params, currentTxLogs, elementFillArgs{
				orderKind:  "element-erc1155",
				side:       side,
				decoded:    decoded,
				tokenKey:   "erc1155Token",
				tokenIDKey: "erc1155TokenId",
				priceKey:   "erc20FillAmount",
				amountKey:  "erc1155FillAmount",
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

type elementFillArgs struct {
	orderKind  string
	side       model.OrderSide
	decoded    map[string]interface{}
	tokenKey   string
	tokenIDKey string
	priceKey   string
	amountKey  string
}

func elementFill(
	ctx context.Context,
	env *Env,
	out *OnChainData,
	params model.BaseEventParams,
	currentTxLogs []types.Log,
	args elementFillArgs,
) error {
	logger := env.logger().Named("element")

	orderHash, err := asHash(args.decoded["orderHash"])
	if err != nil {
		return nil
	}
	makerAddress, err := asAddress(args.decoded["maker"])
	if err != nil {
		return nil
	}
	takerAddress, err := asAddress(args.decoded["taker"])
	if err != nil {
		return nil
	}
	erc20Token, err := asAddress(args.decoded["erc20Token"])
	if err != nil {
		return nil
	}
	contract, err := asAddress(args.decoded[args.tokenKey])
	if err != nil {
		return nil
	}
	totalPrice, _ := args.decoded[args.priceKey].(*big.Int)
	tokenID, _ := args.decoded[args.tokenIDKey].(*big.Int)
	if totalPrice == nil || tokenID == nil {
		return nil
	}

	amount := big.NewInt(1)
	if args.amountKey != "" {
		amount, _ = args.decoded[args.amountKey].(*big.Int)
		if amount == nil {
			return nil
		}
	}

	orderID := orderHash.Hex()
	maker := lower(makerAddress)
	taker := lower(takerAddress)

	var attr attribution.Data
	if env.Attribution != nil {
		attr, err = env.Attribution.Resolve(ctx, common.HexToHash(params.TxHash), args.orderKind, orderID)
		if err != nil {
			logger.Warn("attribution failed", zap.String("tx", params.TxHash), zap.Error(err))
			attr = attribution.Data{}
		}
	}
	if attr.Taker != nil {
		taker = lower(*attr.Taker)
	}

	currency := normalizeCurrency(erc20Token)
	currencyPrice := unitPrice(totalPrice, amount)
	conversion, err := env.Prices.ResolvePrices(ctx, currency, currencyPrice, params.Timestamp)
	if err != nil {
		return err
	}
	if conversion.NativePrice == nil {
		return nil
	}

	usdPrice := ""
	if conversion.USDPrice != nil {
		usdPrice = conversion.USDPrice.String()
	}
	out.Fills = append(out.Fills, model.FillEvent{
		OrderKind:          args.orderKind,
		OrderID:            orderID,
		OrderSide:          args.side,
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
		Context:     "filled-" + orderID + "-" + params.TxHash,
		OrderID:     orderID,
		Trigger:     model.TriggerSale,
		TxHash:      params.TxHash,
		TxTimestamp: params.Timestamp,
	})
	out.FillTriggers = append(out.FillTriggers, model.FillTrigger{
		Context:   orderID + "-" + params.TxHash,
		OrderID:   orderID,
		OrderSide: args.side,
		Contract:  lower(contract),
		TokenID:   tokenID.String(),
		Amount:    amount.String(),
		Price:     conversion.NativePrice.String(),
		Maker:     maker,
		Taker:     taker,
		Timestamp: params.Timestamp,
	})

	if args.side == model.SideBuy {
		if token, ok := findERC20Transfer(currentTxLogs); ok {
			out.MakerTriggers = append(out.MakerTriggers, model.MakerApprovalTrigger{
				Context:     params.TxHash + "-buy-approval",
				Maker:       maker,
				Trigger:     model.TriggerApprovalChange,
				TxHash:      params.TxHash,
				TxTimestamp: params.Timestamp,
				Kind:        model.BuyApproval,
				Contract:    lower(token),
				OrderKind:   args.orderKind,
			})
		}
	}

	return nil
}
