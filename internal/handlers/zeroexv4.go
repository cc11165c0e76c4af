package handlers

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"marketScope/internal/attribution"
	"marketScope/internal/catalog"
	"marketScope/internal/model"
)

// zeroExOrderID derives a stable order identifier for 0x v4 orders, which
// carry no hash on-chain: orders are keyed by (kind, maker, nonce).
func zeroExOrderID(orderKind string, maker common.Address, nonce *big.Int) string {
	return crypto.Keccak256Hash(
		[]byte(orderKind),
		maker.Bytes(),
		common.BigToHash(nonce).Bytes(),
	).Hex()
}

// HandleZeroExV4 processes 0x v4 NFT order events. Direction 0 means the
// maker is selling the NFT; anything else is a maker bid.
func HandleZeroExV4(ctx context.Context, env *Env, events []ClassifiedEvent, out *OnChainData) error {
	logger := env.logger().Named("zeroex-v4")

	var txLogs txLogBuffer
	for i := range events {
		event := events[i]
		params := event.BaseEventParams
		currentTxLogs := txLogs.Observe(params, event.Log)

		if event.Entry.Protocol == catalog.ProtocolERC20 {
			continue
		}

		switch event.Kind {
		case catalog.KindZeroExV4ERC721OrderCancelled, catalog.KindZeroExV4ERC1155OrderCancelled:
			eventName := "ERC721OrderCancelled"
			orderKind := "zeroex-v4-erc721"
			if event.Kind == catalog.KindZeroExV4ERC1155OrderCancelled {
				eventName = "ERC1155OrderCancelled"
				orderKind = "zeroex-v4-erc1155"
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

		case catalog.KindZeroExV4ERC721OrderFilled:
			decoded, err := decodeLog(event.Entry.ABI.Events["ERC721OrderFilled"], event.Log)
			if err != nil {
				logger.Warn("undecodable fill", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			if err := zeroExFill(ctx, env, out, params, currentTxLogs, zeroExFillArgs{
				orderKind:  "zeroex-v4-erc721",
				decoded:    decoded,
				tokenKey:   "erc721Token",
				tokenIDKey: "erc721TokenId",
				priceKey:   "erc20TokenAmount",
			}); err != nil {
				return err
			}

		case catalog.KindZeroExV4ERC1155OrderFilled:
			decoded, err := decodeLog(event.Entry.ABI.Events["ERC1155OrderFilled"], event.Log)
			if err != nil {
				logger.Warn("undecodable fill", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			if err := zeroExFill(ctx, env, out, params, currentTxLogs, zeroExFillArgs{
				orderKind:  "zeroex-v4-erc1155",
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

type zeroExFillArgs struct {
	orderKind  string
	decoded    map[string]interface{}
	tokenKey   string
	tokenIDKey string
	priceKey   string
	// amountKey is empty for ERC-721 fills, which always trade one unit.
	amountKey string
}

func zeroExFill(
	ctx context.Context,
	env *Env,
	out *OnChainData,
	params model.BaseEventParams,
	currentTxLogs []types.Log,
	args zeroExFillArgs,
) error {
	logger := env.logger().Named("zeroex-v4")

	direction, ok := args.decoded["direction"].(uint8)
	if !ok {
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
	nonce, _ := args.decoded["nonce"].(*big.Int)
	erc20Token, err := asAddress(args.decoded["erc20Token"])
	if err != nil {
		return nil
	}
	totalPrice, _ := args.decoded[args.priceKey].(*big.Int)
	contract, err := asAddress(args.decoded[args.tokenKey])
	if err != nil {
		return nil
	}
	tokenID, _ := args.decoded[args.tokenIDKey].(*big.Int)
	if nonce == nil || totalPrice == nil || tokenID == nil {
		return nil
	}

	amount := big.NewInt(1)
	if args.amountKey != "" {
		amount, _ = args.decoded[args.amountKey].(*big.Int)
		if amount == nil {
			return nil
		}
	}

	// Direction 0 is a maker listing, direction 1 a maker bid.
	side := model.SideSell
	if direction != 0 {
		side = model.SideBuy
	}

	orderID := zeroExOrderID(args.orderKind, makerAddress, nonce)
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

	// 0x v4 nonces are consumed on fill (ERC-1155 partial fills reuse the
	// nonce, but a recheck is harmless).
	out.NonceCancels = append(out.NonceCancels, model.NonceCancelEvent{
		OrderKind:       args.orderKind,
		Maker:           maker,
		Nonce:           nonce.String(),
		BaseEventParams: params,
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
				OrderKind:   args.orderKind,
			})
		}
	}

	return nil
}
