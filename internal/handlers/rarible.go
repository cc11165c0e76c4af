package handlers

import (
	"bytes"
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"marketScope/internal/attribution"
	"marketScope/internal/catalog"
	"marketScope/internal/model"
)

// Rarible asset classes (bytes4 of the keccak of the class name).
var (
	assetClassETH         = [4]byte{0xaa, 0xae, 0xbe, 0xba}
	assetClassERC20       = [4]byte{0x8a, 0xe8, 0x5d, 0x84}
	assetClassERC721      = [4]byte{0x73, 0xad, 0x21, 0x46}
	assetClassERC1155     = [4]byte{0x97, 0x3b, 0xb6, 0x40}
	assetClassERC721Lazy  = [4]byte{0xd8, 0xf9, 0x60, 0xc1}
	assetClassERC1155Lazy = [4]byte{0x1c, 0xdf, 0xaa, 0x40}
)

func isNFTAssetClass(class [4]byte) bool {
	switch class {
	case assetClassERC721, assetClassERC721Lazy, assetClassERC1155, assetClassERC1155Lazy:
		return true
	}
	return false
}

type raribleAssetType struct {
	AssetClass [4]byte
	Data       []byte
}

type raribleAsset struct {
	AssetType raribleAssetType
	Value     *big.Int
}

type raribleOrder struct {
	Maker     common.Address
	MakeAsset raribleAsset
	Taker     common.Address
	TakeAsset raribleAsset
	Salt      *big.Int
	Start     *big.Int
	End       *big.Int
	DataType  [4]byte
	Data      []byte
}

type rariblePurchase struct {
	SellOrderMaker         common.Address
	SellOrderNftAmount     *big.Int
	NftAssetClass          [4]byte
	NftData                []byte
	SellOrderPaymentAmount *big.Int
	PaymentToken           common.Address
	SellOrderSalt          *big.Int
	SellOrderStart         *big.Int
	SellOrderEnd           *big.Int
	SellOrderDataType      [4]byte
	SellOrderData          []byte
	SellOrderSignature     []byte
	BuyOrderPaymentAmount  *big.Int
	BuyOrderNftAmount      *big.Int
	BuyOrderData           []byte
}

type raribleAcceptBid struct {
	BidMaker               common.Address
	BidNftAmount           *big.Int
	NftAssetClass          [4]byte
	NftData                []byte
	BidPaymentAmount       *big.Int
	PaymentToken           common.Address
	BidSalt                *big.Int
	BidStart               *big.Int
	BidEnd                 *big.Int
	BidDataType            [4]byte
	BidData                []byte
	BidSignature           []byte
	SellOrderPaymentAmount *big.Int
	SellOrderNftAmount     *big.Int
	SellOrderData          []byte
}

const raribleExchangeABIJSON = `[
  {
    "inputs": [
      {"components": [
        {"internalType": "address", "name": "sellOrderMaker", "type": "address"},
        {"internalType": "uint256", "name": "sellOrderNftAmount", "type": "uint256"},
        {"internalType": "bytes4", "name": "nftAssetClass", "type": "bytes4"},
        {"internalType": "bytes", "name": "nftData", "type": "bytes"},
        {"internalType": "uint256", "name": "sellOrderPaymentAmount", "type": "uint256"},
        {"internalType": "address", "name": "paymentToken", "type": "address"},
        {"internalType": "uint256", "name": "sellOrderSalt", "type": "uint256"},
        {"internalType": "uint256", "name": "sellOrderStart", "type": "uint256"},
        {"internalType": "uint256", "name": "sellOrderEnd", "type": "uint256"},
        {"internalType": "bytes4", "name": "sellOrderDataType", "type": "bytes4"},
        {"internalType": "bytes", "name": "sellOrderData", "type": "bytes"},
        {"internalType": "bytes", "name": "sellOrderSignature", "type": "bytes"},
        {"internalType": "uint256", "name": "buyOrderPaymentAmount", "type": "uint256"},
        {"internalType": "uint256", "name": "buyOrderNftAmount", "type": "uint256"},
        {"internalType": "bytes", "name": "buyOrderData", "type": "bytes"}
      ], "internalType": "struct LibDirectTransfer.Purchase", "name": "direct", "type": "tuple"}
    ],
    "name": "directPurchase",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"components": [
        {"internalType": "address", "name": "bidMaker", "type": "address"},
        {"internalType": "uint256", "name": "bidNftAmount", "type": "uint256"},
        {"internalType": "bytes4", "name": "nftAssetClass", "type": "bytes4"},
        {"internalType": "bytes", "name": "nftData", "type": "bytes"},
        {"internalType": "uint256", "name": "bidPaymentAmount", "type": "uint256"},
        {"internalType": "address", "name": "paymentToken", "type": "address"},
        {"internalType": "uint256", "name": "bidSalt", "type": "uint256"},
        {"internalType": "uint256", "name": "bidStart", "type": "uint256"},
        {"internalType": "uint256", "name": "bidEnd", "type": "uint256"},
        {"internalType": "bytes4", "name": "bidDataType", "type": "bytes4"},
        {"internalType": "bytes", "name": "bidData", "type": "bytes"},
        {"internalType": "bytes", "name": "bidSignature", "type": "bytes"},
        {"internalType": "uint256", "name": "sellOrderPaymentAmount", "type": "uint256"},
        {"internalType": "uint256", "name": "sellOrderNftAmount", "type": "uint256"},
        {"internalType": "bytes", "name": "sellOrderData", "type": "bytes"}
      ], "internalType": "struct LibDirectTransfer.AcceptBid", "name": "direct", "type": "tuple"}
    ],
    "name": "directAcceptBid",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"components": [
        {"internalType": "address", "name": "maker", "type": "address"},
        {"components": [
          {"components": [
            {"internalType": "bytes4", "name": "assetClass", "type": "bytes4"},
            {"internalType": "bytes", "name": "data", "type": "bytes"}
          ], "internalType": "struct LibAsset.AssetType", "name": "assetType", "type": "tuple"},
          {"internalType": "uint256", "name": "value", "type": "uint256"}
        ], "internalType": "struct LibAsset.Asset", "name": "makeAsset", "type": "tuple"},
        {"internalType": "address", "name": "taker", "type": "address"},
        {"components": [
          {"components": [
            {"internalType": "bytes4", "name": "assetClass", "type": "bytes4"},
            {"internalType": "bytes", "name": "data", "type": "bytes"}
          ], "internalType": "struct LibAsset.AssetType", "name": "assetType", "type": "tuple"},
          {"internalType": "uint256", "name": "value", "type": "uint256"}
        ], "internalType": "struct LibAsset.Asset", "name": "takeAsset", "type": "tuple"},
        {"internalType": "uint256", "name": "salt", "type": "uint256"},
        {"internalType": "uint256", "name": "start", "type": "uint256"},
        {"internalType": "uint256", "name": "end", "type": "uint256"},
        {"internalType": "bytes4", "name": "dataType", "type": "bytes4"},
        {"internalType": "bytes", "name": "data", "type": "bytes"}
      ], "internalType": "struct LibOrder.Order", "name": "orderLeft", "type": "tuple"},
      {"internalType": "bytes", "name": "signatureLeft", "type": "bytes"},
      {"components": [
        {"internalType": "address", "name": "maker", "type": "address"},
        {"components": [
          {"components": [
            {"internalType": "bytes4", "name": "assetClass", "type": "bytes4"},
            {"internalType": "bytes", "name": "data", "type": "bytes"}
          ], "internalType": "struct LibAsset.AssetType", "name": "assetType", "type": "tuple"},
          {"internalType": "uint256", "name": "value", "type": "uint256"}
        ], "internalType": "struct LibAsset.Asset", "name": "makeAsset", "type": "tuple"},
        {"internalType": "address", "name": "taker", "type": "address"},
        {"components": [
          {"components": [
            {"internalType": "bytes4", "name": "assetClass", "type": "bytes4"},
            {"internalType": "bytes", "name": "data", "type": "bytes"}
          ], "internalType": "struct LibAsset.AssetType", "name": "assetType", "type": "tuple"},
          {"internalType": "uint256", "name": "value", "type": "uint256"}
        ], "internalType": "struct LibAsset.Asset", "name": "takeAsset", "type": "tuple"},
        {"internalType": "uint256", "name": "salt", "type": "uint256"},
        {"internalType": "uint256", "name": "start", "type": "uint256"},
        {"internalType": "uint256", "name": "end", "type": "uint256"},
        {"internalType": "bytes4", "name": "dataType", "type": "bytes4"},
        {"internalType": "bytes", "name": "data", "type": "bytes"}
      ], "internalType": "struct LibOrder.Order", "name": "orderRight", "type": "tuple"},
      {"internalType": "bytes", "name": "signatureRight", "type": "bytes"}
    ],
    "name": "matchOrders",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  }
]`

var (
	raribleExchangeABI = mustParseABI(raribleExchangeABIJSON)

	raribleDirectPurchaseSelector  = []byte{0x0d, 0x5f, 0x7d, 0x35}
	raribleDirectAcceptBidSelector = []byte{0x67, 0xd4, 0x9a, 0x3b}
	raribleMatchOrdersSelector     = []byte{0xe9, 0x9a, 0x3f, 0x80}
)

// raribleTrade is the calldata-reconstructed shape of a match.
type raribleTrade struct {
	side     model.OrderSide
	maker    common.Address
	taker    *common.Address
	nftClass [4]byte
	nftData  []byte
	// currency is set for the direct fill functions; matchOrders carries
	// the currency as an asset instead.
	currency      *common.Address
	currencyAsset *raribleAssetType
}

// raribleReconstruct recovers the trade shape from the transaction
// calldata. The Match event itself only carries order hashes and fill
// amounts. Unknown entrypoints (bulk fills through routers, meta
// transactions) yield no trade.
func raribleReconstruct(tx *types.Transaction) (raribleTrade, bool) {
	input := tx.Data()
	if len(input) < 4 {
		return raribleTrade{}, false
	}
	selector := input[:4]

	switch {
	case bytes.Equal(selector, raribleDirectPurchaseSelector):
		values, err := raribleExchangeABI.Methods["directPurchase"].Inputs.Unpack(input[4:])
		if err != nil || len(values) != 1 {
			return raribleTrade{}, false
		}
		purchase, err := convert[rariblePurchase](values[0])
		if err != nil {
			return raribleTrade{}, false
		}
		currency := purchase.PaymentToken
		return raribleTrade{
			side:     model.SideSell,
			maker:    purchase.SellOrderMaker,
			taker:    transactionSender(tx),
			nftClass: purchase.NftAssetClass,
			nftData:  purchase.NftData,
			currency: &currency,
		}, true

	case bytes.Equal(selector, raribleDirectAcceptBidSelector):
		values, err := raribleExchangeABI.Methods["directAcceptBid"].Inputs.Unpack(input[4:])
		if err != nil || len(values) != 1 {
			return raribleTrade{}, false
		}
		bid, err := convert[raribleAcceptBid](values[0])
		if err != nil {
			return raribleTrade{}, false
		}
		currency := bid.PaymentToken
		return raribleTrade{
			side:     model.SideBuy,
			maker:    bid.BidMaker,
			taker:    transactionSender(tx),
			nftClass: bid.NftAssetClass,
			nftData:  bid.NftData,
			currency: &currency,
		}, true

	case bytes.Equal(selector, raribleMatchOrdersSelector):
		values, err := raribleExchangeABI.Methods["matchOrders"].Inputs.Unpack(input[4:])
		if err != nil || len(values) != 4 {
			return raribleTrade{}, false
		}
		left, err := convert[raribleOrder](values[0])
		if err != nil {
			return raribleTrade{}, false
		}
		right, err := convert[raribleOrder](values[2])
		if err != nil {
			return raribleTrade{}, false
		}

		// The left order is the maker's.
		trade := raribleTrade{maker: left.Maker}
		if right.Maker != (common.Address{}) {
			taker := right.Maker
			trade.taker = &taker
		} else {
			trade.taker = transactionSender(tx)
		}
		if isNFTAssetClass(left.MakeAsset.AssetType.AssetClass) {
			trade.side = model.SideSell
			trade.nftClass = left.MakeAsset.AssetType.AssetClass
			trade.nftData = left.MakeAsset.AssetType.Data
			currencyAsset := left.TakeAsset.AssetType
			trade.currencyAsset = &currencyAsset
		} else {
			trade.side = model.SideBuy
			trade.nftClass = left.TakeAsset.AssetType.AssetClass
			trade.nftData = left.TakeAsset.AssetType.Data
			currencyAsset := left.MakeAsset.AssetType
			trade.currencyAsset = &currencyAsset
		}
		return trade, true
	}

	return raribleTrade{}, false
}

func transactionSender(tx *types.Transaction) *common.Address {
	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return nil
	}
	return &sender
}

var (
	addressArgument  = abi.Arguments{{Type: mustNewType("address", nil)}}
	nftDataArguments = abi.Arguments{
		{Type: mustNewType("address", nil)},
		{Type: mustNewType("uint256", nil)},
	}
)

// raribleDecodeNFT decodes the (token, tokenId) payload of an NFT asset.
func raribleDecodeNFT(data []byte) (common.Address, *big.Int, bool) {
	values, err := nftDataArguments.Unpack(data)
	if err != nil || len(values) != 2 {
		return common.Address{}, nil, false
	}
	token, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, nil, false
	}
	tokenID, ok := values[1].(*big.Int)
	if !ok {
		return common.Address{}, nil, false
	}
	return token, tokenID, true
}

// raribleResolveCurrency maps a trade's payment description to a currency
// address. Exotic asset classes are not supported.
func raribleResolveCurrency(trade raribleTrade) (common.Address, bool) {
	if trade.currency != nil {
		return normalizeCurrency(*trade.currency), true
	}
	if trade.currencyAsset == nil {
		return common.Address{}, false
	}
	switch trade.currencyAsset.AssetClass {
	case assetClassETH:
		return common.Address{}, true
	case assetClassERC20:
		values, err := addressArgument.Unpack(trade.currencyAsset.Data)
		if err != nil || len(values) != 1 {
			return common.Address{}, false
		}
		token, ok := values[0].(common.Address)
		if !ok {
			return common.Address{}, false
		}
		return token, true
	}
	return common.Address{}, false
}

// HandleRarible processes Rarible ExchangeV2 events. The Match event is
// minimal, so fills are reconstructed from transaction calldata and
// silently skipped when the entrypoint is not recognized.
func HandleRarible(ctx context.Context, env *Env, events []ClassifiedEvent, out *OnChainData) error {
	logger := env.logger().Named("rarible")
	orderKind := "rarible"

	var txLogs txLogBuffer
	for i := range events {
		event := events[i]
		params := event.BaseEventParams
		currentTxLogs := txLogs.Observe(params, event.Log)

		if event.Entry.Protocol == catalog.ProtocolERC20 {
			continue
		}

		switch event.Kind {
		case catalog.KindRaribleCancel:
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

		case catalog.KindRaribleMatch:
			decoded, err := decodeLog(event.Entry.ABI.Events["Match"], event.Log)
			if err != nil {
				logger.Warn("undecodable match", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			leftHash, err := asHash(decoded["leftHash"])
			if err != nil {
				continue
			}
			newLeftFill, _ := decoded["newLeftFill"].(*big.Int)
			newRightFill, _ := decoded["newRightFill"].(*big.Int)
			if newLeftFill == nil || newRightFill == nil {
				continue
			}

			tx, err := env.Chain.TransactionByHash(ctx, common.HexToHash(params.TxHash))
			if err != nil {
				logger.Warn("transaction unavailable", zap.String("tx", params.TxHash), zap.Error(err))
				continue
			}
			trade, ok := raribleReconstruct(tx)
			if !ok {
				logger.Debug("unrecognized match entrypoint", zap.String("tx", params.TxHash))
				continue
			}
			if !isNFTAssetClass(trade.nftClass) {
				continue
			}
			currency, ok := raribleResolveCurrency(trade)
			if !ok {
				continue
			}
			contract, tokenID, ok := raribleDecodeNFT(trade.nftData)
			if !ok {
				continue
			}

			orderID := leftHash.Hex()
			maker := lower(trade.maker)
			taker := ""
			if trade.taker != nil {
				taker = lower(*trade.taker)
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

			// For a sale the left fill is the payment and the right fill
			// the token amount; for a bid they swap.
			totalPrice, amount := newLeftFill, newRightFill
			if trade.side == model.SideBuy {
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
				OrderSide:          trade.side,
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
				OrderSide: trade.side,
				Contract:  lower(contract),
				TokenID:   tokenID.String(),
				Amount:    amount.String(),
				Price:     conversion.NativePrice.String(),
				Maker:     maker,
				Taker:     taker,
				Timestamp: params.Timestamp,
			})

			if trade.side == model.SideBuy {
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
