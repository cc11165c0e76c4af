package handlers

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func TestIsNFTAssetClass(t *testing.T) {
	for _, class := range [][4]byte{assetClassERC721, assetClassERC1155, assetClassERC721Lazy, assetClassERC1155Lazy} {
		if !isNFTAssetClass(class) {
			t.Fatalf("class %x should be an NFT class", class)
		}
	}
	if isNFTAssetClass(assetClassETH) || isNFTAssetClass(assetClassERC20) {
		t.Fatalf("payment classes are not NFT classes")
	}
}

func TestRaribleDecodeNFT(t *testing.T) {
	token := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	payload := append(common.BytesToHash(token.Bytes()).Bytes(), common.BigToHash(big.NewInt(77)).Bytes()...)

	decoded, tokenID, ok := raribleDecodeNFT(payload)
	if !ok {
		t.Fatalf("expected payload to decode")
	}
	if decoded != token || tokenID.Cmp(big.NewInt(77)) != 0 {
		t.Fatalf("unexpected decode result: %s %s", decoded.Hex(), tokenID)
	}

	if _, _, ok := raribleDecodeNFT([]byte{0x01, 0x02}); ok {
		t.Fatalf("truncated payload must not decode")
	}
}

func TestRaribleResolveCurrency(t *testing.T) {
	weth := common.HexToAddress("0xC02aaa39b223FE8D0A0e5C4F27eAD9083C756Cc2")

	direct := raribleTrade{currency: &weth}
	if currency, ok := raribleResolveCurrency(direct); !ok || currency != weth {
		t.Fatalf("direct currency must pass through: %s %v", currency.Hex(), ok)
	}

	eth := raribleTrade{currencyAsset: &raribleAssetType{AssetClass: assetClassETH}}
	if currency, ok := raribleResolveCurrency(eth); !ok || currency != (common.Address{}) {
		t.Fatalf("ETH class must resolve to the zero address: %s %v", currency.Hex(), ok)
	}

	erc20 := raribleTrade{currencyAsset: &raribleAssetType{
		AssetClass: assetClassERC20,
		Data:       common.BytesToHash(weth.Bytes()).Bytes(),
	}}
	if currency, ok := raribleResolveCurrency(erc20); !ok || currency != weth {
		t.Fatalf("ERC20 class must decode its token: %s %v", currency.Hex(), ok)
	}

	lazy := raribleTrade{currencyAsset: &raribleAssetType{AssetClass: assetClassERC721Lazy}}
	if _, ok := raribleResolveCurrency(lazy); ok {
		t.Fatalf("exotic classes are unsupported")
	}
}

func TestRaribleReconstructUnknownEntrypoint(t *testing.T) {
	exchange := common.HexToAddress("0x9757F2d2b135150BBeb65308D4a91804107cd8D6")
	tx := types.NewTx(&types.LegacyTx{
		To:   &exchange,
		Data: []byte{0xde, 0xad, 0xbe, 0xef, 0x00},
	})

	if _, ok := raribleReconstruct(tx); ok {
		t.Fatalf("unknown entrypoints must yield no trade")
	}

	empty := types.NewTx(&types.LegacyTx{To: &exchange})
	if _, ok := raribleReconstruct(empty); ok {
		t.Fatalf("empty calldata must yield no trade")
	}
}
