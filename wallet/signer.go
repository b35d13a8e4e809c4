package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// transferGasLimit is the fixed gas cost of a plain value transfer.
const transferGasLimit = 21000

// KeyProvider is a Provider backed by an Ethereum RPC endpoint and a local
// ECDSA private key, for running the wallet channel without a browser
// signer. The key-backed account never changes, so the change callbacks
// never fire.
type KeyProvider struct {
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	address common.Address

	mu      sync.Mutex
	chainID *big.Int
}

var _ Provider = (*KeyProvider)(nil)

// NewKeyProvider dials the RPC endpoint and derives the account from the
// hex-encoded private key (with or without 0x prefix).
func NewKeyProvider(rpcURL, privateKeyHex string) (*KeyProvider, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("ethereum rpc dial: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("invalid signer key: %w", err)
	}

	return &KeyProvider{
		eth:     eth,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (p *KeyProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{p.address.Hex()}, nil
}

// ChainID returns the chain identifier in 0x-hex form, matching the
// convention browser providers use.
func (p *KeyProvider) ChainID(ctx context.Context) (string, error) {
	id, err := p.chain(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%x", id), nil
}

func (p *KeyProvider) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	return p.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
}

// SendTransfer signs and broadcasts a plain value transfer. It returns
// once the node has accepted the transaction into its pool; it does not
// wait for inclusion or confirmations.
func (p *KeyProvider) SendTransfer(ctx context.Context, from, to string, amountWei *big.Int) (string, error) {
	if !strings.EqualFold(from, p.address.Hex()) {
		return "", fmt.Errorf("unknown account %s", from)
	}

	chainID, err := p.chain(ctx)
	if err != nil {
		return "", err
	}

	nonce, err := p.eth.PendingNonceAt(ctx, p.address)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}

	gasPrice, err := p.eth.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}

	tx := ethtypes.NewTransaction(nonce, common.HexToAddress(to), amountWei, transferGasLimit, gasPrice, nil)

	signed, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(chainID), p.key)
	if err != nil {
		return "", fmt.Errorf("sign tx: %w", err)
	}

	if err := p.eth.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send tx: %w", err)
	}

	return signed.Hash().Hex(), nil
}

func (p *KeyProvider) OnAccountsChanged(func(accounts []string)) {}
func (p *KeyProvider) OnChainChanged(func(chainID string))       {}

func (p *KeyProvider) Close() {
	p.eth.Close()
}

func (p *KeyProvider) chain(ctx context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chainID != nil {
		return p.chainID, nil
	}
	id, err := p.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	p.chainID = id
	return id, nil
}
