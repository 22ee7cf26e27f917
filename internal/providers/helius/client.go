package helius

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/ratelimit"
)

const PROVIDER_NAME = "helius"

const (
	methodGetAssetsByGroup = "getAssetsByGroup"
	methodGetAsset         = "getAsset"
	groupKeyCollection     = "collection"
	requestID              = "nft-ownership-sync"
)

// Client defines the interface for indexer operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/helius_client.go -package=mocks -mock_names=Client=MockHeliusClient
type Client interface {
	// GetAssetsByGroup returns one raw page of assets of a collection, pages start at 1.
	// Items the indexer returned without an id have an empty MintAddress.
	GetAssetsByGroup(ctx context.Context, collectionAddress string, page, limit int) ([]domain.ChainAsset, error)

	// GetAsset returns a single asset by mint address
	GetAsset(ctx context.Context, mintAddress string) (*domain.ChainAsset, error)

	// GetTransactions returns the enhanced transaction history of an address, newest first
	GetTransactions(ctx context.Context, address string) ([]domain.Transaction, error)
}

// HeliusClient implements Client against the Helius DAS and enhanced transactions APIs
type HeliusClient struct {
	httpClient adapter.HTTPClient
	pacer      ratelimit.Pacer
	rpcURL     string
	apiURL     string
	apiKey     string
}

// NewClient creates a new Helius client. Every request waits on pacer first.
func NewClient(httpClient adapter.HTTPClient, pacer ratelimit.Pacer, rpcURL, apiURL, apiKey string) Client {
	if pacer == nil {
		pacer = ratelimit.NoopPacer()
	}
	return &HeliusClient{
		httpClient: httpClient,
		pacer:      pacer,
		rpcURL:     strings.TrimRight(rpcURL, "/"),
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     apiKey,
	}
}

func (c *HeliusClient) rpcEndpoint() string {
	return fmt.Sprintf("%s/?api-key=%s", c.rpcURL, url.QueryEscape(c.apiKey))
}

// GetAssetsByGroup returns one page of assets of a collection
func (c *HeliusClient) GetAssetsByGroup(ctx context.Context, collectionAddress string, page, limit int) ([]domain.ChainAsset, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      requestID,
		Method:  methodGetAssetsByGroup,
		Params: assetsByGroupParams{
			GroupKey:   groupKeyCollection,
			GroupValue: collectionAddress,
			Page:       page,
			Limit:      limit,
		},
	}

	var resp assetsByGroupResponse
	if err := c.httpClient.PostJSON(ctx, c.rpcEndpoint(), nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", methodGetAssetsByGroup, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexerResponse, methodGetAssetsByGroup, resp.Error)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%w: %s: empty result", domain.ErrIndexerResponse, methodGetAssetsByGroup)
	}

	// Items without an id are kept so callers can detect the end of results from the page length
	assets := make([]domain.ChainAsset, 0, len(resp.Result.Items))
	for _, item := range resp.Result.Items {
		assets = append(assets, item.ToChainAsset())
	}

	return assets, nil
}

// GetAsset returns a single asset by mint address
func (c *HeliusClient) GetAsset(ctx context.Context, mintAddress string) (*domain.ChainAsset, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      requestID,
		Method:  methodGetAsset,
		Params:  getAssetParams{ID: mintAddress},
	}

	var resp getAssetResponse
	if err := c.httpClient.PostJSON(ctx, c.rpcEndpoint(), nil, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", methodGetAsset, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexerResponse, methodGetAsset, resp.Error)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%w: %s: empty result", domain.ErrIndexerResponse, methodGetAsset)
	}

	asset := resp.Result.ToChainAsset()
	return &asset, nil
}

// GetTransactions returns the enhanced transaction history of an address
func (c *HeliusClient) GetTransactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v0/addresses/%s/transactions?api-key=%s",
		c.apiURL,
		url.PathEscape(address),
		url.QueryEscape(c.apiKey),
	)

	var raw []EnhancedTransaction
	if err := c.httpClient.GetJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch transaction history: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(raw))
	for _, t := range raw {
		txs = append(txs, t.ToTransaction())
	}

	return txs, nil
}
