package helius

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
)

// rpcRequest is a JSON-RPC 2.0 request envelope
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// RPCError is the error object of a JSON-RPC response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type assetsByGroupParams struct {
	GroupKey   string `json:"groupKey"`
	GroupValue string `json:"groupValue"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

type getAssetParams struct {
	ID string `json:"id"`
}

type assetsByGroupResponse struct {
	Result *AssetList `json:"result"`
	Error  *RPCError  `json:"error"`
}

type getAssetResponse struct {
	Result *Asset    `json:"result"`
	Error  *RPCError `json:"error"`
}

// AssetList is one page of DAS assets
type AssetList struct {
	Total int     `json:"total"`
	Limit int     `json:"limit"`
	Page  int     `json:"page"`
	Items []Asset `json:"items"`
}

// Asset is a DAS asset; every nested field may be absent
type Asset struct {
	ID        string     `json:"id"`
	Content   *Content   `json:"content"`
	Ownership *Ownership `json:"ownership"`
	Burnt     *bool      `json:"burnt"`
}

// Content holds the off-chain content of an asset
type Content struct {
	Metadata *ContentMetadata `json:"metadata"`
	Links    *Links           `json:"links"`
	Files    []File           `json:"files"`
}

// ContentMetadata holds the token metadata of an asset
type ContentMetadata struct {
	Name       *string         `json:"name"`
	Symbol     *string         `json:"symbol"`
	Attributes json.RawMessage `json:"attributes"`
}

// Links holds asset links
type Links struct {
	Image *string `json:"image"`
}

// File is an asset file reference
type File struct {
	URI  *string `json:"uri"`
	Mime *string `json:"mime"`
}

// Ownership holds the current owner of an asset
type Ownership struct {
	Owner *string `json:"owner"`
}

// EnhancedTransaction is a parsed transaction from the enhanced transactions API
type EnhancedTransaction struct {
	Signature      string          `json:"signature"`
	Type           string          `json:"type"`
	Source         string          `json:"source"`
	Description    string          `json:"description"`
	FeePayer       string          `json:"feePayer"`
	Timestamp      int64           `json:"timestamp"`
	Events         *Events         `json:"events"`
	TokenTransfers []TokenTransfer `json:"tokenTransfers"`
	Instructions   []Instruction   `json:"instructions"`
}

// Events groups the typed events of a transaction
type Events struct {
	NFT *NFTEvent `json:"nft"`
}

// NFTEvent is the NFT marketplace event of a transaction
type NFTEvent struct {
	Type   string           `json:"type"`
	Source string           `json:"source"`
	Amount *decimal.Decimal `json:"amount"`
	Buyer  *string          `json:"buyer"`
	Seller *string          `json:"seller"`
}

// TokenTransfer is a token movement of a transaction
type TokenTransfer struct {
	Mint   string           `json:"mint"`
	Amount *decimal.Decimal `json:"amount"`
}

// Instruction is a program instruction of a transaction
type Instruction struct {
	ProgramID string `json:"programId"`
	Data      string `json:"data"`
}

// ToChainAsset normalizes a DAS asset into a domain asset
func (a Asset) ToChainAsset() domain.ChainAsset {
	asset := domain.ChainAsset{
		MintAddress: a.ID,
		Burnt:       a.Burnt != nil && *a.Burnt,
	}

	if a.Ownership != nil {
		asset.Owner = nonEmpty(a.Ownership.Owner)
	}

	if a.Content != nil {
		if md := a.Content.Metadata; md != nil {
			if md.Name != nil {
				asset.Name = strings.TrimSpace(*md.Name)
			}
			if len(md.Attributes) > 0 && string(md.Attributes) != "null" {
				asset.Attributes = md.Attributes
			}
		}
		if a.Content.Links != nil {
			asset.ImageURL = nonEmpty(a.Content.Links.Image)
		}
		if asset.ImageURL == nil && len(a.Content.Files) > 0 {
			asset.ImageURL = nonEmpty(a.Content.Files[0].URI)
		}
	}

	return asset
}

// ToTransaction normalizes an enhanced transaction into a domain transaction
func (t EnhancedTransaction) ToTransaction() domain.Transaction {
	tx := domain.Transaction{
		Signature:   t.Signature,
		Type:        t.Type,
		Source:      t.Source,
		Description: t.Description,
		FeePayer:    t.FeePayer,
	}
	if t.Timestamp > 0 {
		tx.Timestamp = time.Unix(t.Timestamp, 0).UTC()
	}

	if t.Events != nil && t.Events.NFT != nil {
		ev := t.Events.NFT
		tx.NFTEvent = &domain.NFTEvent{
			Type:   ev.Type,
			Source: ev.Source,
			Amount: ev.Amount,
			Buyer:  valueOf(ev.Buyer),
			Seller: valueOf(ev.Seller),
		}
	}

	for _, tt := range t.TokenTransfers {
		tx.TokenTransfers = append(tx.TokenTransfers, domain.TokenTransfer{Mint: tt.Mint, Amount: tt.Amount})
	}
	for _, ix := range t.Instructions {
		tx.Instructions = append(tx.Instructions, domain.Instruction{ProgramID: ix.ProgramID, Data: ix.Data})
	}

	return tx
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
