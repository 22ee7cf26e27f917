package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buxdao/nft-ownership-sync/internal/api/shared/dto"
	apierrors "github.com/buxdao/nft-ownership-sync/internal/api/shared/errors"
	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/reconcile"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

const (
	DEFAULT_PAGE_SIZE = 20
	MAX_PAGE_SIZE     = 100
)

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/mock_api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// GetNFT retrieves a tracked NFT by mint address, optionally with its latest ownership events
	GetNFT(ctx context.Context, mintAddress string, eventsLimit int) (*dto.NFTResponse, error)

	// GetCollectionStats retrieves the listing stats of a configured collection
	GetCollectionStats(ctx context.Context, symbol string) (*store.CollectionStats, error)

	// GetLastRun retrieves the summary of the last reconciliation pass of a collection
	GetLastRun(ctx context.Context, symbol string) (*reconcile.CollectionSummary, error)

	// ListOutboxEntries lists outbox entries, oldest first
	ListOutboxEntries(ctx context.Context, statuses []string, limit int, offset uint64) (*dto.OutboxListResponse, error)

	// RequeueOutboxEntry moves a failed or stuck entry back to pending
	RequeueOutboxEntry(ctx context.Context, id uint64) error

	// RequeueFailedOutboxEntries moves up to limit failed entries back to pending
	RequeueFailedOutboxEntries(ctx context.Context, limit int) (*dto.RequeueResponse, error)
}

type executor struct {
	store       store.Store
	collections map[string]domain.Collection
}

// NewExecutor creates an executor answering for the given collections
func NewExecutor(store store.Store, collections []domain.Collection) Executor {
	bySymbol := make(map[string]domain.Collection, len(collections))
	for _, c := range collections {
		bySymbol[c.Symbol] = c
	}
	return &executor{store: store, collections: bySymbol}
}

func (e *executor) GetNFT(ctx context.Context, mintAddress string, eventsLimit int) (*dto.NFTResponse, error) {
	if err := domain.ValidateAddress(mintAddress); err != nil {
		return nil, apierrors.NewBadRequestError("Invalid mint address", err.Error())
	}

	nft, err := e.store.GetNFTByMint(ctx, mintAddress)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get nft: %v", err))
	}
	if nft == nil {
		return nil, nil
	}

	nftDTO := dto.MapNFTToDTO(nft)

	if eventsLimit > 0 {
		events, err := e.store.GetOwnershipEventsByMint(ctx, mintAddress, min(eventsLimit, MAX_PAGE_SIZE))
		if err != nil {
			return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get ownership events: %v", err))
		}
		nftDTO.Events = make([]dto.OwnershipEventResponse, 0, len(events))
		for i := range events {
			nftDTO.Events = append(nftDTO.Events, dto.MapOwnershipEventToDTO(&events[i]))
		}
	}

	return nftDTO, nil
}

func (e *executor) GetCollectionStats(ctx context.Context, symbol string) (*store.CollectionStats, error) {
	if _, ok := e.collections[symbol]; !ok {
		return nil, nil
	}

	stats, err := e.store.GetCollectionStats(ctx, symbol)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get collection stats: %v", err))
	}

	return stats, nil
}

func (e *executor) GetLastRun(ctx context.Context, symbol string) (*reconcile.CollectionSummary, error) {
	if _, ok := e.collections[symbol]; !ok {
		return nil, nil
	}

	value, err := e.store.GetKeyValue(ctx, reconcile.LastRunKey(symbol))
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get last run: %v", err))
	}
	if value == "" {
		return nil, nil
	}

	var summary reconcile.CollectionSummary
	if err := json.Unmarshal([]byte(value), &summary); err != nil {
		return nil, apierrors.NewInternalError("Failed to decode last run", err.Error())
	}

	return &summary, nil
}

func (e *executor) ListOutboxEntries(ctx context.Context, statuses []string, limit int, offset uint64) (*dto.OutboxListResponse, error) {
	filter := store.OutboxQueryFilter{
		Limit:  limit,
		Offset: offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = DEFAULT_PAGE_SIZE
	}
	if filter.Limit > MAX_PAGE_SIZE {
		return nil, apierrors.NewValidationError(fmt.Sprintf("limit must be at most %d", MAX_PAGE_SIZE))
	}

	for _, s := range statuses {
		status := schema.OutboxStatus(s)
		switch status {
		case schema.OutboxStatusPending, schema.OutboxStatusProcessing, schema.OutboxStatusSent, schema.OutboxStatusFailed:
			filter.Statuses = append(filter.Statuses, status)
		default:
			return nil, apierrors.NewValidationError(fmt.Sprintf("unknown status %q", s))
		}
	}

	entries, err := e.store.GetOutboxEntries(ctx, filter)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to list outbox entries: %v", err))
	}

	resp := &dto.OutboxListResponse{
		Items: make([]dto.OutboxEntryResponse, 0, len(entries)),
	}
	for i := range entries {
		resp.Items = append(resp.Items, dto.MapOutboxEntryToDTO(&entries[i]))
	}
	if len(entries) == filter.Limit {
		next := offset + uint64(len(entries)) //nolint:gosec,G115
		resp.Offset = &next
	}

	return resp, nil
}

func (e *executor) RequeueOutboxEntry(ctx context.Context, id uint64) error {
	err := e.store.RequeueOutboxEntry(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrOutboxEntryNotFound):
		return apierrors.NewNotFoundError("Outbox entry not found")
	case errors.Is(err, domain.ErrOutboxEntryNotRequeueable):
		return apierrors.NewConflictError("Outbox entry cannot be requeued", err.Error())
	default:
		return apierrors.NewDatabaseError(fmt.Sprintf("Failed to requeue outbox entry: %v", err))
	}
}

func (e *executor) RequeueFailedOutboxEntries(ctx context.Context, limit int) (*dto.RequeueResponse, error) {
	if limit < 0 {
		return nil, apierrors.NewValidationError("limit must not be negative")
	}

	n, err := e.store.RequeueFailedOutboxEntries(ctx, limit)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to requeue failed outbox entries: %v", err))
	}

	return &dto.RequeueResponse{Requeued: n}, nil
}
