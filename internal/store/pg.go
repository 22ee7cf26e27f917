package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

const maxErrorMessageLength = 1024

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// =============================================================================
// NFT records
// =============================================================================

// GetNFTsBySymbol returns every stored record of a collection
func (s *pgStore) GetNFTsBySymbol(ctx context.Context, symbol string) ([]schema.NFTMetadata, error) {
	var nfts []schema.NFTMetadata
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("mint_address ASC").
		Find(&nfts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get nfts by symbol: %w", err)
	}

	return nfts, nil
}

// GetNFTByMint returns a record by mint address
func (s *pgStore) GetNFTByMint(ctx context.Context, mintAddress string) (*schema.NFTMetadata, error) {
	var nft schema.NFTMetadata
	err := s.db.WithContext(ctx).Where("mint_address = ?", mintAddress).First(&nft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get nft: %w", err)
	}

	return &nft, nil
}

// GetCollectionStats returns listing counts of a collection
func (s *pgStore) GetCollectionStats(ctx context.Context, symbol string) (*CollectionStats, error) {
	var row struct {
		Total      int64
		Listed     int64
		FloorPrice decimal.NullDecimal
	}

	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_listed) AS listed,
			MIN(list_price) FILTER (WHERE is_listed) AS floor_price
		FROM nft_metadata
		WHERE symbol = ?
	`, symbol).Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get collection stats: %w", err)
	}

	stats := &CollectionStats{
		Symbol: symbol,
		Total:  row.Total,
		Listed: row.Listed,
	}
	if row.Total > 0 {
		stats.ListedPercent = math.Round(float64(row.Listed)/float64(row.Total)*10000) / 100
	}
	if row.FloorPrice.Valid {
		floor := row.FloorPrice.Decimal
		stats.FloorPrice = &floor
	}

	return stats, nil
}

// ownershipUpdates builds the column map of an ownership update.
// Listing columns are always written so that they are set or cleared together.
func ownershipUpdates(update *NFTOwnershipUpdate, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"owner_wallet":        update.OwnerWallet,
		"is_listed":           update.IsListed,
		"list_price":          update.ListPrice,
		"marketplace":         update.Marketplace,
		"original_lister":     update.OriginalLister,
		"lister_discord_name": update.ListerDiscordName,
		"updated_at":          now,
	}

	if update.LastSalePrice != nil {
		updates["last_sale_price"] = *update.LastSalePrice
	}
	if update.RefreshOwnerIdentity {
		updates["owner_discord_id"] = update.OwnerDiscordID
		updates["owner_name"] = update.OwnerName
	}

	return updates
}

// ApplyOwnershipChange applies one record mutation with its journal row and outbox entry
func (s *pgStore) ApplyOwnershipChange(ctx context.Context, input ApplyOwnershipChangeInput) (*ApplyResult, error) {
	result := &ApplyResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// 1. Mutate the record
		switch input.Kind {
		case MutationInsert:
			if input.Record == nil {
				return fmt.Errorf("record is required for %s", input.Kind)
			}

			// A mint inserted by a concurrent run is left untouched
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "mint_address"}},
				DoNothing: true,
			}).Create(input.Record)
			if res.Error != nil {
				return fmt.Errorf("failed to insert nft: %w", res.Error)
			}
			result.RowsAffected = res.RowsAffected

		case MutationUpdate:
			if input.Update == nil {
				return fmt.Errorf("update is required for %s", input.Kind)
			}

			res := tx.Model(&schema.NFTMetadata{}).
				Where("mint_address = ?", input.MintAddress).
				Updates(ownershipUpdates(input.Update, now))
			if res.Error != nil {
				return fmt.Errorf("failed to update nft: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return domain.ErrNFTNotFound
			}
			result.RowsAffected = res.RowsAffected

		case MutationDelete:
			res := tx.Where("mint_address = ?", input.MintAddress).Delete(&schema.NFTMetadata{})
			if res.Error != nil {
				return fmt.Errorf("failed to delete nft: %w", res.Error)
			}
			result.RowsAffected = res.RowsAffected

		default:
			return fmt.Errorf("unknown mutation kind: %s", input.Kind)
		}

		// 2. Journal the change, once per dedup key
		occurredAt := input.Event.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = now
		}
		event := schema.OwnershipEvent{
			EventID:       input.Event.EventID,
			DedupKey:      input.Event.DedupKey,
			RunID:         input.Event.RunID,
			MintAddress:   input.MintAddress,
			Symbol:        input.Symbol,
			EventType:     input.Event.EventType,
			PreviousOwner: input.Event.PreviousOwner,
			NewOwner:      input.Event.NewOwner,
			Marketplace:   input.Event.Marketplace,
			Price:         input.Event.Price,
			Signature:     input.Event.Signature,
			Meta:          datatypes.JSON(input.Event.Meta),
			OccurredAt:    occurredAt,
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).Create(&event)
		if res.Error != nil {
			return fmt.Errorf("failed to create ownership event: %w", res.Error)
		}
		result.Journaled = res.RowsAffected > 0

		// 3. Enqueue the notification, once per dedup key
		if input.Notification == nil {
			return nil
		}

		entry := schema.NotificationOutbox{
			EventID:     input.Notification.EventID,
			DedupKey:    input.Notification.DedupKey,
			EventType:   input.Notification.EventType,
			MintAddress: input.MintAddress,
			Payload:     datatypes.JSON(input.Notification.Payload),
			Status:      schema.OutboxStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		res = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).Create(&entry)
		if res.Error != nil {
			return fmt.Errorf("failed to create outbox entry: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			result.OutboxID = entry.ID
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetOwnershipEventsByMint returns the journal of a mint, newest first
func (s *pgStore) GetOwnershipEventsByMint(ctx context.Context, mintAddress string, limit int) ([]schema.OwnershipEvent, error) {
	var events []schema.OwnershipEvent
	query := s.db.WithContext(ctx).
		Where("mint_address = ?", mintAddress).
		Order("occurred_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get ownership events: %w", err)
	}

	return events, nil
}

// =============================================================================
// Identity
// =============================================================================

// GetDiscordIdentityByWallet returns the discord account linked to a wallet.
// The earliest linked account wins when a wallet is linked more than once.
func (s *pgStore) GetDiscordIdentityByWallet(ctx context.Context, walletAddress string) (*DiscordIdentity, error) {
	var row struct {
		DiscordID   string
		DiscordName *string
	}

	res := s.db.WithContext(ctx).Raw(`
		SELECT uw.discord_id, ur.discord_name
		FROM user_wallets uw
		LEFT JOIN user_roles ur ON ur.discord_id = uw.discord_id
		WHERE uw.wallet_address = ?
		ORDER BY uw.connected_at ASC, uw.id ASC
		LIMIT 1
	`, walletAddress).Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to get discord identity: %w", res.Error)
	}
	if res.RowsAffected == 0 || row.DiscordID == "" {
		return nil, nil
	}

	return &DiscordIdentity{
		DiscordID:   row.DiscordID,
		DiscordName: row.DiscordName,
	}, nil
}

// =============================================================================
// Notification outbox
// =============================================================================

// GetOutboxEntryByID retrieves an outbox entry by id
func (s *pgStore) GetOutboxEntryByID(ctx context.Context, id uint64) (*schema.NotificationOutbox, error) {
	var entry schema.NotificationOutbox
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOutboxEntryNotFound
		}
		return nil, fmt.Errorf("failed to get outbox entry: %w", err)
	}

	return &entry, nil
}

// GetOutboxEntries lists outbox entries, oldest first
func (s *pgStore) GetOutboxEntries(ctx context.Context, filter OutboxQueryFilter) ([]schema.NotificationOutbox, error) {
	query := s.db.WithContext(ctx).Model(&schema.NotificationOutbox{})
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(int(filter.Offset)) //nolint:gosec,G115
	}

	var entries []schema.NotificationOutbox
	if err := query.Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get outbox entries: %w", err)
	}

	return entries, nil
}

// ClaimPendingOutboxEntries marks up to limit pending entries as processing and returns them.
// Processing entries not touched for longer than lease are claimed again, a lease <= 0
// disables that. Rows locked by another dispatcher are skipped.
func (s *pgStore) ClaimPendingOutboxEntries(ctx context.Context, limit int, lease time.Duration) ([]schema.NotificationOutbox, error) {
	var entries []schema.NotificationOutbox

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if lease > 0 {
			query = query.Where("status = ? OR (status = ? AND updated_at < ?)",
				schema.OutboxStatusPending,
				schema.OutboxStatusProcessing,
				time.Now().UTC().Add(-lease))
		} else {
			query = query.Where("status = ?", schema.OutboxStatusPending)
		}

		err := query.
			Order("id ASC").
			Limit(limit).
			Find(&entries).Error
		if err != nil {
			return fmt.Errorf("failed to lock pending outbox entries: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}

		ids := make([]uint64, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}

		now := time.Now().UTC()
		err = tx.Model(&schema.NotificationOutbox{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":     schema.OutboxStatusProcessing,
				"updated_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to claim outbox entries: %w", err)
		}

		for i := range entries {
			entries[i].Status = schema.OutboxStatusProcessing
			entries[i].UpdatedAt = now
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// SetOutboxWorkflow records the workflow delivering an entry
func (s *pgStore) SetOutboxWorkflow(ctx context.Context, id uint64, workflowID, runID string) error {
	res := s.db.WithContext(ctx).
		Model(&schema.NotificationOutbox{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"workflow_id":     workflowID,
			"workflow_run_id": runID,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set outbox workflow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOutboxEntryNotFound
	}

	return nil
}

// UpdateOutboxStatus records the result of a delivery attempt
func (s *pgStore) UpdateOutboxStatus(ctx context.Context, input UpdateOutboxStatusInput) error {
	if !schema.IsValidOutboxStatus(input.Status) {
		return fmt.Errorf("invalid outbox status: %s", input.Status)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":          input.Status,
		"attempts":        input.Attempts,
		"last_attempt_at": now,
		"updated_at":      now,
	}

	errorMessage := input.ErrorMessage
	if len(errorMessage) > maxErrorMessageLength {
		errorMessage = errorMessage[:maxErrorMessageLength]
	}
	updates["error_message"] = errorMessage

	if input.Status == schema.OutboxStatusSent {
		updates["sent_at"] = now
	}

	res := s.db.WithContext(ctx).
		Model(&schema.NotificationOutbox{}).
		Where("id = ?", input.ID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update outbox status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOutboxEntryNotFound
	}

	return nil
}

// requeueUpdates resets an entry for a fresh round of delivery attempts
func requeueUpdates() map[string]interface{} {
	return map[string]interface{}{
		"status":        schema.OutboxStatusPending,
		"attempts":      0,
		"error_message": "",
		"updated_at":    time.Now().UTC(),
	}
}

// RequeueOutboxEntry moves a failed or stuck entry back to pending
func (s *pgStore) RequeueOutboxEntry(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).
		Model(&schema.NotificationOutbox{}).
		Where("id = ? AND status IN ?", id, []schema.OutboxStatus{schema.OutboxStatusFailed, schema.OutboxStatusProcessing}).
		Updates(requeueUpdates())
	if res.Error != nil {
		return fmt.Errorf("failed to requeue outbox entry: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Distinguish a missing entry from one in a non requeueable status
	entry, err := s.GetOutboxEntryByID(ctx, id)
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: status is %s", domain.ErrOutboxEntryNotRequeueable, entry.Status)
}

// RequeueFailedOutboxEntries moves up to limit failed entries back to pending, oldest first
func (s *pgStore) RequeueFailedOutboxEntries(ctx context.Context, limit int) (int64, error) {
	subQuery := s.db.WithContext(ctx).
		Model(&schema.NotificationOutbox{}).
		Select("id").
		Where("status = ?", schema.OutboxStatusFailed).
		Order("id ASC")
	if limit > 0 {
		subQuery = subQuery.Limit(limit)
	}

	res := s.db.WithContext(ctx).
		Model(&schema.NotificationOutbox{}).
		Where("id IN (?)", subQuery).
		Updates(requeueUpdates())
	if res.Error != nil {
		return 0, fmt.Errorf("failed to requeue failed outbox entries: %w", res.Error)
	}

	return res.RowsAffected, nil
}

// =============================================================================
// Key-value store
// =============================================================================

// SetKeyValue stores a value in the key-value store
func (s *pgStore) SetKeyValue(ctx context.Context, key string, value string) error {
	kv := schema.KeyValueStore{
		Key:   key,
		Value: value,
	}

	err := s.db.WithContext(ctx).Save(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to set key-value: %w", err)
	}

	return nil
}

// GetKeyValue retrieves a value by key from the key-value store
func (s *pgStore) GetKeyValue(ctx context.Context, key string) (string, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get key-value: %w", err)
	}

	return kv.Value, nil
}

// GetAllKeyValuesByPrefix retrieves all key-value pairs with a specific prefix
func (s *pgStore) GetAllKeyValuesByPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	var kvs []schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key LIKE ?", prefix+"%").Find(&kvs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get key-values by prefix: %w", err)
	}

	result := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		result[kv.Key] = kv.Value
	}

	return result, nil
}
