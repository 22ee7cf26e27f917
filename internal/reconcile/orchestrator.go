package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buxdao/nft-ownership-sync/internal/adapter"
	"github.com/buxdao/nft-ownership-sync/internal/classifier"
	"github.com/buxdao/nft-ownership-sync/internal/domain"
	"github.com/buxdao/nft-ownership-sync/internal/lock"
	"github.com/buxdao/nft-ownership-sync/internal/logger"
	"github.com/buxdao/nft-ownership-sync/internal/metrics"
	"github.com/buxdao/nft-ownership-sync/internal/providers/helius"
	"github.com/buxdao/nft-ownership-sync/internal/store"
	"github.com/buxdao/nft-ownership-sync/internal/store/schema"
)

// Config holds the orchestrator configuration
type Config struct {
	Collections []domain.Collection
	Escrows     domain.EscrowSet
	// TxWindow bounds how many of the newest transactions are classified
	TxWindow int
	// DryRun classifies and logs without writing anything
	DryRun bool
}

// Orchestrator drives reconciliation passes over the configured collections
//
//go:generate mockgen -source=orchestrator.go -destination=../mocks/orchestrator.go -package=mocks -mock_names=Orchestrator=MockOrchestrator
type Orchestrator interface {
	// Run reconciles the collections with the given symbols, or all of them when none are given.
	// A failed collection is recorded in the summary and does not stop the run.
	Run(ctx context.Context, symbols ...string) (*RunSummary, error)
}

type orchestrator struct {
	config     Config
	fetcher    SnapshotFetcher
	client     helius.Client
	store      store.Store
	burns      BurnChecker
	applier    Applier
	locker     lock.Locker
	classifier *classifier.Classifier
	clock      adapter.Clock
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(
	config Config,
	fetcher SnapshotFetcher,
	client helius.Client,
	st store.Store,
	burns BurnChecker,
	applier Applier,
	locker lock.Locker,
	clock adapter.Clock,
) Orchestrator {
	if config.Escrows == nil {
		config.Escrows = domain.DefaultEscrowSet()
	}
	if config.TxWindow <= 0 {
		config.TxWindow = domain.DEFAULT_TX_WINDOW
	}
	return &orchestrator{
		config:     config,
		fetcher:    fetcher,
		client:     client,
		store:      st,
		burns:      burns,
		applier:    applier,
		locker:     locker,
		classifier: classifier.New(),
		clock:      clock,
	}
}

func (o *orchestrator) Run(ctx context.Context, symbols ...string) (*RunSummary, error) {
	collections, err := o.selectCollections(symbols)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{
		RunID:     uuid.NewString(),
		DryRun:    o.config.DryRun,
		StartedAt: o.clock.Now(),
	}

	logger.InfoCtx(ctx, "Starting reconciliation run",
		zap.String("run_id", summary.RunID),
		zap.Int("collections", len(collections)),
		zap.Bool("dry_run", o.config.DryRun),
	)

	for _, collection := range collections {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = o.clock.Now()
			return summary, err
		}

		result, err := o.runCollection(ctx, summary.RunID, collection)
		if err != nil {
			result.Error = err.Error()
			if errors.Is(err, domain.ErrLockNotAcquired) {
				metrics.ReconcileRuns.WithLabelValues(collection.Symbol, "skipped").Inc()
				logger.WarnCtx(ctx, "Collection is being reconciled elsewhere, skipping",
					zap.String("collection", collection.Symbol),
				)
			} else {
				metrics.ReconcileRuns.WithLabelValues(collection.Symbol, "failed").Inc()
				logger.ErrorCtx(ctx, fmt.Errorf("failed to reconcile collection: %w", err),
					zap.String("collection", collection.Symbol),
					zap.String("run_id", summary.RunID),
				)
			}
		} else {
			metrics.ReconcileRuns.WithLabelValues(collection.Symbol, "ok").Inc()
		}

		summary.Collections = append(summary.Collections, result)
	}

	summary.FinishedAt = o.clock.Now()
	totals := summary.Totals()
	logger.InfoCtx(ctx, "Reconciliation run finished",
		zap.String("run_id", summary.RunID),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
		zap.Int("nfts_found", totals.NFTsFound),
		zap.Int("nfts_in_db", totals.NFTsInDB),
		zap.Int("new", totals.New),
		zap.Int("transfers", totals.Transfers),
		zap.Int("sales", totals.Sales),
		zap.Int("listings", totals.Listings),
		zap.Int("delists", totals.Delists),
		zap.Int("burns", totals.Burns),
		zap.Int("unknown", totals.Unknown),
		zap.Int("errors", totals.Errors),
		zap.Strings("failed_collections", summary.Failed()),
	)

	return summary, nil
}

func (o *orchestrator) selectCollections(symbols []string) ([]domain.Collection, error) {
	if len(symbols) == 0 {
		return o.config.Collections, nil
	}

	bySymbol := make(map[string]domain.Collection, len(o.config.Collections))
	for _, c := range o.config.Collections {
		bySymbol[c.Symbol] = c
	}

	selected := make([]domain.Collection, 0, len(symbols))
	for _, symbol := range symbols {
		c, ok := bySymbol[symbol]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, symbol)
		}
		selected = append(selected, c)
	}
	return selected, nil
}

// burnCandidate is a stored record whose asset may be burnt
type burnCandidate struct {
	record schema.NFTMetadata
	// confirmed is set when the snapshot itself reports the asset burnt
	confirmed bool
	// missing is set when the asset is absent from the snapshot
	missing bool
}

// runCollection reconciles one collection under its lock. Both snapshots are taken
// once at the start of the pass.
func (o *orchestrator) runCollection(ctx context.Context, runID string, collection domain.Collection) (summary CollectionSummary, err error) {
	summary = CollectionSummary{
		RunID:     runID,
		Symbol:    collection.Symbol,
		DryRun:    o.config.DryRun,
		StartedAt: o.clock.Now(),
	}
	defer func() {
		summary.FinishedAt = o.clock.Now()
	}()

	release, err := o.locker.TryAcquire(ctx, collection.Symbol)
	if err != nil {
		return summary, err
	}
	defer func() {
		// Released even when the run context is canceled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("collection", collection.Symbol))
		}
	}()

	assets, err := o.fetcher.FetchCollection(ctx, collection)
	if err != nil {
		return summary, err
	}
	summary.NFTsFound = len(assets)
	metrics.CollectionSize.WithLabelValues(collection.Symbol).Set(float64(len(assets)))

	records, err := o.store.GetNFTsBySymbol(ctx, collection.Symbol)
	if err != nil {
		return summary, fmt.Errorf("failed to read stored records: %w", err)
	}
	summary.NFTsInDB = len(records)

	diff := Diff(assets, records)
	logger.InfoCtx(ctx, "Computed collection diff",
		zap.String("collection", collection.Symbol),
		zap.Int("new", len(diff.New)),
		zap.Int("ownerless", len(diff.Ownerless)),
		zap.Int("missing", len(diff.Missing)),
		zap.Int("changed", len(diff.Changed)),
		zap.Int("unchanged", len(diff.Unchanged)),
	)

	run := RunContext{RunID: runID, Collection: collection}

	var candidates []burnCandidate
	for _, change := range diff.Changed {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if change.NewOwner() == nil {
			candidates = append(candidates, burnCandidate{record: change.Record, confirmed: change.Asset.Burnt})
			continue
		}
		o.reconcileChange(ctx, run, change, &summary)
	}

	for _, record := range diff.Missing {
		candidates = append(candidates, burnCandidate{record: record, missing: true})
	}
	if err := o.reconcileBurns(ctx, run, candidates, &summary); err != nil {
		return summary, err
	}

	for _, asset := range diff.New {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		o.insertNew(ctx, run, asset, &summary)
	}

	for _, asset := range diff.Ownerless {
		logger.WarnCtx(ctx, "New asset has no owner, skipping",
			zap.String("collection", collection.Symbol),
			zap.String("mint", asset.MintAddress),
		)
		summary.Skipped++
	}

	summary.FinishedAt = o.clock.Now()
	metrics.ReconcileDuration.WithLabelValues(collection.Symbol).Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	metrics.LastRunTimestamp.WithLabelValues(collection.Symbol).Set(float64(summary.FinishedAt.Unix()))

	if !o.config.DryRun {
		o.storeSummary(ctx, summary)
	}

	return summary, nil
}

// reconcileChange classifies and applies one owner change. Failures are counted and
// leave the record untouched for the next pass.
func (o *orchestrator) reconcileChange(ctx context.Context, run RunContext, change Change, summary *CollectionSummary) {
	record := change.Record
	symbol := run.Collection.Symbol

	txs, err := o.client.GetTransactions(ctx, record.MintAddress)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to fetch transaction history, leaving change for next pass",
			zap.String("collection", symbol),
			zap.String("mint", record.MintAddress),
			zap.Error(err),
		)
		metrics.OwnershipEvents.WithLabelValues(symbol, string(domain.EventTypeUnknown)).Inc()
		summary.count(domain.EventTypeUnknown)
		return
	}

	in := classifier.Input{
		MintAddress:   record.MintAddress,
		PreviousOwner: record.OwnerWallet,
		NewOwner:      change.NewOwner(),
		Escrows:       o.config.Escrows,
		Transactions:  txs,
		WindowSize:    o.config.TxWindow,
		Now:           o.clock.Now(),
	}
	if record.IsListed {
		in.OriginalLister = record.OriginalLister
	}

	ev, rule := o.classifier.Classify(in)
	o.apply(ctx, run, record, ev, rule, summary)
}

// reconcileBurns deletes the candidates whose burn is confirmed by a direct lookup
func (o *orchestrator) reconcileBurns(ctx context.Context, run RunContext, candidates []burnCandidate, summary *CollectionSummary) error {
	if len(candidates) == 0 {
		return nil
	}

	var lookups []string
	for _, c := range candidates {
		if !c.confirmed {
			lookups = append(lookups, c.record.MintAddress)
		}
	}
	statuses := o.burns.Check(ctx, lookups)

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		mint := c.record.MintAddress
		status := BurnStatusBurnt
		if !c.confirmed {
			status = statuses[mint]
		}

		switch status {
		case BurnStatusBurnt:
			ev, rule := o.classifier.Classify(classifier.Input{
				MintAddress:    mint,
				PreviousOwner:  c.record.OwnerWallet,
				OriginalLister: c.record.OriginalLister,
				Escrows:        o.config.Escrows,
				Now:            o.clock.Now(),
			})
			o.apply(ctx, run, c.record, ev, rule, summary)

		case BurnStatusAlive:
			if c.missing {
				logger.WarnCtx(ctx, "Stored asset is missing from the collection but not burnt",
					zap.String("collection", run.Collection.Symbol),
					zap.String("mint", mint),
				)
				summary.Skipped++
			} else {
				logger.WarnCtx(ctx, "Asset reports no owner but is not burnt",
					zap.String("collection", run.Collection.Symbol),
					zap.String("mint", mint),
				)
				summary.count(domain.EventTypeUnknown)
			}

		default:
			summary.count(domain.EventTypeUnknown)
			metrics.OwnershipEvents.WithLabelValues(run.Collection.Symbol, string(domain.EventTypeUnknown)).Inc()
		}
	}

	return nil
}

// apply writes a classified event, or only logs it in dry-run mode
func (o *orchestrator) apply(ctx context.Context, run RunContext, record schema.NFTMetadata, ev domain.ClassifiedEvent, rule string, summary *CollectionSummary) {
	symbol := run.Collection.Symbol
	fields := []zap.Field{
		zap.String("collection", symbol),
		zap.String("mint", record.MintAddress),
		zap.String("event_type", string(ev.Type)),
		zap.String("rule", rule),
		zap.String("previous_owner", ev.PreviousOwner),
		zap.Stringp("new_owner", ev.NewOwner),
		zap.Stringp("marketplace", ev.Marketplace),
		zap.String("signature", ev.Signature),
	}
	if ev.Price != nil {
		fields = append(fields, zap.String("price", domain.FormatSOL(*ev.Price)))
	}

	metrics.ClassifierRules.WithLabelValues(rule).Inc()

	if o.config.DryRun {
		logger.InfoCtx(ctx, "Classified ownership change (dry run)", fields...)
		summary.count(ev.Type)
		return
	}

	result, err := o.applier.ApplyChange(ctx, run, record, ev, rule)
	if err != nil {
		logger.ErrorCtx(ctx, err, fields...)
		metrics.ReconcileErrors.WithLabelValues(symbol, "apply").Inc()
		summary.Errors++
		return
	}

	fields = append(fields,
		zap.Bool("journaled", result.Journaled),
		zap.Uint64("outbox_id", result.OutboxID),
	)
	logger.InfoCtx(ctx, "Applied ownership change", fields...)
	metrics.OwnershipEvents.WithLabelValues(symbol, string(ev.Type)).Inc()
	summary.count(ev.Type)
}

func (o *orchestrator) insertNew(ctx context.Context, run RunContext, asset domain.ChainAsset, summary *CollectionSummary) {
	symbol := run.Collection.Symbol

	if o.config.DryRun {
		logger.InfoCtx(ctx, "New asset (dry run)",
			zap.String("collection", symbol),
			zap.String("mint", asset.MintAddress),
			zap.Stringp("owner", asset.Owner),
		)
		summary.count(domain.EventTypeNew)
		return
	}

	if _, err := o.applier.InsertNew(ctx, run, asset); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("collection", symbol),
			zap.String("mint", asset.MintAddress),
		)
		metrics.ReconcileErrors.WithLabelValues(symbol, "insert").Inc()
		summary.Errors++
		return
	}

	metrics.OwnershipEvents.WithLabelValues(symbol, string(domain.EventTypeNew)).Inc()
	summary.count(domain.EventTypeNew)
}

// storeSummary keeps the summary for the admin API. Failing to store it does not fail the pass.
func (o *orchestrator) storeSummary(ctx context.Context, summary CollectionSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to marshal run summary: %w", err))
		return
	}
	if err := o.store.SetKeyValue(ctx, LastRunKey(summary.Symbol), string(data)); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to store run summary: %w", err),
			zap.String("collection", summary.Symbol),
		)
	}
}
