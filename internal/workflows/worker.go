package workflows

import (
	"time"

	"go.temporal.io/sdk/workflow"
)

// WorkerCore defines the interface for the notification workflows
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker_core.go -package=mocks -mock_names=WorkerCore=MockCoreWorker
type WorkerCore interface {
	// DeliverNotification delivers one outbox entry to the activity channel
	DeliverNotification(ctx workflow.Context, outboxID uint64) error
}

type WorkerCoreConfig struct {
	// MaxDeliveryAttempts bounds the activity attempts of one delivery workflow
	MaxDeliveryAttempts int
	// RetryInitialInterval is the delay before the first redelivery
	RetryInitialInterval time.Duration
	// RetryMaximumInterval caps the delay between redeliveries
	RetryMaximumInterval time.Duration
}

// workerCore is the concrete implementation of WorkerCore
type workerCore struct {
	config   WorkerCoreConfig
	executor Executor
}

// NewWorkerCore creates a new worker core instance
func NewWorkerCore(executor Executor, config WorkerCoreConfig) WorkerCore {
	if config.MaxDeliveryAttempts <= 0 {
		config.MaxDeliveryAttempts = 1
	}
	if config.RetryInitialInterval <= 0 {
		config.RetryInitialInterval = 5 * time.Second
	}
	if config.RetryMaximumInterval <= 0 {
		config.RetryMaximumInterval = 5 * time.Minute
	}
	return &workerCore{
		executor: executor,
		config:   config,
	}
}
