package domain

import "errors"

var (
	// ErrNFTNotFound is returned when an NFT record does not exist in the store
	ErrNFTNotFound = errors.New("nft not found")

	// ErrNFTAlreadyExists is returned when inserting a mint that is already tracked
	ErrNFTAlreadyExists = errors.New("nft already exists")

	// ErrInvalidAddress is returned when a wallet or mint address is not a valid base58 public key
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidPrice is returned when a SOL price is outside the accepted range
	ErrInvalidPrice = errors.New("invalid price")

	// ErrIndexerResponse is returned when the indexer answers with an error payload
	ErrIndexerResponse = errors.New("indexer returned an error")

	// ErrLockNotAcquired is returned when another run already holds the collection lock
	ErrLockNotAcquired = errors.New("collection lock not acquired")

	// ErrOutboxEntryNotFound is returned when an outbox entry does not exist
	ErrOutboxEntryNotFound = errors.New("outbox entry not found")

	// ErrOutboxEntryNotRequeueable is returned when requeueing an entry that is pending or sent
	ErrOutboxEntryNotRequeueable = errors.New("outbox entry cannot be requeued")

	// ErrUnknownCollection is returned when a collection symbol is not configured
	ErrUnknownCollection = errors.New("unknown collection")
)
