package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadReconcilerConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError string
		validate    func(*testing.T, *ReconcilerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  host: localhost
  port: 5433
  user: testuser
  password: testpass
  dbname: testdb
redis:
  url: "redis://localhost:6379/0"
helius:
  api_key: "helius-key"
rate_limit:
  requests_per_second: 5
reconciler:
  interval: "5m"
  page_size: 500
  tx_window: 3
  dry_run: true
collections:
  - symbol: CelebCatz
    name: Celebrity Catz
    address: H6c8gJqMk2ktfKriGGLB14RKPAz2otz1iPv2AAegetXD
escrows:
  - address: 1BWutmTvYPwDtmw9abTkS4Ssr8no61spGAvW1X6NDix
    marketplace: Magic Eden
`,
			validate: func(t *testing.T, cfg *ReconcilerConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
				assert.Equal(t, "helius-key", cfg.Helius.APIKey)
				assert.Equal(t, domain.DEFAULT_HELIUS_RPC_URL, cfg.Helius.RPCURL)
				assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
				assert.Equal(t, 5*time.Minute, cfg.Reconcile.Interval)
				assert.Equal(t, 500, cfg.Reconcile.PageSize)
				assert.Equal(t, 3, cfg.Reconcile.TxWindow)
				assert.True(t, cfg.Reconcile.DryRun)
				require.Len(t, cfg.Collections, 1)
				assert.Equal(t, "CelebCatz", cfg.Collections[0].Symbol)

				// Escrow addresses keep their case
				escrows := cfg.EscrowSet()
				name, ok := escrows.Marketplace(domain.MAGIC_EDEN_ESCROW)
				assert.True(t, ok)
				assert.Equal(t, domain.MARKETPLACE_MAGIC_EDEN, name)
				assert.Len(t, escrows, 1)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  dbname: testdb
helius:
  api_key: "helius-key"
`,
			validate: func(t *testing.T, cfg *ReconcilerConfig) {
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, domain.DEFAULT_RECONCILE_INTERVAL, cfg.Reconcile.Interval)
				assert.Equal(t, domain.MAX_ASSETS_PAGE_SIZE, cfg.Reconcile.PageSize)
				assert.Equal(t, domain.DEFAULT_TX_WINDOW, cfg.Reconcile.TxWindow)
				assert.Equal(t, 30*time.Minute, cfg.Reconcile.LockTTL)
				assert.False(t, cfg.Reconcile.DryRun)
				assert.Len(t, cfg.Collections, len(DefaultCollections()))
				assert.Equal(t, domain.DefaultEscrowSet(), cfg.EscrowSet())
			},
		},
		{
			name: "missing database host",
			configFile: `
database:
  dbname: testdb
helius:
  api_key: "helius-key"
`,
			expectError: "database.host is required",
		},
		{
			name: "missing helius key",
			configFile: `
database:
  host: localhost
  dbname: testdb
`,
			expectError: "helius.api_key is required",
		},
		{
			name: "page size above indexer maximum",
			configFile: `
database:
  host: localhost
  dbname: testdb
helius:
  api_key: "helius-key"
reconciler:
  page_size: 5000
`,
			expectError: "reconciler.page_size",
		},
		{
			name: "invalid collection address",
			configFile: `
database:
  host: localhost
  dbname: testdb
helius:
  api_key: "helius-key"
collections:
  - symbol: BAD
    address: not-a-key
`,
			expectError: "collections: BAD",
		},
		{
			name: "duplicate collection symbol",
			configFile: `
database:
  host: localhost
  dbname: testdb
helius:
  api_key: "helius-key"
collections:
  - symbol: MM
    address: MMNFTxVtpK2u7PRqRLBf1GDgKYKQg5PpJV1F2ppKxfd
  - symbol: MM
    address: MM3DxqWxszLFGQBwjKCQAAGbQHPRJN3UydswgGrWiPZ
`,
			expectError: "duplicate symbol MM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.configFile)

			cfg, err := LoadReconcilerConfig(path, t.TempDir())
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}

			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadDispatcherConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError string
		validate    func(*testing.T, *DispatcherConfig)
	}{
		{
			name: "valid config file",
			configFile: `
database:
  host: localhost
  dbname: testdb
discord:
  bot_token: "token"
  activity_channel_id: "123"
temporal:
  notification_task_queue: "custom-queue"
dispatcher:
  batch_size: 10
  use_temporal: false
`,
			validate: func(t *testing.T, cfg *DispatcherConfig) {
				assert.Equal(t, "token", cfg.Discord.BotToken)
				assert.Equal(t, "123", cfg.Discord.ActivityChannelID)
				assert.Equal(t, domain.DEFAULT_DISCORD_API_URL, cfg.Discord.APIURL)
				assert.Equal(t, domain.DEFAULT_SITE_BASE_URL, cfg.Discord.SiteBaseURL)
				assert.Equal(t, "custom-queue", cfg.Temporal.NotificationTaskQueue)
				assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
				assert.Equal(t, 10, cfg.Dispatcher.BatchSize)
				assert.Equal(t, 5, cfg.Dispatcher.MaxAttempts)
				assert.Equal(t, 10*time.Second, cfg.Dispatcher.PollInterval)
				assert.False(t, cfg.Dispatcher.UseTemporal)
				assert.Equal(t, 4, cfg.Dispatcher.Worker.WorkerPoolSize)
				assert.Equal(t, 5*time.Second, cfg.Dispatcher.RetryInitialInterval)
				assert.Equal(t, 5*time.Minute, cfg.Dispatcher.RetryMaximumInterval)
				assert.Equal(t, 2*time.Hour, cfg.Dispatcher.ProcessingLease)
			},
		},
		{
			name: "missing bot token",
			configFile: `
database:
  host: localhost
  dbname: testdb
discord:
  activity_channel_id: "123"
`,
			expectError: "discord.bot_token is required",
		},
		{
			name: "missing channel",
			configFile: `
database:
  host: localhost
  dbname: testdb
discord:
  bot_token: "token"
`,
			expectError: "discord.activity_channel_id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.configFile)

			cfg, err := LoadDispatcherConfig(path, t.TempDir())
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}

			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadAPIConfig(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
  cors_origins:
    - https://buxdao.com
database:
  host: localhost
  dbname: testdb
auth:
  api_keys:
    - key-1
    - key-2
`)

	cfg, err := LoadAPIConfig(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"key-1", "key-2"}, cfg.Auth.APIKeys)
	assert.Equal(t, []string{"https://buxdao.com"}, cfg.Server.AllowedOrigins)
	assert.Len(t, cfg.Collections, len(DefaultCollections()))
}

func TestLoadStoreConfig(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: localhost
  dbname: testdb
`)

	cfg, err := LoadStoreConfig(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 2, cfg.Database.MaxOpenConns)

	path = writeConfigFile(t, `
database:
  host: localhost
`)
	_, err = LoadStoreConfig(path, t.TempDir())
	assert.EqualError(t, err, "database.dbname is required")
}

func TestLoadReconcilerConfig_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
database:
  host: localhost
  dbname: testdb
helius:
  api_key: "from-file"
`)
	t.Setenv("NFT_SYNC_HELIUS_API_KEY", "from-env")
	t.Setenv("NFT_SYNC_RECONCILER_DRY_RUN", "true")

	cfg, err := LoadReconcilerConfig(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Helius.APIKey)
	assert.True(t, cfg.Reconcile.DryRun)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "u",
		Password: "p",
		DBName:   "nfts",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=nfts sslmode=disable", cfg.DSN())
}

func TestDomainCollections(t *testing.T) {
	collections := DomainCollections(DefaultCollections())
	require.Len(t, collections, 5)
	for _, c := range collections {
		assert.NoError(t, domain.ValidateAddress(c.Address), c.Symbol)
	}
}
