package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/buxdao/nft-ownership-sync/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// RedisConfig holds Redis configuration. An empty URL disables Redis backed features.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// HeliusConfig holds indexer API configuration
type HeliusConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	RPCURL      string        `mapstructure:"rpc_url"`
	APIURL      string        `mapstructure:"api_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// DiscordConfig holds Discord bot configuration
type DiscordConfig struct {
	BotToken          string        `mapstructure:"bot_token"`
	ActivityChannelID string        `mapstructure:"activity_channel_id"`
	APIURL            string        `mapstructure:"api_url"`
	SiteBaseURL       string        `mapstructure:"site_base_url"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
}

// TemporalConfig holds Temporal configuration
type TemporalConfig struct {
	HostPort                           string  `mapstructure:"host_port"`
	Namespace                          string  `mapstructure:"namespace"`
	NotificationTaskQueue              string  `mapstructure:"notification_task_queue"`
	MaxConcurrentActivityExecutionSize int     `mapstructure:"max_concurrent_activity_execution_size"`
	WorkerActivitiesPerSecond          float64 `mapstructure:"worker_activities_per_second"`
}

// RateLimitConfig holds outbound request pacing configuration
type RateLimitConfig struct {
	// RequestsPerSecond is the steady rate of indexer requests
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	// RedisKeyPrefix namespaces the distributed limiter keys
	RedisKeyPrefix string `mapstructure:"redis_key_prefix"`
}

// CollectionConfig describes one tracked collection
type CollectionConfig struct {
	Symbol  string `mapstructure:"symbol"`
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
}

// EscrowConfig maps an escrow wallet to its marketplace
type EscrowConfig struct {
	Address     string `mapstructure:"address"`
	Marketplace string `mapstructure:"marketplace"`
}

// ReconcileSettings holds the reconciliation pass tuning
type ReconcileSettings struct {
	Interval         time.Duration `mapstructure:"interval"`
	PageSize         int           `mapstructure:"page_size"`
	TxWindow         int           `mapstructure:"tx_window"`
	LockTTL          time.Duration `mapstructure:"lock_ttl"`
	DryRun           bool          `mapstructure:"dry_run"`
	IdentityCacheTTL time.Duration `mapstructure:"identity_cache_ttl"`
	// BurnCheckWorkers bounds the number of concurrent burn confirmation lookups
	BurnCheckWorkers int `mapstructure:"burn_check_workers"`
}

// DispatcherSettings holds the outbox dispatcher tuning
type DispatcherSettings struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	// RetryInitialInterval and RetryMaximumInterval bound the workflow retry backoff
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaximumInterval time.Duration `mapstructure:"retry_maximum_interval"`
	// ProcessingLease is how long a claimed entry may stay processing before it is claimed again.
	// Keep it above the one hour workflow run timeout.
	ProcessingLease time.Duration `mapstructure:"processing_lease"`
	// UseTemporal delivers through workflows instead of the in-process worker pool
	UseTemporal bool         `mapstructure:"use_temporal"`
	Worker      WorkerConfig `mapstructure:"worker"`
}

// MetricsConfig holds the Prometheus exporter configuration
type MetricsConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// AllowedOrigins lists the CORS origins; empty allows any origin
	AllowedOrigins []string `mapstructure:"cors_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// ReconcilerConfig holds configuration for the reconciler and the CLI
type ReconcilerConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Database    DatabaseConfig     `mapstructure:"database"`
	Redis       RedisConfig        `mapstructure:"redis"`
	Helius      HeliusConfig       `mapstructure:"helius"`
	RateLimit   RateLimitConfig    `mapstructure:"rate_limit"`
	Reconcile   ReconcileSettings  `mapstructure:"reconciler"`
	Collections []CollectionConfig `mapstructure:"collections"`
	Escrows     []EscrowConfig     `mapstructure:"escrows"`
	Metrics     MetricsConfig      `mapstructure:"metrics"`
}

// DispatcherConfig holds configuration for the notification dispatcher
type DispatcherConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig     `mapstructure:"database"`
	Temporal   TemporalConfig     `mapstructure:"temporal"`
	Discord    DiscordConfig      `mapstructure:"discord"`
	Dispatcher DispatcherSettings `mapstructure:"dispatcher"`
	Metrics    MetricsConfig      `mapstructure:"metrics"`
}

// APIConfig holds configuration for the admin API server
type APIConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Server      ServerConfig       `mapstructure:"server"`
	Database    DatabaseConfig     `mapstructure:"database"`
	Auth        AuthConfig         `mapstructure:"auth"`
	Collections []CollectionConfig `mapstructure:"collections"`
}

// StoreConfig holds configuration for tools that only need the database
type StoreConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
}

// DefaultCollections are the collections tracked when none are configured
func DefaultCollections() []CollectionConfig {
	return []CollectionConfig{
		{Symbol: "FCKEDCATZ", Name: "Fcked Catz", Address: "FCKEDcaTZZxf6c3tF3JYb7PhBZzXhQwEBDuSP6GSi9Q"},
		{Symbol: "CelebCatz", Name: "Celebrity Catz", Address: "H6c8gJqMk2ktfKriGGLB14RKPAz2otz1iPv2AAegetXD"},
		{Symbol: "MM", Name: "Money Monsters", Address: "MMNFTxVtpK2u7PRqRLBf1GDgKYKQg5PpJV1F2ppKxfd"},
		{Symbol: "MM3D", Name: "Money Monsters 3D", Address: "MM3DxqWxszLFGQBwjKCQAAGbQHPRJN3UydswgGrWiPZ"},
		{Symbol: "AIBB", Name: "A.I. BitBots", Address: "AiBiTboTxPRL9knyTKZBEJsNAoXvxjpZwYYpZHzYB5Y"},
	}
}

// DomainCollections converts the configured collections to domain collections
func DomainCollections(collections []CollectionConfig) []domain.Collection {
	result := make([]domain.Collection, 0, len(collections))
	for _, c := range collections {
		result = append(result, domain.Collection{Symbol: c.Symbol, Name: c.Name, Address: c.Address})
	}
	return result
}

// EscrowSet builds the escrow set, falling back to the default marketplaces
func (c *ReconcilerConfig) EscrowSet() domain.EscrowSet {
	if len(c.Escrows) == 0 {
		return domain.DefaultEscrowSet()
	}
	set := make(domain.EscrowSet, len(c.Escrows))
	for _, e := range c.Escrows {
		set[e.Address] = e.Marketplace
	}
	return set
}

// LoadReconcilerConfig loads configuration for the reconciler
func LoadReconcilerConfig(configFile string, envPath string) (*ReconcilerConfig, error) {
	v := configureViper("reconciler", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("helius.rpc_url", domain.DEFAULT_HELIUS_RPC_URL)
	v.SetDefault("helius.api_url", domain.DEFAULT_HELIUS_API_URL)
	v.SetDefault("helius.http_timeout", "30s")
	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 1)
	v.SetDefault("rate_limit.redis_key_prefix", "nft-sync:limiter:")
	v.SetDefault("reconciler.interval", domain.DEFAULT_RECONCILE_INTERVAL)
	v.SetDefault("reconciler.page_size", domain.MAX_ASSETS_PAGE_SIZE)
	v.SetDefault("reconciler.tx_window", domain.DEFAULT_TX_WINDOW)
	v.SetDefault("reconciler.lock_ttl", "30m")
	v.SetDefault("reconciler.dry_run", false)
	v.SetDefault("reconciler.identity_cache_ttl", "10m")
	v.SetDefault("reconciler.burn_check_workers", 4)
	v.SetDefault("metrics.listen_address", ":9090")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg ReconcilerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Collections) == 0 {
		cfg.Collections = DefaultCollections()
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}
	if cfg.Helius.APIKey == "" {
		return nil, errors.New("helius.api_key is required")
	}
	if cfg.Reconcile.PageSize <= 0 || cfg.Reconcile.PageSize > domain.MAX_ASSETS_PAGE_SIZE {
		return nil, fmt.Errorf("reconciler.page_size must be between 1 and %d", domain.MAX_ASSETS_PAGE_SIZE)
	}
	if cfg.Reconcile.TxWindow <= 0 {
		return nil, errors.New("reconciler.tx_window must be positive")
	}
	if err := validateCollections(cfg.Collections); err != nil {
		return nil, err
	}
	for _, e := range cfg.Escrows {
		if err := domain.ValidateAddress(e.Address); err != nil {
			return nil, fmt.Errorf("escrows: %w", err)
		}
		if e.Marketplace == "" {
			return nil, fmt.Errorf("escrows: marketplace is required for %s", e.Address)
		}
	}

	return &cfg, nil
}

// LoadDispatcherConfig loads configuration for the notification dispatcher
func LoadDispatcherConfig(configFile string, envPath string) (*DispatcherConfig, error) {
	v := configureViper("dispatcher", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("discord.api_url", domain.DEFAULT_DISCORD_API_URL)
	v.SetDefault("discord.site_base_url", domain.DEFAULT_SITE_BASE_URL)
	v.SetDefault("discord.http_timeout", "15s")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.notification_task_queue", "nft-notifications")
	v.SetDefault("temporal.max_concurrent_activity_execution_size", 10)
	v.SetDefault("temporal.worker_activities_per_second", 5)
	v.SetDefault("dispatcher.poll_interval", "10s")
	v.SetDefault("dispatcher.batch_size", 50)
	v.SetDefault("dispatcher.max_attempts", 5)
	v.SetDefault("dispatcher.retry_initial_interval", "5s")
	v.SetDefault("dispatcher.retry_maximum_interval", "5m")
	v.SetDefault("dispatcher.processing_lease", "2h")
	v.SetDefault("dispatcher.use_temporal", true)
	v.SetDefault("dispatcher.worker.pool_size", 4)
	v.SetDefault("dispatcher.worker.queue_size", 100)
	v.SetDefault("metrics.listen_address", ":9091")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg DispatcherConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}
	if cfg.Discord.BotToken == "" {
		return nil, errors.New("discord.bot_token is required")
	}
	if cfg.Discord.ActivityChannelID == "" {
		return nil, errors.New("discord.activity_channel_id is required")
	}
	if cfg.Dispatcher.MaxAttempts <= 0 {
		return nil, errors.New("dispatcher.max_attempts must be positive")
	}

	return &cfg, nil
}

// LoadAPIConfig loads configuration for the admin API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Collections) == 0 {
		cfg.Collections = DefaultCollections()
	}
	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadStoreConfig loads configuration for tools that only touch the database
func LoadStoreConfig(configFile string, envPath string) (*StoreConfig, error) {
	v := configureViper("nftsync", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 2)
	v.SetDefault("database.max_idle_conns", 1)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg StoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// readConfig reads the config file, tolerating its absence
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func validateDatabase(db DatabaseConfig) error {
	if db.Host == "" {
		return errors.New("database.host is required")
	}
	if db.DBName == "" {
		return errors.New("database.dbname is required")
	}
	return nil
}

func validateCollections(collections []CollectionConfig) error {
	seen := make(map[string]struct{}, len(collections))
	for _, c := range collections {
		if c.Symbol == "" {
			return errors.New("collections: symbol is required")
		}
		if _, dup := seen[c.Symbol]; dup {
			return fmt.Errorf("collections: duplicate symbol %s", c.Symbol)
		}
		seen[c.Symbol] = struct{}{}
		if err := domain.ValidateAddress(c.Address); err != nil {
			return fmt.Errorf("collections: %s: %w", c.Symbol, err)
		}
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search order: current directory, service directory, config directory
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("NFT_SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all scalar config keys.
// This is required for viper to map env vars to struct fields when no config file exists.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Redis
		"redis.url",
		// Helius
		"helius.api_key",
		"helius.rpc_url",
		"helius.api_url",
		"helius.http_timeout",
		// Discord
		"discord.bot_token",
		"discord.activity_channel_id",
		"discord.api_url",
		"discord.site_base_url",
		"discord.http_timeout",
		// Temporal
		"temporal.host_port",
		"temporal.namespace",
		"temporal.notification_task_queue",
		"temporal.max_concurrent_activity_execution_size",
		"temporal.worker_activities_per_second",
		// Rate limit
		"rate_limit.requests_per_second",
		"rate_limit.burst",
		"rate_limit.redis_key_prefix",
		// Reconciler
		"reconciler.interval",
		"reconciler.page_size",
		"reconciler.tx_window",
		"reconciler.lock_ttl",
		"reconciler.dry_run",
		"reconciler.identity_cache_ttl",
		"reconciler.burn_check_workers",
		// Dispatcher
		"dispatcher.poll_interval",
		"dispatcher.batch_size",
		"dispatcher.max_attempts",
		"dispatcher.retry_initial_interval",
		"dispatcher.retry_maximum_interval",
		"dispatcher.processing_lease",
		"dispatcher.use_temporal",
		"dispatcher.worker.pool_size",
		"dispatcher.worker.queue_size",
		// Metrics
		"metrics.listen_address",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Shared base first, then local, then optional per-service local
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile)) // later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
