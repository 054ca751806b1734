package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Driver string
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	PublicURL string
	MaxBytes  int64
}

type SecurityConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
}

type WorkerConfig struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
	SweepSchedule string
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Database         DatabaseConfig
	Postgres         PostgresConfig
	Mongo            MongoConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Worker           WorkerConfig
	Logging          LoggingConfig
	AllowCORSOrigins []string
}

// Load reads .env (when present), config.yaml and ESTATESCOUT_* variables, in
// increasing order of precedence.
func Load() (*AppConfig, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("ESTATESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Security.BcryptCost < MinBcryptCost {
		cfg.Security.BcryptCost = MinBcryptCost
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

const (
	MinBcryptCost    = 10
	minSecretLength  = 16
	defaultMaxUpload = 5 << 20
)

var ErrInvalidConfig = errors.New("invalid config")

func (c *AppConfig) Validate() error {
	sec := c.Security
	if len(sec.AccessSecret) < minSecretLength || len(sec.RefreshSecret) < minSecretLength {
		return fmt.Errorf("%w: access and refresh secrets must be at least %d bytes", ErrInvalidConfig, minSecretLength)
	}
	if sec.AccessSecret == sec.RefreshSecret {
		return fmt.Errorf("%w: access and refresh secrets must differ", ErrInvalidConfig)
	}
	// Clients and the refresh cookie's Max-Age depend on these exact values.
	if sec.AccessTTL != AccessTokenTTL || sec.RefreshTTL != RefreshTokenTTL {
		return fmt.Errorf("%w: token lifetimes are fixed at %s and %s", ErrInvalidConfig, AccessTokenTTL, RefreshTokenTTL)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("database.driver", DriverPostgres)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 5)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", true)

	v.SetDefault("mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongo.database", "estatescout")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cachettl", "5m")

	v.SetDefault("storage.endpoint", "127.0.0.1:9000")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucket", "estatescout")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.publicurl", "")
	v.SetDefault("storage.maxbytes", defaultMaxUpload)

	v.SetDefault("security.accesssecret", "")
	v.SetDefault("security.refreshsecret", "")
	v.SetDefault("security.accessttl", AccessTokenTTL)
	v.SetDefault("security.refreshttl", RefreshTokenTTL)
	v.SetDefault("security.bcryptcost", MinBcryptCost)

	v.SetDefault("worker.stream", "media:tasks")
	v.SetDefault("worker.group", "media-workers")
	v.SetDefault("worker.consumer", "worker-1")
	v.SetDefault("worker.claiminterval", "30s")
	v.SetDefault("worker.sweepschedule", "0 30 3 * * *")

	v.SetDefault("logging.level", "")
	v.SetDefault("allowcorsorigins", []string{})
}
