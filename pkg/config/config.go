package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Checkout      CheckoutConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RIDEGEAR_APP_ENV" required:"true"`
	Port         string `envconfig:"RIDEGEAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RIDEGEAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RIDEGEAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RIDEGEAR_DB_DSN"`
	Driver string `envconfig:"RIDEGEAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RIDEGEAR_DB_HOST"`
	LegacyPort     int    `envconfig:"RIDEGEAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RIDEGEAR_DB_USER"`
	LegacyPassword string `envconfig:"RIDEGEAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"RIDEGEAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"RIDEGEAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RIDEGEAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RIDEGEAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RIDEGEAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RIDEGEAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RIDEGEAR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RIDEGEAR_REDIS_ADDR"`
	Password     string        `envconfig:"RIDEGEAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"RIDEGEAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RIDEGEAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RIDEGEAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RIDEGEAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RIDEGEAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RIDEGEAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"RIDEGEAR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"RIDEGEAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"RIDEGEAR_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"RIDEGEAR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RIDEGEAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RIDEGEAR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RIDEGEAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RIDEGEAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RIDEGEAR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"RIDEGEAR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"RIDEGEAR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"RIDEGEAR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"RIDEGEAR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"RIDEGEAR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"RIDEGEAR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CheckoutConfig struct {
	// PaymentDeclineRate is the probability that the simulated gateway declines a charge.
	PaymentDeclineRate float64 `envconfig:"RIDEGEAR_PAYMENT_DECLINE_RATE" default:"0.10"`
	LowStockThreshold  int     `envconfig:"RIDEGEAR_LOW_STOCK_THRESHOLD" default:"5"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"RIDEGEAR_CRON_INTERVAL" default:"1h"`
	PendingOrderTTL           time.Duration `envconfig:"RIDEGEAR_PENDING_ORDER_TTL" default:"72h"`
	NotificationRetentionDays int           `envconfig:"RIDEGEAR_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RIDEGEAR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RIDEGEAR_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
