package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "COVERLINE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "COVERLINE_DB_DSN"
	EnvDBHost = "COVERLINE_DB_HOST"
	EnvDBUser = "COVERLINE_DB_USER"
	EnvDBName = "COVERLINE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	PasswordReset PasswordResetConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	Sendgrid      SendgridConfig
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
	Env          string `envconfig:"COVERLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"COVERLINE_APP_PORT" required:"true"`
	PublicURL    string `envconfig:"COVERLINE_APP_PUBLIC_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"COVERLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COVERLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COVERLINE_DB_DSN"`
	Driver string `envconfig:"COVERLINE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"COVERLINE_DB_HOST"`
	Port     int    `envconfig:"COVERLINE_DB_PORT" default:"5432"`
	User     string `envconfig:"COVERLINE_DB_USER"`
	Password string `envconfig:"COVERLINE_DB_PASSWORD"`
	Name     string `envconfig:"COVERLINE_DB_NAME"`
	SSLMode  string `envconfig:"COVERLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COVERLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COVERLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COVERLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COVERLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COVERLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COVERLINE_REDIS_ADDR"`
	Password     string        `envconfig:"COVERLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"COVERLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COVERLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COVERLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COVERLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COVERLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COVERLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"COVERLINE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"COVERLINE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"COVERLINE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"COVERLINE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"COVERLINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"COVERLINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"COVERLINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"COVERLINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"COVERLINE_ARGON_KEY_LEN" default:"32"`
}

type PasswordResetConfig struct {
	TokenTTL time.Duration `envconfig:"COVERLINE_PASSWORD_RESET_TOKEN_TTL" default:"1h"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"COVERLINE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"COVERLINE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"COVERLINE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	ResetWindow     time.Duration `envconfig:"COVERLINE_AUTH_RATE_LIMIT_RESET_WINDOW" default:"5m"`
	ResetEmailLimit int           `envconfig:"COVERLINE_AUTH_RATE_LIMIT_RESET_EMAIL_LIMIT" default:"3"`
	ResetIPLimit    int           `envconfig:"COVERLINE_AUTH_RATE_LIMIT_RESET_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COVERLINE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"COVERLINE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"COVERLINE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"COVERLINE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"COVERLINE_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"COVERLINE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"COVERLINE_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"COVERLINE_MAX_UPLOAD_MB" default:"20"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"COVERLINE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"COVERLINE_SENDGRID_FROM_EMAIL"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
