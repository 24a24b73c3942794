package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable read by the gateway.
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App           AppConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Gate          GateConfig
	Upstream      UpstreamConfig
	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HERBAMART_APP_ENV" default:"development"`
	Port         string `envconfig:"HERBAMART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"HERBAMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HERBAMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"HERBAMART_REDIS_URL"`
	Address      string        `envconfig:"HERBAMART_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"HERBAMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"HERBAMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HERBAMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HERBAMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HERBAMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HERBAMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HERBAMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"HERBAMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"HERBAMART_JWT_ISSUER" default:"herbamart"`
	ExpirationMinutes int    `envconfig:"HERBAMART_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HERBAMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HERBAMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HERBAMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HERBAMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HERBAMART_ARGON_KEY_LEN" default:"32"`
}

// GateConfig is the static route-protection table consumed by the gate
// middleware. Prefix lists are comma separated paths.
type GateConfig struct {
	LegacyLoginPath    string   `envconfig:"HERBAMART_GATE_LEGACY_LOGIN_PATH" default:"/signin"`
	CanonicalLoginPath string   `envconfig:"HERBAMART_GATE_LOGIN_PATH" default:"/login"`
	HomePath           string   `envconfig:"HERBAMART_GATE_HOME_PATH" default:"/"`
	AdminPrefixes      []string `envconfig:"HERBAMART_GATE_ADMIN_PREFIXES" default:"/admin"`
	AdminLoginPath     string   `envconfig:"HERBAMART_GATE_ADMIN_LOGIN_PATH" default:"/admin/login"`
	StaffPrefixes      []string `envconfig:"HERBAMART_GATE_STAFF_PREFIXES" default:"/staff"`
	StaffLoginPath     string   `envconfig:"HERBAMART_GATE_STAFF_LOGIN_PATH" default:"/staff/login"`
	GuestOnlyPaths     []string `envconfig:"HERBAMART_GATE_GUEST_ONLY_PATHS" default:"/login,/register"`
	AuthOnlyPrefixes   []string `envconfig:"HERBAMART_GATE_AUTH_ONLY_PREFIXES" default:"/profile,/orders"`
	BypassPrefixes     []string `envconfig:"HERBAMART_GATE_BYPASS_PREFIXES" default:"/metrics"`
}

type UpstreamConfig struct {
	BaseURL string        `envconfig:"HERBAMART_UPSTREAM_BASE_URL" default:"http://localhost:9000"`
	Timeout time.Duration `envconfig:"HERBAMART_UPSTREAM_TIMEOUT" default:"10s"`
}

func (u UpstreamConfig) validate() error {
	parsed, err := url.Parse(u.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing upstream base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("upstream base url must be absolute, got %q", u.BaseURL)
	}
	return nil
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"HERBAMART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"HERBAMART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"HERBAMART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}
