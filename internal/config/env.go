package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every server setting, e.g. ECSIM_PORT.
const EnvPrefix = "ECSIM"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Server holds process-level settings for cmd/api and cmd/insight.
type Server struct {
	Port      string `envconfig:"PORT" default:"8080"`
	Env       string `envconfig:"ENV" default:"development"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// StaticDir holds a pre-built frontend; it is served when present.
	StaticDir string `envconfig:"STATIC_DIR" default:"web/dist"`
	PresetDir string `envconfig:"PRESET_DIR" default:"examples/scenarios"`

	// RedisURL switches the memo and snapshot caches to Redis.
	RedisURL string        `envconfig:"REDIS_URL"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	// CacheMaxEntries bounds the in-memory result cache; 0 means unbounded.
	CacheMaxEntries int `envconfig:"CACHE_MAX_ENTRIES" default:"1000"`

	GeminiBaseURL     string        `envconfig:"GEMINI_BASE_URL"`
	CompletionTimeout time.Duration `envconfig:"COMPLETION_TIMEOUT" default:"60s"`
	MockSeed          int64         `envconfig:"MOCK_SEED"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

func (s Server) IsProd() bool {
	return strings.EqualFold(s.Env, AppEnvProd)
}

// LoadServer reads an optional .env file, then the environment.
func LoadServer(envFiles ...string) (*Server, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	var s Server
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if s.CacheTTL < 0 {
		return nil, errors.New("ECSIM_CACHE_TTL must be >= 0")
	}
	if s.CacheMaxEntries < 0 {
		return nil, errors.New("ECSIM_CACHE_MAX_ENTRIES must be >= 0")
	}
	return &s, nil
}
