package app

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/LoganSeven/publik-famille-demo-sub016/internal/idp/service"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/httpx"
	"github.com/LoganSeven/publik-famille-demo-sub016/pkg/throttle"
)

type Config struct {
	Issuer    string // Required: iss claim of ID tokens (default: http://localhost:8080)
	SecretKey string // Optional: keys pairwise subs and sids, generated when empty

	KeyStorageMode string        // Optional: ephemeral or persistent (default: ephemeral)
	MasterKeyPath  string        // Optional: master key sealing persisted private keys
	RSABits        int           // Optional: RSA modulus size (default: 2048)
	NumKeys        int           // Optional: active keys per algorithm (default: 1)
	KeyGracePeriod time.Duration // Optional: lifetime of persisted keys (default: 30 days)

	DatabaseFile string // Optional: sqlite file (default: idp.db)
	PepperFile   string // Optional: argon2id pepper file (default: pepper)
	FixturesFile string // Optional: YAML provisioning file

	DefaultScopes        []string
	AccessTokenDuration  time.Duration
	IDTokenDuration      time.Duration
	RefreshTokenDuration time.Duration
	RefreshGrace         time.Duration
	CodeTTL              time.Duration
	SessionLifetime      time.Duration
	RedirectURIMaxLength int

	PasswordGrantRate string        // Fixed window rate for the password grant (default: 100/m)
	BackoffDuration   time.Duration // Password grant backoff base delay (default: 1s)
	BackoffFactor     float64       // Password grant backoff factor (default: 1.8)
	BackoffMax        time.Duration // Password grant backoff cap (default: 1h)
	RedisAddr         string        // Optional: throttle counters in redis instead of memory
	RouteLimits       httpx.Limits  // Per-route limits, RATELIMIT_<PROFILE>_{REQUESTS,WINDOW_SEC,BURST}

	SecureCookies        bool          // Mark the session cookie Secure (default: true outside dev)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired rows sweep interval, 0 disables (default: 1h)
}

// LoadConfig reads the configuration from the environment, after loading an
// optional .env file from the working directory.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	env := getEnvOrDefault("ENV", "dev")
	cfg := Config{
		Issuer:         getEnvOrDefault("IDP_ISSUER", "http://localhost:8080"),
		SecretKey:      os.Getenv("IDP_SECRET_KEY"),
		KeyStorageMode: getEnvOrDefault("IDP_KEY_STORAGE_MODE", "ephemeral"),
		MasterKeyPath:  os.Getenv("IDP_MASTER_KEY_PATH"),
		RSABits:        getEnvIntOrDefault("IDP_RSA_BITS", 2048),
		NumKeys:        getEnvIntOrDefault("IDP_NUM_KEYS", 1),
		KeyGracePeriod: getEnvDurationOrDefault("IDP_KEY_GRACE_PERIOD", 30*24*time.Hour),
		DatabaseFile:   getEnvOrDefault("IDP_DATABASE_FILE", "idp.db"),
		PepperFile:     getEnvOrDefault("IDP_PEPPER_FILE", "pepper"),
		FixturesFile:   os.Getenv("IDP_FIXTURES_FILE"),

		DefaultScopes:        strings.Fields(getEnvOrDefault("IDP_DEFAULT_SCOPES", "openid email profile")),
		AccessTokenDuration:  getEnvDurationOrDefault("IDP_ACCESS_TOKEN_DURATION", service.DefaultAccessTokenDuration),
		IDTokenDuration:      getEnvDurationOrDefault("IDP_IDTOKEN_DURATION", service.DefaultIDTokenDuration),
		RefreshTokenDuration: getEnvDurationOrDefault("IDP_REFRESH_TOKEN_DURATION", service.DefaultRefreshTokenDuration),
		RefreshGrace:         getEnvDurationOrDefault("IDP_REFRESH_GRACE", service.DefaultRefreshGrace),
		CodeTTL:              getEnvDurationOrDefault("IDP_CODE_TTL", service.DefaultCodeTTL),
		SessionLifetime:      getEnvDurationOrDefault("IDP_SESSION_LIFETIME", service.DefaultSessionLifetime),
		RedirectURIMaxLength: getEnvIntOrDefault("IDP_REDIRECT_URI_MAX_LENGTH", service.DefaultRedirectURIMaxLength),

		PasswordGrantRate: getEnvOrDefault("IDP_PASSWORD_GRANT_RATELIMIT", "100/m"),
		BackoffDuration:   getEnvDurationOrDefault("IDP_BACKOFF_DURATION", throttle.DefaultBackoffDuration),
		BackoffFactor:     getEnvFloatOrDefault("IDP_BACKOFF_FACTOR", throttle.DefaultBackoffFactor),
		BackoffMax:        getEnvDurationOrDefault("IDP_BACKOFF_MAX", throttle.DefaultBackoffMax),
		RedisAddr:         os.Getenv("IDP_REDIS_ADDR"),
		RouteLimits:       httpx.LimitsFromEnv(os.LookupEnv),

		SecureCookies:        getEnvBoolOrDefault("IDP_SECURE_COOKIES", env != "dev"),
		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

// ServiceConfig returns the engine configuration. A missing secret key is
// replaced by a random one, which changes every pairwise sub on restart.
func (c Config) ServiceConfig() (service.Config, bool) {
	secret := []byte(c.SecretKey)
	generated := false
	if len(secret) == 0 {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		secret = []byte(hex.EncodeToString(buf))
		generated = true
	}

	return service.Config{
		Issuer:               c.Issuer,
		SecretKey:            secret,
		DefaultScopes:        c.DefaultScopes,
		AccessTokenDuration:  c.AccessTokenDuration,
		IDTokenDuration:      c.IDTokenDuration,
		RefreshTokenDuration: c.RefreshTokenDuration,
		RefreshGrace:         c.RefreshGrace,
		CodeTTL:              c.CodeTTL,
		SessionLifetime:      c.SessionLifetime,
		RedirectURIMaxLength: c.RedirectURIMaxLength,
	}.WithDefaults(), generated
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
