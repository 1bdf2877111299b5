package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultPort               = 4000
	defaultMaxRequestBodySize = "100KB"
	defaultDatabaseURI        = "memory://"
	defaultDatabaseTimeout    = 5 * time.Second
	defaultBcryptCost         = 10

	replicaEnvPrefix = "DATABASE_REPLICAS_"
)

type Config struct {
	Env EnvConfig `json:"env" yaml:"env"`

	HTTP HTTPConfig `json:"http" yaml:"http"`

	Database *DatabaseConfig `json:"database" yaml:"database"`

	// SecretKey holds the token signing secret. It has no default.
	SecretKey SecretKeyConfig `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	Metrics *MetricsConfig `json:"metrics" yaml:"metrics"`
}

type EnvConfig struct {
	Env         string `json:"env" yaml:"env"`
	ServiceName string `json:"serviceName" yaml:"serviceName"`
	Debug       bool   `json:"debug" yaml:"debug"`
	Log         Log    `json:"log" yaml:"log"`
}

type HTTPConfig struct {
	Port               int            `json:"port" yaml:"port"`
	MaxRequestBodySize string         `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
	Timeouts           TimeoutsConfig `json:"timeouts" yaml:"timeouts"`
}

type TimeoutsConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
}

// DatabaseConfig selects and tunes the credential store.
type DatabaseConfig struct {
	// URI picks the adapter by scheme: memory://, sqlite://, postgres://, mongodb://, mongodb+srv://
	URI string `json:"uri" yaml:"uri"`

	// Replicas are read-only postgres URIs used for listing.
	Replicas []string `json:"replicas" yaml:"replicas"`

	// Timeout bounds every store call made by the credential service.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

type SecretKeyConfig struct {
	Token string `json:"token" yaml:"token"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost      int `json:"bcryptCost" yaml:"bcryptCost"`
	HashConcurrency int `json:"hashConcurrency" yaml:"hashConcurrency"`
}

// MetricsConfig toggles the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf, then applies environment overrides.
// A missing file is not an error; the environment alone can configure the service.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	if configFile, found := findConfigFile(currEnv, searchPaths); found {
		if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read %s config failed", currEnv)
		}
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Indexed replica variables are collected by buildReplicasFromEnv.
			if strings.HasPrefix(k, replicaEnvPrefix) {
				return "", nil
			}

			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: SECRETKEY_TOKEN -> secretKey.token (not secretkey.token)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func findConfigFile(currEnv string, searchPaths []string) (string, bool) {
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyEnvAliases(cfg)
	applyDefaults(cfg)

	// Build replicas from environment variables (DATABASE_REPLICAS_0_URI, DATABASE_REPLICAS_1_URI, etc.)
	if replicas := buildReplicasFromEnv(); len(replicas) > 0 {
		cfg.Database.Replicas = replicas
	}

	return cfg, nil
}

// applyEnvAliases honours the short variable names the service has always accepted.
func applyEnvAliases(cfg *Config) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" && cfg.SecretKey.Token == "" {
		cfg.SecretKey.Token = secret
	}

	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
		cfg.HTTP.Port = port
	}

	// MONGODB_URI replaces the file value unless DATABASE_URI is set explicitly.
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		if cfg.Database == nil {
			cfg.Database = &DatabaseConfig{}
		}
		if _, explicit := os.LookupEnv("DATABASE_URI"); !explicit || cfg.Database.URI == "" {
			cfg.Database.URI = uri
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = defaultPort
	}

	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Env.Log.Level == "" {
		cfg.Env.Log.Level = "info"
	}

	if cfg.Database == nil {
		cfg.Database = &DatabaseConfig{}
	}
	if strings.TrimSpace(cfg.Database.URI) == "" {
		cfg.Database.URI = defaultDatabaseURI
	}
	if cfg.Database.Timeout <= 0 {
		cfg.Database.Timeout = defaultDatabaseTimeout
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = defaultBcryptCost
	}
	if cfg.Auth.HashConcurrency <= 0 {
		cfg.Auth.HashConcurrency = runtime.NumCPU()
	}

	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{}
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replica list from environment variables.
// Environment variable format: DATABASE_REPLICAS_{index}_URI
func buildReplicasFromEnv() []string {
	var replicas []string

	for i := 0; ; i++ {
		uri := os.Getenv(replicaEnvPrefix + strconv.Itoa(i) + "_URI")
		if uri == "" {
			break
		}

		replicas = append(replicas, uri)
	}

	return replicas
}
