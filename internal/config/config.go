package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	APIKeyFile  string  `toml:"api_key_file"`
	BaseURL     string  `toml:"base_url"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

type ARSConfig struct {
	SubmitURL    string   `toml:"submit_url"`
	MessagesURL  string   `toml:"messages_url"`
	PollInterval Duration `toml:"poll_interval"`
	Timeout      Duration `toml:"timeout"`
	HTTPTimeout  Duration `toml:"http_timeout"`
}

type NodeNormConfig struct {
	URL         string   `toml:"url"`
	CacheSize   int      `toml:"cache_size"`
	HTTPTimeout Duration `toml:"http_timeout"`
}

type RedisConfig struct {
	Addr      string   `toml:"addr"`
	Password  string   `toml:"password"`
	DB        int      `toml:"db"`
	Queue     string   `toml:"queue"`
	ResultTTL Duration `toml:"result_ttl"`
}

type ServerConfig struct {
	Port           string   `toml:"port"`
	SecretKey      string   `toml:"secret_key"`
	SecretKeyFile  string   `toml:"secret_key_file"`
	RequireKey     bool     `toml:"require_key"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type WorkerConfig struct {
	Concurrency int      `toml:"concurrency"`
	BlockFor    Duration `toml:"block_for"`
}

type ConcurrencyConfig struct {
	Justifications int `toml:"justifications"`
}

type LogConfig struct {
	Mode  string `toml:"mode"`
	Level string `toml:"level"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	ARS         ARSConfig         `toml:"ars"`
	NodeNorm    NodeNormConfig    `toml:"nodenorm"`
	Redis       RedisConfig       `toml:"redis"`
	Server      ServerConfig      `toml:"server"`
	Worker      WorkerConfig      `toml:"worker"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Log         LogConfig         `toml:"log"`
}

// Duration decodes TOML strings such as "10s" or "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the production endpoints and the generation settings the
// annotator has always used.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-3.5-turbo",
			Temperature: 0.8,
			MaxTokens:   256,
		},
		ARS: ARSConfig{
			SubmitURL:    "https://ars-prod.transltr.io/ars/api/submit",
			MessagesURL:  "https://ars-prod.transltr.io/ars/api/messages",
			PollInterval: Duration{10 * time.Second},
			HTTPTimeout:  Duration{2 * time.Minute},
		},
		NodeNorm: NodeNormConfig{
			URL:         "https://nodenormalization-sri.renci.org/get_normalized_nodes",
			CacheSize:   10000,
			HTTPTimeout: Duration{time.Minute},
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			Queue:     "annotation",
			ResultTTL: Duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Worker: WorkerConfig{
			Concurrency: 1,
			BlockFor:    Duration{5 * time.Second},
		},
		Concurrency: ConcurrencyConfig{
			Justifications: 4,
		},
		Log: LogConfig{
			Mode: "development",
		},
	}
}

// Load reads a TOML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides file values with environment variables and resolves the
// secret files. It is called once at process start.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY_FILE"); v != "" {
		cfg.LLM.APIKeyFile = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("ARS_SUBMIT_URL"); v != "" {
		cfg.ARS.SubmitURL = v
	}
	if v := os.Getenv("ARS_MESSAGES_URL"); v != "" {
		cfg.ARS.MessagesURL = v
	}
	if v := os.Getenv("NODE_NORMALIZER_URL"); v != "" {
		cfg.NodeNorm.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("SECRET_KEY_FILE"); v != "" {
		cfg.Server.SecretKeyFile = v
	}
	if v := os.Getenv("LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WORKER_CONCURRENCY: %w", err)
		}
		cfg.Worker.Concurrency = n
	}

	if cfg.LLM.APIKey == "" && cfg.LLM.APIKeyFile != "" {
		key, err := ReadSecretFile(cfg.LLM.APIKeyFile)
		if err != nil {
			return err
		}
		cfg.LLM.APIKey = key
	}
	if cfg.Server.SecretKey == "" && cfg.Server.SecretKeyFile != "" {
		key, err := ReadSecretFile(cfg.Server.SecretKeyFile)
		if err != nil {
			return err
		}
		cfg.Server.SecretKey = key
	}
	if cfg.Server.RequireKey && cfg.Server.SecretKey == "" {
		return fmt.Errorf("server.require_key is set but no secret key is configured (SECRET_KEY_FILE)")
	}
	return nil
}

// ReadSecretFile returns the first line of path with surrounding whitespace removed.
func ReadSecretFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open secret file '%s': %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read secret file '%s': %w", path, err)
	}
	return "", nil
}
