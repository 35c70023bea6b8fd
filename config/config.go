// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/grag/ai"
	"github.com/poiesic/grag/retrieval"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GRAG"

// DefaultEnvFile is read by Load when no env file is named explicitly.
const DefaultEnvFile = ".env"

// Config holds all settings of the application.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Breaker   BreakerConfig   `mapstructure:"breaker"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Search    SearchConfig    `mapstructure:"search"`
	Embed     EmbedConfig     `mapstructure:"embed"`
	Log       LogConfig       `mapstructure:"log"`
}

// DatabaseConfig locates the document store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// EmbeddingConfig describes the OpenAI-compatible embedding service.
type EmbeddingConfig struct {
	Host     string `mapstructure:"host"`
	Model    string `mapstructure:"model"`
	APIToken string `mapstructure:"api_token"`
	MaxWords int    `mapstructure:"max_words"`
}

// BreakerConfig holds the circuit breaker settings of the embedding service.
type BreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// RetrievalConfig mirrors retrieval.Config.
type RetrievalConfig struct {
	Hops                int           `mapstructure:"hops"`
	SeedTopK            int           `mapstructure:"seed_top_k"`
	CandidateMultiplier float64       `mapstructure:"candidate_multiplier"`
	NodeWeight          float64       `mapstructure:"node_weight"`
	SubgraphWeight      float64       `mapstructure:"subgraph_weight"`
	HopDecay            float64       `mapstructure:"hop_decay"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	MaxContextNeighbors int           `mapstructure:"max_context_neighbors"`
	DebugLogging        bool          `mapstructure:"debug_logging"`
}

// SearchConfig holds query defaults of the command line.
type SearchConfig struct {
	TopK        int     `mapstructure:"top_k"`
	Threshold   float64 `mapstructure:"threshold"`
	Concurrency int     `mapstructure:"concurrency"`
}

// EmbedConfig holds the defaults of batch embedding runs.
type EmbedConfig struct {
	BatchSize  int           `mapstructure:"batch_size"`
	Workers    int           `mapstructure:"workers"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// legacyEnv maps configuration keys to older unprefixed variable names.
var legacyEnv = map[string]string{
	"database.path":   "DATABASE_PATH",
	"embedding.model": "EMBEDDING_MODEL",
	"embedding.host":  "EMBEDDING_HOST",
}

// Load reads configuration from path (optional, YAML) and the environment.
// envFiles are loaded into the process environment first without overriding
// variables that are already set; when none are given, DefaultEnvFile is
// loaded if present.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrConfigFile, path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: unable to decode: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w %s: %w", ErrConfigFile, DefaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigFile, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "./grag.db")

	aiDefaults := ai.DefaultConfig()
	v.SetDefault("embedding.host", aiDefaults.EmbeddingHost)
	v.SetDefault("embedding.model", aiDefaults.EmbeddingModel)
	v.SetDefault("embedding.api_token", aiDefaults.APIToken)
	v.SetDefault("embedding.max_words", aiDefaults.MaxWords)

	breaker := ai.DefaultBreakerConfig()
	v.SetDefault("breaker.enabled", breaker.Enabled)
	v.SetDefault("breaker.max_requests", breaker.MaxRequests)
	v.SetDefault("breaker.interval", breaker.Interval)
	v.SetDefault("breaker.timeout", breaker.Timeout)
	v.SetDefault("breaker.min_requests", breaker.MinRequests)
	v.SetDefault("breaker.failure_ratio", breaker.FailureRatio)

	r := retrieval.DefaultConfig()
	v.SetDefault("retrieval.hops", r.Hops)
	v.SetDefault("retrieval.seed_top_k", r.SeedTopK)
	v.SetDefault("retrieval.candidate_multiplier", r.CandidateMultiplier)
	v.SetDefault("retrieval.node_weight", r.NodeWeight)
	v.SetDefault("retrieval.subgraph_weight", r.SubgraphWeight)
	v.SetDefault("retrieval.hop_decay", r.HopDecay)
	v.SetDefault("retrieval.cache_ttl", r.CacheTTL)
	v.SetDefault("retrieval.max_context_neighbors", r.MaxContextNeighbors)
	v.SetDefault("retrieval.debug_logging", r.DebugLogging)

	v.SetDefault("search.top_k", 10)
	v.SetDefault("search.threshold", 0.0)
	v.SetDefault("search.concurrency", 4)

	v.SetDefault("embed.batch_size", 100)
	v.SetDefault("embed.workers", 2)
	v.SetDefault("embed.max_retries", 3)
	v.SetDefault("embed.retry_delay", time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks every section.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if err := c.AI().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.RetrievalConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Search.TopK < 1 {
		return fmt.Errorf("%w: search.top_k must be at least 1, got %d", ErrInvalidConfig, c.Search.TopK)
	}
	if c.Search.Concurrency < 1 {
		return fmt.Errorf("%w: search.concurrency must be at least 1, got %d", ErrInvalidConfig, c.Search.Concurrency)
	}
	if c.Embed.BatchSize < 1 || c.Embed.Workers < 1 || c.Embed.MaxRetries < 1 {
		return fmt.Errorf("%w: embed.batch_size, embed.workers and embed.max_retries must be at least 1", ErrInvalidConfig)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Format {
	case "text", "json", "pretty":
	default:
		return fmt.Errorf("%w: log.format must be text, json or pretty, got %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// AI returns the embedding service configuration.
func (c *Config) AI() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithAPIToken(c.Embedding.APIToken),
		ai.WithMaxWords(c.Embedding.MaxWords),
		ai.WithBreaker(ai.BreakerConfig{
			Enabled:      c.Breaker.Enabled,
			MaxRequests:  c.Breaker.MaxRequests,
			Interval:     c.Breaker.Interval,
			Timeout:      c.Breaker.Timeout,
			MinRequests:  c.Breaker.MinRequests,
			FailureRatio: c.Breaker.FailureRatio,
		}),
	)
}

// RetrievalConfig returns the validated retrieval configuration.
func (c *Config) RetrievalConfig() (*retrieval.Config, error) {
	r := c.Retrieval
	return retrieval.NewConfig(
		retrieval.WithHops(r.Hops),
		retrieval.WithSeedTopK(r.SeedTopK),
		retrieval.WithCandidateMultiplier(r.CandidateMultiplier),
		retrieval.WithWeights(r.NodeWeight, r.SubgraphWeight),
		retrieval.WithHopDecay(r.HopDecay),
		retrieval.WithCacheTTL(r.CacheTTL),
		retrieval.WithMaxContextNeighbors(r.MaxContextNeighbors),
		retrieval.WithDebugLogging(r.DebugLogging),
	)
}

// SlogLevel parses Level (debug, info, warn, error).
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
