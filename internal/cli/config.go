package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/neighborhood"
	"github.com/hupe1980/neighborhood/corpus"
)

// Config is the resolved CLI configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Corpus CorpusConfig `mapstructure:"corpus"`
	Query  QueryConfig  `mapstructure:"query"`
	Store  StoreConfig  `mapstructure:"store"`
}

// LogConfig selects the log level and format (text, json, logfmt).
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CorpusConfig holds the options for newly written corpora.
type CorpusConfig struct {
	Compression string `mapstructure:"compression"`
	BlockSize   int    `mapstructure:"block_size"`
	Norms       bool   `mapstructure:"norms"`
}

// QueryConfig holds the options for opening corpora.
type QueryConfig struct {
	N               int    `mapstructure:"n"`
	Parallelism     int    `mapstructure:"parallelism"`
	DuplicatePolicy string `mapstructure:"duplicate_policy"`
}

// StoreConfig selects the blob store backups go to.
type StoreConfig struct {
	Kind      string `mapstructure:"kind"` // local, s3, minio
	Path      string `mapstructure:"path"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
}

// NewDefaultConfig returns the configuration used when nothing is set.
func NewDefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Corpus: CorpusConfig{
			Compression: corpus.DefaultOptions.Compression.String(),
			BlockSize:   corpus.DefaultOptions.BlockSize,
			Norms:       corpus.DefaultOptions.WithNorms,
		},
		Query: QueryConfig{
			N:               neighborhood.DefaultN,
			DuplicatePolicy: neighborhood.LastWins.String(),
		},
		Store: StoreConfig{Kind: "local", Secure: true},
	}
}

// Flag names shared between commands and the viper keys they bind to.
const (
	flagConfig          = "config"
	flagLogLevel        = "log-level"
	flagLogFormat       = "log-format"
	flagCompression     = "compression"
	flagBlockSize       = "block-size"
	flagNorms           = "norms"
	flagN               = "top"
	flagParallelism     = "parallelism"
	flagDuplicatePolicy = "duplicate-policy"
	flagStore           = "store"
	flagStorePath       = "store-path"
	flagBucket          = "bucket"
	flagPrefix          = "prefix"
	flagRegion          = "region"
	flagEndpoint        = "endpoint"
)

var flagKeys = map[string]string{
	flagLogLevel:        "log.level",
	flagLogFormat:       "log.format",
	flagCompression:     "corpus.compression",
	flagBlockSize:       "corpus.block_size",
	flagNorms:           "corpus.norms",
	flagN:               "query.n",
	flagParallelism:     "query.parallelism",
	flagDuplicatePolicy: "query.duplicate_policy",
	flagStore:           "store.kind",
	flagStorePath:       "store.path",
	flagBucket:          "store.bucket",
	flagPrefix:          "store.prefix",
	flagRegion:          "store.region",
	flagEndpoint:        "store.endpoint",
}

// InitViper creates a viper instance with defaults, the config file and
// NEIGHBORS_ environment variables.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via bindFlags)
//  2. Environment variables (NEIGHBORS_LOG_LEVEL, NEIGHBORS_STORE_BUCKET, etc.)
//  3. config.yaml values
//  4. Defaults from NewDefaultConfig()
func InitViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "neighbors"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine, defaults apply.
		if configFile != "" || !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("NEIGHBORS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("corpus.compression", d.Corpus.Compression)
	v.SetDefault("corpus.block_size", d.Corpus.BlockSize)
	v.SetDefault("corpus.norms", d.Corpus.Norms)

	v.SetDefault("query.n", d.Query.N)
	v.SetDefault("query.parallelism", d.Query.Parallelism)
	v.SetDefault("query.duplicate_policy", d.Query.DuplicatePolicy)

	v.SetDefault("store.kind", d.Store.Kind)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.bucket", d.Store.Bucket)
	v.SetDefault("store.prefix", d.Store.Prefix)
	v.SetDefault("store.region", d.Store.Region)
	v.SetDefault("store.endpoint", d.Store.Endpoint)
	v.SetDefault("store.path_style", d.Store.PathStyle)
	v.SetDefault("store.access_key", d.Store.AccessKey)
	v.SetDefault("store.secret_key", d.Store.SecretKey)
	v.SetDefault("store.secure", d.Store.Secure)
}

// bindFlags connects every registered flag of cmd to its viper key.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig resolves the configuration for cmd.
func LoadConfig(cmd *cobra.Command, configFile string) (Config, error) {
	v, err := InitViper(configFile)
	if err != nil {
		return Config{}, err
	}
	if err := bindFlags(v, cmd); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func (c CorpusConfig) options() (func(o *corpus.Options), error) {
	comp, err := corpus.ParseCompression(c.Compression)
	if err != nil {
		return nil, err
	}
	return func(o *corpus.Options) {
		o.Compression = comp
		o.BlockSize = c.BlockSize
		o.WithNorms = c.Norms
	}, nil
}

func (q QueryConfig) options() ([]neighborhood.Option, error) {
	policy, err := parseDuplicatePolicy(q.DuplicatePolicy)
	if err != nil {
		return nil, err
	}
	opts := []neighborhood.Option{neighborhood.WithDuplicatePolicy(policy)}
	if q.Parallelism > 0 {
		opts = append(opts, neighborhood.WithParallelism(q.Parallelism))
	}
	return opts, nil
}

func parseDuplicatePolicy(s string) (neighborhood.DuplicatePolicy, error) {
	for _, p := range []neighborhood.DuplicatePolicy{neighborhood.LastWins, neighborhood.FirstWins, neighborhood.RejectDuplicates} {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown duplicate policy %q (want last-wins, first-wins or reject)", s)
}
