// Package config loads the run configuration once at startup from
// environment variables, .env files and an optional config file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/agentstation/dogsync/pkg/constants"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/reconcile"
)

// Configuration keys. Each is also read from the upper-cased environment
// variable of the same name.
const (
	KeyReportPath        = "report_path"
	KeyClean             = "clean"
	KeyOverwrite         = "overwrite"
	KeyUseRecycleBin     = "use_recycle_bin"
	KeyMaxBreedImages    = "max_breed_images"
	KeyMaxSubBreedImages = "max_sub_breed_images"
	KeyOAuthKey          = "yd_oauth_key"
	KeyRootDir           = "yd_root_dir"
	KeyTestDummy         = "yd_test_dummy"
	KeyDummyState        = "yd_dummy_state"
	KeyDiskAPIRoot       = "yd_api_root"
	KeyRateLimit         = "yd_rate_limit"
	KeyDogAPIRoot        = "dog_api_root"
	KeyConcurrency       = "concurrency"
	KeyBreeds            = "breeds"
)

// Config is the immutable run configuration. It is built once by Load and
// passed by value to the components that need it.
type Config struct {
	ReportPath        string
	Clean             bool
	Overwrite         bool
	UseRecycleBin     bool
	MaxBreedImages    int
	MaxSubBreedImages int

	OAuthKey    string
	RootDir     string
	Dummy       bool
	DummyState  string
	DiskAPIRoot string
	RateLimit   int

	DogAPIRoot  string
	Concurrency int
	Breeds      []string
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyReportPath, constants.DefaultReportPath)
	v.SetDefault(KeyClean, false)
	v.SetDefault(KeyOverwrite, false)
	v.SetDefault(KeyUseRecycleBin, true)
	v.SetDefault(KeyMaxBreedImages, constants.DefaultMaxImages)
	v.SetDefault(KeyMaxSubBreedImages, constants.DefaultMaxImages)
	v.SetDefault(KeyOAuthKey, "")
	v.SetDefault(KeyRootDir, constants.DefaultRootDir)
	v.SetDefault(KeyTestDummy, false)
	v.SetDefault(KeyDummyState, "")
	v.SetDefault(KeyDiskAPIRoot, constants.YandexDiskAPIRoot)
	v.SetDefault(KeyRateLimit, constants.YandexDiskRateLimit)
	v.SetDefault(KeyDogAPIRoot, constants.DogAPIRoot)
	v.SetDefault(KeyConcurrency, constants.DefaultConcurrency)
	v.SetDefault(KeyBreeds, "")
}

// NewViper returns a viper instance bound to the environment, with
// defaults set and the config file read when one is found.
// An empty configFile searches for .dogsync.yaml in the home and working
// directories.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config file", "cannot read "+configFile, err)
		}
		return v, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(".dogsync")

	// Read config file (ignore error if not found)
	_ = v.ReadInConfig()
	return v, nil
}

// LoadEnvFiles loads .env files into the process environment. Variables
// already set are never replaced. .env.local is read first so it wins over .env.
func LoadEnvFiles(files ...string) {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load builds and validates a Config from v.
func Load(v *viper.Viper) (Config, error) {
	cfg, err := Parse(v)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse builds a Config from v, checking only that every value has the
// right type. Callers that apply overrides validate afterwards.
func Parse(v *viper.Viper) (Config, error) {
	var errs []error

	boolean := func(key string) bool {
		b, err := cast.ToBoolE(v.Get(key))
		if err != nil {
			errs = append(errs, errors.NewValidationError(envName(key), v.Get(key), "must be a boolean"))
		}
		return b
	}
	integer := func(key string) int {
		n, err := cast.ToIntE(v.Get(key))
		if err != nil {
			errs = append(errs, errors.NewValidationError(envName(key), v.Get(key), "must be an integer"))
		}
		return n
	}

	cfg := Config{
		ReportPath:        strings.TrimSpace(v.GetString(KeyReportPath)),
		Clean:             boolean(KeyClean),
		Overwrite:         boolean(KeyOverwrite),
		UseRecycleBin:     boolean(KeyUseRecycleBin),
		MaxBreedImages:    integer(KeyMaxBreedImages),
		MaxSubBreedImages: integer(KeyMaxSubBreedImages),
		OAuthKey:          strings.TrimSpace(v.GetString(KeyOAuthKey)),
		RootDir:           strings.Trim(strings.TrimSpace(v.GetString(KeyRootDir)), "/"),
		Dummy:             boolean(KeyTestDummy),
		DummyState:        strings.TrimSpace(v.GetString(KeyDummyState)),
		DiskAPIRoot:       strings.TrimSpace(v.GetString(KeyDiskAPIRoot)),
		RateLimit:         integer(KeyRateLimit),
		DogAPIRoot:        strings.TrimSpace(v.GetString(KeyDogAPIRoot)),
		Concurrency:       integer(KeyConcurrency),
		Breeds:            splitList(v.Get(KeyBreeds)),
	}
	return cfg, errors.Join(errs...)
}

// Validate checks every value for range and presence.
func (c Config) Validate() error {
	var errs []error
	if c.ReportPath == "" {
		errs = append(errs, errors.NewValidationError("REPORT_PATH", c.ReportPath, "must not be empty"))
	}
	if c.MaxBreedImages < 0 {
		errs = append(errs, errors.NewValidationError("MAX_BREED_IMAGES", c.MaxBreedImages, "must be non-negative"))
	}
	if c.MaxSubBreedImages < 0 {
		errs = append(errs, errors.NewValidationError("MAX_SUB_BREED_IMAGES", c.MaxSubBreedImages, "must be non-negative"))
	}
	if c.RootDir == "" {
		errs = append(errs, errors.NewValidationError("YD_ROOT_DIR", c.RootDir, "must not be empty"))
	}
	if !c.Dummy && c.OAuthKey == "" {
		errs = append(errs, errors.NewValidationError("YD_OAUTH_KEY", "", "is required unless YD_TEST_DUMMY is set"))
	}
	if c.Concurrency < 1 {
		errs = append(errs, errors.NewValidationError("CONCURRENCY", c.Concurrency, "must be at least 1"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.NewValidationError("YD_RATE_LIMIT", c.RateLimit, "must be non-negative"))
	}
	return errors.Join(errs...)
}

// Policy returns the reconciliation policy of the run.
func (c Config) Policy() reconcile.Policy {
	return reconcile.Policy{
		Clean:     c.Clean,
		Overwrite: c.Overwrite,
		Recycle:   c.UseRecycleBin,
	}
}

// String renders the config with the OAuth key redacted.
func (c Config) String() string {
	key := ""
	if c.OAuthKey != "" {
		key = "***"
	}
	return fmt.Sprintf("root=%s report=%s clean=%t overwrite=%t recycle=%t max_breed=%d max_sub_breed=%d dummy=%t concurrency=%d oauth=%s",
		c.RootDir, c.ReportPath, c.Clean, c.Overwrite, c.UseRecycleBin,
		c.MaxBreedImages, c.MaxSubBreedImages, c.Dummy, c.Concurrency, key)
}

func envName(key string) string {
	return strings.ToUpper(key)
}

// splitList accepts a comma separated string or a YAML list.
func splitList(raw any) []string {
	var parts []string
	switch val := raw.(type) {
	case nil:
		return nil
	case []any, []string:
		parts = cast.ToStringSlice(val)
	default:
		parts = strings.Split(cast.ToString(val), ",")
	}

	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
