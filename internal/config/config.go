// Package config implements the immutable, process-wide configuration
// of §6/§9: loaded once from a JSON file, then overridden field-by-field
// from the environment, and passed by reference to every component
// thereafter. No config-loading library appears anywhere in the
// retrieved examples, so this is implemented directly against
// encoding/json + os.LookupEnv + reflect.
package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/corranwm/correctocr/internal/align"
	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/hmm"
)

// Config is the top-level, immutable configuration value. Fields are
// grouped by `env:"section"` struct tag into the PROGNAME_SECTION_KEY
// override namespace of §6.
type Config struct {
	Dictionary DictionaryConfig `json:"dictionary" env:"dictionary"`
	Align      AlignConfig      `json:"align" env:"align"`
	HMM        HMMConfig        `json:"hmm" env:"hmm"`
	Pipeline   PipelineConfig   `json:"pipeline" env:"pipeline"`
}

type DictionaryConfig struct {
	Dir        string `json:"dir" env:"dir"`
	IgnoreCase bool   `json:"ignorecase" env:"ignorecase"`
}

type AlignConfig struct {
	TokenMatchRatio           float64 `json:"tokenmatchratio" env:"tokenmatchratio"`
	TokenMatchRatioLongToken  float64 `json:"tokenmatchratiolongtoken" env:"tokenmatchratiolongtoken"`
	TokenMatchLongTokenLength int     `json:"tokenmatchlongtokenlength" env:"tokenmatchlongtokenlength"`
	MovedBlockSkipLength      int     `json:"movedblockskiplength" env:"movedblockskiplength"`
}

func (c AlignConfig) ToAlignerConfig() align.Config {
	return align.Config{
		TokenMatchRatio:           c.TokenMatchRatio,
		TokenMatchRatioLongToken:  c.TokenMatchRatioLongToken,
		TokenMatchLongTokenLength: c.TokenMatchLongTokenLength,
		MovedBlockSkipLength:      c.MovedBlockSkipLength,
	}
}

type HMMConfig struct {
	Alpha             float64 `json:"alpha" env:"alpha"`
	K                 int     `json:"k" env:"k"`
	CacheCapacity     int     `json:"cachecapacity" env:"cachecapacity"`
	ParamsPath        string  `json:"paramspath" env:"paramspath"`
	MulticharsPath    string  `json:"multicharspath" env:"multicharspath"`
	CachePath         string  `json:"cachepath" env:"cachepath"`
}

type PipelineConfig struct {
	Workers int  `json:"workers" env:"workers"`
	Force   bool `json:"force" env:"force"`
}

// Default returns a Config populated with the original's documented
// defaults (§4.4's cache capacity, the 0.7/0.6/4 aligner thresholds of
// §9).
func Default() *Config {
	return &Config{
		Dictionary: DictionaryConfig{Dir: "dictionary", IgnoreCase: true},
		Align:      AlignConfig{TokenMatchRatio: 0.7, TokenMatchRatioLongToken: 0.6, TokenMatchLongTokenLength: 4, MovedBlockSkipLength: 4},
		HMM:        HMMConfig{Alpha: 1e-4, K: 4, CacheCapacity: hmm.DefaultCacheCapacity, ParamsPath: "hmm.json", CachePath: "hmm.cache.json"},
		Pipeline:   PipelineConfig{Workers: 4},
	}
}

// Load reads path as JSON into a copy of Default(), then applies any
// matching PROGNAME_SECTION_KEY environment overrides.
func Load(path, progname string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := fileio.LoadJSON(path, cfg); err != nil {
			return nil, &fileio.ConfigError{Err: err}
		}
	}
	if progname == "" {
		progname = "correctocr"
	}
	if err := applyEnvOverrides(cfg, progname); err != nil {
		return nil, &fileio.ConfigError{Err: err}
	}
	return cfg, nil
}

// applyEnvOverrides walks cfg's struct fields (and one level of
// nested struct fields) looking up PROGNAME_SECTION_KEY for each,
// per §6.
func applyEnvOverrides(cfg *Config, progname string) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i).Tag.Get("env")
		if section == "" {
			continue
		}
		sectionVal := v.Field(i)
		sectionType := sectionVal.Type()
		for j := 0; j < sectionType.NumField(); j++ {
			key := sectionType.Field(j).Tag.Get("env")
			if key == "" {
				continue
			}
			envVar := strings.ToUpper(progname + "_" + section + "_" + key)
			raw, ok := os.LookupEnv(envVar)
			if !ok {
				continue
			}
			if err := setField(sectionVal.Field(j), raw); err != nil {
				return err
			}
		}
	}
	return nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	}
	return nil
}
