// Package config loads telemetry-core configuration from a TOML file
// layered under command-line flag overrides.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"
	"unicode"

	"github.com/naoina/toml"
)

// Config holds every setting telemetry-core needs at startup.
type Config struct {
	Aggregators       int           `toml:",omitempty"`
	SnapshotInterval  time.Duration `toml:",omitempty"`
	StalenessInterval time.Duration `toml:",omitempty"`
	LogLevel          string        `toml:",omitempty"`
	LogFile           string        `toml:",omitempty"`
	MetricsAddr       string        `toml:",omitempty"`
	RunDir            string        `toml:",omitempty"`
}

// Default returns the configuration used when no file and no flags
// override a setting.
func Default() Config {
	return Config{
		Aggregators:       1,
		SnapshotInterval:  10 * time.Second,
		StalenessInterval: 60 * time.Second,
		LogLevel:          "info",
		MetricsAddr:       "127.0.0.1:9651",
		RunDir:            ".",
	}
}

// tomlSettings disables case-folding: TOML keys use the same names as the Go
// struct fields, with no key munging.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Load reads a TOML file into cfg, overlaying it onto whatever cfg already
// holds (typically Default()).
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}
