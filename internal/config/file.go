// This file loads the YAML run profile given with --config.

package config

import (
	"errors"
	"flag"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/saxpy/internal/errors"
)

// Profile is a YAML run profile. Absent keys leave the default untouched.
//
//	size: 1000000
//	threads: 8
//	iterations: 200
//	mode: all
//	verify: true
type Profile struct {
	Size        *int    `yaml:"size"`
	Seed        *uint64 `yaml:"seed"`
	Threads     *int    `yaml:"threads"`
	Iterations  *int    `yaml:"iterations"`
	Mode        *string `yaml:"mode"`
	GCMode      *string `yaml:"gc_mode"`
	MemoryLimit *string `yaml:"memory_limit"`
	Verify      *bool   `yaml:"verify"`
	Verbose     *bool   `yaml:"verbose"`
	Output      *string `yaml:"output"`
	MetricsFile *string `yaml:"metrics_file"`
	History     *string `yaml:"history"`
	LogLevel    *string `yaml:"log_level"`
}

// LoadFile reads and decodes a run profile. Unknown keys are rejected.
func LoadFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot open run profile: %v", err)
	}
	defer f.Close()
	return decodeProfile(f)
}

func decodeProfile(r io.Reader) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.NewConfigError("invalid run profile: %v", err)
	}
	return &p, nil
}

// apply copies the profile values into config for every flag that was not
// set explicitly. Environment overrides are applied afterwards.
func (p *Profile) apply(config *AppConfig, fs *flag.FlagSet) {
	override(fs, &config.N, p.Size, "p", "size")
	override(fs, &config.Seed, p.Seed, "s", "seed")
	override(fs, &config.Threads, p.Threads, "n", "threads")
	override(fs, &config.Iterations, p.Iterations, "i", "iterations")
	override(fs, &config.Mode, p.Mode, "mode")
	override(fs, &config.GCMode, p.GCMode, "gc-mode")
	override(fs, &config.MemoryLimit, p.MemoryLimit, "memory-limit")
	override(fs, &config.Verify, p.Verify, "verify")
	override(fs, &config.Verbose, p.Verbose, "verbose", "v")
	override(fs, &config.OutputFile, p.Output, "output", "o")
	override(fs, &config.MetricsFile, p.MetricsFile, "metrics-file")
	override(fs, &config.HistoryDB, p.History, "history")
	override(fs, &config.LogLevel, p.LogLevel, "log-level")
}

func override[T any](fs *flag.FlagSet, dst, src *T, flags ...string) {
	if src != nil && !isFlagSetAny(fs, flags...) {
		*dst = *src
	}
}
