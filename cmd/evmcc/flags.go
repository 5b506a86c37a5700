package main

import (
	"flag"
	"fmt"
	"strconv"
)

// flagSet wraps flag.FlagSet to add support for uint64 flags, which the
// standard library's flag package does not provide directly.
type flagSet struct {
	*flag.FlagSet
}

// newCustomFlagSet creates a flagSet with ContinueOnError behavior.
func newCustomFlagSet(name string) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &flagSet{FlagSet: fs}
}

// Uint64Var defines a uint64 flag via a custom flag.Value implementation.
func (fs *flagSet) Uint64Var(p *uint64, name string, value uint64, usage string) {
	fs.FlagSet.Var(&uint64Value{p: p}, name, usage)
	*p = value
}

// uint64Value implements flag.Value for uint64 flags.
type uint64Value struct {
	p *uint64
}

func (v *uint64Value) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatUint(*v.p, 10)
}

func (v *uint64Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uint64 value %q", s)
	}
	*v.p = n
	return nil
}

// config holds the resolved CLI configuration.
type config struct {
	ConstructorCodePath string
	OutputDir           string
	ContractName        string
	FunctionName        string
	SizeCap             uint64
	CacheCapacity       uint64
	Verbose             bool
	LogFormat           string
}

func defaultConfig() config {
	return config{
		OutputDir:     ".",
		ContractName:  "contract",
		FunctionName:  "evmcc_run",
		SizeCap:       24 * 1024,
		CacheCapacity: 4096,
		LogFormat:     "json",
	}
}

// newFlagSet creates a flag.FlagSet binding all CLI flags to cfg.
func newFlagSet(cfg *config) *flagSet {
	fs := newCustomFlagSet("evmcc")
	fs.StringVar(&cfg.ConstructorCodePath, "ctor", cfg.ConstructorCodePath, "optional path to constructor bytecode (hex)")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory for .cpp and .bb_list")
	fs.StringVar(&cfg.ContractName, "name", cfg.ContractName, "contract name for the banner comment")
	fs.StringVar(&cfg.FunctionName, "fn", cfg.FunctionName, "emitted compiled function name")
	fs.Uint64Var(&cfg.SizeCap, "size-cap", cfg.SizeCap, "maximum accepted bytecode size in bytes")
	fs.Uint64Var(&cfg.CacheCapacity, "cache-capacity", cfg.CacheCapacity, "translation cache capacity in programs")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "enable debug logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log output format: json, text, color")
	return fs
}
