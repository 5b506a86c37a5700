// Command evmcc lowers EVM runtime bytecode into a C++ translation unit
// whose control flow transliterates the input's basic-block graph (see
// package evmasm and package cppgen for the pipeline itself).
//
// Usage:
//
//	evmcc [flags] <runtime-bytecode-hex-file>
//
// Flags:
//
//	-ctor             optional path to constructor bytecode (hex)
//	-out              output directory for .cpp and .bb_list (default ".")
//	-name             contract name for the banner comment (default "contract")
//	-fn               emitted compiled function name (default "evmcc_run")
//	-size-cap         maximum accepted bytecode size in bytes (default 24576)
//	-cache-capacity   translation cache capacity in programs (default 4096)
//	-v                enable debug logging
//	-log-format       log output format: json, text, color (default "json")
//
// Combined-JSON containers, ABI/4-byte-selector emission, source-map
// alignment, and code formatting belong to the surrounding tooling and are
// not implemented by this thin wrapper; it exists only to exercise package
// evmasm and package cppgen end to end.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eth2030/evmcc/cppgen"
	"github.com/eth2030/evmcc/evmasm"
	"github.com/eth2030/evmcc/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. It accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, positional, exit, code := parseFlags(args)
	if exit {
		return code
	}

	if len(positional) < 1 {
		fmt.Fprintln(os.Stderr, "usage: evmcc [flags] <runtime-bytecode-hex-file>")
		return 2
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log.SetDefault(newLoggerForFormat(cfg.LogFormat, level))

	if err := translate(cfg, positional); err != nil {
		fmt.Fprintf(os.Stderr, "evmcc: %v\n", err)
		return 1
	}
	return 0
}

func newLoggerForFormat(format string, level slog.Level) *log.Logger {
	switch format {
	case "text":
		return log.NewText(level)
	case "color":
		return log.NewColor(level)
	default:
		return log.New(level)
	}
}

// translate runs the full load/disassemble/analyze/specialize/emit pipeline
// over the bytecode named by positional[0] (plus -ctor constructor
// bytecode, when given) and writes the emitted .cpp and .bb_list files
// under cfg.OutputDir.
func translate(cfg config, positional []string) error {
	runtimeHex, err := os.ReadFile(positional[0])
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", evmasm.ErrIOError, positional[0], err)
	}

	prog, err := evmasm.LoadHex(string(runtimeHex), int(cfg.SizeCap))
	if err != nil {
		return err
	}

	cache, err := evmasm.NewCache(int(cfg.CacheCapacity))
	if err != nil {
		return err
	}
	translated := evmasm.Translate(prog, cache)

	var ctorCode []byte
	if cfg.ConstructorCodePath != "" {
		ctorHex, err := os.ReadFile(cfg.ConstructorCodePath)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", evmasm.ErrIOError, cfg.ConstructorCodePath, err)
		}
		ctorProg, err := evmasm.LoadHex(string(ctorHex), int(cfg.SizeCap))
		if err != nil {
			return err
		}
		ctorCode = ctorProg.Code
	}

	cppOut, bbList, err := cppgen.Emit(translated, cppgen.Options{
		ContractName:    cfg.ContractName,
		FunctionName:    cfg.FunctionName,
		Registry:        cppgen.DefaultHostRegistry(),
		ConstructorCode: ctorCode,
		SizeCap:         int(cfg.SizeCap),
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", evmasm.ErrIOError, cfg.OutputDir, err)
	}

	cppPath := filepath.Join(cfg.OutputDir, cfg.ContractName+".cpp")
	if err := os.WriteFile(cppPath, cppOut, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", evmasm.ErrIOError, cppPath, err)
	}
	bbPath := filepath.Join(cfg.OutputDir, cfg.ContractName+".bb_list")
	if err := os.WriteFile(bbPath, bbList, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", evmasm.ErrIOError, bbPath, err)
	}

	log.Default().Module("cmd/evmcc").Info("translation complete",
		"contract", cfg.ContractName, "blocks", len(translated.Blocks), "out", cppPath)
	return nil
}

// parseFlags parses CLI arguments into a config. Returns the config, the
// remaining positional arguments, whether the caller should exit
// immediately, and the exit code.
func parseFlags(args []string) (config, []string, bool, int) {
	cfg := defaultConfig()
	fs := newFlagSet(&cfg)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, nil, true, 2
	}

	return cfg, fs.Args(), false, 0
}
