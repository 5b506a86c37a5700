package main

import "testing"

func TestParseFlags_Defaults(t *testing.T) {
	cfg, positional, exit, code := parseFlags([]string{})
	if exit {
		t.Fatalf("unexpected exit with code %d", code)
	}

	defaults := defaultConfig()
	if cfg.OutputDir != defaults.OutputDir {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, defaults.OutputDir)
	}
	if cfg.ContractName != defaults.ContractName {
		t.Errorf("ContractName = %q, want %q", cfg.ContractName, defaults.ContractName)
	}
	if cfg.FunctionName != defaults.FunctionName {
		t.Errorf("FunctionName = %q, want %q", cfg.FunctionName, defaults.FunctionName)
	}
	if cfg.SizeCap != 24*1024 {
		t.Errorf("SizeCap = %d, want %d", cfg.SizeCap, 24*1024)
	}
	if cfg.CacheCapacity != 4096 {
		t.Errorf("CacheCapacity = %d, want 4096", cfg.CacheCapacity)
	}
	if cfg.Verbose {
		t.Error("Verbose should be false by default")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "json")
	}
	if cfg.ConstructorCodePath != "" {
		t.Errorf("ConstructorCodePath = %q, want empty", cfg.ConstructorCodePath)
	}
	if len(positional) != 0 {
		t.Errorf("positional = %v, want empty", positional)
	}
}

func TestParseFlags_AllFlags(t *testing.T) {
	args := []string{
		"-ctor", "ctor.hex",
		"-out", "/tmp/evmcc-out",
		"-name", "mytoken",
		"-fn", "run_mytoken",
		"-size-cap", "4096",
		"-cache-capacity", "64",
		"-v",
		"-log-format", "text",
		"runtime.hex",
	}

	cfg, positional, exit, _ := parseFlags(args)
	if exit {
		t.Fatal("unexpected exit")
	}

	if cfg.ConstructorCodePath != "ctor.hex" {
		t.Errorf("ConstructorCodePath = %q, want ctor.hex", cfg.ConstructorCodePath)
	}
	if cfg.OutputDir != "/tmp/evmcc-out" {
		t.Errorf("OutputDir = %q, want /tmp/evmcc-out", cfg.OutputDir)
	}
	if cfg.ContractName != "mytoken" {
		t.Errorf("ContractName = %q, want mytoken", cfg.ContractName)
	}
	if cfg.FunctionName != "run_mytoken" {
		t.Errorf("FunctionName = %q, want run_mytoken", cfg.FunctionName)
	}
	if cfg.SizeCap != 4096 {
		t.Errorf("SizeCap = %d, want 4096", cfg.SizeCap)
	}
	if cfg.CacheCapacity != 64 {
		t.Errorf("CacheCapacity = %d, want 64", cfg.CacheCapacity)
	}
	if !cfg.Verbose {
		t.Error("Verbose should be true")
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
	if len(positional) != 1 || positional[0] != "runtime.hex" {
		t.Errorf("positional = %v, want [runtime.hex]", positional)
	}
}

func TestParseFlags_PartialOverride(t *testing.T) {
	// Only override a single flag; everything else keeps defaults.
	cfg, _, exit, _ := parseFlags([]string{"-size-cap", "1024"})
	if exit {
		t.Fatal("unexpected exit")
	}
	if cfg.SizeCap != 1024 {
		t.Errorf("SizeCap = %d, want 1024", cfg.SizeCap)
	}
	// Verify other defaults are untouched.
	if cfg.ContractName != "contract" {
		t.Errorf("ContractName = %q, want contract", cfg.ContractName)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
}

func TestParseFlags_InvalidFlag(t *testing.T) {
	_, _, exit, code := parseFlags([]string{"-unknown-flag"})
	if !exit {
		t.Fatal("expected exit for unknown flag")
	}
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestParseFlags_InvalidSizeCap(t *testing.T) {
	_, _, exit, code := parseFlags([]string{"-size-cap", "notanumber"})
	if !exit {
		t.Fatal("expected exit for invalid size-cap")
	}
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestUint64Value_SetAndString(t *testing.T) {
	var n uint64
	v := &uint64Value{p: &n}

	if v.String() != "0" {
		t.Errorf("String() = %q, want %q", v.String(), "0")
	}
	if err := v.Set("12345"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if n != 12345 {
		t.Errorf("n = %d, want 12345", n)
	}
	if v.String() != "12345" {
		t.Errorf("String() = %q, want %q", v.String(), "12345")
	}
	if err := v.Set("not-a-number"); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}

func TestUint64Value_StringNilPointer(t *testing.T) {
	v := &uint64Value{}
	if v.String() != "0" {
		t.Errorf("String() with nil pointer = %q, want %q", v.String(), "0")
	}
}
