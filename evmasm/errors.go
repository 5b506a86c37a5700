package evmasm

import "errors"

// Error taxonomy for the translation pipeline. The disassembler and
// specializer are total and never return an error; only the loader and
// (in package cppgen) the emitter are fallible.
var (
	// ErrBadHex is returned when a textual bytecode transcript contains a
	// non-hex character or has odd length.
	ErrBadHex = errors.New("evmasm: malformed hex input")

	// ErrEmptyInput is returned when the loaded program has zero length
	// after any metadata trailer has been stripped.
	ErrEmptyInput = errors.New("evmasm: empty program")

	// ErrCapacity is returned when a program exceeds the configured size
	// cap (default 24 KiB, the conventional EIP-170 contract-size limit).
	ErrCapacity = errors.New("evmasm: program exceeds size cap")

	// ErrIOError is returned by boundary I/O (reading a bytecode file,
	// writing an emitted translation unit) on any underlying read/write
	// failure. The disassembler, block analyzer, and specializer never
	// touch the filesystem and so never return it.
	ErrIOError = errors.New("evmasm: I/O error")
)
