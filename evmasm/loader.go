package evmasm

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/eth2030/evmcc/log"
)

// DefaultSizeCap is the default ceiling on program size, chosen to match
// the conventional EIP-170 contract code size limit. Callers that need a
// different cap pass one explicitly to LoadHex or LoadBytes.
const DefaultSizeCap = 24 * 1024

// loaderLog resolves the module logger at call time, so a logger installed
// via log.SetDefault after package init is still honored.
func loaderLog() *log.Logger { return log.Default().Module("evmasm") }

// Program is the result of loading and fingerprinting a bytecode program.
// It is the input to Disassemble and the cache key for package evmasm's
// compiled-program cache.
type Program struct {
	// Code is the runtime bytecode with any trailing Solidity metadata
	// stripped.
	Code []byte

	// Fingerprint is the SHA-256 hash of Code, hex-encoded. It is emitted
	// in the C++ banner comment for downstream cache invalidation and
	// doubles as the Cache lookup key.
	Fingerprint string

	// MetadataTrailer holds the raw bytes of the stripped metadata
	// trailer, if one was detected, for diagnostic purposes. It is nil
	// when no trailer was found.
	MetadataTrailer []byte
}

// LoadHex decodes a hex transcript of EVM runtime bytecode (with or
// without a leading "0x"), strips any trailing Solidity CBOR metadata,
// and enforces sizeCap. A sizeCap of 0 selects DefaultSizeCap.
func LoadHex(src string, sizeCap int) (*Program, error) {
	src = trimHexPrefix(stripASCIIWhitespace(src))
	raw, err := hex.DecodeString(src)
	if err != nil {
		return nil, fmt.Errorf("evmasm: %w: %v", ErrBadHex, err)
	}
	return LoadBytes(raw, sizeCap)
}

// LoadBytes loads raw EVM runtime bytecode, strips any trailing Solidity
// CBOR metadata, and enforces sizeCap. A sizeCap of 0 selects
// DefaultSizeCap.
func LoadBytes(raw []byte, sizeCap int) (*Program, error) {
	if sizeCap <= 0 {
		sizeCap = DefaultSizeCap
	}
	if len(raw) == 0 {
		return nil, ErrEmptyInput
	}
	if len(raw) > sizeCap {
		return nil, fmt.Errorf("evmasm: %w: %d bytes exceeds cap of %d", ErrCapacity, len(raw), sizeCap)
	}

	code, trailer := stripMetadataTrailer(raw)
	if len(code) == 0 {
		return nil, ErrEmptyInput
	}

	sum := sha256.Sum256(code)
	p := &Program{
		Code:            code,
		Fingerprint:     hex.EncodeToString(sum[:]),
		MetadataTrailer: trailer,
	}
	loaderLog().Debug("loaded program", "bytes", len(code), "fingerprint", p.Fingerprint, "trailer", trailer != nil)
	return p, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// stripASCIIWhitespace removes spaces, tabs, and newlines from s, so a hex
// transcript copy-pasted across multiple lines (or with stray padding)
// still decodes.
func stripASCIIWhitespace(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			b = append(b, s[i])
		}
	}
	return string(b)
}

// stripMetadataTrailer detects and removes a Solidity metadata trailer: a
// CBOR map whose keys are ASCII strings (e.g. "ipfs", "solc"), followed by
// a big-endian uint16 giving the trailer's own length. When no such
// trailer is present, code is returned unchanged and trailer is nil.
func stripMetadataTrailer(raw []byte) (code []byte, trailer []byte) {
	if len(raw) < 2 {
		return raw, nil
	}
	lenField := raw[len(raw)-2:]
	trailerLen := int(binary.BigEndian.Uint16(lenField))
	if trailerLen == 0 || trailerLen+2 > len(raw) {
		return raw, nil
	}

	candidate := raw[len(raw)-2-trailerLen : len(raw)-2]
	if !looksLikeCBORMap(candidate) {
		return raw, nil
	}

	var meta map[string]cbor.RawMessage
	if err := cbor.Unmarshal(candidate, &meta); err != nil {
		return raw, nil
	}
	if len(meta) == 0 {
		return raw, nil
	}

	full := raw[len(raw)-2-trailerLen:]
	trailer = append([]byte(nil), full...)
	code = raw[:len(raw)-2-trailerLen]
	return code, trailer
}

// looksLikeCBORMap reports whether b's first byte is a CBOR major-type-5
// (map) initial byte, a cheap check before attempting a full parse.
func looksLikeCBORMap(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	const majorTypeMap = 0xA0
	return b[0]&0xE0 == majorTypeMap
}
