package cppgen

import "fmt"

// bannerTemplate is the fixed header comment: contract name and a
// fingerprint of the input bytecode for downstream cache invalidation.
func bannerTemplate(contractName, fingerprint string) string {
	return fmt.Sprintf(`// Generated by evmcc. Do not edit by hand.
// contract: %s
// fingerprint: %s
`, contractName, fingerprint)
}

// includeBundle is the verbatim include of the collaborator VM project's
// header bundle. The header's contents are that project's concern; evmcc
// only needs to name it consistently.
const includeBundle = `#include "evmcc_host.h"
`

// signatureTemplate is the fixed compiled-function signature:
// (context-ref) -> execution-result.
func signatureTemplate(fnName string) string {
	return fmt.Sprintf("ExecResult %s(ExecContext& ctx) {\n", fnName)
}

// prologueTemplate initializes pc to 0. Entry does not go through the
// dispatch switch: the first block starts at pc 0 whether or not it is a
// JUMPDEST, so Emit jumps straight to L0 when any block exists.
const prologueTemplate = "    std::uint64_t pc = 0;\n"

// entryJump transfers control from the prologue to the first block.
const entryJump = "    goto L0;\n"

// dispatchHeader opens the switch(pc) dynamic-jump dispatch table.
const dispatchHeader = "__dispatch:\n    switch (pc) {\n"

// dispatchDefault closes the dispatch switch with the mandatory default
// case.
const dispatchDefault = "    default: return invalid_jump;\n    }\n"

// trailerTemplate is the final unreachable/trap guard.
const trailerTemplate = "    EVMCC_UNREACHABLE();\n}\n"
