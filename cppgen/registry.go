// Package cppgen implements the C++ Emitter (E): it turns a specialized
// evmasm program into a translation unit that invokes handler intrinsics
// supplied by a companion EVM host, plus a basic-block sidecar listing.
package cppgen

import (
	"fmt"

	"github.com/eth2030/evmcc/evmasm"
)

// Convention tags the calling shape a handler name is invoked with.
type Convention int

const (
	// ConventionGeneric is handler_<mnemonic>(ctx).
	ConventionGeneric Convention = iota
	// ConventionPushConst is handler_push_const(ctx, limb0..limb3).
	ConventionPushConst
	// ConventionDup is handler_dup<k>(ctx).
	ConventionDup
	// ConventionSwap is handler_swap<k>(ctx).
	ConventionSwap
	// ConventionControl marks a handler registered by name only: the
	// control-flow primitives (handler_pop, handler_pop_nonzero,
	// handler_pop_cond, handler_return, handler_revert,
	// handler_selfdestruct) invoked from terminator emission, and the
	// handler_push_const, handler_dup and handler_swap families.
	ConventionControl
)

// handlerEntry describes one named handler the host project exports.
type handlerEntry struct {
	name       string
	convention Convention
}

// Control-flow primitive names, part of the host contract: the generic
// per-opcode handlers are named from the opcode catalog, but these have no
// opcode of their own and so are looked up by name only.
const (
	ctrlPop          = "handler_pop"
	ctrlPopNonzero   = "handler_pop_nonzero"
	ctrlPopCond      = "handler_pop_cond"
	ctrlReturn       = "handler_return"
	ctrlRevert       = "handler_revert"
	ctrlSelfdestruct = "handler_selfdestruct"
	ctrlPushConst    = "handler_push_const"
)

// HostRegistry lists the handlers a companion host project provides, by
// opcode for per-instruction handlers and by name for the control-flow
// primitives used in terminator emission and the push_const/dup/swap
// handler families. A nil *HostRegistry disables
// validation: the emitter then emits calls unconditionally and defers any
// mismatch to C++ compilation.
type HostRegistry struct {
	byOp     [256]*handlerEntry
	byName   map[string]*handlerEntry
	dupBase  string
	swapBase string
}

// NewHostRegistry builds an empty registry. Callers populate it with
// Register and RegisterControl before passing it to Emit.
func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		byName:   make(map[string]*handlerEntry),
		dupBase:  "handler_dup",
		swapBase: "handler_swap",
	}
}

// Register records that op is implemented by a handler named name under
// the given convention. It panics on a duplicate registration for the
// same opcode.
func (r *HostRegistry) Register(op evmasm.OpCode, name string, conv Convention) {
	if r.byOp[op] != nil {
		panic(fmt.Sprintf("cppgen: handler for opcode %s already registered", op))
	}
	e := &handlerEntry{name: name, convention: conv}
	r.byOp[op] = e
	r.byName[name] = e
}

// RegisterControl records a handler by name under ConventionControl: a
// control-flow primitive (handler_pop, handler_pop_nonzero,
// handler_pop_cond, handler_return, handler_revert, handler_selfdestruct)
// or one of the handler_push_const, handler_dup and handler_swap families.
func (r *HostRegistry) RegisterControl(name string) {
	r.byName[name] = &handlerEntry{name: name, convention: ConventionControl}
}

// HandlerFor reports the handler name registered for op, if any.
func (r *HostRegistry) HandlerFor(op evmasm.OpCode) (string, bool) {
	e := r.byOp[op]
	if e == nil {
		return "", false
	}
	return e.name, true
}

// HasControl reports whether name is registered as a control-flow
// primitive.
func (r *HostRegistry) HasControl(name string) bool {
	e, ok := r.byName[name]
	return ok && e.convention == ConventionControl
}

// HasDup reports whether the host registers the templated DUPk handler
// family (handler_dup<k>, ConventionDup's base name), consulted before
// emitting any ShapeDup call site.
func (r *HostRegistry) HasDup() bool {
	return r.HasControl(r.dupBase)
}

// HasSwap reports whether the host registers the templated SWAPk handler
// family (handler_swap<k>, ConventionSwap's base name), consulted before
// emitting any ShapeSwap call site.
func (r *HostRegistry) HasSwap() bool {
	return r.HasControl(r.swapBase)
}

// DefaultHostRegistry builds the registry entry set for the opcode
// catalog evmasm recognizes, naming each handler
// handler_<lowercase-mnemonic>, plus the control-flow primitives the host
// contract requires. This is the registry cmd/evmcc uses when the caller
// supplies no project-specific one.
func DefaultHostRegistry() *HostRegistry {
	r := NewHostRegistry()
	for op, name := range evmasm.OpcodeCatalog() {
		if op.IsPush() || op.IsDup() || op.IsSwap() {
			continue
		}
		r.Register(op, "handler_"+lowerMnemonic(name), ConventionGeneric)
	}
	for _, name := range []string{
		ctrlPop, ctrlPopNonzero, ctrlPopCond,
		ctrlReturn, ctrlRevert, ctrlSelfdestruct,
		ctrlPushConst, r.dupBase, r.swapBase,
	} {
		r.RegisterControl(name)
	}
	return r
}

func lowerMnemonic(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
