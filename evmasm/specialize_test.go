package evmasm

import "testing"

func TestSpecialize_ShapeTagging(t *testing.T) {
	// JUMPDEST PUSH1 0x05 DUP2 SWAP3 ADD STOP
	code := []byte{0x5b, 0x60, 0x05, 0x81, 0x92, 0x01, 0x00}
	a := analyze(code)
	blocks := Specialize(a)

	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	instrs := blocks[0].Instrs
	if len(instrs) != 6 {
		t.Fatalf("len(Instrs) = %d, want 6", len(instrs))
	}

	wantShapes := []HandlerShape{ShapeLabel, ShapePushConst, ShapeDup, ShapeSwap, ShapeGeneric, ShapeElided}
	for i, want := range wantShapes {
		if instrs[i].Shape != want {
			t.Errorf("Instrs[%d].Shape = %v, want %v", i, instrs[i].Shape, want)
		}
	}
	if instrs[2].Slot != 2 {
		t.Errorf("DUP2 slot = %d, want 2", instrs[2].Slot)
	}
	if instrs[3].Slot != 3 {
		t.Errorf("SWAP3 slot = %d, want 3", instrs[3].Slot)
	}
}

func TestSpecialize_PreservesOrderAndTotality(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00} // PUSH1 1 PUSH1 2 ADD STOP
	a := analyze(code)
	blocks := Specialize(a)

	total := 0
	for _, b := range blocks {
		total += len(b.Instrs)
		for i, li := range b.Instrs {
			if li.Source != b.Block.Instrs[i] {
				t.Fatalf("lowered instruction %d does not match source in original order", i)
			}
		}
	}
	wantTotal := 0
	for _, b := range a.Blocks {
		wantTotal += len(b.Instrs)
	}
	if total != wantTotal {
		t.Fatalf("total lowered instrs = %d, want %d", total, wantTotal)
	}
}

func TestSpecialize_MinEntryDepth(t *testing.T) {
	// POP POP ADD -- the two POPs take the running depth to -2, then ADD
	// pops two more before pushing its result (-4, back up to -3), so a
	// caller must guarantee at least 4 items on the stack at entry.
	code := []byte{0x50, 0x50, 0x01, 0x00}
	a := analyze(code)
	blocks := Specialize(a)

	if got := blocks[0].MinEntryDepth; got != 4 {
		t.Fatalf("MinEntryDepth = %d, want 4", got)
	}
}

func TestSpecialize_MinEntryDepthZeroWhenSelfSufficient(t *testing.T) {
	// PUSH1 1 PUSH1 2 ADD STOP never dips below the entry depth.
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00}
	a := analyze(code)
	blocks := Specialize(a)

	if got := blocks[0].MinEntryDepth; got != 0 {
		t.Fatalf("MinEntryDepth = %d, want 0", got)
	}
}
