package vm_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nand2tetris-tools/frontend/pkg/asm"
	"github.com/nand2tetris-tools/frontend/pkg/vm"
)

// A []asm.Statement sequence is long enough that a manual field walk would
// bury the actual mismatch, so these compare against a literal expectation
// with cmp.Diff, the way opal-lang-opal and dekarrin-tunaq diff structural
// IR output in their own tests.

func TestLowerPushConstant(t *testing.T) {
	commands := []vm.Command{
		{Kind: vm.Push, Arg1: "constant", Arg2: "7", File: "Main", Line: 1},
	}

	got, err := vm.NewLowerer(false).Lower(commands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []asm.Statement{
		asm.AInstruction{Location: "7"},
		asm.CInstruction{Comp: "A", Dest: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "M+1", Dest: "AM"},
		asm.CInstruction{Comp: "A-1", Dest: "A"},
		asm.CInstruction{Comp: "D", Dest: "M"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lowered statements mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerBinaryArithmeticUsesTableComps(t *testing.T) {
	// The commutative ops must come out in their D-first table spelling;
	// sub keeps its operands in stack order via M-D.
	cases := []struct {
		op   string
		comp string
	}{
		{op: "add", comp: "D+M"},
		{op: "sub", comp: "M-D"},
		{op: "and", comp: "D&M"},
		{op: "or", comp: "D|M"},
	}

	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			commands := []vm.Command{
				{Kind: vm.Arithmetic, Arg1: tc.op, File: "Main", Line: 1},
			}

			got, err := vm.NewLowerer(false).Lower(commands)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := []asm.Statement{
				asm.AInstruction{Location: "SP"},
				asm.CInstruction{Comp: "M-1", Dest: "AM"},
				asm.CInstruction{Comp: "M", Dest: "D"},
				asm.CInstruction{Comp: "A-1", Dest: "A"},
				asm.CInstruction{Comp: tc.comp, Dest: "M"},
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("lowered statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLowerComparisonUsesPerSiteLabel(t *testing.T) {
	commands := []vm.Command{
		{Kind: vm.Arithmetic, Arg1: "lt", File: "Main", Line: 9},
	}

	got, err := vm.NewLowerer(false).Lower(commands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := got[len(got)-1]
	if diff := cmp.Diff(asm.LabelDecl{Name: "Main.9.LT"}, last); diff != "" {
		t.Fatalf("true-branch label mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerFunctionWithZeroLocalsEmitsOnlyLabel(t *testing.T) {
	commands := []vm.Command{
		{Kind: vm.Function, Arg1: "Foo.bar", Arg2: "0", File: "Foo", Line: 1},
	}

	got, err := vm.NewLowerer(false).Lower(commands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []asm.Statement{asm.LabelDecl{Name: "Foo.bar"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("expected no local-zeroing code for 0 locals (-want +got):\n%s", diff)
	}
}

func TestLowerStaticUsesPerFileSymbol(t *testing.T) {
	commands := []vm.Command{
		{Kind: vm.Push, Arg1: "static", Arg2: "3", File: "Screen", Line: 4},
	}

	got, err := vm.NewLowerer(false).Lower(commands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(asm.AInstruction{Location: "Screen.3"}, got[0]); diff != "" {
		t.Fatalf("static address mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerDebugAnnotatesSourceCommand(t *testing.T) {
	commands := []vm.Command{
		{Kind: vm.Push, Arg1: "constant", Arg2: "7", File: "Main", Line: 1},
	}

	got, err := vm.NewLowerer(true).Lower(commands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(asm.Comment{Text: "push constant 7"}, got[0]); diff != "" {
		t.Fatalf("debug annotation mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerReturnRestoresFrameInOrder(t *testing.T) {
	commands := []vm.Command{
		{Kind: vm.Return, File: "Main", Line: 12},
	}

	got, err := vm.NewLowerer(false).Lower(commands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []asm.Statement{
		// FRAME = LCL
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// RETURN_ADDRESS = *(FRAME - 5)
		asm.AInstruction{Location: "5"},
		asm.CInstruction{Comp: "-A", Dest: "D"},
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "D+M", Dest: "A"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// *ARG = *(SP - 1)
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "M-1", Dest: "A"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Comp: "M", Dest: "A"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// SP = ARG + 1
		asm.CInstruction{Comp: "A+1", Dest: "D"},
		asm.AInstruction{Location: "SP"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// THAT = *(--FRAME)
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "M-1", Dest: "AM"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "THAT"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// THIS = *(--FRAME)
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "M-1", Dest: "AM"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "THIS"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// ARG = *(--FRAME)
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "M-1", Dest: "AM"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "ARG"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// LCL = *(--FRAME)
		asm.AInstruction{Location: "R14"},
		asm.CInstruction{Comp: "M-1", Dest: "AM"},
		asm.CInstruction{Comp: "M", Dest: "D"},
		asm.AInstruction{Location: "LCL"},
		asm.CInstruction{Comp: "D", Dest: "M"},
		// goto RETURN_ADDRESS
		asm.AInstruction{Location: "R13"},
		asm.CInstruction{Comp: "M", Dest: "A"},
		asm.CInstruction{Comp: "0", Jump: "JMP"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lowered statements mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerCallBuildsUniqueReturnLabel(t *testing.T) {
	commands := []vm.Command{
		{Kind: vm.Call, Arg1: "Math.multiply", Arg2: "2", File: "Main", Line: 5},
	}

	got, err := vm.NewLowerer(false).Lower(commands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantReturnLabel := asm.LabelDecl{Name: "Main.5.RETURN_ADDRESS"}
	last := got[len(got)-1]
	if diff := cmp.Diff(wantReturnLabel, last); diff != "" {
		t.Fatalf("return label mismatch (-want +got):\n%s", diff)
	}

	wantPushReturnAddr := asm.AInstruction{Location: "Main.5.RETURN_ADDRESS"}
	if diff := cmp.Diff(wantPushReturnAddr, got[0]); diff != "" {
		t.Fatalf("first statement should push the return address (-want +got):\n%s", diff)
	}
}
