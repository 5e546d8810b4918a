package vm_test

import (
	"testing"

	"github.com/nand2tetris-tools/frontend/pkg/vm"
)

func TestParseModule(t *testing.T) {
	source := "// a file comment\n" +
		"push constant 7 // inline comment\n" +
		"push constant 8\n" +
		"add\n" +
		"\n" +
		"pop local 0\n"

	commands, err := vm.ParseModule(source, "Main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []vm.Command{
		{Kind: vm.Push, Arg1: "constant", Arg2: "7", File: "Main", Line: 2},
		{Kind: vm.Push, Arg1: "constant", Arg2: "8", File: "Main", Line: 3},
		{Kind: vm.Arithmetic, Arg1: "add", File: "Main", Line: 4},
		{Kind: vm.Pop, Arg1: "local", Arg2: "0", File: "Main", Line: 6},
	}

	if len(commands) != len(expected) {
		t.Fatalf("got %d commands, want %d: %+v", len(commands), len(expected), commands)
	}
	for i := range expected {
		if commands[i] != expected[i] {
			t.Fatalf("command %d: got %+v, want %+v", i, commands[i], expected[i])
		}
	}
}

func TestParseModuleErrors(t *testing.T) {
	test := func(line string) {
		t.Helper()
		if _, err := vm.ParseModule(line, "Main"); err == nil {
			t.Fatalf("expected error parsing %q", line)
		}
	}

	t.Run("Unknown mnemonic", func(t *testing.T) { test("frobnicate") })
	t.Run("Missing push args", func(t *testing.T) { test("push constant") })
	t.Run("Invalid segment", func(t *testing.T) { test("push nosuchsegment 0") })
	t.Run("Non-numeric offset", func(t *testing.T) { test("push local abc") })
	t.Run("Missing label arg", func(t *testing.T) { test("goto") })
	t.Run("Missing call args", func(t *testing.T) { test("call Foo.bar") })
}

func TestParseModuleAcceptsAllSeventeenMnemonics(t *testing.T) {
	source := `add
sub
neg
eq
gt
lt
and
or
not
push constant 1
pop local 0
label LOOP
goto LOOP
if-goto LOOP
function Foo.bar 2
call Foo.bar 1
return`

	commands, err := vm.ParseModule(source, "Test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commands) != 17 {
		t.Fatalf("got %d commands, want 17", len(commands))
	}
}
