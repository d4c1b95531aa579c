package compiler

import (
	"strings"
	"testing"

	"shardc/vm"
)

// assertRuns compiles source, runs it on a fresh vm.VM, and fails the
// test unless it completes with exit code 0 and no error — i.e. every
// require() in source held.
func assertRuns(t *testing.T, source string) {
	t.Helper()
	prog, err := CompileSource(source)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	code, err := vm.Run(prog)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

// assertCompileFails checks that source is rejected during compilation,
// with the error message containing want.
func assertCompileFails(t *testing.T, source, want string) {
	t.Helper()
	_, err := CompileSource(source)
	if err == nil {
		t.Fatalf("expected a compile error containing %q, got none", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not contain %q", err.Error(), want)
	}
}

// assertRunFails checks that source compiles but fails at runtime (a
// require() condition that does not hold).
func assertRunFails(t *testing.T, source string) {
	t.Helper()
	prog, err := CompileSource(source)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if _, err := vm.Run(prog); err == nil {
		t.Fatalf("expected a runtime error, got none")
	}
}

func TestRequireTrue(t *testing.T) {
	assertRuns(t, `fn main() { require(true); }`)
}

func TestRequireFalseFails(t *testing.T) {
	assertRunFails(t, `fn main() { require(false); }`)
}

func TestRequireWithTag(t *testing.T) {
	assertRunFails(t, `fn main() { require(false, "k"); }`)
}

// spec.md §8 scenario 4: an inclusive ascending range sums 0..=5.
func TestForLoopAscendingSum(t *testing.T) {
	assertRuns(t, `
fn main() {
    let mut sum: u32 = 0;
    for i in 0..=5 {
        sum = sum + (i as u32);
    }
    require(sum == (10 + 5) as u32);
}
`)
}

// DESIGN.md's resolved open question: descending ranges iterate in
// reverse rather than running zero times.
func TestForLoopDescendingIteratesInReverse(t *testing.T) {
	assertRuns(t, `
fn main() {
    let mut sum: u32 = 0;
    for i in 10..=0 {
        sum = sum + (i as u32);
    }
    require(sum == 55 as u32);
}
`)
}

// spec.md §8 scenario 5: an unannotated literal defaults to u8, so
// comparing it against an explicitly u64-typed variable is a type
// mismatch unless the literal is cast.
func TestDefaultIntegerWidthIsU8(t *testing.T) {
	assertRuns(t, `
fn main() {
    let x: u64 = 10;
    require(x == 10 as u64);
}
`)
	assertCompileFails(t, `
fn main() {
    let x: u64 = 10;
    require(x == 10);
}
`, "")
}

// spec.md §8 scenario 1: an if/else-if/else chain, all arms typed u8.
func TestConditionalElseIfChain(t *testing.T) {
	assertRuns(t, `
fn main() {
    let v = if true { 1 } else if false { 2 } else { 3 };
    require(v == 1);
}
`)
}

func TestMatchOverBooleanExhaustive(t *testing.T) {
	assertRuns(t, `
fn main() {
    let value = true;
    let v = match value {
        true => 1,
        false => 0,
    };
    require(v == 1);
}
`)
}

func TestMatchNonExhaustiveFails(t *testing.T) {
	assertCompileFails(t, `
fn main() {
    let value = true;
    let v = match value {
        true => 1,
    };
    require(v == 1);
}
`, "exhaustive")
}

func TestFunctionCallAndReturn(t *testing.T) {
	assertRuns(t, `
fn double(x: u32) -> u32 {
    return x * (2 as u32);
}

fn main() {
    require(double(21 as u32) == 42 as u32);
}
`)
}

func TestArrayIndexAndBounds(t *testing.T) {
	assertRuns(t, `
fn main() {
    let xs = [1, 2, 3];
    require(xs[1] == 2);
}
`)
	assertCompileFails(t, `
fn main() {
    let xs = [1, 2, 3];
    require(xs[3] == 2);
}
`, "out of bounds")
}

func TestStructureFieldAccess(t *testing.T) {
	assertRuns(t, `
struct Point {
    x: u8,
    y: u8,
}

fn main() {
    let p = Point { x: 3, y: 4 };
    require(p.x + p.y == 7);
}
`)
}

func TestTupleVsParenthesizedVsUnit(t *testing.T) {
	assertRuns(t, `
fn main() {
    let pair = (1, 2);
    let solo = (5);
    let unit = ();
    require(pair.0 + pair.1 == 3);
    require(solo == 5);
}
`)
}
