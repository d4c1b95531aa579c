package vm

import "fmt"

// RuntimeError is raised for a condition the bytecode.Emitter's static
// checks cannot rule out ahead of time: a failed Assert, or a
// CallBuiltin naming a gadget this reference executor does not implement
// (sha256/pedersen/ff::invert and the field-typed convert variants stay
// out of scope here — see DESIGN.md).
type RuntimeError struct {
	Message string
}

func newRuntimeError(format string, args ...any) RuntimeError {
	return RuntimeError{Message: fmt.Sprintf(format, args...)}
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("💥 RuntimeError: %s", e.Message)
}
