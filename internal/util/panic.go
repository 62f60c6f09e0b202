package util

import (
	"fmt"
	"runtime/debug"
)

// PanicError carries a recovered panic value and the stack at recovery time.
type PanicError struct {
	Value any
	Stack []byte
}

// NewPanicError converts a recovered panic value to an error.
func NewPanicError(r any) *PanicError { return &PanicError{Value: r, Stack: debug.Stack()} }

func (p *PanicError) Error() string { return fmt.Sprintf("panic: %v", p.Value) }
