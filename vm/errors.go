package vm

import (
	"errors"
	"fmt"
)

// Sentinel error kinds surfaced by the decoder and dispatcher. Callers
// compare against these with errors.Is; InvalidOpCode additionally
// carries the offending byte via %w-wrapping.
var (
	ErrParse            = errors.New("rom parse error")
	ErrInstruction      = errors.New("instruction error")
	ErrOutOfBoundsWrite = errors.New("out of bounds write")
	ErrInvalidRegister  = errors.New("invalid register")
	ErrInvalidSysCall   = errors.New("invalid syscall")
	ErrInvalidOpCode    = errors.New("invalid opcode")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrNoInputGiven     = errors.New("no input given")

	// ErrHalted is not a failure: it is the sentinel the driver loop
	// checks for to recognize a clean program stop.
	ErrHalted = errors.New("program halted")
)

func invalidOpCodeErr(b byte) error {
	return fmt.Errorf("%w: 0x%02x", ErrInvalidOpCode, b)
}

func invalidRegisterErr(reason string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRegister, fmt.Sprintf(reason, args...))
}

func instructionErr(reason string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInstruction, fmt.Sprintf(reason, args...))
}
