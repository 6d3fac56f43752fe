package vm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

// buildROM wraps a raw code+data payload in a minimal valid container:
// magic, zero-length name/description, the 53 reserved bytes, then the
// payload itself.
func buildROM(payload []byte) []byte {
	buf := make([]byte, 64)
	copy(buf[0:4], romMagic[:])
	buf[4] = 0 // name length
	binary.LittleEndian.PutUint16(buf[5:7], 0)
	binary.LittleEndian.PutUint32(buf[7:11], uint32(len(payload)))
	return append(buf, payload...)
}

func newTestVM(t *testing.T, payload []byte, opts ...Option) *VM {
	vm, err := NewVM(buildROM(payload), opts...)
	assert(t, err == nil, "failed to construct VM: %v", err)
	return vm
}

// regByte packs (index, width-nibble) the way the decoder expects:
// high nibble selects width (0x0=int, 0x1=byte, 0x2=short).
func regByte(idx int, w Width) byte {
	switch w {
	case WidthByte:
		return byte(idx) | 0x10
	case WidthShort:
		return byte(idx) | 0x20
	default:
		return byte(idx)
	}
}

func modeByte(m1, m2 ParamMode) byte {
	return byte(m1)<<4 | byte(m2)
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// instr assembles opcode + mode byte + operand bytes into one
// instruction. Callers are responsible for matching modes to operand
// encodings; this mirrors writing raw machine code by hand.
func instr(op OpCode, m1, m2 ParamMode, operands ...[]byte) []byte {
	out := []byte{byte(op), modeByte(m1, m2)}
	for _, o := range operands {
		out = append(out, o...)
	}
	return out
}

func TestHaltTerminatesImmediately(t *testing.T) {
	vm := newTestVM(t, []byte{byte(Halt)})
	err := vm.Run()
	assert(t, err == nil, "expected clean halt, got %v", err)
}

func TestLoadConstAndPrint(t *testing.T) {
	var payload []byte
	payload = append(payload, instr(Load, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(5))...)
	payload = append(payload, instr(Push, ModeRegister, ModeUnused, []byte{regByte(RegA, WidthInt)})...)
	payload = append(payload, instr(SysCall, ModeConst32, ModeUnused, le32(sysCallHash("print_u32")))...)
	payload = append(payload, byte(Halt))

	var out bytes.Buffer
	vm := newTestVM(t, payload, WithStdout(&out))

	err := vm.Run()
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, out.String() == "5", "expected print_u32 to print 5, got %q", out.String())
}

func TestUnsignedAddOverflow(t *testing.T) {
	var payload []byte
	payload = append(payload, instr(Load, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(0xFFFFFFFF))...)
	payload = append(payload, instr(UAdd, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(1))...)
	payload = append(payload, byte(Halt))

	vm := newTestVM(t, payload)
	assert(t, vm.Run() == nil, "unexpected error")
	assert(t, vm.cpu.A() == 0, "expected wraparound to 0, got %#x", vm.cpu.A())
	assert(t, vm.cpu.R()&1 != 0, "expected unsigned overflow bit set in r, got %#x", vm.cpu.R())
}

func TestSignedAddOverflow(t *testing.T) {
	var payload []byte
	payload = append(payload, instr(Load, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(0x7FFFFFFF))...)
	payload = append(payload, instr(Add, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(1))...)
	payload = append(payload, byte(Halt))

	vm := newTestVM(t, payload)
	assert(t, vm.Run() == nil, "unexpected error")
	assert(t, vm.cpu.A() == 0x80000000, "expected wraparound to 0x80000000, got %#x", vm.cpu.A())
	assert(t, vm.cpu.R()&2 != 0, "expected signed overflow bit set in r, got %#x", vm.cpu.R())
}

// TestJumpNotEqual checks both arms of a conditional jump by landing
// on an invalid opcode when taken, and on Halt when not taken.
func TestJumpNotEqual(t *testing.T) {
	loadInstr := instr(Load, ModeRegister, ModeConst32, []byte{regByte(RegR, WidthInt)}, le32(1))
	jumpInstr := instr(JumpNE, ModeConst32, ModeUnused, le32(0)) // only its length is used; rebuilt below with the real target
	target := pcInit + uint32(len(loadInstr)) + uint32(len(jumpInstr)) + 1 // past Halt

	taken := append([]byte{}, loadInstr...)
	taken = append(taken, instr(JumpNE, ModeConst32, ModeUnused, le32(target))...)
	taken = append(taken, byte(Halt))
	taken = append(taken, 0xFF) // invalid opcode, landed on only if the jump fires

	vm := newTestVM(t, taken)
	err := vm.Run()
	assert(t, errors.Is(err, ErrInvalidOpCode), "expected jump taken to land on invalid opcode, got %v", err)

	notTaken := append([]byte{}, instr(Load, ModeRegister, ModeConst32, []byte{regByte(RegR, WidthInt)}, le32(0))...)
	notTaken = append(notTaken, instr(JumpNE, ModeConst32, ModeUnused, le32(target))...)
	notTaken = append(notTaken, byte(Halt))
	notTaken = append(notTaken, 0xFF)

	vm2 := newTestVM(t, notTaken)
	assert(t, vm2.Run() == nil, "expected jump not taken to fall through to Halt cleanly")
}

func TestDivByZero(t *testing.T) {
	var payload []byte
	payload = append(payload, instr(Load, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(10))...)
	payload = append(payload, instr(Div, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(0))...)
	payload = append(payload, byte(Halt))

	vm := newTestVM(t, payload)
	err := vm.Run()
	assert(t, errors.Is(err, ErrDivisionByZero), "expected ErrDivisionByZero, got %v", err)
}

func TestPushPopRoundTrip(t *testing.T) {
	var payload []byte
	payload = append(payload, instr(Load, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(0xCAFEBABE))...)
	payload = append(payload, instr(Push, ModeRegister, ModeUnused, []byte{regByte(RegA, WidthInt)})...)
	payload = append(payload, instr(Pop, ModeRegister, ModeUnused, []byte{regByte(RegB, WidthInt)})...)
	payload = append(payload, byte(Halt))

	vm := newTestVM(t, payload)
	assert(t, vm.Run() == nil, "unexpected error")
	assert(t, vm.cpu.B() == 0xCAFEBABE, "expected round-tripped value, got %#x", vm.cpu.B())
	assert(t, *vm.cpu.SP == stackInit, "expected stack pointer restored, got %#x", *vm.cpu.SP)
}

func TestByteAliasPreservesHighBits(t *testing.T) {
	var payload []byte
	payload = append(payload, instr(Load, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(0x11223344))...)
	payload = append(payload, instr(Load, ModeRegister, ModeConst8, []byte{regByte(RegA, WidthByte)}, []byte{0xFF})...)
	payload = append(payload, byte(Halt))

	vm := newTestVM(t, payload)
	assert(t, vm.Run() == nil, "unexpected error")
	assert(t, vm.cpu.A() == 0x112233FF, "expected only low byte touched, got %#x", vm.cpu.A())
}

func TestSignedCompareSignum(t *testing.T) {
	var payload []byte
	payload = append(payload, instr(Load, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(3))...)
	payload = append(payload, instr(CmpS, ModeRegister, ModeConst32, []byte{regByte(RegA, WidthInt)}, le32(5))...)
	payload = append(payload, byte(Halt))

	vm := newTestVM(t, payload)
	assert(t, vm.Run() == nil, "unexpected error")
	assert(t, int32(vm.cpu.R()) == -1, "expected r = -1 for 3 < 5, got %d", int32(vm.cpu.R()))
}

func TestInvalidOpCode(t *testing.T) {
	vm := newTestVM(t, []byte{0xFF})
	err := vm.Run()
	assert(t, errors.Is(err, ErrInvalidOpCode), "expected ErrInvalidOpCode, got %v", err)
}

func TestParseROMRejectsBadMagic(t *testing.T) {
	data := buildROM([]byte{byte(Halt)})
	data[0] = 'X'
	_, err := ParseROM(data)
	assert(t, errors.Is(err, ErrParse), "expected ErrParse for bad magic, got %v", err)
}

func TestParseROMRejectsWrongLength(t *testing.T) {
	data := buildROM([]byte{byte(Halt)})
	data = append(data, 0x00) // trailing garbage byte
	_, err := ParseROM(data)
	assert(t, errors.Is(err, ErrParse), "expected ErrParse for length mismatch, got %v", err)
}

func TestReadCharExhaustion(t *testing.T) {
	payload := instr(SysCall, ModeConst32, ModeUnused, le32(sysCallHash("read_char")))
	payload = append(payload, byte(Halt))

	vm := newTestVM(t, payload)
	err := vm.Run()
	assert(t, errors.Is(err, ErrNoInputGiven), "expected ErrNoInputGiven on empty input, got %v", err)
}
