package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// VM ties together the CPU, the flat address space, the host syscall
// surface and the pluggable RNG. Construct one with NewVM and drive it
// with Step or Run.
type VM struct {
	cpu *CPU
	mem *Memory
	rom *ROM

	rand RandSource

	stdout *bufio.Writer
	input  []byte
	inPos  int

	errcode error
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithStdout redirects the VM's print_* syscall output.
func WithStdout(w io.Writer) Option {
	return func(vm *VM) { vm.stdout = bufio.NewWriter(w) }
}

// WithInput seeds the byte buffer consumed by read_char. The reference
// drains stdin eagerly at construction, so callers pass the full
// buffer up front rather than a live reader.
func WithInput(data []byte) Option {
	return func(vm *VM) {
		vm.input = data
		vm.inPos = 0
	}
}

// WithRandSource overrides the default LCG, mainly for deterministic
// tests.
func WithRandSource(r RandSource) Option {
	return func(vm *VM) { vm.rand = r }
}

// NewVM parses romData as a tx8 container and builds a VM with it
// loaded at the base address, ready to execute from the reset vector.
func NewVM(romData []byte, opts ...Option) (*VM, error) {
	rom, err := ParseROM(romData)
	if err != nil {
		return nil, err
	}

	vm := &VM{
		cpu:    NewCPU(),
		mem:    &Memory{},
		rom:    rom,
		rand:   NewDefaultRandSource(),
		stdout: bufio.NewWriter(os.Stdout),
	}
	vm.mem.LoadROM(rom.Payload)

	for _, opt := range opts {
		opt(vm)
	}

	return vm, nil
}

// ROM returns the parsed container metadata the VM was constructed
// from.
func (vm *VM) ROM() *ROM { return vm.rom }

// nextInputByte consumes one byte from the pre-drained input buffer
// for the read_char syscall.
func (vm *VM) nextInputByte() (byte, error) {
	if vm.inPos >= len(vm.input) {
		return 0, ErrNoInputGiven
	}
	b := vm.input[vm.inPos]
	vm.inPos++
	return b, nil
}

// Step decodes and executes a single instruction, advancing p unless
// the opcode manages p itself (jumps, call, ret, halt).
func (vm *VM) Step() error {
	di, err := Decode(vm.mem, *vm.cpu.PC)
	if err != nil {
		return err
	}

	if err := vm.execute(di); err != nil {
		return err
	}

	if !di.Op.noAutoAdvance() {
		*vm.cpu.PC += di.Len
	}
	return nil
}

// Run steps the VM until Halt, an error, or decode failure. The
// garbage collector is disabled for the duration: the 16 MiB address
// space is allocated at VM construction, and the loop's own small
// allocations (operand locations, multi-byte memory buffers, syscall
// formatting) are left uncollected until Run returns.
func (vm *VM) Run() error {
	defer vm.stdout.Flush()

	gcPercent := disableGC()
	defer restoreGC(gcPercent)

	for {
		if err := vm.Step(); err != nil {
			if err == ErrHalted {
				return nil
			}
			vm.errcode = err
			return err
		}
	}
}

// RunTrace behaves like Run but prints each decoded instruction and
// the register file before executing it, for use by --trace.
func (vm *VM) RunTrace(w io.Writer) error {
	defer vm.stdout.Flush()

	for {
		pc := *vm.cpu.PC
		di, err := Decode(vm.mem, pc)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%06x: %-8s a=%08x b=%08x c=%08x d=%08x r=%08x o=%08x s=%08x\n",
			pc, di.Op, vm.cpu.A(), vm.cpu.B(), vm.cpu.C(), vm.cpu.D(), vm.cpu.R(), vm.cpu.O(), *vm.cpu.SP)

		if err := vm.execute(di); err != nil {
			if err == ErrHalted {
				return nil
			}
			vm.errcode = err
			return err
		}
		if !di.Op.noAutoAdvance() {
			*vm.cpu.PC += di.Len
		}
	}
}
