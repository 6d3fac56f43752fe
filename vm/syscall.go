package vm

import (
	"fmt"
	"math"
)

// sysCallHash implements the spec's 32-bit name hash: h = name[0], then
// h = 31*h + c (written as (h<<5) - h + c) per character, wraparound.
// Ported directly from the reference's hash().
func sysCallHash(name string) uint32 {
	if len(name) == 0 {
		return 0
	}
	h := uint32(name[0])
	for i := 1; i < len(name); i++ {
		h = (h << 5) - h + uint32(name[i])
	}
	return h
}

// sysCallNames enumerates every recognized host syscall. Hashes are
// computed once in init() rather than hard-coded, since the algorithm
// is deterministic and the table is small.
var sysCallNames = []string{
	"print_u32", "print_i32", "print_f32", "print_u8", "print_char",
	"test_af", "test_au", "test_ai", "test_rf", "test_r", "test_ri",
	"read_char",
}

var hashToSysCall map[uint32]string

func init() {
	hashToSysCall = make(map[uint32]string, len(sysCallNames))
	for _, name := range sysCallNames {
		hashToSysCall[sysCallHash(name)] = name
	}
}

// doSysCall executes the host syscall named by hash. Print family
// syscalls read their operand from memory at the current stack
// pointer without popping it.
func (vm *VM) doSysCall(hash uint32) error {
	name, ok := hashToSysCall[hash]
	if !ok {
		return ErrInvalidSysCall
	}

	defer vm.stdout.Flush()

	switch name {
	case "print_u32":
		fmt.Fprintf(vm.stdout, "%d", vm.mem.ReadInt(*vm.cpu.SP))
	case "print_i32":
		fmt.Fprintf(vm.stdout, "%d", int32(vm.mem.ReadInt(*vm.cpu.SP)))
	case "print_f32":
		fmt.Fprintf(vm.stdout, "%g", math.Float32frombits(vm.mem.ReadInt(*vm.cpu.SP)))
	case "print_u8":
		fmt.Fprintf(vm.stdout, "%d", vm.mem.ReadByte(*vm.cpu.SP))
	case "print_char":
		vm.stdout.WriteByte(vm.mem.ReadByte(*vm.cpu.SP))
	case "test_af":
		fmt.Fprintf(vm.stdout, "%g", math.Float32frombits(vm.cpu.A()))
	case "test_au":
		fmt.Fprintf(vm.stdout, "%x", vm.cpu.A())
	case "test_ai":
		fmt.Fprintf(vm.stdout, "%d", int32(vm.cpu.A()))
	case "test_rf":
		fmt.Fprintf(vm.stdout, "%g", math.Float32frombits(vm.cpu.R()))
	case "test_r":
		fmt.Fprintf(vm.stdout, "%x", vm.cpu.R())
	case "test_ri":
		fmt.Fprintf(vm.stdout, "%d", int32(vm.cpu.R()))
	case "read_char":
		b, err := vm.nextInputByte()
		if err != nil {
			return err
		}
		vm.cpu.SetO(uint32(b))
	}
	return nil
}
