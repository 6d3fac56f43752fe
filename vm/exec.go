package vm

import "math"

// This is the hot path: one big switch over the decoded opcode,
// mutating the CPU and Memory directly. Keep per-case logic inline
// rather than behind extra indirection; the per-family dispatch
// methods in exec_arith.go and the small arith.go helpers are the only
// abstraction layers.
//
// Operand convention: for the load family the first operand is the
// destination and the second is the source value. Every arithmetic,
// bitwise, shift, bit-op, float-intrinsic and cast opcode is
// 2-address: the first operand is both the left-hand value and the
// destination, resolved once via resolveRW (bitwise opcodes instead
// resolve the destination and read its full 32-bit carrier; see
// execBitwise).

func overflowFlag(unsignedOverflow, signedOverflow bool) uint32 {
	var r uint32
	if unsignedOverflow {
		r |= 1
	}
	if signedOverflow {
		r |= 2
	}
	return r
}

// resolveRW resolves a Parameter as a Writable and returns it together
// with its current value, read at its own natural width.
func resolveRW(p Parameter, cpu *CPU, mem *Memory) (Writable, uint32, error) {
	dst, err := resolveWritable(p, cpu, mem, WidthInt)
	if err != nil {
		return nil, 0, err
	}
	return dst, dst.Read(), nil
}

func ftou(f float32) uint32 {
	if f < 0 {
		return 0
	}
	return uint32(f)
}

// execute runs one already-decoded instruction against vm's CPU and
// memory. Control-transfer opcodes set p themselves; the driver must
// not also apply the decoded length for those (see OpCode.noAutoAdvance).
func (vm *VM) execute(di DecodedInstruction) error {
	cpu, mem := vm.cpu, vm.mem
	op := di.Op

	if cmp, isJump := op.jumpComparison(); isJump {
		target, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		if cmp.test(int32(cpu.R())) {
			*cpu.PC = target.Bits
		} else {
			*cpu.PC = *cpu.PC + di.Len
		}
		return nil
	}

	switch op {
	case Halt:
		return ErrHalted
	case Nop:
		return nil

	case Call:
		target, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		retAddr := *cpu.PC + di.Len
		*cpu.SP -= 4
		mem.WriteInt(*cpu.SP, retAddr)
		*cpu.PC = target.Bits
		return nil
	case Ret:
		addr := mem.ReadInt(*cpu.SP)
		*cpu.SP += 4
		*cpu.PC = addr
		return nil
	case SysCall:
		hash, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		return vm.doSysCall(hash.Bits)

	case CmpS:
		v1, err := resolveValue(di.P1, cpu, mem, WidthInt, true)
		if err != nil {
			return err
		}
		v2, err := resolveValue(di.P2, cpu, mem, v1.Width, true)
		if err != nil {
			return err
		}
		cpu.SetR(signumInt(int64(int32(v1.Bits)) - int64(int32(v2.Bits))))
		return nil
	case CmpU:
		v1, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		v2, err := resolveValue(di.P2, cpu, mem, v1.Width, false)
		if err != nil {
			return err
		}
		cpu.SetR(signumInt(int64(v1.Bits) - int64(v2.Bits)))
		return nil
	case CmpF:
		v1, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		v2, err := resolveValue(di.P2, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		f1, f2 := math.Float32frombits(v1.Bits), math.Float32frombits(v2.Bits)
		cpu.SetR(signumFloat(float64(f1) - float64(f2)))
		return nil

	case Load:
		return vm.loadInto(di, WidthInt, false)
	case LoadSigned:
		return vm.loadInto(di, WidthInt, true)
	case LoadWord:
		return vm.loadInto(di, WidthShort, false)
	case LoadWordSigned:
		return vm.loadInto(di, WidthShort, true)

	case LoadA:
		v, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		cpu.SetA(v.Bits)
		return nil
	case StoreA:
		dst, err := resolveWritable(di.P1, cpu, mem, WidthInt)
		if err != nil {
			return err
		}
		dst.Write(cpu.A())
		return nil
	case LoadB:
		v, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		cpu.SetB(v.Bits)
		return nil
	case StoreB:
		dst, err := resolveWritable(di.P1, cpu, mem, WidthInt)
		if err != nil {
			return err
		}
		dst.Write(cpu.B())
		return nil
	case LoadC:
		v, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		cpu.SetC(v.Bits)
		return nil
	case StoreC:
		dst, err := resolveWritable(di.P1, cpu, mem, WidthInt)
		if err != nil {
			return err
		}
		dst.Write(cpu.C())
		return nil
	case LoadD:
		v, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		cpu.SetD(v.Bits)
		return nil
	case StoreD:
		dst, err := resolveWritable(di.P1, cpu, mem, WidthInt)
		if err != nil {
			return err
		}
		dst.Write(cpu.D())
		return nil

	case Zero:
		dst, err := resolveWritable(di.P1, cpu, mem, WidthInt)
		if err != nil {
			return err
		}
		dst.WriteSize(0, WidthInt)
		return nil

	case Push:
		v, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		*cpu.SP -= uint32(v.Width)
		mem.WriteWidth(*cpu.SP, v.Bits, v.Width)
		return nil
	case Pop:
		dst, err := resolveWritable(di.P1, cpu, mem, WidthInt)
		if err != nil {
			return err
		}
		val := mem.ReadWidth(*cpu.SP, dst.Size())
		dst.WriteSize(val, dst.Size())
		*cpu.SP += uint32(dst.Size())
		return nil

	case Inc, Dec, Add, Sub, Mul, Div, Mod, Max, Min, Abs, Sign:
		return vm.execSignedArith(op, di)
	case UAdd, USub, UMul, UDiv, UMod, UMax, UMin:
		return vm.execUnsignedArith(op, di)
	case FInc, FDec, FAdd, FSub, FMul, FDiv, FMod, FMax, FMin, FAbs, FSign:
		return vm.execFloatArith(op, di)

	case And, Or, Not, Nand, Xor:
		return vm.execBitwise(op, di)
	case SLR, SAR, SLL, Ror, Rol:
		return vm.execShift(op, di)
	case Set, Clr, Tog, Test:
		return vm.execBitOp(op, di)

	case Sin, Cos, Tan, ASin, ACos, ATan, ATan2, Sqrt, Pow, Exp, Ln, Log2, Log10:
		return vm.execFloatIntrinsic(op, di)

	case Rand:
		dst, err := resolveWritable(di.P1, cpu, mem, WidthInt)
		if err != nil {
			return err
		}
		sample := vm.rand.Next() & 0x7fff
		f := float32(sample) / float32(0x7fff)
		dst.Write(math.Float32bits(f))
		cpu.SetR(uint32(sample))
		return nil
	case RSeed:
		v, err := resolveValue(di.P1, cpu, mem, WidthInt, false)
		if err != nil {
			return err
		}
		vm.rand.Seed(v.Bits)
		return nil

	case ItoF:
		dst, lhs, err := resolveRW(di.P1, cpu, mem)
		if err != nil {
			return err
		}
		dst.Write(math.Float32bits(float32(int32(lhs))))
		return nil
	case FtoI:
		dst, lhs, err := resolveRW(di.P1, cpu, mem)
		if err != nil {
			return err
		}
		dst.Write(uint32(int32(math.Float32frombits(lhs))))
		return nil
	case UtoF:
		dst, lhs, err := resolveRW(di.P1, cpu, mem)
		if err != nil {
			return err
		}
		dst.Write(math.Float32bits(float32(lhs)))
		return nil
	case FtoU:
		dst, lhs, err := resolveRW(di.P1, cpu, mem)
		if err != nil {
			return err
		}
		dst.Write(ftou(math.Float32frombits(lhs)))
		return nil
	}

	return invalidOpCodeErr(byte(op))
}

func (vm *VM) loadInto(di DecodedInstruction, w Width, signed bool) error {
	dst, err := resolveWritable(di.P1, vm.cpu, vm.mem, w)
	if err != nil {
		return err
	}
	v, err := resolveValue(di.P2, vm.cpu, vm.mem, w, signed)
	if err != nil {
		return err
	}
	dst.WriteSize(v.Bits, v.Width)
	return nil
}

type ordered interface {
	~int64 | ~float64
}

func signum[T ordered](diff T) uint32 {
	switch {
	case diff > 0:
		return 1
	case diff < 0:
		return math.MaxUint32
	default:
		return 0
	}
}

func signumInt(diff int64) uint32     { return signum(diff) }
func signumFloat(diff float64) uint32 { return signum(diff) }
