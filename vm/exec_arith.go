package vm

import "math"

func (vm *VM) execSignedArith(op OpCode, di DecodedInstruction) error {
	cpu, mem := vm.cpu, vm.mem
	dst, lhs, err := resolveRW(di.P1, cpu, mem)
	if err != nil {
		return err
	}
	w := dst.Size()

	switch op {
	case Inc:
		res, u, s := addWithFlags(lhs, 1, w)
		dst.Write(res)
		cpu.SetR(overflowFlag(u, s))
	case Dec:
		res, u, s := subWithFlags(lhs, 1, w)
		dst.Write(res)
		cpu.SetR(overflowFlag(u, s))
	case Add:
		rhs, err := resolveValue(di.P2, cpu, mem, w, true)
		if err != nil {
			return err
		}
		res, u, s := addWithFlags(lhs, rhs.Bits, w)
		dst.Write(res)
		cpu.SetR(overflowFlag(u, s))
	case Sub:
		rhs, err := resolveValue(di.P2, cpu, mem, w, true)
		if err != nil {
			return err
		}
		res, u, s := subWithFlags(lhs, rhs.Bits, w)
		dst.Write(res)
		cpu.SetR(overflowFlag(u, s))
	case Mul:
		rhs, err := resolveValue(di.P2, cpu, mem, w, true)
		if err != nil {
			return err
		}
		lo, hi := mulSigned(lhs, rhs.Bits, w)
		dst.Write(lo)
		cpu.SetR(hi)
	case Div:
		rhs, err := resolveValue(di.P2, cpu, mem, w, true)
		if err != nil {
			return err
		}
		quot, rem, err := divModSigned(lhs, rhs.Bits, w)
		if err != nil {
			return err
		}
		dst.Write(quot)
		cpu.SetR(rem)
	case Mod:
		rhs, err := resolveValue(di.P2, cpu, mem, w, true)
		if err != nil {
			return err
		}
		quot, rem, err := divModSigned(lhs, rhs.Bits, w)
		if err != nil {
			return err
		}
		dst.Write(rem)
		cpu.SetR(quot)
	case Max:
		rhs, err := resolveValue(di.P2, cpu, mem, w, true)
		if err != nil {
			return err
		}
		mx, mn := maxMinSigned(lhs, rhs.Bits, w)
		dst.Write(mx)
		cpu.SetR(mn)
	case Min:
		rhs, err := resolveValue(di.P2, cpu, mem, w, true)
		if err != nil {
			return err
		}
		mx, mn := maxMinSigned(lhs, rhs.Bits, w)
		dst.Write(mn)
		cpu.SetR(mx)
	case Abs:
		x := int32(signExtendInt64(lhs, w))
		dst.Write(absInt32(x))
		cpu.SetR(signWord32(x))
	case Sign:
		x := int32(signExtendInt64(lhs, w))
		dst.Write(signWord32(x))
		cpu.SetR(absInt32(x))
	}
	return nil
}

func (vm *VM) execUnsignedArith(op OpCode, di DecodedInstruction) error {
	cpu, mem := vm.cpu, vm.mem
	dst, lhs, err := resolveRW(di.P1, cpu, mem)
	if err != nil {
		return err
	}
	w := dst.Size()

	rhs, err := resolveValue(di.P2, cpu, mem, w, false)
	if err != nil {
		return err
	}

	switch op {
	case UAdd:
		res, u, s := addWithFlags(lhs, rhs.Bits, w)
		dst.Write(res)
		cpu.SetR(overflowFlag(u, s))
	case USub:
		res, u, s := subWithFlags(lhs, rhs.Bits, w)
		dst.Write(res)
		cpu.SetR(overflowFlag(u, s))
	case UMul:
		lo, hi := mulUnsigned(lhs, rhs.Bits, w)
		dst.Write(lo)
		cpu.SetR(hi)
	case UDiv:
		quot, rem, err := divModUnsigned(lhs, rhs.Bits, w)
		if err != nil {
			return err
		}
		dst.Write(quot)
		cpu.SetR(rem)
	case UMod:
		quot, rem, err := divModUnsigned(lhs, rhs.Bits, w)
		if err != nil {
			return err
		}
		dst.Write(rem)
		cpu.SetR(quot)
	case UMax:
		mx, mn := maxMinUnsigned(lhs, rhs.Bits, w)
		dst.Write(mx)
		cpu.SetR(mn)
	case UMin:
		mx, mn := maxMinUnsigned(lhs, rhs.Bits, w)
		dst.Write(mn)
		cpu.SetR(mx)
	}
	return nil
}

func (vm *VM) execFloatArith(op OpCode, di DecodedInstruction) error {
	cpu, mem := vm.cpu, vm.mem
	dst, lhsBits, err := resolveRW(di.P1, cpu, mem)
	if err != nil {
		return err
	}
	lhs := math.Float32frombits(lhsBits)

	readRHS := func() (float32, error) {
		v, err := resolveValue(di.P2, cpu, mem, dst.Size(), false)
		if err != nil {
			return 0, err
		}
		return math.Float32frombits(v.Bits), nil
	}

	switch op {
	case FInc:
		dst.Write(math.Float32bits(lhs + 1.0))
	case FDec:
		dst.Write(math.Float32bits(lhs - 1.0))
	case FAdd:
		rhs, err := readRHS()
		if err != nil {
			return err
		}
		dst.Write(math.Float32bits(lhs + rhs))
	case FSub:
		rhs, err := readRHS()
		if err != nil {
			return err
		}
		dst.Write(math.Float32bits(lhs - rhs))
	case FMul:
		rhs, err := readRHS()
		if err != nil {
			return err
		}
		dst.Write(math.Float32bits(lhs * rhs))
	case FDiv:
		rhs, err := readRHS()
		if err != nil {
			return err
		}
		quot := lhs / rhs
		rem := float32(math.Mod(float64(lhs), float64(rhs)))
		dst.Write(math.Float32bits(quot))
		cpu.SetR(math.Float32bits(rem))
	case FMod:
		rhs, err := readRHS()
		if err != nil {
			return err
		}
		quot := lhs / rhs
		rem := float32(math.Mod(float64(lhs), float64(rhs)))
		dst.Write(math.Float32bits(rem))
		cpu.SetR(math.Float32bits(quot))
	case FMax:
		rhs, err := readRHS()
		if err != nil {
			return err
		}
		mx, mn := maxMinFloat(math.Float32bits(lhs), math.Float32bits(rhs))
		dst.Write(mx)
		cpu.SetR(mn)
	case FMin:
		rhs, err := readRHS()
		if err != nil {
			return err
		}
		mx, mn := maxMinFloat(math.Float32bits(lhs), math.Float32bits(rhs))
		dst.Write(mn)
		cpu.SetR(mx)
	case FAbs:
		dst.Write(math.Float32bits(float32(math.Abs(float64(lhs)))))
		cpu.SetR(signBits32(lhs))
	case FSign:
		dst.Write(signBits32(lhs))
		dst2 := float32(math.Abs(float64(lhs)))
		cpu.SetR(math.Float32bits(dst2))
	}
	return nil
}

// execBitwise handles And/Or/Not/Nand/Xor. These operate on the full
// 32-bit carrier regardless of a register operand's byte/short alias;
// only the store into dst narrows, to dst's natural width.
func (vm *VM) execBitwise(op OpCode, di DecodedInstruction) error {
	cpu, mem := vm.cpu, vm.mem
	dst, err := resolveWritable(di.P1, cpu, mem, WidthInt)
	if err != nil {
		return err
	}
	lhs, err := fullCarrierValue(di.P1, cpu, mem)
	if err != nil {
		return err
	}

	if op == Not {
		dst.Write(^lhs)
		return nil
	}

	rhs, err := fullCarrierValue(di.P2, cpu, mem)
	if err != nil {
		return err
	}
	switch op {
	case And:
		dst.Write(lhs & rhs)
	case Or:
		dst.Write(lhs | rhs)
	case Nand:
		dst.Write(^(lhs & rhs))
	case Xor:
		dst.Write(lhs ^ rhs)
	}
	return nil
}

// fullCarrierValue reads a Parameter as the unmasked 32-bit carrier,
// ignoring any byte/short register alias the mode encodes.
func fullCarrierValue(p Parameter, cpu *CPU, mem *Memory) (uint32, error) {
	switch p.Mode {
	case ModeConst8, ModeConst16, ModeConst32:
		return p.Const, nil
	case ModeAbsAddr:
		return mem.ReadInt(p.Addr), nil
	case ModeRelAddr:
		return mem.ReadInt(p.Addr + cpu.O()), nil
	case ModeRegister:
		idx, _, err := DecodeRegisterByte(p.Reg)
		if err != nil {
			return 0, err
		}
		return cpu.regs[idx], nil
	case ModeRegAddress:
		idx, width, err := DecodeRegisterByte(p.Reg)
		if err != nil {
			return 0, err
		}
		addr := cpu.ReadReg(idx, width)
		return mem.ReadInt(addr), nil
	}
	return 0, instructionErr("unused parameter is not readable")
}

func (vm *VM) execShift(op OpCode, di DecodedInstruction) error {
	cpu, mem := vm.cpu, vm.mem
	dst, lhs, err := resolveRW(di.P1, cpu, mem)
	if err != nil {
		return err
	}
	w := dst.Size()

	rhs, err := resolveValue(di.P2, cpu, mem, w, false)
	if err != nil {
		return err
	}
	amt := rhs.Bits & shiftMask(w)
	pre := lhs & widthMask(w)

	bitsOut := func() uint32 {
		if amt == 0 {
			return 0
		}
		return pre & ((uint32(1) << amt) - 1)
	}

	switch op {
	case SLR:
		dst.Write(pre >> amt)
		cpu.SetR(bitsOut())
	case SAR:
		sv := signExtendInt64(lhs, w) >> amt
		dst.Write(uint32(sv) & widthMask(w))
		cpu.SetR(bitsOut())
	case SLL:
		dst.Write((pre << amt) & widthMask(w))
		cpu.SetR(bitsOut())
	case Ror:
		dst.Write(rotateRight(lhs, amt, w))
	case Rol:
		dst.Write(rotateLeft(lhs, amt, w))
	}
	return nil
}

func (vm *VM) execBitOp(op OpCode, di DecodedInstruction) error {
	cpu, mem := vm.cpu, vm.mem
	dst, lhs, err := resolveRW(di.P1, cpu, mem)
	if err != nil {
		return err
	}
	w := dst.Size()

	rhs, err := resolveValue(di.P2, cpu, mem, w, false)
	if err != nil {
		return err
	}
	i := rhs.Bits & shiftMask(w)
	bit := (lhs >> i) & 1

	switch op {
	case Set:
		dst.Write(lhs | (uint32(1) << i))
		cpu.SetR(bit)
	case Clr:
		dst.Write(lhs &^ (uint32(1) << i))
		cpu.SetR(bit)
	case Tog:
		dst.Write(lhs ^ (uint32(1) << i))
		cpu.SetR(bit)
	case Test:
		cpu.SetR(bit)
	}
	return nil
}

func (vm *VM) execFloatIntrinsic(op OpCode, di DecodedInstruction) error {
	cpu, mem := vm.cpu, vm.mem
	dst, lhsBits, err := resolveRW(di.P1, cpu, mem)
	if err != nil {
		return err
	}
	lhs := float64(math.Float32frombits(lhsBits))

	binary := func(f func(a, b float64) float64) error {
		rhs, err := resolveValue(di.P2, cpu, mem, dst.Size(), false)
		if err != nil {
			return err
		}
		r := float32(f(lhs, float64(math.Float32frombits(rhs.Bits))))
		dst.Write(math.Float32bits(r))
		return nil
	}

	switch op {
	case Sin:
		dst.Write(math.Float32bits(float32(math.Sin(lhs))))
	case Cos:
		dst.Write(math.Float32bits(float32(math.Cos(lhs))))
	case Tan:
		dst.Write(math.Float32bits(float32(math.Tan(lhs))))
	case ASin:
		dst.Write(math.Float32bits(float32(math.Asin(lhs))))
	case ACos:
		dst.Write(math.Float32bits(float32(math.Acos(lhs))))
	case ATan:
		dst.Write(math.Float32bits(float32(math.Atan(lhs))))
	case ATan2:
		return binary(math.Atan2)
	case Sqrt:
		dst.Write(math.Float32bits(float32(math.Sqrt(lhs))))
	case Pow:
		return binary(math.Pow)
	case Exp:
		dst.Write(math.Float32bits(float32(math.Exp(lhs))))
	case Ln:
		dst.Write(math.Float32bits(float32(math.Log(lhs))))
	case Log2:
		dst.Write(math.Float32bits(float32(math.Log2(lhs))))
	case Log10:
		dst.Write(math.Float32bits(float32(math.Log10(lhs))))
	}
	return nil
}
