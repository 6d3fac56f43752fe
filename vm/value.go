package vm

// Value is a resolved, readable operand: a 32-bit carrier plus the
// width that produced it.
type Value struct {
	Bits  uint32
	Width Width
}

// Writable is a resolved, storable operand location: absolute or
// o-relative memory, a register alias, or memory addressed through a
// register. Each carries an intrinsic natural width.
type Writable interface {
	Read() uint32
	Write(val uint32)
	WriteSize(val uint32, w Width)
	Size() Width
}

type memWritable struct {
	mem   *Memory
	addr  uint32
	width Width
}

func (w *memWritable) Read() uint32                  { return w.mem.ReadWidth(w.addr, w.width) }
func (w *memWritable) Write(val uint32)              { w.mem.WriteWidth(w.addr, val, w.width) }
func (w *memWritable) WriteSize(val uint32, sz Width) { w.mem.WriteWidth(w.addr, val, sz) }
func (w *memWritable) Size() Width                    { return w.width }

type regWritable struct {
	cpu   *CPU
	idx   int
	width Width
}

func (w *regWritable) Read() uint32                  { return w.cpu.ReadReg(w.idx, w.width) }
func (w *regWritable) Write(val uint32)              { w.cpu.WriteReg(w.idx, w.width, val) }
func (w *regWritable) WriteSize(val uint32, sz Width) { w.cpu.WriteReg(w.idx, sz, val) }
func (w *regWritable) Size() Width                    { return w.width }

func signExtendToCarrier(v uint32, w Width) uint32 {
	switch w {
	case WidthByte:
		return uint32(int32(int8(v)))
	case WidthShort:
		return uint32(int32(int16(v)))
	default:
		return v
	}
}

// resolveValue reads a Parameter into a Value. declaredWidth is the
// width used for AbsoluteAddress/RelativeAddress/RegisterAddress reads
// (Register and Constant modes carry their own width, independent of
// declaredWidth). signed selects the sign-extending resolver variant;
// signed resolution of a 4-byte source is a no-op.
func resolveValue(p Parameter, cpu *CPU, mem *Memory, declaredWidth Width, signed bool) (Value, error) {
	switch p.Mode {
	case ModeConst8:
		bits := p.Const
		if signed {
			bits = signExtendToCarrier(bits, WidthByte)
		}
		return Value{Bits: bits, Width: WidthByte}, nil
	case ModeConst16:
		bits := p.Const
		if signed {
			bits = signExtendToCarrier(bits, WidthShort)
		}
		return Value{Bits: bits, Width: WidthShort}, nil
	case ModeConst32:
		return Value{Bits: p.Const, Width: WidthInt}, nil
	case ModeAbsAddr:
		bits := mem.ReadWidth(p.Addr, declaredWidth)
		if signed {
			bits = signExtendToCarrier(bits, declaredWidth)
		}
		return Value{Bits: bits, Width: declaredWidth}, nil
	case ModeRelAddr:
		bits := mem.ReadWidth(p.Addr+cpu.O(), declaredWidth)
		if signed {
			bits = signExtendToCarrier(bits, declaredWidth)
		}
		return Value{Bits: bits, Width: declaredWidth}, nil
	case ModeRegister:
		idx, width, err := DecodeRegisterByte(p.Reg)
		if err != nil {
			return Value{}, err
		}
		bits := cpu.ReadReg(idx, width)
		if signed {
			bits = signExtendToCarrier(bits, width)
		}
		return Value{Bits: bits, Width: width}, nil
	case ModeRegAddress:
		idx, width, err := DecodeRegisterByte(p.Reg)
		if err != nil {
			return Value{}, err
		}
		addr := cpu.ReadReg(idx, width)
		bits := mem.ReadWidth(addr, declaredWidth)
		if signed {
			bits = signExtendToCarrier(bits, declaredWidth)
		}
		return Value{Bits: bits, Width: declaredWidth}, nil
	}
	return Value{}, instructionErr("unused parameter is not readable")
}

// resolveWritable converts a Parameter into a Writable. Unused and all
// constant modes are rejected.
func resolveWritable(p Parameter, cpu *CPU, mem *Memory, declaredWidth Width) (Writable, error) {
	switch p.Mode {
	case ModeAbsAddr:
		return &memWritable{mem: mem, addr: p.Addr, width: declaredWidth}, nil
	case ModeRelAddr:
		return &memWritable{mem: mem, addr: p.Addr + cpu.O(), width: declaredWidth}, nil
	case ModeRegister:
		idx, width, err := DecodeRegisterByte(p.Reg)
		if err != nil {
			return nil, err
		}
		return &regWritable{cpu: cpu, idx: idx, width: width}, nil
	case ModeRegAddress:
		idx, width, err := DecodeRegisterByte(p.Reg)
		if err != nil {
			return nil, err
		}
		addr := cpu.ReadReg(idx, width)
		return &memWritable{mem: mem, addr: addr, width: declaredWidth}, nil
	}
	return nil, instructionErr("parameter mode 0x%x is not writable", byte(p.Mode))
}
