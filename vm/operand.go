package vm

// ParamMode is the 4-bit code packed into the parameter-mode byte that
// tells the decoder how to interpret the operand bytes that follow.
type ParamMode byte

const (
	ModeUnused     ParamMode = 0x0
	ModeConst8     ParamMode = 0x1
	ModeConst16    ParamMode = 0x2
	ModeConst32    ParamMode = 0x3
	ModeAbsAddr    ParamMode = 0x4
	ModeRelAddr    ParamMode = 0x5
	ModeRegister   ParamMode = 0x6
	ModeRegAddress ParamMode = 0x7
)

// footprint is the number of operand bytes this mode consumes after
// the parameter-mode byte itself.
func (m ParamMode) footprint() (int, error) {
	switch m {
	case ModeUnused:
		return 0, nil
	case ModeConst8:
		return 1, nil
	case ModeConst16:
		return 2, nil
	case ModeConst32:
		return 4, nil
	case ModeAbsAddr, ModeRelAddr:
		return 3, nil
	case ModeRegister, ModeRegAddress:
		return 1, nil
	}
	return 0, instructionErr("unknown parameter mode 0x%x", byte(m))
}

// Parameter is the decoder's raw, unresolved operand: a mode tag plus
// whatever payload that mode carries. The resolver turns this into a
// Value (read) or Writable (write) against a live CPU/Memory pair.
type Parameter struct {
	Mode  ParamMode
	Const uint32 // ModeConst8/16/32, already widened into the carrier
	Addr  uint32 // ModeAbsAddr/ModeRelAddr, 24-bit
	Reg   byte   // ModeRegister/ModeRegAddress, raw register byte
}

// decodeParameter reads one operand for the given mode starting at
// ptr, returning the Parameter and the number of bytes consumed.
func decodeParameter(mem *Memory, mode ParamMode, ptr uint32) (Parameter, int, error) {
	n, err := mode.footprint()
	if err != nil {
		return Parameter{}, 0, err
	}
	p := Parameter{Mode: mode}
	switch mode {
	case ModeUnused:
	case ModeConst8:
		p.Const = uint32(mem.ReadByte(ptr))
	case ModeConst16:
		p.Const = uint32(mem.ReadShort(ptr))
	case ModeConst32:
		p.Const = mem.ReadInt(ptr)
	case ModeAbsAddr, ModeRelAddr:
		p.Addr = mem.ReadAddr24(ptr)
	case ModeRegister, ModeRegAddress:
		p.Reg = mem.ReadByte(ptr)
	}
	return p, n, nil
}
