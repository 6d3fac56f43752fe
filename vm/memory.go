package vm

import "encoding/binary"

// The address space is a flat 16 MiB array. Every pointer handed to a
// read or write is truncated to its low 24 bits first, so the first
// byte of an access is always in range; the later bytes of a
// multi-byte access that starts within the last 3 bytes fall past the
// end of the backing array and read as zero (writes to them are
// dropped), mirroring the reference's get()-returns-None-as-zero
// behavior.
const (
	AddressSpaceSize = 1 << 24 // 16 MiB
	romBase          = 0x400000
	maxROMPayload    = 8 << 20 // 8 MiB
)

type Memory struct {
	bytes [AddressSpaceSize]byte
}

func truncatePtr(ptr uint32) uint32 {
	return ptr & 0xFFFFFF
}

func (m *Memory) at(idx uint32) byte {
	if int(idx) >= len(m.bytes) {
		return 0
	}
	return m.bytes[idx]
}

func (m *Memory) setAt(idx uint32, v byte) {
	if int(idx) < len(m.bytes) {
		m.bytes[idx] = v
	}
}

// bytesAt gathers n bytes starting at the truncated ptr through the
// bounds-checked at(), so a multi-byte access straddling the top of
// the address space still reads as zero past the end rather than
// panicking the way a direct slice of m.bytes would.
func (m *Memory) bytesAt(ptr uint32, n int) []byte {
	p := truncatePtr(ptr)
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = m.at(p + uint32(i))
	}
	return buf
}

func (m *Memory) ReadByte(ptr uint32) uint8 {
	return m.at(truncatePtr(ptr))
}

func (m *Memory) ReadShort(ptr uint32) uint16 {
	return binary.LittleEndian.Uint16(m.bytesAt(ptr, 2))
}

// ReadAddr24 reads a 24-bit little-endian address embedded directly in
// the instruction stream (used by the decoder for AbsAddr/RelAddr
// operand bytes, not by ordinary data reads).
func (m *Memory) ReadAddr24(ptr uint32) uint32 {
	b := m.bytesAt(ptr, 3)
	return binary.LittleEndian.Uint32([]byte{b[0], b[1], b[2], 0})
}

func (m *Memory) ReadInt(ptr uint32) uint32 {
	return binary.LittleEndian.Uint32(m.bytesAt(ptr, 4))
}

// ReadWidth reads a value of the given width (1, 2 or 4 bytes),
// zero-extended into the 32-bit carrier.
func (m *Memory) ReadWidth(ptr uint32, w Width) uint32 {
	switch w {
	case WidthByte:
		return uint32(m.ReadByte(ptr))
	case WidthShort:
		return uint32(m.ReadShort(ptr))
	default:
		return m.ReadInt(ptr)
	}
}

// putBytesAt scatters buf starting at the truncated ptr through the
// bounds-checked setAt(), the write-side mirror of bytesAt.
func (m *Memory) putBytesAt(ptr uint32, buf []byte) {
	p := truncatePtr(ptr)
	for i, v := range buf {
		m.setAt(p+uint32(i), v)
	}
}

func (m *Memory) WriteByte(ptr uint32, v uint8) {
	m.setAt(truncatePtr(ptr), v)
}

func (m *Memory) WriteShort(ptr uint32, v uint16) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	m.putBytesAt(ptr, buf)
}

func (m *Memory) WriteInt(ptr uint32, v uint32) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	m.putBytesAt(ptr, buf)
}

// WriteWidth writes the low w bytes of v, little-endian, at ptr.
// Writes never fail: there is no protection model in this design.
func (m *Memory) WriteWidth(ptr uint32, v uint32, w Width) {
	switch w {
	case WidthByte:
		m.WriteByte(ptr, uint8(v))
	case WidthShort:
		m.WriteShort(ptr, uint16(v))
	default:
		m.WriteInt(ptr, v)
	}
}

// LoadROM copies a code+data payload into the address space at the
// fixed base 0x400000. The caller (ParseROM) has already enforced the
// 8 MiB payload cap, so this can never run off the end of the array.
func (m *Memory) LoadROM(payload []byte) {
	copy(m.bytes[romBase:], payload)
}
