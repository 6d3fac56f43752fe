package vm

import "math"

// Small width-correct arithmetic helpers shared by the dispatcher.
// Each works in terms of the 32-bit carrier plus an explicit width,
// since every resolved Value/Writable in this machine is really a
// masked view onto one.

func signExtendInt64(v uint32, w Width) int64 {
	switch w {
	case WidthByte:
		return int64(int8(v))
	case WidthShort:
		return int64(int16(v))
	default:
		return int64(int32(v))
	}
}

func signedRange(w Width) (int64, int64) {
	switch w {
	case WidthByte:
		return math.MinInt8, math.MaxInt8
	case WidthShort:
		return math.MinInt16, math.MaxInt16
	default:
		return math.MinInt32, math.MaxInt32
	}
}

// addWithFlags returns a+b at width w plus whether the result
// overflowed interpreting the operands as unsigned, and separately as
// signed.
func addWithFlags(a, b uint32, w Width) (result uint32, unsignedOverflow, signedOverflow bool) {
	mask := widthMask(w)
	sum := uint64(a&mask) + uint64(b&mask)
	result = uint32(sum) & mask
	unsignedOverflow = sum > uint64(mask)

	lo, hi := signedRange(w)
	ssum := signExtendInt64(a, w) + signExtendInt64(b, w)
	signedOverflow = ssum < lo || ssum > hi
	return
}

func subWithFlags(a, b uint32, w Width) (result uint32, unsignedOverflow, signedOverflow bool) {
	mask := widthMask(w)
	ua, ub := uint64(a&mask), uint64(b&mask)
	if ua >= ub {
		result = uint32(ua-ub) & mask
	} else {
		result = uint32((uint64(mask)+1)+ua-ub) & mask
		unsignedOverflow = true
	}

	lo, hi := signedRange(w)
	sdiff := signExtendInt64(a, w) - signExtendInt64(b, w)
	signedOverflow = sdiff < lo || sdiff > hi
	return
}

func mulUnsigned(a, b uint32, w Width) (lo, hi uint32) {
	mask := uint64(widthMask(w))
	prod := (uint64(a) & mask) * (uint64(b) & mask)
	return uint32(prod), uint32(prod >> 32)
}

func mulSigned(a, b uint32, w Width) (lo, hi uint32) {
	prod := signExtendInt64(a, w) * signExtendInt64(b, w)
	return uint32(prod), uint32(uint64(prod) >> 32)
}

// divModSigned truncates toward zero, matching Go's integer division.
func divModSigned(a, b uint32, w Width) (quot, rem uint32, err error) {
	if b&widthMask(w) == 0 {
		return 0, 0, ErrDivisionByZero
	}
	sa, sb := int32(signExtendInt64(a, w)), int32(signExtendInt64(b, w))
	return uint32(sa / sb), uint32(sa % sb), nil
}

func divModUnsigned(a, b uint32, w Width) (quot, rem uint32, err error) {
	mask := widthMask(w)
	ua, ub := a&mask, b&mask
	if ub == 0 {
		return 0, 0, ErrDivisionByZero
	}
	return ua / ub, ua % ub, nil
}

func maxMinSigned(a, b uint32, w Width) (max, min uint32) {
	if int32(signExtendInt64(a, w)) >= int32(signExtendInt64(b, w)) {
		return a & widthMask(w), b & widthMask(w)
	}
	return b & widthMask(w), a & widthMask(w)
}

func maxMinUnsigned(a, b uint32, w Width) (max, min uint32) {
	mask := widthMask(w)
	if a&mask >= b&mask {
		return a & mask, b & mask
	}
	return b & mask, a & mask
}

func maxMinFloat(a, b uint32) (max, min uint32) {
	fa, fb := math.Float32frombits(a), math.Float32frombits(b)
	if fa >= fb {
		return a, b
	}
	return b, a
}

// signBits32 returns the IEEE-754 bits of -1.0, 0.0 or +1.0 matching
// the sign of f.
func signBits32(f float32) uint32 {
	switch {
	case f > 0:
		return math.Float32bits(1.0)
	case f < 0:
		return math.Float32bits(-1.0)
	default:
		return math.Float32bits(0.0)
	}
}

// signWord32 returns -1/0/+1 as a 32-bit two's complement word.
func signWord32(x int32) uint32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return math.MaxUint32
	default:
		return 0
	}
}

func absInt32(x int32) uint32 {
	if x < 0 {
		return uint32(-x)
	}
	return uint32(x)
}

func rotateLeft(v uint32, amount uint32, w Width) uint32 {
	mask := widthMask(w)
	bits := uint32(w) * 8
	v &= mask
	if amount == 0 {
		return v
	}
	return ((v << amount) | (v >> (bits - amount))) & mask
}

func rotateRight(v uint32, amount uint32, w Width) uint32 {
	mask := widthMask(w)
	bits := uint32(w) * 8
	v &= mask
	if amount == 0 {
		return v
	}
	return ((v >> amount) | (v << (bits - amount))) & mask
}
