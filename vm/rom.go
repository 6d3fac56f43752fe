package vm

import (
	"encoding/binary"
	"unicode/utf8"
)

// ROM holds the parsed container's metadata and the raw code+data
// payload, ready to be copied into a fresh address space.
type ROM struct {
	Name        string
	Description string
	Payload     []byte
}

var romMagic = [4]byte{'T', 'X', '8', 0}

// ParseROM validates the container layout described in the external
// interfaces: a 4-byte magic, fixed-width length fields, 53 reserved
// bytes, then name/description/payload back to back. Total length
// must equal exactly 64 + N + D + L (the exact-length rule; see
// DESIGN.md for the open question this resolves).
func ParseROM(data []byte) (*ROM, error) {
	if len(data) < 64 || data[0] != romMagic[0] || data[1] != romMagic[1] ||
		data[2] != romMagic[2] || data[3] != romMagic[3] {
		return nil, ErrParse
	}

	nameLen := int(data[4])
	descLen := int(binary.LittleEndian.Uint16(data[5:7]))
	payloadLen := int(binary.LittleEndian.Uint32(data[7:11]))

	if payloadLen > maxROMPayload {
		return nil, ErrParse
	}

	nameEnd := 64 + nameLen
	descEnd := nameEnd + descLen
	payloadEnd := descEnd + payloadLen

	if len(data) != payloadEnd {
		return nil, ErrParse
	}

	if !utf8.Valid(data[64:nameEnd]) || !utf8.Valid(data[nameEnd:descEnd]) {
		return nil, ErrParse
	}

	return &ROM{
		Name:        string(data[64:nameEnd]),
		Description: string(data[nameEnd:descEnd]),
		Payload:     data[descEnd:payloadEnd],
	}, nil
}
