package core

import "encoding/binary"

// Append-style codecs shared by the block and table formats. Varints and
// fixed-width integers are little-endian, matching the on-disk layout;
// row positions alone are big-endian so that lexicographic byte order
// equals numeric order.

// AppendUvarint appends v in unsigned varint encoding.
func AppendUvarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

// GetUvarint decodes an unsigned varint from src. It returns the value and
// the number of bytes consumed; n <= 0 signals a truncated or overlong
// encoding.
func GetUvarint(src []byte) (uint64, int) {
	return binary.Uvarint(src)
}

// AppendFixed32 appends v as 4 little-endian bytes.
func AppendFixed32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// AppendFixed64 appends v as 8 little-endian bytes.
func AppendFixed64(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

// DecodeFixed32 decodes 4 little-endian bytes.
func DecodeFixed32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// DecodeFixed64 decodes 8 little-endian bytes.
func DecodeFixed64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// RowPositionLen is the encoded width of a row position.
const RowPositionLen = 8

// AppendFixed64BigEndian appends v as 8 big-endian bytes. Row positions use
// this encoding so positions compare correctly under the bytewise comparator.
func AppendFixed64BigEndian(dst []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, v)
}

// DecodeFixed64BigEndian decodes 8 big-endian bytes.
func DecodeFixed64BigEndian(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// EncodeRowPosition returns the 8-byte big-endian encoding of pos.
func EncodeRowPosition(pos uint64) []byte {
	var b [RowPositionLen]byte
	binary.BigEndian.PutUint64(b[:], pos)
	return b[:]
}
