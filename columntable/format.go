// Package columntable implements the column-oriented sorted table format:
// a main file carrying keys plus row positions and N sibling subcolumn
// files carrying per-column values aligned by row position.
package columntable

import (
	"hash/crc32"

	"github.com/INLOpen/columnbase/core"
	"github.com/INLOpen/columnbase/sys"
)

// ColumnTableMagicNumber terminates every column table file, main and
// subcolumn alike.
const ColumnTableMagicNumber uint64 = 0x88e241b785f4cfff

const (
	// BlockTrailerSize is the compression type byte plus the masked CRC.
	BlockTrailerSize = 1 + 4

	// MaxBlockHandleEncodedLength bounds a varint-encoded handle.
	MaxBlockHandleEncodedLength = 10 + 10

	// FooterEncodedLength is the fixed footer size: two padded handles,
	// reserved padding, and the magic number.
	FooterEncodedLength = 2*MaxBlockHandleEncodedLength + 5 + 8

	// CompressionSizeLimit is the uncompressed size at or above which a
	// block is stored raw without consulting the codec.
	CompressionSizeLimit = 1 << 20
)

// Meta-block names in the metaindex. The strings are part of the on-disk
// format and must not change.
const (
	ColumnMetaBlockName      = "vidardb.column"
	PropertiesBlockName      = "vidardb.properties"
	CompressionDictBlockName = "vidardb.compression_dict"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

const checksumMaskDelta = 0xa282ead8

// MaskChecksum rotates the CRC right by 15 bits and adds a constant so a
// CRC of data that itself contains embedded CRCs stays well distributed.
func MaskChecksum(crc uint32) uint32 {
	return ((crc >> 15) | (crc << 17)) + checksumMaskDelta
}

// UnmaskChecksum inverts MaskChecksum.
func UnmaskChecksum(masked uint32) uint32 {
	rot := masked - checksumMaskDelta
	return (rot >> 17) | (rot << 15)
}

// blockTrailerChecksum covers the block body extended with the type byte.
func blockTrailerChecksum(body []byte, typ core.CompressionType) uint32 {
	crc := crc32.Checksum(body, castagnoli)
	crc = crc32.Update(crc, castagnoli, []byte{byte(typ)})
	return MaskChecksum(crc)
}

// BlockHandle locates a block in a file.
type BlockHandle struct {
	Offset uint64
	Size   uint64
}

// EncodeTo appends the varint encoding of h.
func (h BlockHandle) EncodeTo(dst []byte) []byte {
	dst = core.AppendUvarint(dst, h.Offset)
	return core.AppendUvarint(dst, h.Size)
}

// DecodeBlockHandle parses a handle from src, returning the handle and the
// number of bytes consumed.
func DecodeBlockHandle(src []byte) (BlockHandle, int, error) {
	offset, n := core.GetUvarint(src)
	if n <= 0 {
		return BlockHandle{}, 0, core.Corruptionf("bad block handle offset")
	}
	size, m := core.GetUvarint(src[n:])
	if m <= 0 {
		return BlockHandle{}, 0, core.Corruptionf("bad block handle size")
	}
	return BlockHandle{Offset: offset, Size: size}, n + m, nil
}

// Footer is the fixed-size trailer of a table file.
type Footer struct {
	MetaindexHandle BlockHandle
	IndexHandle     BlockHandle
}

// EncodeTo appends the fixed 53-byte footer encoding.
func (f *Footer) EncodeTo(dst []byte) []byte {
	start := len(dst)
	dst = f.MetaindexHandle.EncodeTo(dst)
	dst = f.IndexHandle.EncodeTo(dst)
	for len(dst)-start < 2*MaxBlockHandleEncodedLength+5 {
		dst = append(dst, 0)
	}
	return core.AppendFixed64(dst, ColumnTableMagicNumber)
}

// DecodeFooter parses the footer from the last FooterEncodedLength bytes
// of a file.
func DecodeFooter(data []byte) (Footer, error) {
	var f Footer
	if len(data) != FooterEncodedLength {
		return f, core.Corruptionf("footer is %d bytes, want %d", len(data), FooterEncodedLength)
	}
	if magic := core.DecodeFixed64(data[len(data)-8:]); magic != ColumnTableMagicNumber {
		return f, core.Corruptionf("bad table magic number %#x", magic)
	}
	var n int
	var err error
	f.MetaindexHandle, n, err = DecodeBlockHandle(data)
	if err != nil {
		return f, err
	}
	if f.IndexHandle, _, err = DecodeBlockHandle(data[n:]); err != nil {
		return f, err
	}
	return f, nil
}

// ReadFooter reads and decodes the footer from the tail of a file.
func ReadFooter(file sys.FileInterface, fileSize int64) (Footer, error) {
	if fileSize < FooterEncodedLength {
		return Footer{}, core.Corruptionf("file %s is too short (%d bytes) to be a column table",
			file.Name(), fileSize)
	}
	var buf [FooterEncodedLength]byte
	if _, err := file.ReadAt(buf[:], fileSize-FooterEncodedLength); err != nil {
		return Footer{}, core.Corruptionf("reading footer of %s: %v", file.Name(), err)
	}
	f, err := DecodeFooter(buf[:])
	if err != nil {
		return Footer{}, core.Corruptionf("%s: %v", file.Name(), err)
	}
	return f, nil
}

// ReadBlockContents reads the block at handle, verifies the trailer CRC,
// and returns the decompressed contents. The raw on-disk bytes live in a
// pooled scratch buffer; the returned slice is always freshly owned, so it
// is safe to hand to the block cache.
func ReadBlockContents(file sys.FileInterface, handle BlockHandle, verifyChecksum bool) ([]byte, error) {
	scratch := core.BufferPool.Get()
	defer core.BufferPool.Put(scratch)
	n := int(handle.Size) + BlockTrailerSize
	scratch.Grow(n)
	raw := scratch.AvailableBuffer()[:n]

	if _, err := file.ReadAt(raw, int64(handle.Offset)); err != nil {
		return nil, core.Corruptionf("reading block at offset %d in %s: %v",
			handle.Offset, file.Name(), err)
	}
	body := raw[:handle.Size]
	typ := core.CompressionType(raw[handle.Size])
	if verifyChecksum {
		stored := core.DecodeFixed32(raw[handle.Size+1:])
		if computed := blockTrailerChecksum(body, typ); computed != stored {
			return nil, core.Corruptionf("block checksum mismatch at offset %d in %s",
				handle.Offset, file.Name())
		}
	}
	if typ == core.CompressionNone {
		return append([]byte(nil), body...), nil
	}
	codec, err := compressorForType(typ)
	if err != nil {
		return nil, core.Corruptionf("block at offset %d in %s: %v", handle.Offset, file.Name(), err)
	}
	out, err := codec.Decompress(nil, body)
	if err != nil {
		return nil, core.Corruptionf("decompressing block at offset %d in %s: %v",
			handle.Offset, file.Name(), err)
	}
	return out, nil
}
