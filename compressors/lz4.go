package compressors

import (
	"encoding/binary"

	lz4 "github.com/pierrec/lz4/v4"

	"github.com/INLOpen/columnbase/core"
)

// LZ4Compressor implements the Compressor interface with LZ4 block
// encoding. The raw length is prepended as a varint because the LZ4 block
// format does not record it.
type LZ4Compressor struct {
	typ        core.CompressionType
	compressor lz4.CompressorHC
	highComp   bool
}

var _ core.Compressor = (*LZ4Compressor)(nil)

func NewLZ4Compressor() *LZ4Compressor {
	return &LZ4Compressor{typ: core.CompressionLZ4}
}

// NewLZ4HCCompressor trades compression speed for ratio using the
// high-compression mode; blocks it emits decode identically.
func NewLZ4HCCompressor() *LZ4Compressor {
	return &LZ4Compressor{
		typ:        core.CompressionLZ4HC,
		compressor: lz4.CompressorHC{Level: lz4.Level9},
		highComp:   true,
	}
}

func (c *LZ4Compressor) Type() core.CompressionType {
	return c.typ
}

func (c *LZ4Compressor) Compress(dst, src []byte) ([]byte, error) {
	dst = binary.AppendUvarint(dst[:0], uint64(len(src)))
	header := len(dst)
	bound := lz4.CompressBlockBound(len(src))
	if cap(dst) < header+bound {
		grown := make([]byte, header, header+bound)
		copy(grown, dst)
		dst = grown
	}
	var (
		n   int
		err error
	)
	if c.highComp {
		n, err = c.compressor.CompressBlock(src, dst[header:header+bound])
	} else {
		var cc lz4.Compressor
		n, err = cc.CompressBlock(src, dst[header:header+bound])
	}
	if err != nil {
		return nil, core.IOErrorf("lz4 compress: %v", err)
	}
	if n == 0 && len(src) > 0 {
		// Incompressible input; store it raw behind the length prefix. The
		// decoder detects this case by comparing lengths.
		return append(dst, src...), nil
	}
	return dst[:header+n], nil
}

func (*LZ4Compressor) Decompress(dst, src []byte) ([]byte, error) {
	rawLen, w := binary.Uvarint(src)
	if w <= 0 {
		return nil, core.Corruptionf("lz4 decode: bad length prefix")
	}
	src = src[w:]
	if uint64(len(src)) == rawLen {
		// Stored raw by the incompressible-input path.
		return append(dst[:0], src...), nil
	}
	if cap(dst) < int(rawLen) {
		dst = make([]byte, rawLen)
	}
	dst = dst[:rawLen]
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, core.Corruptionf("lz4 decode: %v", err)
	}
	if uint64(n) != rawLen {
		return nil, core.Corruptionf("lz4 decode: raw length mismatch, want %d got %d", rawLen, n)
	}
	return dst[:n], nil
}
