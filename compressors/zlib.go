package compressors

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/INLOpen/columnbase/core"
)

// ZlibCompressor implements the Compressor interface with the zlib stream
// format. The stream is self-describing, so decode needs no length prefix.
type ZlibCompressor struct {
	level int
}

var _ core.Compressor = (*ZlibCompressor)(nil)

func NewZlibCompressor() *ZlibCompressor {
	return &ZlibCompressor{level: zlib.DefaultCompression}
}

// NewZlibCompressorLevel selects an explicit zlib level.
func NewZlibCompressorLevel(level int) *ZlibCompressor {
	return &ZlibCompressor{level: level}
}

func (*ZlibCompressor) Type() core.CompressionType {
	return core.CompressionZlib
}

func (c *ZlibCompressor) Compress(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])
	zw, err := zlib.NewWriterLevel(buf, c.level)
	if err != nil {
		return nil, core.InvalidArgumentf("zlib level %d: %v", c.level, err)
	}
	if _, err := zw.Write(src); err != nil {
		return nil, core.IOErrorf("zlib compress: %v", err)
	}
	if err := zw.Close(); err != nil {
		return nil, core.IOErrorf("zlib compress close: %v", err)
	}
	return buf.Bytes(), nil
}

func (*ZlibCompressor) Decompress(dst, src []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, core.Corruptionf("zlib decode: %v", err)
	}
	defer zr.Close()
	buf := bytes.NewBuffer(dst[:0])
	if _, err := io.Copy(buf, zr); err != nil {
		return nil, core.Corruptionf("zlib decode: %v", err)
	}
	return buf.Bytes(), nil
}
