package compressors

import (
	"github.com/golang/snappy"

	"github.com/INLOpen/columnbase/core"
)

// SnappyCompressor implements the Compressor interface with Snappy block
// encoding. Snappy embeds the uncompressed length, so no extra framing is
// required.
type SnappyCompressor struct{}

var _ core.Compressor = (*SnappyCompressor)(nil)

func NewSnappyCompressor() *SnappyCompressor {
	return &SnappyCompressor{}
}

func (*SnappyCompressor) Type() core.CompressionType {
	return core.CompressionSnappy
}

func (*SnappyCompressor) Compress(dst, src []byte) ([]byte, error) {
	return snappy.Encode(dst[:cap(dst)], src), nil
}

func (*SnappyCompressor) Decompress(dst, src []byte) ([]byte, error) {
	out, err := snappy.Decode(dst[:cap(dst)], src)
	if err != nil {
		return nil, core.Corruptionf("snappy decode: %v", err)
	}
	return out, nil
}
