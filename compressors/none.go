package compressors

import "github.com/INLOpen/columnbase/core"

// NoCompressionCompressor passes block contents through untouched. ForType
// returns it for CompressionNone.
type NoCompressionCompressor struct{}

var _ core.Compressor = (*NoCompressionCompressor)(nil)

func NewNoCompressionCompressor() *NoCompressionCompressor {
	return &NoCompressionCompressor{}
}

func (*NoCompressionCompressor) Type() core.CompressionType {
	return core.CompressionNone
}

func (*NoCompressionCompressor) Compress(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}

func (*NoCompressionCompressor) Decompress(dst, src []byte) ([]byte, error) {
	return append(dst[:0], src...), nil
}
