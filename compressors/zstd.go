package compressors

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/INLOpen/columnbase/core"
)

// ZstdCompressor implements the Compressor interface with zstd frames.
// Encoder and decoder are created once and shared; both are safe for
// concurrent use via EncodeAll/DecodeAll.
type ZstdCompressor struct {
	once    sync.Once
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	initErr error
}

var _ core.Compressor = (*ZstdCompressor)(nil)

func NewZstdCompressor() *ZstdCompressor {
	return &ZstdCompressor{}
}

func (c *ZstdCompressor) init() {
	c.once.Do(func() {
		c.encoder, c.initErr = zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedDefault))
		if c.initErr != nil {
			return
		}
		c.decoder, c.initErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	})
}

func (*ZstdCompressor) Type() core.CompressionType {
	return core.CompressionZSTDNotFinal
}

func (c *ZstdCompressor) Compress(dst, src []byte) ([]byte, error) {
	c.init()
	if c.initErr != nil {
		return nil, core.IOErrorf("zstd init: %v", c.initErr)
	}
	return c.encoder.EncodeAll(src, dst[:0]), nil
}

func (c *ZstdCompressor) Decompress(dst, src []byte) ([]byte, error) {
	c.init()
	if c.initErr != nil {
		return nil, core.IOErrorf("zstd init: %v", c.initErr)
	}
	out, err := c.decoder.DecodeAll(src, dst[:0])
	if err != nil {
		return nil, core.Corruptionf("zstd decode: %v", err)
	}
	return out, nil
}
