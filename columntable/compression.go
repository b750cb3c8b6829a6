package columntable

import (
	"github.com/INLOpen/columnbase/compressors"
	"github.com/INLOpen/columnbase/core"
)

func compressorForType(t core.CompressionType) (core.Compressor, error) {
	return compressors.ForType(t)
}

// goodCompressionRatio accepts a compressed block only when it saves at
// least 12.5% over the raw encoding.
func goodCompressionRatio(compressedSize, rawSize int) bool {
	return compressedSize < rawSize-rawSize/8
}

// compressBlock encodes raw with the requested codec, falling back to the
// raw bytes (and CompressionNone) when the codec is unavailable, errors
// out, or does not meet the ratio gate. scratch may be reused across
// calls; the returned slice aliases either raw or scratch.
func compressBlock(raw []byte, requested core.CompressionType, scratch []byte) ([]byte, core.CompressionType, []byte) {
	if requested == core.CompressionNone {
		return raw, core.CompressionNone, scratch
	}
	codec, err := compressorForType(requested)
	if err != nil {
		return raw, core.CompressionNone, scratch
	}
	out, err := codec.Compress(scratch, raw)
	if err != nil || !goodCompressionRatio(len(out), len(raw)) {
		if out != nil {
			scratch = out[:0]
		}
		return raw, core.CompressionNone, scratch
	}
	return out, requested, out
}
