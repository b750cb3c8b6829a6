// Package compressors provides the block codecs recorded in table block
// trailers. Each codec is pure: the ratio-gated fallback to an
// uncompressed block is the table builder's concern.
package compressors

import "github.com/INLOpen/columnbase/core"

// ForType returns the codec registered for a trailer byte. BZip2 and
// Xpress occupy reserved trailer values but have no maintained Go
// implementation, so both sides of the codec report NotSupported.
func ForType(t core.CompressionType) (core.Compressor, error) {
	switch t {
	case core.CompressionNone:
		return NewNoCompressionCompressor(), nil
	case core.CompressionSnappy:
		return NewSnappyCompressor(), nil
	case core.CompressionZlib:
		return NewZlibCompressor(), nil
	case core.CompressionLZ4:
		return NewLZ4Compressor(), nil
	case core.CompressionLZ4HC:
		return NewLZ4HCCompressor(), nil
	case core.CompressionZSTDNotFinal:
		return NewZstdCompressor(), nil
	case core.CompressionBZip2, core.CompressionXpress:
		return nil, core.NotSupportedf("compression type %s", t)
	default:
		return nil, core.Corruptionf("unknown compression type %d", byte(t))
	}
}
