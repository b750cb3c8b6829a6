package core

// CompressionType identifies the codec recorded in a block trailer. The
// numeric values are part of the on-disk format and must not change.
type CompressionType byte

const (
	CompressionNone         CompressionType = 0
	CompressionSnappy       CompressionType = 1
	CompressionZlib         CompressionType = 2
	CompressionBZip2        CompressionType = 3
	CompressionLZ4          CompressionType = 4
	CompressionLZ4HC        CompressionType = 5
	CompressionXpress       CompressionType = 6
	CompressionZSTDNotFinal CompressionType = 7
)

// String returns the property-block name of the compression type.
func (ct CompressionType) String() string {
	switch ct {
	case CompressionNone:
		return "NoCompression"
	case CompressionSnappy:
		return "Snappy"
	case CompressionZlib:
		return "Zlib"
	case CompressionBZip2:
		return "BZip2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionLZ4HC:
		return "LZ4HC"
	case CompressionXpress:
		return "Xpress"
	case CompressionZSTDNotFinal:
		return "ZSTDNotFinal"
	default:
		return "Unknown"
	}
}

// Compressor is a pluggable block codec. Compress and Decompress may reuse
// dst's backing array when it has capacity; the returned slice is the
// encoded or decoded payload.
type Compressor interface {
	// Type returns the trailer byte this codec is registered under.
	Type() CompressionType

	// Compress encodes src. The result must be decodable by Decompress
	// without out-of-band state.
	Compress(dst, src []byte) ([]byte, error)

	// Decompress decodes src produced by Compress.
	Decompress(dst, src []byte) ([]byte, error)
}
