package core

// Splitter is a pure bijection between a stitched value and its column
// parts: Split(Stitch(parts)) == parts for every well-formed input.
type Splitter interface {
	Name() string

	// Split decomposes a stitched value into column parts. An empty value
	// yields a nil slice.
	Split(value []byte) [][]byte

	// Stitch is the exact inverse of Split.
	Stitch(parts [][]byte) []byte

	// Append stitches one more part onto an existing output, used when a
	// projected read assembles columns incrementally.
	Append(dst []byte, part []byte, last bool) []byte
}

const (
	pipeDelimiter = '|'
	pipeEscape    = '\\'
)

// PipeSplitter separates columns with '|'. Literal delimiter and escape
// bytes inside a part are byte-stuffed with '\'.
type PipeSplitter struct{}

// NewPipeSplitter returns the pipe splitter.
func NewPipeSplitter() *PipeSplitter { return &PipeSplitter{} }

func (*PipeSplitter) Name() string { return "columnbase.PipeSplitter" }

func (*PipeSplitter) Split(value []byte) [][]byte {
	if len(value) == 0 {
		return nil
	}
	var parts [][]byte
	part := make([]byte, 0, len(value))
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case pipeEscape:
			if i+1 < len(value) {
				i++
				part = append(part, value[i])
			}
		case pipeDelimiter:
			parts = append(parts, part)
			part = []byte{}
		default:
			part = append(part, value[i])
		}
	}
	return append(parts, part)
}

func (s *PipeSplitter) Stitch(parts [][]byte) []byte {
	if len(parts) == 0 {
		return nil
	}
	var dst []byte
	for i, part := range parts {
		dst = s.Append(dst, part, i == len(parts)-1)
	}
	return dst
}

func (*PipeSplitter) Append(dst []byte, part []byte, last bool) []byte {
	for _, b := range part {
		if b == pipeDelimiter || b == pipeEscape {
			dst = append(dst, pipeEscape)
		}
		dst = append(dst, b)
	}
	if !last {
		dst = append(dst, pipeDelimiter)
	}
	return dst
}

// EncodedSplitter length-prefixes each part with a varint, which keeps
// arbitrary binary column values intact without byte stuffing.
type EncodedSplitter struct{}

// NewEncodedSplitter returns the length-prefixed splitter.
func NewEncodedSplitter() *EncodedSplitter { return &EncodedSplitter{} }

func (*EncodedSplitter) Name() string { return "columnbase.EncodedSplitter" }

func (*EncodedSplitter) Split(value []byte) [][]byte {
	if len(value) == 0 {
		return nil
	}
	var parts [][]byte
	for len(value) > 0 {
		n, w := GetUvarint(value)
		if w <= 0 || uint64(len(value)-w) < n {
			// Malformed input; treat the remainder as a single part so the
			// bijection never drops bytes.
			return append(parts, append([]byte(nil), value...))
		}
		parts = append(parts, append([]byte{}, value[w:w+int(n)]...))
		value = value[w+int(n):]
	}
	return parts
}

func (s *EncodedSplitter) Stitch(parts [][]byte) []byte {
	if len(parts) == 0 {
		return nil
	}
	var dst []byte
	for i, part := range parts {
		dst = s.Append(dst, part, i == len(parts)-1)
	}
	return dst
}

func (*EncodedSplitter) Append(dst []byte, part []byte, _ bool) []byte {
	dst = AppendUvarint(dst, uint64(len(part)))
	return append(dst, part...)
}

// SplitterForName resolves the splitters this package ships by their
// recorded property-block name.
func SplitterForName(name string) (Splitter, error) {
	switch name {
	case (&PipeSplitter{}).Name(), "pipe":
		return NewPipeSplitter(), nil
	case (&EncodedSplitter{}).Name(), "encoded":
		return NewEncodedSplitter(), nil
	}
	return nil, NotSupportedf("unknown splitter %q", name)
}
