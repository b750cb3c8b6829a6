package columntable

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// traceSpan is a nil-tolerant wrapper so tracing stays a one-line opt-in
// at each call site.
type traceSpan struct {
	span trace.Span
}

func (s *traceSpan) end() {
	if s.span != nil {
		s.span.End()
	}
}

func (s *traceSpan) recordError(err error) {
	if s.span != nil && err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
}
