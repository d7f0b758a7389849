package metrics

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLSink writes one JSON object per line: metrics as
// {"definition","frame","value"} and frame summaries under "summary".
type JSONLSink struct {
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLSink writes to w. If w is an io.Closer it is closed by Close.
func NewJSONLSink(w io.Writer) *JSONLSink {
	s := &JSONLSink{enc: json.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *JSONLSink) Report(m Metric) error {
	if err := s.enc.Encode(m); err != nil {
		return fmt.Errorf("encode metric: %w", err)
	}
	return nil
}

func (s *JSONLSink) RecordFrame(f FrameSummary) error {
	if err := s.enc.Encode(struct {
		Summary FrameSummary `json:"summary"`
	}{f}); err != nil {
		return fmt.Errorf("encode frame summary: %w", err)
	}
	return nil
}

func (s *JSONLSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
