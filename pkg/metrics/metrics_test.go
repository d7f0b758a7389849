package metrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Definitions {
		assert.False(t, seen[d.ID.String()], "duplicate id %s", d.ID)
		seen[d.ID.String()] = true
		assert.NotEmpty(t, d.Name)
	}
	assert.Equal(t, "061e08cc-4428-4926-9933-a6732524b52b", ForegroundPlacementInfo.ID.String())
}

func TestJSONLSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONLSink(&buf)

	require.NoError(t, s.Report(Metric{Definition: BackgroundScaleRange.ID, Frame: 3, Value: ScaleRange{ScaleMin: 1, ScaleMax: 1.2}}))
	require.NoError(t, s.RecordFrame(FrameSummary{Frame: 3, Foreground: 4}))
	require.NoError(t, s.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var m struct {
		Definition string     `json:"definition"`
		Frame      int        `json:"frame"`
		Value      ScaleRange `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &m))
	assert.Equal(t, BackgroundScaleRange.ID.String(), m.Definition)
	assert.Equal(t, 3, m.Frame)
	assert.Equal(t, ScaleRange{ScaleMin: 1, ScaleMax: 1.2}, m.Value)

	var f struct {
		Summary FrameSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &f))
	assert.Equal(t, FrameSummary{Frame: 3, Foreground: 4}, f.Summary)
}

func TestJSONLSinkEncodeError(t *testing.T) {
	s := NewJSONLSink(&bytes.Buffer{})
	err := s.Report(Metric{Value: make(chan int)})
	assert.Error(t, err)
}

type failingSink struct{ calls int }

var errSink = errors.New("sink down")

func (f *failingSink) Report(Metric) error            { f.calls++; return errSink }
func (f *failingSink) RecordFrame(FrameSummary) error { f.calls++; return errSink }
func (f *failingSink) Close() error                   { f.calls++; return errSink }

func TestMultiCallsEverySink(t *testing.T) {
	bad := &failingSink{}
	var buf bytes.Buffer
	m := Multi{bad, NewJSONLSink(&buf), Discard}

	err := m.Report(Metric{Definition: AppParams.ID, Value: 1})
	assert.ErrorIs(t, err, errSink)
	assert.NotEmpty(t, buf.String())

	assert.ErrorIs(t, m.RecordFrame(FrameSummary{}), errSink)
	assert.ErrorIs(t, m.Close(), errSink)
	assert.Equal(t, 3, bad.calls)

	assert.NoError(t, Multi{Discard}.Report(Metric{}))
}

func openTestDB(t *testing.T, path string) *SQLiteSink {
	t.Helper()
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSink(t *testing.T) {
	s := openTestDB(t, filepath.Join(t.TempDir(), "metrics.db"))

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)

	info := PlacementInfo{LabelID: 2, LabelName: "can", Rotation: [3]float64{60, 36, 0}}
	require.NoError(t, s.Report(Metric{Definition: ForegroundPlacementInfo.ID, Frame: 0, Value: info}))
	require.NoError(t, s.Report(Metric{Definition: ForegroundPlacementInfo.ID, Frame: 1, Value: info}))
	require.NoError(t, s.Report(Metric{Definition: BackgroundScaleRange.ID, Frame: 1, Value: ScaleRange{0.9, 1.1}}))

	values, err := s.Values(ForegroundPlacementInfo.ID)
	require.NoError(t, err)
	require.Len(t, values, 2)
	var got PlacementInfo
	require.NoError(t, json.Unmarshal(values[0], &got))
	assert.Equal(t, info, got)

	frames := []FrameSummary{
		{Frame: 0, Foreground: 5, Occluders: 2, Background: 100, BackgroundExpected: 100},
		{Frame: 1, ScaleIndex: 1, Foreground: 3, Distractors: 1, Background: 80, BackgroundExpected: 90},
	}
	for _, f := range frames {
		require.NoError(t, s.RecordFrame(f))
	}
	stored, err := s.Frames()
	require.NoError(t, err)
	if diff := cmp.Diff(frames, stored); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}

	// the same frame cannot be recorded twice in one run
	assert.Error(t, s.RecordFrame(frames[0]))
}

func TestSQLiteSinkRunsAreSeparate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")

	first := openTestDB(t, path)
	require.NoError(t, first.RecordFrame(FrameSummary{Frame: 0, Foreground: 1}))
	require.NoError(t, first.Close())

	// reopening an up-to-date database is not an error
	second := openTestDB(t, path)
	assert.NotEqual(t, first.RunID(), second.RunID())
	require.NoError(t, second.RecordFrame(FrameSummary{Frame: 0, Foreground: 7}))

	frames, err := second.Frames()
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, 7, frames[0].Foreground)
}

func TestSQLiteSinkRejectsUnknownDefinition(t *testing.T) {
	s := openTestDB(t, filepath.Join(t.TempDir(), "metrics.db"))
	err := s.Report(Metric{Frame: 0, Value: 1})
	assert.Error(t, err, "foreign keys are enforced")
}
