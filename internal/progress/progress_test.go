package progress

import (
	"bytes"
	"testing"
	"time"
)

func TestSimpleHandler(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{
			name:     "repository try",
			event:    Event{Type: EventRepositoryTry, Coordinate: "org.example:lib:1.0", Repository: "central"},
			expected: "[REPO]    org.example:lib:1.0: trying central\n",
		},
		{
			name:     "pom fetched",
			event:    Event{Type: EventPOMFetched, Coordinate: "org.example:lib:1.0", Repository: "central"},
			expected: "[POM]     org.example:lib:1.0 fetched from central\n",
		},
		{
			name:     "checksum mismatch",
			event:    Event{Type: EventChecksumMismatch, Coordinate: "org.example:lib:1.0", Repository: "central", Reason: "sha1 mismatch"},
			expected: "[CHECKSUM] org.example:lib:1.0 mismatch at central: sha1 mismatch\n",
		},
		{
			name:     "node failed",
			event:    Event{Type: EventNodeFailed, Coordinate: "org.example:lib:1.0", Reason: "not found in any repository"},
			expected: "[ERROR]   org.example:lib:1.0: not found in any repository\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := NewSimpleHandler(&buf)
			h.Handle(tt.event)
			if got := buf.String(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProgressDisabledSkipsHandler(t *testing.T) {
	var buf bytes.Buffer
	p := New(false, NewSimpleHandler(&buf))
	p.Report(Event{Type: EventNodeFailed, Coordinate: "x:y:1"})
	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}
}

func TestResolveCompleteReportsDuration(t *testing.T) {
	var buf bytes.Buffer
	p := New(true, NewSimpleHandler(&buf))
	p.ResolveStart(1)
	time.Sleep(time.Millisecond)
	p.ResolveComplete(1, 0)
	if buf.Len() == 0 {
		t.Error("expected resolve complete to produce output")
	}
}
