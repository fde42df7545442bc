package progress

import (
	"fmt"
	"io"
)

// SimpleHandler renders events as flat, tagged lines — the default for
// --verbose without --debug.
type SimpleHandler struct {
	writer io.Writer
}

// NewSimpleHandler creates a line-oriented handler writing to w.
func NewSimpleHandler(w io.Writer) *SimpleHandler {
	return &SimpleHandler{writer: w}
}

func (h *SimpleHandler) Handle(event Event) {
	switch event.Type {
	case EventResolveStart:
		fmt.Fprintf(h.writer, "[RESOLVE] starting\n")
	case EventResolveComplete:
		fmt.Fprintf(h.writer, "[RESOLVE] done in %s\n", event.Duration)
	case EventRepositoryTry:
		fmt.Fprintf(h.writer, "[REPO]    %s: trying %s\n", event.Coordinate, event.Repository)
	case EventPOMFetched:
		fmt.Fprintf(h.writer, "[POM]     %s fetched from %s\n", event.Coordinate, event.Repository)
	case EventArtifactFetched:
		fmt.Fprintf(h.writer, "[FETCH]   %s -> %s\n", event.Coordinate, event.Path)
	case EventChecksumMismatch:
		fmt.Fprintf(h.writer, "[CHECKSUM] %s mismatch at %s: %s\n", event.Coordinate, event.Repository, event.Reason)
	case EventSnapshotMetadataStale:
		fmt.Fprintf(h.writer, "[SNAPSHOT] %s metadata stale, refetching\n", event.Coordinate)
	case EventNodeMediated:
		fmt.Fprintf(h.writer, "[MEDIATE] %s superseded by nearer/earlier declaration: %s\n", event.Coordinate, event.Reason)
	case EventNodePruned:
		fmt.Fprintf(h.writer, "[PRUNE]   %s: %s\n", event.Coordinate, event.Reason)
	case EventNodeFailed:
		fmt.Fprintf(h.writer, "[ERROR]   %s: %s\n", event.Coordinate, event.Reason)
	case EventAssemblyEntry:
		fmt.Fprintf(h.writer, "[ASSEMBLY] %s\n", event.Path)
	case EventAssemblyConflict:
		fmt.Fprintf(h.writer, "[CONFLICT] %s: %s\n", event.Path, event.Reason)
	case EventInfo:
		fmt.Fprintf(h.writer, "[INFO]    %s\n", event.Info)
	}
}
