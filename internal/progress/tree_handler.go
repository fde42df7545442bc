package progress

import (
	"fmt"
	"io"
)

// TreeHandler renders events indented by repository-chain depth — used
// for --debug, and for rendering the per-coordinate repository-attempt
// tree described in spec.md §7.
type TreeHandler struct {
	writer io.Writer
}

// NewTreeHandler creates a tree-oriented handler writing to w.
func NewTreeHandler(w io.Writer) *TreeHandler {
	return &TreeHandler{writer: w}
}

func (h *TreeHandler) Handle(event Event) {
	indent := ""
	for i := 0; i < event.Depth; i++ {
		indent += "  "
	}
	switch event.Type {
	case EventResolveStart:
		fmt.Fprintln(h.writer, "resolving...")
	case EventResolveComplete:
		fmt.Fprintf(h.writer, "resolved in %s\n", event.Duration)
	case EventRepositoryTry:
		fmt.Fprintf(h.writer, "%s├─ %s: trying %s\n", indent, event.Coordinate, event.Repository)
	case EventNodeFailed:
		fmt.Fprintf(h.writer, "%s└─ %s FAILED: %s\n", indent, event.Coordinate, event.Reason)
	default:
		h.fallback(event, indent)
	}
}

func (h *TreeHandler) fallback(event Event, indent string) {
	if event.Coordinate != "" {
		fmt.Fprintf(h.writer, "%s- %s\n", indent, event.Coordinate)
	}
}
