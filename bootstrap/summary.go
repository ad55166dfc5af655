package bootstrap

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/statekit/logger"
	"github.com/kbukum/statekit/state"
)

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	endpoint        string
	paths           []string
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		paths:       make([]string, 0),
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// SetEndpoint records the address the state endpoints listen on.
func (s *Summary) SetEndpoint(addr string) {
	s.endpoint = addr
}

// TrackPath records a wired hierarchy path.
func (s *Summary) TrackPath(path string) {
	s.paths = append(s.paths, path)
}

// Paths returns the tracked hierarchy paths in wiring order.
func (s *Summary) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Display writes the summary and the live state tree to w, and logs one
// line per node.
func (s *Summary) Display(w io.Writer, root state.Info, log *logger.Logger) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	if s.endpoint != "" {
		fmt.Fprintf(w, "🌐 State endpoints on %s\n\n", s.endpoint)
	}

	fmt.Fprintf(w, "📦 Components (%d wired)\n", len(s.paths))
	printNode(w, root, "   ", true)
	fmt.Fprintf(w, "\n")

	healthy, total := 0, 0
	root.Walk(func(path string, node state.Info) {
		total++
		if node.Healthy() {
			healthy++
		}
		if log != nil {
			fields := logger.Fields(logger.FieldPath, path, logger.FieldState, node.State.String())
			if node.Reason != "" {
				fields[logger.FieldReason] = node.Reason
			}
			log.Debug("component state", fields)
		}
	})

	if healthy == total {
		fmt.Fprintf(w, "✅ All components healthy (%d/%d)\n", healthy, total)
	} else {
		fmt.Fprintf(w, "⚠️  Some components have issues (%d/%d healthy)\n", healthy, total)
	}
	fmt.Fprintf(w, "\n")
}

func printNode(w io.Writer, node state.Info, indent string, last bool) {
	prefix := "├──"
	if last {
		prefix = "└──"
	}
	line := fmt.Sprintf("%s%s %s %s (%s)", indent, prefix, stateIcon(node.State), node.Name, strings.ToLower(node.State.String()))
	if node.Reason != "" && !node.Healthy() {
		line += " - " + node.Reason
	}
	fmt.Fprintln(w, line)

	childIndent := indent + "│   "
	if last {
		childIndent = indent + "    "
	}
	for i, c := range node.Components {
		printNode(w, c, childIndent, i == len(node.Components)-1)
	}
}

func stateIcon(s state.State) string {
	switch s {
	case state.OK:
		return "✅"
	case state.Degraded:
		return "⚠️"
	case state.Failed, state.Unavailable:
		return "❌"
	case state.Initializing, state.ShuttingDown:
		return "⏳"
	case state.ShutDown, state.Uninitialized:
		return "⏸️"
	default:
		return "❓"
	}
}
