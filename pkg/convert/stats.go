package convert

import (
	"log/slog"

	"github.com/jpfielding/hdrtools.go/pkg/closedloop"
)

// Stats counts what the closed loop did for the last processed frame
type Stats struct {
	Pixels            int `json:"pixels"`
	Shortcuts         int `json:"shortcuts"`
	Iterations        int `json:"iterations"`
	Exhausted         int `json:"exhausted"`
	MultiplyFallbacks int `json:"multiply_fallbacks"`
}

func (s *Stats) add(r closedloop.Result) {
	s.Pixels++
	s.Iterations += r.Iterations
	if r.Shortcut {
		s.Shortcuts++
	}
	if r.Exhausted {
		s.Exhausted++
	}
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("pixels", s.Pixels),
		slog.Int("shortcuts", s.Shortcuts),
		slog.Int("iterations", s.Iterations),
		slog.Int("exhausted", s.Exhausted),
		slog.Int("multiply_fallbacks", s.MultiplyFallbacks),
	)
}
