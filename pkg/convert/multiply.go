package convert

import (
	"github.com/jpfielding/hdrtools.go/pkg/closedloop"
	"github.com/jpfielding/hdrtools.go/pkg/frame"
)

// multiply rescales the open-loop luma instead of searching
type multiply struct {
	*base
}

func (m *multiply) Process(out, in *frame.Frame) error {
	if done, err := m.run(out, in, false); done {
		return err
	}
	planes, err := m.prepare(in, 0, nil)
	if err != nil {
		return err
	}
	for i := 0; i < in.Pixels(); i++ {
		px := pixelAt(planes, i)
		if m.params.ClosedLoop == closedloop.ModeNull {
			m.put(out, i, m.engine.SolveNull(px))
			m.stats.Pixels++
			continue
		}
		s, ok := m.engine.SolveMultiply(px, m.params.MultiplyDomain)
		m.stats.add(s.Result)
		if !ok {
			m.stats.MultiplyFallbacks++
		}
		m.put(out, i, s)
	}
	m.done()
	return nil
}
