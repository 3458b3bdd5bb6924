package convert

import (
	"github.com/jpfielding/hdrtools.go/pkg/closedloop"
	"github.com/jpfielding/hdrtools.go/pkg/frame"
)

// generic evaluates the full inverse matrix at every search step and supports every sub-mode
type generic struct {
	*base
}

func (g *generic) Process(out, in *frame.Frame) error {
	if done, err := g.run(out, in, false); done {
		return err
	}
	planes, err := g.prepare(in, 0, nil)
	if err != nil {
		return err
	}
	mode := g.params.ClosedLoop
	if g.openOnly {
		mode = closedloop.ModeNull
	}
	solve := g.engine.Solver(mode)
	for i := 0; i < in.Pixels(); i++ {
		s := solve(pixelAt(planes, i))
		g.stats.add(s.Result)
		g.put(out, i, s)
	}
	g.done()
	return nil
}
