package closedloop

import (
	"fmt"
	"strings"
)

// Domain selects where the multiplicative shortcut takes its ratio
type Domain int

const (
	DomainLinear Domain = iota
	DomainTransfer
)

func (d Domain) String() string {
	if d == DomainTransfer {
		return "transfer"
	}
	return "linear"
}

// ParseDomain accepts "linear" or "transfer" (alias "tf")
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return DomainLinear, nil
	case "transfer", "tf":
		return DomainTransfer, nil
	}
	return DomainLinear, fmt.Errorf("unknown multiply domain %q", s)
}

func (d Domain) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Domain) UnmarshalText(b []byte) (err error) {
	*d, err = ParseDomain(string(b))
	return err
}

// Multiply rescales the naive normalized luma by target/reconstructed in the
// chosen domain. The naive value is returned untouched (false) when the
// reconstruction is black.
func (e *Engine) Multiply(p *PixelContext, naive float64, d Domain) (float64, bool) {
	recon := e.Luminance(naive, p.color())
	target := p.YLinear
	if d == DomainTransfer {
		recon = e.cfg.TF.FromLinear(recon)
		target = e.cfg.TF.FromLinear(target)
	}
	if recon < minRecon {
		return naive, false
	}
	return clip(naive*target/recon, 0, 1), true
}

// SolveMultiply keeps open-loop chroma and rescales the open-loop luma. The
// bool is false when the naive luma had to be kept.
func (e *Engine) SolveMultiply(px Pixel, d Domain) (Solution, bool) {
	ol := e.openLoop(px)
	q := e.cfg.Quant
	p := e.NewPixel(px.YLinear, q.DequantizeChroma(ol.cb), q.DequantizeChroma(ol.cr))
	y, ok := e.Multiply(&p, ol.y, d)
	k := q.LumaIndex(y)
	return Solution{Luma: k, Cb: ol.cb, Cr: ol.cr, Result: Result{Code: k}}, ok
}
