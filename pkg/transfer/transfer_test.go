package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allKinds() []Kind {
	return []Kind{KindPQ, KindHLG, KindBT709, KindSRGB, KindLinear, KindGamma22, KindGamma24}
}

func TestRoundTrip(t *testing.T) {
	for _, k := range allKinds() {
		t.Run(k.String(), func(t *testing.T) {
			tf, err := New(k)
			require.NoError(t, err)
			// PQ maps codes below c1^m2 to zero, so start just above black
			for i := 1; i <= 1000; i++ {
				v := float64(i) / 1000
				assert.InDelta(t, v, tf.FromLinear(tf.ToLinear(v)), 1e-7, "code %v", v)
			}
		})
	}
}

func TestMonotonic(t *testing.T) {
	for _, k := range allKinds() {
		t.Run(k.String(), func(t *testing.T) {
			tf, err := New(k)
			require.NoError(t, err)
			prev := tf.ToLinear(0)
			for i := 1; i <= 4096; i++ {
				cur := tf.ToLinear(float64(i) / 4096)
				assert.GreaterOrEqual(t, cur, prev)
				prev = cur
			}
		})
	}
}

func TestEndpoints(t *testing.T) {
	for _, k := range allKinds() {
		t.Run(k.String(), func(t *testing.T) {
			tf, _ := New(k)
			assert.InDelta(t, 0.0, tf.ToLinear(0), 1e-12)
			assert.InDelta(t, 1.0, tf.ToLinear(1), 1e-7)
			assert.InDelta(t, 1.0, tf.FromLinear(1), 1e-7)
		})
	}
	// PQ reaches both ends exactly, the white shortcut depends on it
	assert.Equal(t, 1.0, PQ{}.FromLinear(1))
}

func TestClamp(t *testing.T) {
	tf := PQ{}
	assert.Equal(t, tf.ToLinear(0), tf.ToLinear(-0.5))
	assert.Equal(t, tf.ToLinear(1), tf.ToLinear(7))
}

func TestPQKnownValues(t *testing.T) {
	// 100 cd/m2 codes to roughly 0.508
	assert.InDelta(t, 0.5081, PQ{}.FromLinear(100.0/10000.0), 1e-3)
	// HLG reference white at 0.5 is 1/12 scene light
	assert.InDelta(t, 1.0/12.0, HLG{}.ToLinear(0.5), 1e-12)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		err  bool
	}{
		{"pq", KindPQ, false},
		{"PQ", KindPQ, false},
		{"st2084", KindPQ, false},
		{"hlg", KindHLG, false},
		{" srgb ", KindSRGB, false},
		{"gamma24", KindGamma24, false},
		{"bogus", KindUnspecified, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := New(KindUnspecified)
	assert.Error(t, err)
}
