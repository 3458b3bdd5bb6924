package util

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	type cfg struct {
		Depth int    `json:"depth"`
		Curve string `json:"curve"`
	}
	a, err := Fingerprint(cfg{10, "pq"})
	require.NoError(t, err)
	b, err := Fingerprint(cfg{10, "pq"})
	require.NoError(t, err)
	c, err := Fingerprint(cfg{12, "pq"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, uuid.Version(3), a.Version())

	_, err = Fingerprint(make(chan int))
	assert.Error(t, err)
}

func TestRunID(t *testing.T) {
	id := RunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, RunID())
}
