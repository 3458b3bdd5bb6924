package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCtx(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, true, slog.LevelInfo)

	ctx := AppendCtx(context.Background(), slog.String("run", "abc"))
	ctx = AppendCtx(ctx, slog.Group("hdrtools", slog.String("name", "ctl")))
	log.InfoContext(ctx, "frame converted", "frame", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "abc", rec["run"])
	assert.Equal(t, float64(3), rec["frame"])
	assert.Equal(t, map[string]any{"name": "ctl"}, rec["hdrtools"])
	assert.Len(t, FromCtx(ctx), 2)
}

func TestAppendCtxDoesNotLeak(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.Int("a", 1))
	_ = AppendCtx(parent, slog.Int("b", 2))
	assert.Len(t, FromCtx(parent), 1)
	assert.Empty(t, FromCtx(context.Background()))
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, false, slog.LevelWarn)
	log.Info("hidden")
	assert.Empty(t, buf.String())
	log.With("k", "v").WithGroup("g").Warn("shown", "x", 1)
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "g.x=1")
}

func TestRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdr.log")
	w := RotatingFile(path)
	Logger(w, false, slog.LevelInfo).Info("hello")
	require.NoError(t, w.Close())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "msg=hello")
}
