package logger

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	buf := new(bytes.Buffer)
	SetOutput(buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		_ = SetLevel("info")
	})
	return buf
}

func TestInfoWritesFields(t *testing.T) {
	buf := capture(t)
	Info("using voices", Fields{"voices": 3, "file": "a.mid"})

	out := buf.String()
	assert.Contains(t, out, "using voices")
	assert.Contains(t, out, "voices=3")
	assert.Contains(t, out, "file=a.mid")
}

func TestLevelFiltersMessages(t *testing.T) {
	buf := capture(t)
	require.NoError(t, SetLevel("warn"))

	Info("hidden", nil)
	Debug("also hidden", nil)
	Warn("shown", Fields{"file": "broken.mid"})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestErrorIncludesCause(t *testing.T) {
	buf := capture(t)
	Error("write failed", errors.New("disk full"), Fields{"path": "out.mid"})

	out := buf.String()
	assert.Contains(t, out, "write failed")
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "path=out.mid")
}

func TestUnknownLevel(t *testing.T) {
	assert.Error(t, SetLevel("loud"))
}

func TestKeyvalsAreSorted(t *testing.T) {
	assert.Equal(t, []interface{}{"a", 1, "b", 2}, keyvals(Fields{"b": 2, "a": 1}))
	assert.Empty(t, keyvals(nil))
}
