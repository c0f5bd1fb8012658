package logging

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "loud", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelWarn, &buf)
	defer Init(LevelInfo, os.Stderr)

	Info("Store", "hidden %d", 1)
	Warn("Notifier", "publish failed for %s", "callisto-config")
	Error("Store", errors.New("disk full"), "write failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "publish failed for callisto-config")
	assert.Contains(t, out, "subsystem=Notifier")
	assert.Contains(t, out, `error="disk full"`)
}
