package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Level:   logrus.WarnLevel,
		Message: "odd header",
		Data:    logrus.Fields{"file": "a.mat", "component": "matlab"},
	}

	out, err := (&Formatter{DisableColor: true}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[WARNING] odd header component=matlab file=a.mat\n", string(out))

	out, err = (&Formatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "\033[33m[WARNING] odd header component=matlab file=a.mat\033[0m\n", string(out))
}

func TestInit(t *testing.T) {
	defer logrus.SetOutput(logrus.StandardLogger().Out)
	var buf bytes.Buffer
	Init(LogOptions{Verbose: true, DisableColor: true, Output: &buf})
	defer Init(LogOptions{})

	logrus.Debug("visible")
	assert.Equal(t, "[DEBUG] visible\n", buf.String())

	Init(LogOptions{DisableColor: true, Output: &buf})
	buf.Reset()
	logrus.Debug("hidden")
	assert.Empty(t, buf.String())
}
