//go:build !pcap

package discovery

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsentinel/internal/logging"
)

func TestNewARPWithoutPcapWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(logging.Config{Level: logging.LevelWarn, Format: logging.FormatText}, &buf)

	d, err := New(Config{Method: MethodARP}, logger)
	require.NoError(t, err)

	assert.Equal(t, MethodARPCache, d.Method())
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "neighbour cache")
}
