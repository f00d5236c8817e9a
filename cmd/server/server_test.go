package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	c, err := parseFlags([]string{"-addr", ":9000", "-tcp", "", "-preset", "julia", "-workers", "3", "-animate", "2s"})
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.addr)
	assert.Empty(t, c.tcpAddr)
	assert.Equal(t, "julia", c.preset)
	assert.Equal(t, 3, c.workers)
	assert.Equal(t, 2*time.Second, c.animate)

	c, err = parseFlags([]string{"-workers", "0"})
	require.NoError(t, err)
	assert.Zero(t, c.workers)

	_, err = parseFlags([]string{"-workers", "-1"})
	assert.Error(t, err)
}
