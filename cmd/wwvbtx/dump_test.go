package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/wwvb/wwvb"
)

func TestDump(t *testing.T) {
	var out bytes.Buffer
	now := time.Date(2020, time.February, 29, 13, 46, 30, 0, time.UTC)

	err := dump(&out, now, 0, 0, wwvb.DSTNone, "%Y-%m-%d %H:%M")

	require.NoError(t, err)
	actual := out.String()
	assert.Contains(t, actual, "2020-02-29 13:47 UTC, transmitted as 2020-02-29 13:47:00\n")
	assert.Contains(t, actual, "MINS: [M 1 0 0 0 0 1 1 1 M]\n")
	assert.Contains(t, actual, "MINS: [800 500 200 200 200 200 500 500 500 800]\n")
	assert.Contains(t, actual, "MISC: [200 200 200 200 200 500 200 200 200 800]\n")
	assert.Contains(t, actual, "after one minute: 2020-02-29 13:48:00\n")
}

func TestDump_Timezone(t *testing.T) {
	var out bytes.Buffer
	now := time.Date(2020, time.March, 1, 2, 29, 59, 0, time.UTC)

	err := dump(&out, now, -5, -30, wwvb.DSTInEffect, "%H:%M")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "02:30 UTC, transmitted as 2020-02-29 21:00:00\n")
}
