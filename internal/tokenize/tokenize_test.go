// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"ls", "-l"}, Fields("ls -l"))
	assert.Equal(t, []string{"ls", "-l"}, Fields("  ls \t -l  "))
	assert.Equal(t, []string{}, Fields(" \t "))
	assert.NotNil(t, Fields(""))
}

func TestSplit_Quoting(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"ls -l", []string{"ls", "-l"}},
		{`echo "a b" c`, []string{"echo", "a b", "c"}},
		{`echo 'a  b'`, []string{"echo", "a  b"}},
		{`echo a\ b`, []string{"echo", "a b"}},
		{"   ", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Split(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSplit_UnbalancedQuoteFallsBack(t *testing.T) {
	got, err := Split(`echo "a b`)
	require.ErrorIs(t, err, ErrUnbalancedQuote)
	assert.Equal(t, []string{"echo", `"a`, "b"}, got)
}

func TestParse_Background(t *testing.T) {
	cmd, err := Parse("sleep 5 &")
	require.NoError(t, err)
	assert.Equal(t, []string{"sleep", "5"}, cmd.Argv)
	assert.True(t, cmd.Background)
	assert.Equal(t, "sleep", cmd.Name())

	cmd, err = Parse("ls -l &")
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "-l"}, cmd.Argv)
	assert.True(t, cmd.Background)
}

func TestParse_Foreground(t *testing.T) {
	cmd, err := Parse("ls -l")
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "-l"}, cmd.Argv)
	assert.False(t, cmd.Background)
}

func TestParse_AmpersandNotStandalone(t *testing.T) {
	cmd, err := Parse("echo a&")
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "a&"}, cmd.Argv)
	assert.False(t, cmd.Background)

	cmd, err = Parse(`echo "&"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "&"}, cmd.Argv)
	assert.False(t, cmd.Background)
}

func TestParse_OnlyAmpersand(t *testing.T) {
	cmd, err := Parse("&")
	require.NoError(t, err)
	assert.True(t, cmd.Empty())
	assert.True(t, cmd.Background)
	assert.Empty(t, cmd.Name())
}

func TestParse_Whitespace(t *testing.T) {
	cmd, err := Parse("   ")
	require.NoError(t, err)
	assert.True(t, cmd.Empty())
	assert.False(t, cmd.Background)
}
