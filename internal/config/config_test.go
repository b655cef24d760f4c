// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/tinsh/internal/symtable"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rcContent = `
prompt: "(USER)> "
debug: true
color: false
history_limit: 50
vars:
  mydir: /bin
env:
  TINSH_CONFIG_TEST_ENV: hello
aliases:
  ll: ls -l
  la: ls -a
`

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	return fs
}

func TestLoad_ExplicitPath(t *testing.T) {
	fs := memFs(t, map[string]string{"/etc/tinshrc.yaml": rcContent})
	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	defer stubs.Reset()

	c, err := Load(context.Background(), "/etc/tinshrc.yaml")
	require.NoError(t, err)

	assert.Equal(t, "(USER)> ", c.Prompt)
	assert.True(t, c.Debug)
	require.NotNil(t, c.Color)
	assert.False(t, *c.Color)
	assert.Equal(t, 50, c.HistoryLimit)
	assert.Equal(t, map[string]string{"mydir": "/bin"}, c.Vars)
	assert.Equal(t, map[string]string{"ll": "ls -l", "la": "ls -a"}, c.Aliases)
	assert.NotEmpty(t, c.HistoryFile, "defaults survive a partial rc file")
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/nobody")

	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return afero.NewMemMapFs() })
	defer stubs.Reset()

	c, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, filepath.Join("/home/nobody", DefaultHistoryFileName), c.HistoryFile)
}

func TestLoad_DefaultFileFromHome(t *testing.T) {
	t.Setenv("HOME", "/home/alice")

	fs := memFs(t, map[string]string{"/home/alice/" + DefaultFileName: "prompt: \"$ \"\n"})
	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	defer stubs.Reset()

	c, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "$ ", c.Prompt)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return afero.NewMemMapFs() })
	defer stubs.Reset()

	_, err := Load(context.Background(), "/does/not/exist.yaml")
	assert.ErrorIs(t, err, ErrReadConfigFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_InvalidYaml(t *testing.T) {
	_, err := Parse([]byte("aliases: [unclosed"))
	assert.ErrorIs(t, err, ErrInvalidYaml)
}

func TestParse_EmptyPromptFallsBack(t *testing.T) {
	c, err := Parse([]byte("prompt: \"\"\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompt, c.Prompt)
}

func TestValidate_AggregatesErrors(t *testing.T) {
	c := Default()
	c.HistoryLimit = -1
	c.Vars = map[string]string{"bad name": "x"}
	c.Aliases = map[string]string{"a|b": "x", "ok": "y"}

	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "3 errors occurred")
}

func TestApply(t *testing.T) {
	t.Setenv("TINSH_CONFIG_TEST_ENV", "")

	c, err := Parse([]byte(rcContent))
	require.NoError(t, err)

	st := symtable.New()
	require.NoError(t, c.Apply(st))

	v, ok := st.Lookup("mydir")
	assert.True(t, ok)
	assert.Equal(t, "/bin", v)

	_, ok = st.Lookup(DebugVar)
	assert.True(t, ok)

	assert.Equal(t, "ls -l", st.GetAlias("ll"))
	assert.Equal(t, "hello", os.Getenv("TINSH_CONFIG_TEST_ENV"))
}

func TestMarshal_RoundTripsThroughParse(t *testing.T) {
	c, err := Parse([]byte(rcContent))
	require.NoError(t, err)

	data, err := c.Marshal()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, c.Aliases, back.Aliases)
	assert.Equal(t, c.Prompt, back.Prompt)
}

func TestFetch_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: true\n"), 0o600))

	data, err := Fetch(context.Background(), "file::"+path)
	require.NoError(t, err)
	assert.Equal(t, "debug: true\n", string(data))
}

func TestFetch_Errors(t *testing.T) {
	_, err := Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrFetchConfigFile)

	_, err = Fetch(context.Background(), "file::/does/not/exist/rc.yaml")
	assert.ErrorIs(t, err, ErrFetchConfigFile)
}

func TestIsGetterURL(t *testing.T) {
	assert.True(t, isGetterURL("https://example.com/rc.yaml"))
	assert.True(t, isGetterURL("git::https://example.com/repo//rc.yaml"))
	assert.False(t, isGetterURL("/home/alice/.tinshrc.yaml"))
	assert.False(t, isGetterURL("rc.yaml"))
}
