package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nicolagi/annodiff/internal/annotate"
	"github.com/nicolagi/annodiff/internal/config"
	"github.com/nicolagi/annodiff/internal/diff"
	"github.com/nicolagi/annodiff/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, a, b string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	left, right := filepath.Join(dir, "left"), filepath.Join(dir, "right")
	require.Nil(t, os.WriteFile(left, []byte(a), 0600))
	require.Nil(t, os.WriteFile(right, []byte(b), 0600))
	return left, right
}

func TestRunDiff(t *testing.T) {
	t.Run("files differ", func(t *testing.T) {
		diffContext.mode = "word"
		left, right := writeFiles(t, "foo bar", "foo baz")
		var out bytes.Buffer
		differs, err := runDiff(&out, left, right)
		require.Nil(t, err)
		assert.True(t, differs)
		assert.Equal(t, "foo >>> a (line: 2): -bar- >>> b (line: 2): +baz+ ", out.String())
		assert.Equal(t, 1, exitStatus(differs, err))
	})
	t.Run("files are the same", func(t *testing.T) {
		diffContext.mode = "line"
		left, right := writeFiles(t, "same\n", "same\n")
		var out bytes.Buffer
		differs, err := runDiff(&out, left, right)
		require.Nil(t, err)
		assert.False(t, differs)
		assert.Empty(t, out.String())
		assert.Equal(t, 0, exitStatus(differs, err))
	})
	t.Run("bad mode", func(t *testing.T) {
		diffContext.mode = "sentence"
		left, right := writeFiles(t, "a", "b")
		differs, err := runDiff(&bytes.Buffer{}, left, right)
		assert.NotNil(t, err)
		assert.Equal(t, 2, exitStatus(differs, err))
	})
	t.Run("missing file", func(t *testing.T) {
		diffContext.mode = "line"
		left, _ := writeFiles(t, "a", "b")
		_, err := runDiff(&bytes.Buffer{}, left, filepath.Join(t.TempDir(), "nope"))
		assert.True(t, os.IsNotExist(err), "%v", err)
	})
}

func TestRunQuery(t *testing.T) {
	ts := httptest.NewServer(server.New(config.Default(), annotate.New(diff.NewComparer())).Handler())
	defer ts.Close()
	queryContext.addr = ts.URL
	queryContext.timeout = time.Minute
	defer func() { queryContext.addr = "" }()

	queryContext.mode = "char"
	left, right := writeFiles(t, "ab", "ac")
	var out bytes.Buffer
	differs, err := runQuery(&out, left, right)
	require.Nil(t, err)
	assert.True(t, differs)
	assert.Equal(t, "a>>> a (line: 2): -b->>> b (line: 2): +c+", out.String())

	queryContext.mode = "line"
	left, right = writeFiles(t, "x", "x")
	out.Reset()
	differs, err = runQuery(&out, left, right)
	require.Nil(t, err)
	assert.False(t, differs)
	assert.Empty(t, out.String())
}

func TestQueryClientNeedsConfigWithoutAddr(t *testing.T) {
	queryContext.addr = ""
	globalContext.base = t.TempDir()
	_, err := queryClient()
	assert.NotNil(t, err)
}
