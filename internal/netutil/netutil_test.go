package netutil_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nicolagi/annodiff/internal/netutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenReplacesStaleUnixSocket(t *testing.T) {
	dir, err := os.MkdirTemp("/tmp", "netutil")
	require.Nil(t, err)
	defer func() { _ = os.RemoveAll(dir) }()
	path := filepath.Join(dir, "sock")

	// A listener that does not unlink its socket on close simulates a
	// crashed process.
	stale, err := net.Listen("unix", path)
	require.Nil(t, err)
	stale.(*net.UnixListener).SetUnlinkOnClose(false)
	require.Nil(t, stale.Close())
	_, err = os.Stat(path)
	require.Nil(t, err)

	l, err := netutil.Listen("unix", path)
	require.Nil(t, err)
	defer func() { _ = l.Close() }()
	assert.Nil(t, netutil.WaitForListener(context.Background(), "unix", path))
}

func TestListenKeepsLiveUnixSocket(t *testing.T) {
	dir, err := os.MkdirTemp("/tmp", "netutil")
	require.Nil(t, err)
	defer func() { _ = os.RemoveAll(dir) }()
	path := filepath.Join(dir, "sock")

	live, err := netutil.Listen("unix", path)
	require.Nil(t, err)
	defer func() { _ = live.Close() }()
	_, err = netutil.Listen("unix", path)
	assert.NotNil(t, err)
}

func TestWaitForListener(t *testing.T) {
	l, err := netutil.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	addr := l.Addr().String()
	assert.Nil(t, netutil.WaitForListener(context.Background(), "tcp", addr))
	require.Nil(t, l.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.NotNil(t, netutil.WaitForListener(ctx, "tcp", addr))
}
