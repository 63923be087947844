package netutil

import (
	"context"
	"net"
	"time"
)

const pollInterval = 50 * time.Millisecond

// WaitForListener dials network/addr until a connection succeeds or ctx is
// done. In the latter case it returns the last dial error, or the context
// error if no dial was attempted.
func WaitForListener(ctx context.Context, network, addr string) error {
	var d net.Dialer
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		conn, err := d.DialContext(ctx, network, addr)
		if err == nil {
			return conn.Close()
		}
		select {
		case <-ctx.Done():
			return err
		case <-ticker.C:
		}
	}
}
