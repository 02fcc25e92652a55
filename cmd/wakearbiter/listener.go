package main

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// getListener listens on a TCP address, or on a UNIX socket if the address
// has the "unix:" prefix.
func getListener(
	ctx context.Context,
	addr string,
) (net.Listener, error) {
	network := "tcp"
	if path, ok := strings.CutPrefix(addr, "unix:"); ok {
		network, addr = "unix", path
	}
	logger.Debugf(ctx, "listening on %s:%s", network, addr)
	listener, err := net.Listen(network, addr)
	if err != nil {
		return nil, fmt.Errorf("unable to listen on %s:%s: %w", network, addr, err)
	}
	return listener, nil
}
