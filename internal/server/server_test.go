package server

import (
	"net"
	"testing"
	"time"
)

func TestContextWithDisconnect(t *testing.T) {
	client, srv := net.Pipe()

	ctx, cancel := contextWithDisconnect(t.Context(), srv)
	defer cancel()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before disconnect")
	case <-time.After(10 * time.Millisecond):
	}

	client.Close()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after disconnect")
	}
}
