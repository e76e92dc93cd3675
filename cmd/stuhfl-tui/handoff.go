package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"stuhfl_go/internal/ipc"
)

// borrowFromDaemon asks a running stuhfl-daemon to release the reader port.
// The returned func restarts the daemon's scan loop if it was running.
func borrowFromDaemon(socketPath string) func() {
	if socketPath == "" {
		return func() {}
	}

	resp, err := ask(socketPath, "status", 900*time.Millisecond)
	if err != nil || !resp.OK {
		return func() {}
	}
	wasRunning := resp.Status.Running

	resp, err = ask(socketPath, "release", 5*time.Second)
	if err != nil {
		log.Printf("[tui] daemon release failed: %v", err)
		return func() {}
	}
	if !resp.OK {
		log.Printf("[tui] daemon release failed: %s", resp.Error)
		return func() {}
	}
	log.Printf("[tui] borrowed reader from daemon (scanning=%v)", wasRunning)

	if !wasRunning {
		return func() {}
	}
	return func() {
		resp, err := ask(socketPath, "scan_start", 2*time.Second)
		switch {
		case err != nil:
			log.Printf("[tui] daemon resume failed: %v", err)
		case !resp.OK:
			log.Printf("[tui] daemon resume failed: %s", resp.Error)
		}
	}
}

func ask(socketPath, typ string, timeout time.Duration) (ipc.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return ipc.Send(ctx, socketPath, ipc.Request{Type: typ, Source: "tui"})
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
