//go:build !windows

package ipc

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// socketPath keeps the path short enough for sun_path limits.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ride-ipc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func TestSendRoundTrip(t *testing.T) {
	name := socketPath(t)
	var got atomic.Value
	server := NewPipeServer(name, HandlerFunc(func(req Request) Response {
		got.Store(req)
		return Response{OK: true}
	}))
	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = server.Stop() })

	resp, err := Send(name, Request{Command: CommandViewLog})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !resp.OK {
		t.Fatalf("Send() = %+v, want OK", resp)
	}
	req, _ := got.Load().(Request)
	if req.Command != CommandViewLog {
		t.Fatalf("handler saw %+v", req)
	}
}

func TestSendReturnsHandlerError(t *testing.T) {
	name := socketPath(t)
	server := NewPipeServer(name, HandlerFunc(func(Request) Response {
		return Response{Error: "unknown command"}
	}))
	if err := server.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = server.Stop() })

	if _, err := Send(name, Request{Command: "bogus"}); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("Send() error = %v, want handler error", err)
	}
}

func TestServerRejectsMalformedRequest(t *testing.T) {
	name := socketPath(t)
	server := NewPipeServer(name, HandlerFunc(func(Request) Response { return Response{OK: true} }))
	if err := server.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = server.Stop() })

	conn, err := net.Dial("unix", name)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if _, err := conn.Write([]byte("{broken\n")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 256)
	n, _ := conn.Read(buf)
	if !strings.Contains(string(buf[:n]), "invalid request") {
		t.Fatalf("response = %q, want invalid request", buf[:n])
	}
}

func TestStartFailsWhileSocketInUse(t *testing.T) {
	name := socketPath(t)
	first := NewPipeServer(name, HandlerFunc(func(Request) Response { return Response{OK: true} }))
	if err := first.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = first.Stop() })

	second := NewPipeServer(name, HandlerFunc(func(Request) Response { return Response{OK: true} }))
	if err := second.Start(); err == nil {
		_ = second.Stop()
		t.Fatal("second Start() error = nil, want in-use error")
	}
}

func TestStartReplacesStaleSocket(t *testing.T) {
	name := socketPath(t)
	if err := os.WriteFile(name, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	server := NewPipeServer(name, HandlerFunc(func(Request) Response { return Response{OK: true} }))
	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = server.Stop() })
}

func TestSendWithoutServerIsConnectionError(t *testing.T) {
	_, err := Send(socketPath(t), Request{Command: CommandActivate})
	if !IsConnectionError(err) {
		t.Fatalf("Send() error = %v, want connection error", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	server := NewPipeServer(socketPath(t), HandlerFunc(func(Request) Response { return Response{OK: true} }))
	if err := server.Stop(); err != nil {
		t.Fatalf("Stop() before Start error = %v", err)
	}
	if err := server.Start(); err != nil {
		t.Fatal(err)
	}
	if err := server.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := server.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
}

func TestStartRequiresHandler(t *testing.T) {
	if err := NewPipeServer(socketPath(t), nil).Start(); err == nil {
		t.Fatal("Start() error = nil without handler")
	}
}
