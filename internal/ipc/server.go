package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

const (
	requestTimeout   = 10 * time.Second
	maxInFlight      = 8
	busyWait         = 2 * time.Second
	acceptRetryDelay = 500 * time.Millisecond
	// Accept failures beyond this count in a row are throttled.
	acceptFailureLimit = 10
)

// PipeServer receives requests from later launches. Each connection carries
// exactly one request and one response.
type PipeServer struct {
	name    string
	handler Handler

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
	wg       sync.WaitGroup
	inFlight chan struct{}
}

// NewPipeServer creates a server for name; empty means DefaultPipeName.
func NewPipeServer(name string, handler Handler) *PipeServer {
	if name == "" {
		name = DefaultPipeName()
	}
	return &PipeServer{
		name:     name,
		handler:  handler,
		inFlight: make(chan struct{}, maxInFlight),
	}
}

// Name returns the endpoint the server listens on.
func (s *PipeServer) Name() string {
	return s.name
}

// Start begins accepting connections.
func (s *PipeServer) Start() error {
	if s.handler == nil {
		return errors.New("pipe server requires handler")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("pipe server already started")
	}
	ln, err := listenEndpoint(s.name)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.name, err)
	}
	s.listener = ln
	s.done = make(chan struct{})
	done := s.done
	s.wg.Go(func() { s.serve(ln, done) })
	return nil
}

// Stop closes the listener and waits for in-flight requests. Calling it on a
// stopped server is a no-op.
func (s *PipeServer) Stop() error {
	s.mu.Lock()
	ln := s.listener
	if ln == nil {
		s.mu.Unlock()
		return nil
	}
	s.listener = nil
	close(s.done)
	s.mu.Unlock()

	err := ln.Close()
	s.wg.Wait()
	return err
}

func (s *PipeServer) serve(ln net.Listener, done <-chan struct{}) {
	failures := 0
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			failures++
			if failures <= acceptFailureLimit {
				slog.Debug("[ipc] accept error", "error", err)
				continue
			}
			slog.Warn("[ipc] accept keeps failing", "error", err, "count", failures)
			time.Sleep(acceptRetryDelay)
			continue
		}
		failures = 0

		if !s.reserve(done) {
			slog.Warn("[ipc] too many requests in flight, rejecting client")
			reply(conn, Response{Error: "server busy, try again later"})
			conn.Close()
			continue
		}
		s.wg.Go(func() {
			defer func() { <-s.inFlight }()
			s.serveConn(conn)
		})
	}
}

// reserve waits up to busyWait for a free request slot.
func (s *PipeServer) reserve(done <-chan struct{}) bool {
	select {
	case s.inFlight <- struct{}{}:
		return true
	default:
	}
	timer := time.NewTimer(busyWait)
	defer timer.Stop()
	select {
	case s.inFlight <- struct{}{}:
		return true
	case <-timer.C:
		return false
	case <-done:
		return false
	}
}

func (s *PipeServer) serveConn(conn net.Conn) {
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(requestTimeout)); err != nil {
		slog.Warn("[ipc] failed to set connection deadline", "error", err)
		return
	}

	frame, err := readFrame(bufio.NewReaderSize(conn, maxRequestBytes+1), maxRequestBytes)
	if errors.Is(err, io.EOF) {
		slog.Debug("[ipc] client closed without a request")
		return
	}
	var req Request
	if err == nil {
		req, err = decodeRequest(frame)
	}
	if err != nil {
		reply(conn, Response{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	slog.Debug("[DEBUG-IPC] request", "command", req.Command, "args", req.Args)
	reply(conn, s.handler.Handle(req))
}

func reply(conn net.Conn, resp Response) {
	raw, err := encodeResponse(resp)
	if err != nil {
		slog.Warn("[ipc] failed to encode response", "error", err)
		raw = []byte(`{"ok":false,"error":"internal encode error"}`)
	}
	if _, err := conn.Write(append(raw, '\n')); err != nil {
		slog.Debug("[ipc] failed to write response", "error", err)
	}
}
