// Package ipc lets a second RIDE launch hand its request to the instance
// that is already running. One newline-terminated JSON request is sent per
// connection and answered with one JSON response.
//
// On Windows the endpoint is a named pipe restricted to the current user;
// elsewhere it is a unix socket in the temp directory.
package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Commands understood by the running instance.
const (
	CommandActivate = "activate"
	CommandViewLog  = "view-log"
)

const (
	maxRequestBytes  = 64 * 1024
	maxResponseBytes = 64 * 1024
)

// Request is a single command for the running instance.
type Request struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Response reports whether the command was handled.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Handler executes requests received by a PipeServer.
type Handler interface {
	Handle(req Request) Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(req Request) Response

func (f HandlerFunc) Handle(req Request) Response { return f(req) }

// ErrorResponse builds a failed response from err.
func ErrorResponse(err error) Response {
	return Response{OK: false, Error: err.Error()}
}

func encodeRequest(req Request) ([]byte, error) {
	return json.Marshal(req)
}

func decodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, err
	}
	req.Command = strings.TrimSpace(req.Command)
	if req.Command == "" {
		return Request{}, errors.New("command is required")
	}
	if req.Args == nil {
		req.Args = []string{}
	}
	return req, nil
}

func encodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}

func decodeResponse(raw []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// readFrame reads one newline-delimited frame. reader must be sized
// maxBytes+1 so an oversized frame fills the buffer.
func readFrame(reader *bufio.Reader, maxBytes int) ([]byte, error) {
	raw, err := reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("frame exceeds %d bytes", maxBytes)
	}
	if errors.Is(err, io.EOF) {
		if len(raw) == 0 {
			return nil, io.EOF
		}
		return raw, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}
