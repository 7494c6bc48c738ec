package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RequestReader reads an HTTP/1.x request head and extracts the path of a
// GET request line.
type RequestReader struct {
	r     *bufio.Reader
	lr    *io.LimitedReader // nil when the head is unbounded
	reqCh chan *Request
	errCh chan error
}

// NewRequestReader reads from r. A positive limit bounds the number of bytes
// the request head may take.
func NewRequestReader(r io.Reader, limit int64) *RequestReader {
	var lr *io.LimitedReader
	if limit > 0 {
		lr = &io.LimitedReader{R: r, N: limit}
		r = lr
	}
	var br *bufio.Reader
	if casted, ok := r.(*bufio.Reader); ok {
		br = casted
	} else {
		br = bufio.NewReader(r)
	}
	// Buffered so the reading goroutine never outlives a cancelled worker.
	return &RequestReader{
		r:     br,
		lr:    lr,
		reqCh: make(chan *Request, 1),
		errCh: make(chan error, 1),
	}
}

// Start reads the request in the background. Exactly one value is delivered,
// on either RequestReceived or ErrorOccurred.
func (r *RequestReader) Start() {
	go func() {
		req, err := r.ReadRequest()
		if err != nil {
			r.errCh <- err
			return
		}
		r.reqCh <- req
	}()
}

func (r *RequestReader) RequestReceived() <-chan *Request {
	return r.reqCh
}

func (r *RequestReader) ErrorOccurred() <-chan error {
	return r.errCh
}

// ReadRequest reads lines until a blank line or the end of the stream. Only
// the first line is interpreted; every other line is skipped.
func (r *RequestReader) ReadRequest() (*Request, error) {
	req := &Request{}
	first := true
	for {
		line, err := r.readLine()
		if err == io.EOF {
			if r.lr != nil && r.lr.N <= 0 {
				return nil, ErrRequestTooLarge
			}
			return req, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read request: %w", err)
		}
		if len(line) == 0 {
			return req, nil
		}
		if first {
			first = false
			req.Line = line
			if path, ok := parseRequestLine(line); ok {
				req.Path = path
				req.HasPath = len(path) >= 2
			}
		}
	}
}

// similar to readLineSlice() in net/textproto/reader.go
func (r *RequestReader) readLine() (string, error) {
	var line []byte
	for {
		l, more, err := r.r.ReadLine()
		if err != nil {
			if len(line) > 0 {
				return string(line), nil
			}
			return "", err
		}
		if line == nil && !more {
			return string(l), nil
		}
		line = append(line, l...)
		if !more {
			break
		}
	}
	return string(line), nil
}

// parseRequestLine returns the text between the first and the second space
// of a GET line. ok is false for any other line.
func parseRequestLine(line string) (path string, ok bool) {
	const method = "GET "
	if !strings.HasPrefix(line, method) {
		return "", false
	}
	rest := line[len(method):]
	i := strings.IndexByte(rest, ' ')
	if i < 0 {
		return "", false
	}
	return rest[:i], true
}
