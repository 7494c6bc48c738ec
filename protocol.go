package main

import (
	"errors"
	"io"
)

// Status is the response status sent in the status line.
type Status int

const (
	StatusOK       Status = 200
	StatusNotFound Status = 404
)

// StatusLine returns the first line of the response header, without CRLF.
func (s Status) StatusLine() string {
	if s == StatusOK {
		return "HTTP/1.1 200 OK"
	}
	return "HTTP/1.0 404"
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "200"
	case StatusNotFound:
		return "404"
	}
	return "unknown"
}

// Request is the parsed request head. Only the path matters.
type Request struct {
	Path    string // raw path from the request line
	HasPath bool   // false means a request for the generic page
	Line    string // first line as received
}

// ContentDescriptor is derived from the resource extension only.
type ContentDescriptor struct {
	MIMEType string
	Binary   bool
}

type bodyKind int

const (
	bodyGeneric bodyKind = iota
	bodyText
	bodyImage
	bodyRaw
	bodyNotFound
)

// Response is fully decided before anything is written to the client.
type Response struct {
	Status  Status
	Content ContentDescriptor

	kind  bodyKind
	body  io.ReadCloser // open file for text and raw bodies
	image []byte        // re-encoded image for image bodies
}

const genericBody = "<html lang=\"en\"><head><title>Homepage</title></head><body>\n" +
	"<h3>Welcome to the Simple Web Server!</h3>\n" +
	"</body></html>\n"

const notFoundBody = "<html><head></head><body>\n" +
	"<h3>404 Not Found</h3>\n" +
	"<h3>The page you were looking for could not be found</h3>\n" +
	"</body></html>\n"

const (
	serverMarker = "<cs371server>"
	dateMarker   = "<cs371date>"
)

var (
	ErrRequestTooLarge = errors.New("request head too large")
	ErrServerClosed    = errors.New("server closed")
)
