package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// DateHeaderFormat is the Date header layout, always in GMT.
const DateHeaderFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// MarkerDateFormat is the layout that replaces the date marker.
const MarkerDateFormat = "Monday, 02 January 2006"

// errBodyRead marks a failure reading a resource, as opposed to a failure
// writing to the client.
var errBodyRead = errors.New("resource read failed")

type taggedReader struct {
	r io.Reader
}

func (t taggedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		err = fmt.Errorf("%w: %v", errBodyRead, err)
	}
	return n, err
}

// WriteHeader writes the status line and the fixed header fields in order,
// followed by the blank line.
func WriteHeader(w io.Writer, res *Response, now time.Time, server string) error {
	fields := [][2]string{
		{"Date", now.UTC().Format(DateHeaderFormat)},
		{"Server", server},
		{"Connection", "close"},
		{"Content-Type", res.Content.MIMEType},
	}
	if _, err := fmt.Fprintf(w, "%s\r\n", res.Status.StatusLine()); err != nil {
		return err
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", f[0], f[1]); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}

// NewMarkerReplacer substitutes every server and date marker.
func NewMarkerReplacer(serverName string, now time.Time) *strings.Replacer {
	return strings.NewReplacer(
		serverMarker, serverName,
		dateMarker, now.Format(MarkerDateFormat),
	)
}

// WriteTextBody copies r to w line by line, applying rep to each line. Line
// terminators are kept as read.
func WriteTextBody(w io.Writer, r io.Reader, rep *strings.Replacer) error {
	br := bufio.NewReader(taggedReader{r})
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if _, werr := rep.WriteString(w, line); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// WriteRawBody copies r to w unchanged.
func WriteRawBody(w io.Writer, r io.Reader) error {
	_, err := io.Copy(w, taggedReader{r})
	return err
}

func WriteGenericBody(w io.Writer) error {
	_, err := io.WriteString(w, genericBody)
	return err
}

func WriteNotFoundBody(w io.Writer) error {
	_, err := io.WriteString(w, notFoundBody)
	return err
}
