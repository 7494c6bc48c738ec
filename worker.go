package main

import (
	"bufio"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/astaxie/beego/logs"
)

// Used for the Date header and the date marker. Can be mocked.
var timeNow = time.Now

// Worker serves exactly one request on one connection and then closes it.
type Worker struct {
	cfg      *Config
	resolver *Resolver
	log      *logs.BeeLogger

	conn   net.Conn
	bufw   *bufio.Writer
	req    *Request
	res    *Response
	now    time.Time // Date header and date marker
	closed bool

	done       chan struct{}
	cancelOnce sync.Once
}

type stateFunc func(*Worker) stateFunc

func NewWorker(cfg *Config, resolver *Resolver, log *logs.BeeLogger) *Worker {
	return &Worker{
		cfg:      cfg,
		resolver: resolver,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start runs the worker to completion. The worker takes the ownership of
// |conn| and closes it exactly once, whatever happens.
func (w *Worker) Start(conn net.Conn) {
	w.conn = conn
	w.bufw = bufio.NewWriter(conn)

	defer func() {
		if err := recover(); err != nil {
			w.log.Critical("worker panic: %v", err)
			closeWorker(w)
		}
	}()

	for state := readingRequest; state != nil; {
		state = state(w)
	}
}

// Cancel stops a worker that is still waiting for its request. It has no
// effect once the response has been decided.
func (w *Worker) Cancel() {
	w.cancelOnce.Do(func() { close(w.done) })
}

func (w *Worker) remote() string {
	if addr := w.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "-"
}

// state funcs

func readingRequest(w *Worker) stateFunc {
	if w.cfg.ReadTimeout > 0 {
		w.conn.SetReadDeadline(timeNow().Add(w.cfg.ReadTimeout))
	}
	r := NewRequestReader(w.conn, w.cfg.MaxRequestBytes)
	r.Start()
	select {
	case req := <-r.RequestReceived():
		w.req = req
		return determiningResponse
	case err := <-r.ErrorOccurred():
		w.log.Warn("%s dropped: %v", w.remote(), err)
		return closeWorker
	case <-w.done:
		w.log.Debug("%s cancelled while reading request", w.remote())
		return closeWorker
	}
}

func determiningResponse(w *Worker) stateFunc {
	res, err := w.resolver.Resolve(w.req)
	if err != nil {
		w.log.Error("%s %q: %v", w.remote(), w.req.Path, err)
	}
	w.res = res
	w.now = timeNow()
	w.log.Info("%s %q %s %s", w.remote(), w.req.Line, res.Status, res.Content.MIMEType)
	return writingHeader
}

func writingHeader(w *Worker) stateFunc {
	if err := WriteHeader(w.bufw, w.res, w.now, w.cfg.ServerHeader); err != nil {
		w.log.Warn("%s header write failed: %v", w.remote(), err)
		return closeWorker
	}
	return writingBody
}

func writingBody(w *Worker) stateFunc {
	var err error
	switch w.res.kind {
	case bodyGeneric:
		err = WriteGenericBody(w.bufw)
	case bodyText:
		err = WriteTextBody(w.bufw, w.res.body, NewMarkerReplacer(w.cfg.ServerName, w.now))
	case bodyImage:
		_, err = w.bufw.Write(w.res.image)
	case bodyRaw:
		err = WriteRawBody(w.bufw, w.res.body)
	default:
		err = WriteNotFoundBody(w.bufw)
	}
	if errors.Is(err, errBodyRead) {
		w.log.Error("%s %q: %v", w.remote(), w.req.Path, err)
		return writingNotFound
	}
	if err != nil {
		w.log.Warn("%s body write failed: %v", w.remote(), err)
	}
	return closeWorker
}

// The header already said 200; the client still gets the not-found page.
func writingNotFound(w *Worker) stateFunc {
	if err := WriteNotFoundBody(w.bufw); err != nil {
		w.log.Warn("%s body write failed: %v", w.remote(), err)
	}
	return closeWorker
}

func closeWorker(w *Worker) stateFunc {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.res != nil && w.res.body != nil {
		w.res.body.Close()
	}
	if err := w.bufw.Flush(); err != nil {
		w.log.Debug("%s flush failed: %v", w.remote(), err)
	}
	w.conn.Close()
	w.log.Debug("%s worker finished", w.remote())
	return nil
}
