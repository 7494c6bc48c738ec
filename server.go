package main

import (
	"net"
	"sync"
	"time"

	"github.com/astaxie/beego/logs"
)

// Server accepts connections and hands each one to its own Worker.
type Server struct {
	cfg      *Config
	log      *logs.BeeLogger
	resolver *Resolver

	mu      sync.Mutex
	ln      net.Listener
	workers map[*Worker]struct{}
	closed  bool
	wg      sync.WaitGroup
}

func NewServer(cfg *Config, log *logs.BeeLogger) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		resolver: NewResolver(cfg.Root),
		workers:  make(map[*Worker]struct{}),
	}
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve runs the accept loop on ln until Shutdown is called, and then
// returns ErrServerClosed. A non-temporary accept error is returned as is.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.ln = ln
	s.mu.Unlock()
	defer ln.Close()

	s.log.Info("serving %s on %s", s.cfg.Root, ln.Addr())

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			if ne, ok := err.(net.Error); !ok || !ne.Temporary() {
				return err
			}
			// same backoff as net/http for a temporary accept error
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			s.log.Error("accept error: %v; retrying in %v", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		w := NewWorker(s.cfg, s.resolver, s.log)
		if !s.track(w) {
			conn.Close()
			return ErrServerClosed
		}
		go func() {
			defer s.untrack(w)
			w.Start(conn) // worker takes the ownership of |conn|
		}()
	}
}

func (s *Server) track(w *Worker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.workers[w] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(w *Worker) {
	s.mu.Lock()
	delete(s.workers, w)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Shutdown stops accepting, cancels workers that are still waiting for a
// request and waits for the rest to finish their responses.
func (s *Server) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.wg.Wait()
		return
	}
	s.closed = true
	if s.ln != nil {
		s.ln.Close()
	}
	for w := range s.workers {
		w.Cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("server stopped")
}
