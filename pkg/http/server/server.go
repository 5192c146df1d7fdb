package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/webhookx-io/eventsvc/pkg/safe"
	"go.uber.org/zap"
)

type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// CertFile and KeyFile enable TLS when both are set.
	CertFile string
	KeyFile  string
}

// Server is an http.Server run as an application component.
type Server struct {
	name string
	opts Options
	srv  *http.Server
	addr net.Addr
	log  *zap.SugaredLogger
}

func New(name string, listen string, handler http.Handler, opts Options) *Server {
	return &Server{
		name: name,
		opts: opts,
		srv: &http.Server{
			Addr:         listen,
			Handler:      handler,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
		log: zap.S().Named(name),
	}
}

func (s *Server) Name() string { return s.name }

func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) tls() bool { return s.opts.CertFile != "" && s.opts.KeyFile != "" }

// Addr is the bound address, nil until started.
func (s *Server) Addr() net.Addr { return s.addr }

// Start binds the listen address, so that address errors surface here, and
// serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr()

	safe.Go(func() {
		var err error
		if s.tls() {
			err = s.srv.ServeTLS(ln, s.opts.CertFile, s.opts.KeyFile)
		} else {
			err = s.srv.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("failed to serve: %v", err)
		}
	})

	scheme := "http"
	if s.tls() {
		scheme = "https"
	}
	s.log.Infof("listening on %s://%s", scheme, s.addr)
	return nil
}

// Stop waits for in-flight requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
