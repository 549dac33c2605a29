package retroterm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/httpapi"
	"pkt.systems/retroterm/internal/command"
	"pkt.systems/retroterm/schema"
	"pkt.systems/retroterm/sshserver"
)

// Server composes the HTTP and SSH front ends.
type Server interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
}

// ServerConfig configures the compositor.
type ServerConfig struct {
	Terminal            schema.TerminalConfig
	HTTP                httpapi.Config
	SSH                 sshserver.Config
	DisableAuditLogging bool
}

// ServerDeps captures dependencies required to build the server.
type ServerDeps struct {
	// Clock drives animations; nil means the wall clock.
	Clock core.Clock
	// HTTPListener and SSHListener replace the configured addresses when set.
	HTTPListener net.Listener
	SSHListener  net.Listener
}

// ServerOption toggles compositor components.
type ServerOption func(*serverOptions)

type serverOptions struct {
	enableHTTP bool
	enableSSH  bool
}

// WithHTTP enables the browser terminal.
func WithHTTP() ServerOption {
	return func(o *serverOptions) { o.enableHTTP = true }
}

// WithSSH enables the SSH terminal.
func WithSSH() ServerOption {
	return func(o *serverOptions) { o.enableSSH = true }
}

// NewSessionFactory returns a factory that wires a fresh shell into every
// session it builds. The session logger comes from the factory context.
func NewSessionFactory(cfg schema.TerminalConfig, clock core.Clock, disableAudit bool) (core.SessionFactory, error) {
	normalized, err := schema.NormalizeTerminalConfig(cfg)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = core.RealClock{}
	}
	resolution := fmt.Sprintf("%dx%d", normalized.CanvasWidth, normalized.CanvasHeight)
	return func(ctx context.Context) (*core.Session, error) {
		shell := command.NewHandler(ctx, command.HandlerConfig{
			User:                normalized.User,
			Hostname:            normalized.Hostname,
			Resolution:          func() string { return resolution },
			Now:                 clock.Now,
			DisableAuditLogging: disableAudit,
		})
		return core.NewSession(ctx, normalized, core.SessionDeps{
			Clock:     clock,
			Executor:  shell,
			Completer: shell,
		})
	}, nil
}

// New constructs a composable retroterm server.
func New(cfg ServerConfig, deps ServerDeps, opts ...ServerOption) (Server, error) {
	options := serverOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.enableHTTP && !options.enableSSH {
		return nil, errors.New("no services enabled")
	}
	normalized, err := schema.NormalizeTerminalConfig(cfg.Terminal)
	if err != nil {
		return nil, err
	}
	cfg.Terminal = normalized
	factory, err := NewSessionFactory(cfg.Terminal, deps.Clock, cfg.DisableAuditLogging)
	if err != nil {
		return nil, err
	}

	var httpSrv *httpapi.Server
	var sshSrv *sshserver.Server
	if options.enableHTTP {
		httpCfg := cfg.HTTP
		if httpCfg.Font == (schema.FontMetrics{}) {
			httpCfg.Font = cfg.Terminal.Font
		}
		if httpCfg.CanvasWidth <= 0 {
			httpCfg.CanvasWidth = cfg.Terminal.CanvasWidth
		}
		if httpCfg.CanvasHeight <= 0 {
			httpCfg.CanvasHeight = cfg.Terminal.CanvasHeight
		}
		httpSrv = httpapi.NewServer(httpCfg, factory)
	}
	if options.enableSSH {
		sshSrv = &sshserver.Server{
			Addr:        cfg.SSH.Addr,
			HostKeyPath: cfg.SSH.HostKeyPath,
			Listener:    deps.SSHListener,
			NewSession:  factory,
		}
	}

	return &compositeServer{
		cfg:     cfg,
		options: options,
		httpSrv: httpSrv,
		httpLn:  deps.HTTPListener,
		sshSrv:  sshSrv,
	}, nil
}

type compositeServer struct {
	cfg     ServerConfig
	options serverOptions
	httpSrv *httpapi.Server
	httpLn  net.Listener
	sshSrv  *sshserver.Server
	logger  pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	errCh   chan error
	done    sync.WaitGroup
	started bool
}

func (s *compositeServer) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		pslog.Ctx(ctx).Warn("server start rejected", "reason", "already started")
		return errors.New("server already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.errCh = make(chan error, 2)
	s.started = true
	s.logger = pslog.Ctx(s.ctx)
	s.mu.Unlock()

	log := s.logger
	log.Info(
		"server start",
		"http", s.options.enableHTTP,
		"ssh", s.options.enableSSH,
		"http_addr", s.cfg.HTTP.Addr,
		"http_base_path", s.cfg.HTTP.BasePath,
		"ssh_addr", s.cfg.SSH.Addr,
		"user", s.cfg.Terminal.User,
		"hostname", s.cfg.Terminal.Hostname,
	)
	if s.options.enableHTTP && s.httpSrv != nil {
		s.httpSrv.SetBaseContext(s.ctx)
		s.done.Add(1)
		go func() {
			defer s.done.Done()
			var err error
			if s.httpLn != nil {
				err = httpapi.Serve(s.ctx, s.httpLn, s.httpSrv.Handler())
			} else {
				err = httpapi.ListenAndServe(s.ctx, s.cfg.HTTP.Addr, s.httpSrv.Handler())
			}
			if err != nil {
				log.Error("http server failed", "err", err)
				s.errCh <- err
			}
		}()
	}
	if s.options.enableSSH && s.sshSrv != nil {
		s.done.Add(1)
		go func() {
			defer s.done.Done()
			if err := s.sshSrv.ListenAndServe(s.ctx); err != nil {
				log.Error("ssh server failed", "err", err)
				s.errCh <- err
			}
		}()
	}
	return nil
}

func (s *compositeServer) Wait() error {
	s.mu.Lock()
	ctx := s.ctx
	errCh := s.errCh
	started := s.started
	s.mu.Unlock()
	if !started {
		return errors.New("server not started")
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			pslog.Ctx(ctx).Error("server stopped", "err", err)
			_ = s.Stop(context.Background())
			return err
		}
		return nil
	}
}

func (s *compositeServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	log := s.logger
	s.mu.Unlock()
	if !started {
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("server stop requested")
	if cancel != nil {
		cancel()
	}
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
	if ctx == nil {
		log.Info("server stop completed")
		return nil
	}
	finished := make(chan struct{})
	go func() {
		s.done.Wait()
		close(finished)
	}()
	select {
	case <-ctx.Done():
		log.Warn("server stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-finished:
		log.Info("server stopped")
		return nil
	}
}
