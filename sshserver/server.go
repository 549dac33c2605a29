// Package sshserver hosts terminal sessions for SSH clients. Every PTY gets
// its own session, painted onto an ANSI cell grid.
package sshserver

import (
	"context"
	"errors"
	"io"
	"net"

	gliderssh "github.com/gliderlabs/ssh"

	"pkt.systems/pslog"
	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/internal/logx"
)

// Server exposes retroterm over SSH. Clients connect anonymously.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	NewSession  core.SessionFactory
	logger      pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}
	if s.NewSession == nil {
		return errors.New("session factory is required for SSH")
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:    s.Addr,
		Handler: s.handleSession,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		if errors.Is(err, gliderssh.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleSession(sess gliderssh.Session) {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(sess.Context())
	}
	log = logx.WithRemote(log, "ssh", sess.RemoteAddr().String())
	if user := sess.User(); user != "" {
		log = log.With("ssh_user", user)
	}
	if id := sess.Context().SessionID(); id != "" {
		log = log.With("ssh_session", id)
	}

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "pty required\n")
		return
	}

	ctx := pslog.ContextWithLogger(sess.Context(), log)
	session, err := s.NewSession(ctx)
	if err != nil {
		log.Warn("ssh session rejected", "reason", "session", "err", err)
		_, _ = io.WriteString(sess, "session unavailable\n")
		return
	}
	defer session.Close()
	log = log.With("session", session.ID())

	log.Info("ssh session opened", "term", pty.Term)
	ui := newTerminalSession(sess, session, log)
	ui.SetSize(pty.Window.Width, pty.Window.Height)
	if err := ui.Run(ctx, winCh); err != nil {
		log.Debug("ssh session ended", "err", err)
	}
	log.Info("ssh session closed", "term", pty.Term)
}
