package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/retroterm"
	"pkt.systems/retroterm/httpapi"
	"pkt.systems/retroterm/internal/appconfig"
	"pkt.systems/retroterm/sshserver"
)

//go:embed assets/banner.txt
var serveLogo string

func newServeCmd() *cobra.Command {
	var cfgPath string
	var disableAuditTrails bool
	var noBanner bool
	var httpOnly bool
	var sshOnly bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and SSH terminals",
		RunE: func(cmd *cobra.Command, args []string) error {
			if httpOnly && sshOnly {
				return errors.New("--http-only and --ssh-only are mutually exclusive")
			}
			logMode := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_MODE")))
			showBanner := !noBanner && logMode != "json" && logMode != "structured"
			if showBanner && serveLogo != "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), serveLogo)
			}
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if disableAuditTrails {
				cfg.Logging.DisableAuditTrails = true
			}
			serverCfg, err := toServerConfig(cfg)
			if err != nil {
				return err
			}
			var opts []retroterm.ServerOption
			if !sshOnly {
				opts = append(opts, retroterm.WithHTTP())
			}
			if !httpOnly {
				opts = append(opts, retroterm.WithSSH())
			}
			server, err := retroterm.New(serverCfg, retroterm.ServerDeps{}, opts...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Stop(stopCtx); err != nil {
					logger.Warn("server stop failed", "err", err)
				}
			}()
			if !sshOnly {
				logger.Info("http server listening", "addr", serverCfg.HTTP.Addr, "base_path", serverCfg.HTTP.BasePath)
			}
			if !httpOnly {
				logger.Info("ssh server listening", "addr", serverCfg.SSH.Addr)
			}
			if err := server.Start(ctx); err != nil {
				return err
			}
			return server.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&disableAuditTrails, "disable-audit-trails", false, "disable audit trail logging for commands")
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "disable startup banner")
	cmd.Flags().BoolVar(&httpOnly, "http-only", false, "serve only the browser terminal")
	cmd.Flags().BoolVar(&sshOnly, "ssh-only", false, "serve only the SSH terminal")
	return cmd
}

func toServerConfig(cfg appconfig.Config) (retroterm.ServerConfig, error) {
	terminal, err := cfg.TerminalConfig()
	if err != nil {
		return retroterm.ServerConfig{}, err
	}
	return retroterm.ServerConfig{
		Terminal: terminal,
		HTTP: httpapi.Config{
			Addr:         cfg.HTTP.Addr,
			BasePath:     cfg.HTTP.BasePath,
			SessionTTL:   cfg.SessionTTL(),
			Font:         terminal.Font,
			CanvasWidth:  terminal.CanvasWidth,
			CanvasHeight: terminal.CanvasHeight,
		},
		SSH: sshserver.Config{
			Addr:        cfg.SSH.Addr,
			HostKeyPath: cfg.SSH.HostKeyPath,
		},
		DisableAuditLogging: cfg.Logging.DisableAuditTrails,
	}, nil
}
