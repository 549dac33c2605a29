package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/retroterm"
	"pkt.systems/retroterm/core"
	"pkt.systems/retroterm/internal/appconfig"
	"pkt.systems/retroterm/internal/canvas"
)

type snapshotOptions struct {
	configPath string
	output     string
	format     string
	width      int
	height     int
	at         string
	run        []string
	skipBoot   bool
}

func newSnapshotCmd() *cobra.Command {
	var opts snapshotOptions
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render a session after the boot script to PNG or text",
		Long: "snapshot plays the boot script on a fake clock, runs any --run commands, " +
			"and writes one render of the terminal. Use -o - for stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := renderSnapshot(cmd, opts, &buf); err != nil {
				return err
			}
			if opts.output == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if dir := filepath.Dir(opts.output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			pslog.Ctx(cmd.Context()).Info("snapshot wrote", "path", opts.output, "format", opts.format, "bytes", buf.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "retroterm.png", "output file, - for stdout")
	cmd.Flags().StringVar(&opts.format, "format", "png", "output format: png, text or ansi")
	cmd.Flags().IntVar(&opts.width, "width", 0, "canvas width in pixels (default canvas.width)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "canvas height in pixels (default canvas.height)")
	cmd.Flags().StringVar(&opts.at, "at", "", "RFC3339 time the fake clock starts at (default now)")
	cmd.Flags().StringArrayVar(&opts.run, "run", nil, "command line to submit after boot (repeatable)")
	cmd.Flags().BoolVar(&opts.skipBoot, "skip-boot", false, "skip the boot script")
	return cmd
}

func renderSnapshot(cmd *cobra.Command, opts snapshotOptions, out io.Writer) error {
	format := strings.ToLower(strings.TrimSpace(opts.format))
	switch format {
	case "png", "text", "ansi":
	default:
		return fmt.Errorf("unsupported format %q", opts.format)
	}
	start := time.Now()
	if opts.at != "" {
		parsed, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		start = parsed
	}
	cfg, err := appconfig.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.width > 0 {
		cfg.Canvas.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Canvas.Height = opts.height
	}
	if opts.skipBoot {
		cfg.Terminal.SkipBoot = true
	}
	terminal, err := cfg.TerminalConfig()
	if err != nil {
		return err
	}

	clock := core.NewAutoClock(start)
	factory, err := retroterm.NewSessionFactory(terminal, clock, true)
	if err != nil {
		return err
	}
	sess, err := factory(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Boot(start); err != nil {
		return err
	}
	sess.Wait()
	for _, line := range opts.run {
		if err := sess.Submit(line); err != nil {
			return fmt.Errorf("run %q: %w", line, err)
		}
		sess.Wait()
	}

	width, height := terminal.CanvasWidth, terminal.CanvasHeight
	switch format {
	case "png":
		raster := canvas.NewRaster(width, height, terminal.Font)
		sess.Render(raster)
		return raster.EncodePNG(out)
	default:
		rows, cols := sess.Renderer().Metrics(float64(width), float64(height))
		grid := canvas.NewGrid(cols, rows, terminal.Font)
		sess.Render(grid)
		if format == "text" {
			_, err = fmt.Fprintln(out, grid.String())
			return err
		}
		grid.ApplyLinks(sess.Links())
		_, err = fmt.Fprintln(out, grid.Frame())
		return err
	}
}
