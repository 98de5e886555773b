package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/neurosim/internal/driver"
	"github.com/nvandessel/neurosim/internal/mcp"
	"github.com/nvandessel/neurosim/internal/visualization"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation live with MCP and HTTP control surfaces",
		Long: `Run the engine in real time and expose it for interaction.

The MCP server speaks on stdin/stdout, so 'neurosim serve' can be
registered directly as an MCP server in an agent configuration. With
--http, a snapshot server also serves a canvas viewer and the pointer
gesture endpoints.

Examples:
  neurosim serve                              # MCP on stdio
  neurosim serve --http --open               # also open the viewer
  neurosim serve --no-mcp --http --addr :8080 # HTTP only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			httpOn, _ := cmd.Flags().GetBool("http")
			addrFlag, _ := cmd.Flags().GetString("addr")
			noMCP, _ := cmd.Flags().GetBool("no-mcp")
			open, _ := cmd.Flags().GetBool("open")

			if noMCP && !httpOn {
				return fmt.Errorf("--no-mcp requires --http")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			httpAddr := cfg.Server.HTTPAddr
			if addrFlag != "" {
				httpAddr = addrFlag
			}
			log := newLogger(cfg, stderr)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			sess, err := openSession(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer sess.close(context.Background())

			g, gctx := errgroup.WithContext(ctx)

			loop := driver.New(sess.engine, cfg.Driver.Interval(), driver.WithLogger(log))
			g.Go(func() error {
				loop.Run(gctx)
				return nil
			})

			if !noMCP {
				server, err := mcp.NewServer(&mcp.Config{
					Name:         "neurosim",
					Version:      version,
					GestureRate:  cfg.Server.GestureRate,
					GestureBurst: cfg.Server.GestureBurst,
					Logger:       log,
					Audit:        sess.events,
				}, sess.engine)
				if err != nil {
					return fmt.Errorf("failed to create MCP server: %w", err)
				}
				g.Go(func() error {
					// The client closing stdio ends the whole session.
					defer cancel()
					return server.Run(gctx)
				})
			}

			if httpOn {
				viz := visualization.NewServer(sess.engine, httpAddr, log)
				g.Go(func() error {
					return viz.ListenAndServe(gctx)
				})
				g.Go(func() error {
					url, ok := waitForAddr(gctx, viz)
					if !ok {
						return nil
					}
					fmt.Fprintf(stderr, "Snapshot server running at %s\n", url)
					if open {
						if err := visualization.OpenBrowser(url); err != nil {
							log.Warn("could not open browser", "url", url, "error", err)
						}
					}
					return nil
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().Bool("http", false, "Serve snapshots and gestures over HTTP")
	cmd.Flags().String("addr", "", "HTTP listen address (default from config)")
	cmd.Flags().Bool("no-mcp", false, "Do not start the MCP server on stdio")
	cmd.Flags().Bool("open", false, "Open the viewer in a browser (requires --http)")

	return cmd
}

// waitForAddr polls until the HTTP server is bound and returns its URL.
func waitForAddr(ctx context.Context, viz *visualization.Server) (string, bool) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if addr := viz.Addr(); addr != "" {
			return "http://" + addr + "/", true
		}
		select {
		case <-ctx.Done():
			return "", false
		case <-ticker.C:
		}
	}
}
