package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockseg/pkg/config"
	"github.com/matzehuels/blockseg/pkg/observability"
	"github.com/matzehuels/blockseg/pkg/pipeline"
	"github.com/matzehuels/blockseg/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		gf        gridFlags
		addr      string
		maxUpload int64
		noCache   bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Routes:
  GET  /healthz          build information
  POST /v1/segment       segment an uploaded image (multipart field "image")
  GET  /v1/runs          recent runs
  GET  /v1/runs/{id}     one run

The grid and segmentation flags set the defaults for requests that do not
override them in their "options" field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			gf.resolve(cmd, &opts, cfg)
			if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
				addr = cfg.Server.Addr
			}
			if err := opts.ValidateForSegment(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), opts, cfg, addr, maxUpload, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&maxUpload, "max-upload", server.DefaultMaxUpload, "maximum upload size in bytes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	gf.register(cmd.Flags(), &opts)
	registerSegmentFlags(cmd.Flags(), &opts)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, cfg *config.Config, addr string, maxUpload int64, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := c.newStore(ctx, cfg)
	if err != nil {
		c.Logger.Warn("run store unavailable, runs will not be recorded", "error", err)
		st = nil
	} else {
		defer st.Close()
	}

	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	srv := server.New(runner, st, c.Logger,
		server.WithDefaults(opts),
		server.WithMaxUpload(maxUpload),
	)

	printInfo("Listening on %s", StyleLink.Render(addr))
	err = srv.ListenAndServe(ctx, addr)
	if errors.Is(err, context.Canceled) {
		printSuccess("Server stopped")
		return nil
	}
	return err
}
