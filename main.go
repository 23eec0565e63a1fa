package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"navmesh-planner/navmesh"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is shared by all commands once the root command has read the config.
type app struct {
	cfg    Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		a          app
	)

	root := &cobra.Command{
		Use:          "navplan",
		Short:        "navplan finds shortest paths on triangle navigation meshes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			level, err := log.ParseLevel(cfg.Log.Level)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if verbose {
				level = log.DebugLevel
			}
			a.cfg = cfg
			a.logger = newLogger(logOutput(os.Stderr, cfg.Log), level)
			cmd.SetContext(withLogger(cmd.Context(), a.logger))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newServeCmd(&a))
	root.AddCommand(newRouteCmd(&a))
	root.AddCommand(newInspectCmd(&a))
	return root
}

func newServeCmd(a *app) *cobra.Command {
	var listen, meshFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the route planning HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.Listen = listen
			}
			if meshFile != "" {
				a.cfg.MeshFile = meshFile
			}
			return serve(cmd.Context(), a.cfg, a.logger)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&meshFile, "mesh", "", "mesh file loaded on startup (overrides config)")
	return cmd
}

func serve(ctx context.Context, cfg Config, logger *log.Logger) error {
	srv := NewServer(cfg, logger)

	if mesh, err := LoadMesh(cfg.MeshFile, logger); err == nil {
		p, err := srv.SetMesh(mesh)
		if err != nil {
			return err
		}
		logger.Info("mesh ready", "mesh", p.ID, "triangles", mesh.Len())
	} else {
		logger.Info("no mesh loaded on startup, POST /mesh to upload one", "err", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "listen", cfg.Listen, "origin", cfg.AllowOrigin)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func newRouteCmd(a *app) *cobra.Command {
	var (
		meshFile string
		from     string
		to       []string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Find the shortest path to the nearest goal",
		Example: `  navplan route --mesh level.geojson --from 1,1 --to 5,3
  navplan route --mesh level.json --from 1,1 --to 5,3 --to 0,4 --geojson`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parsePoint(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if len(to) == 0 {
				return errors.New("at least one --to is required")
			}
			goals := make([]navmesh.Vector, len(to))
			for i, s := range to {
				if goals[i], err = parsePoint(s); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}

			if meshFile == "" {
				meshFile = a.cfg.MeshFile
			}
			mesh, err := LoadMesh(meshFile, a.logger)
			if err != nil {
				return err
			}

			planner, err := NewPlanner(mesh, a.cfg.Search)
			if err != nil {
				return err
			}
			route, err := planner.Route(cmd.Context(), start, goals, false)
			if err != nil {
				return err
			}
			if !route.Result.Found {
				return errors.New("no goal is reachable from the start point")
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := route.Feature().MarshalJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			for _, p := range route.Result.Path {
				fmt.Fprintf(out, "%g,%g\n", p.X, p.Y)
			}
			a.logger.Info("path found", "waypoints", len(route.Result.Path), "length", route.Result.Length)
			return nil
		},
	}
	cmd.Flags().StringVar(&meshFile, "mesh", "", "mesh file (.geojson or .json)")
	cmd.Flags().StringVar(&from, "from", "", "start point as x,y")
	cmd.Flags().StringArrayVar(&to, "to", nil, "goal point as x,y (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "geojson", false, "print the path as a GeoJSON feature")
	cmd.MarkFlagRequired("from")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	var meshFile, saveAs string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load a mesh and report its adjacency",
		RunE: func(cmd *cobra.Command, args []string) error {
			if meshFile == "" {
				meshFile = a.cfg.MeshFile
			}
			prog := newProgress(a.logger)
			mesh, err := LoadMesh(meshFile, a.logger)
			if err != nil {
				return err
			}

			var degree [4]int
			for _, t := range mesh.Triangles() {
				degree[len(t.Neighbors())]++
			}
			prog.done("mesh inspected",
				"triangles", mesh.Len(),
				"isolated", degree[0],
				"boundary1", degree[1],
				"boundary2", degree[2],
				"interior", degree[3])

			if saveAs != "" {
				return SaveMesh(mesh, saveAs, a.logger)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&meshFile, "mesh", "", "mesh file (.geojson or .json)")
	cmd.Flags().StringVar(&saveAs, "save", "", "write the mesh to this file (.geojson or .json)")
	return cmd
}

// parsePoint parses "x,y".
func parsePoint(s string) (navmesh.Vector, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return navmesh.Vector{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return navmesh.Vector{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return navmesh.Vector{}, fmt.Errorf("point %q: %w", s, err)
	}
	return navmesh.V(x, y), nil
}
