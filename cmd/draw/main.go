package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/paulmach/orb/maptile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-draw/internal/server"
	"github.com/joeblew999/plat-draw/internal/service"
	"github.com/joeblew999/plat-draw/internal/tiles"
)

// Options defines all CLI flags and env vars for the draw server.
// Flags: --host, --port, --data-dir, --elevation-url, --log-level, --log-format
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, ...
type Options struct {
	Host         string `doc:"Host to bind to" default:"0.0.0.0"`
	Port         int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir      string `doc:"Directory for plans and importable plan files" default:".data"`
	ElevationURL string `doc:"Base URL of an Open-Elevation compatible service; empty simulates profiles"`
	LogLevel     string `doc:"Log level: debug, info, warn or error" default:"info"`
	LogFormat    string `doc:"Log format: text or json" default:"text"`
}

func newLogger(opts *Options) *logrus.Logger {
	log := logrus.StandardLogger()
	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if opts.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}
	return log
}

func newServer(opts *Options) *server.Server {
	return server.New(server.Config{
		Host:         opts.Host,
		Port:         fmt.Sprintf("%d", opts.Port),
		DataDir:      opts.DataDir,
		ElevationURL: opts.ElevationURL,
		Logger:       newLogger(opts),
	})
}

// loadPlan imports a plan file into a memory-only plan service.
func loadPlan(path string, opts *Options) (*service.PlanService, string, error) {
	pf, err := service.ReadPlanFile(path)
	if err != nil {
		return nil, "", err
	}
	if pf.Name == "" {
		pf.Name = "plan"
	}
	plans := service.NewPlanService("", service.WithLogger(newLogger(opts)))
	info, err := plans.Import(pf)
	if info.ID == "" {
		return nil, "", err
	}
	if err != nil {
		logrus.WithError(err).Warn("some shapes were skipped")
	}
	return plans, info.ID, nil
}

func writeJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		srv := newServer(opts)

		hooks.OnStart(func() {
			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-draw API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Println()
			fmt.Printf("  Events:  %s/api/v1/editor/events\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				logrus.Fatalf("Server error: %v", err)
			}
		})
	})

	cli.Root().Use = "draw"
	cli.Root().Short = "Map drawing engine: shapes, handles, coverage and elevation"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.DataDir = ""
			spec := newServer(opts).OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fail(fmt.Errorf("marshaling spec: %w", err))
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// coverage subcommand: measure a plan file offline
	coverageCmd := &cobra.Command{
		Use:   "coverage <planfile>",
		Short: "Print the covered area of a YAML or JSON plan file",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			plans, id, err := loadPlan(args[0], opts)
			if err != nil {
				fail(err)
			}
			if all, _ := cmd.Flags().GetBool("all"); all {
				comps, err := plans.Components(id)
				if err != nil {
					fail(err)
				}
				writeJSON(comps)
				return
			}
			focus, _ := cmd.Flags().GetString("focus")
			res, err := plans.Coverage(id, focus)
			if err != nil {
				fail(err)
			}
			writeJSON(res)
		}),
	}
	coverageCmd.Flags().StringP("focus", "f", "", "Measure the group containing this shape ID")
	coverageCmd.Flags().BoolP("all", "a", false, "Measure every connected group")
	cli.Root().AddCommand(coverageCmd)

	// export subcommand: convert a plan file to GeoJSON
	exportCmd := &cobra.Command{
		Use:   "export <planfile>",
		Short: "Convert a YAML or JSON plan file to a GeoJSON feature collection",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			plans, id, err := loadPlan(args[0], opts)
			if err != nil {
				fail(err)
			}
			fc, err := plans.Export(id)
			if err != nil {
				fail(err)
			}
			writeJSON(fc)
		}),
	}
	cli.Root().AddCommand(exportCmd)

	// tiles subcommand: write a plan file as a z/x/y.mvt directory
	tilesCmd := &cobra.Command{
		Use:   "tiles <planfile>",
		Short: "Render a plan file to gzipped vector tiles under --output/z/x/y.mvt",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			plans, id, err := loadPlan(args[0], opts)
			if err != nil {
				fail(err)
			}
			fc, err := plans.Export(id)
			if err != nil {
				fail(err)
			}
			outDir, _ := cmd.Flags().GetString("output")
			minZoom, _ := cmd.Flags().GetUint32("min-zoom")
			maxZoom, _ := cmd.Flags().GetUint32("max-zoom")
			n := 0
			for z := minZoom; z <= maxZoom && z <= tiles.MaxZoom; z++ {
				for _, t := range tiles.Covering(fc, maptile.Zoom(z)) {
					data, err := tiles.Encode(fc, t, tiles.DefaultLayer)
					if err != nil {
						fail(err)
					}
					if data == nil {
						continue
					}
					dir := filepath.Join(outDir, fmt.Sprint(t.Z), fmt.Sprint(t.X))
					if err := os.MkdirAll(dir, 0755); err != nil {
						fail(err)
					}
					if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.mvt", t.Y)), data, 0644); err != nil {
						fail(err)
					}
					n++
				}
			}
			logrus.WithFields(logrus.Fields{"tiles": n, "output": outDir}).Info("tiles written")
		}),
	}
	tilesCmd.Flags().StringP("output", "o", "tiles", "Output directory")
	tilesCmd.Flags().Uint32("min-zoom", 12, "Lowest zoom level")
	tilesCmd.Flags().Uint32("max-zoom", 18, "Highest zoom level")
	cli.Root().AddCommand(tilesCmd)

	cli.Run()
}
