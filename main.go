// Command go-lighter bakes static direct lighting of a scene into
// lightmap images and previews the result.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/samuelyuan/go-lighter/config"
	"github.com/samuelyuan/go-lighter/lightmap"
	"github.com/samuelyuan/go-lighter/scene"
	"github.com/spf13/cobra"
)

type options struct {
	configFile  string
	outDir      string
	threads     int
	radiosity   bool
	dumpNormals bool
	format      string
	pakFile     string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "go-lighter",
		Short:         "Static lightmap baker",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "TOML configuration file")
	flags.StringVarP(&opts.outDir, "out", "o", "lightmaps", "lightmap image directory")
	flags.StringVar(&opts.pakFile, "pak", "", "load the scene as a map inside this PAK archive")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	bakeCmd := newBakeCmd(opts)
	bakeFlags := bakeCmd.Flags()
	bakeFlags.IntVar(&opts.threads, "threads", 0, "shading goroutines (0: one per CPU)")
	bakeFlags.BoolVar(&opts.radiosity, "radiosity", false, "collect radiosity patch energy")
	bakeFlags.BoolVar(&opts.dumpNormals, "dump-normals", false, "write shading normals instead of light")
	bakeFlags.StringVar(&opts.format, "format", "", "image format: png, bmp or tiff")

	rootCmd.AddCommand(bakeCmd, newInfoCmd(opts), newViewCmd(opts), newTextureCmd(opts))
	return rootCmd
}

// loadConfig reads the config file and applies the flags that were set
func (opts *options) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		var err error
		if cfg, err = config.Load(opts.configFile); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("threads") {
		cfg.Lighter.NumThreads = opts.threads
	}
	if flags.Changed("radiosity") {
		cfg.Lighter.DoRadiosity = opts.radiosity
	}
	if flags.Changed("dump-normals") {
		cfg.Debug.DumpNormals = opts.dumpNormals
	}
	if flags.Changed("format") {
		cfg.Lightmap.Format = opts.format
	}
	if _, err := lightmap.ParseFormat(cfg.Lightmap.Format); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (opts *options) loadScene(filename string, cfg config.Config) (*scene.Scene, error) {
	sceneOpts := scene.NewOptions(cfg)
	if opts.pakFile != "" {
		return scene.LoadPAK(opts.pakFile, filename, sceneOpts)
	}
	return scene.LoadFile(filename, sceneOpts)
}

// pageFilename names the image of a lightmap page; pseudo-dynamic lights
// add their name
func pageFilename(page int, light string, format lightmap.Format) string {
	if light == "" {
		return fmt.Sprintf("lightmap_%d.%s", page, format.Extension())
	}
	return fmt.Sprintf("lightmap_%d_%s.%s", page, light, format.Extension())
}
