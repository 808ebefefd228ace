package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/samuelyuan/go-lighter/lighter"
	"github.com/samuelyuan/go-lighter/lightmap"
	"github.com/samuelyuan/go-lighter/scene"
	"github.com/samuelyuan/go-lighter/stats"
	"github.com/spf13/cobra"
)

func newBakeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bake <scene>",
		Short: "Compute direct lighting and write the lightmap pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := opts.loadScene(args[0], cfg)
			if err != nil {
				return err
			}

			st := stats.New(os.Stdout)
			st.Raycore = func() int64 { return raysCast(s.Lighter) }
			st.SetTask("direct lighting")

			dl := lighter.NewDirectLighting(cfg, st)
			dl.Counters = st.Counters

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			err = s.Lighter.Bake(ctx, dl)
			st.Finish()
			if err != nil {
				return err
			}

			format, _ := lightmap.ParseFormat(cfg.Lightmap.Format)
			if err := exportLightmaps(s, opts.outDir, format, cfg.Lightmap.Scale); err != nil {
				return err
			}

			stats.WriteSummary(os.Stdout, stats.Summary{
				Sectors:  stats.Summarize(s.Lighter),
				Counters: dl.Counters.Snapshot(),
				Pages:    s.Pages(),
				Elapsed:  st.Elapsed(),
			})
			return nil
		},
	}
}

func raysCast(s *lighter.Scene) int64 {
	var n int64
	for _, sector := range s.Sectors {
		if sector.KDTree != nil {
			n += sector.KDTree.Stats().RaysCast
		}
	}
	return n
}

// exportLightmaps writes every static page and every pseudo-dynamic
// light page into dir
func exportLightmaps(s *scene.Scene, dir string, format lightmap.Format, scale float32) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for page, lm := range s.Lighter.Lightmaps() {
		filename := filepath.Join(dir, pageFilename(page, "", format))
		if err := lightmap.WriteFile(filename, lm, format, scale); err != nil {
			return err
		}
		slog.Debug("wrote lightmap", "file", filename)
	}
	for _, pd := range s.Lighter.PseudoDynamicLightmaps() {
		filename := filepath.Join(dir, pageFilename(pd.Page, pd.Light.Name, format))
		if err := lightmap.WriteFile(filename, pd.Lightmap, format, scale); err != nil {
			return err
		}
		slog.Debug("wrote lightmap", "file", filename, "light", pd.Light.Name)
	}
	slog.Info("lightmaps written", "dir", dir, "pages", s.Pages())
	return nil
}

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <scene>",
		Short: "Print scene and k-d tree statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := opts.loadScene(args[0], cfg)
			if err != nil {
				return err
			}
			stats.WriteSectors(os.Stdout, stats.Summarize(s.Lighter))
			fmt.Printf("%d faces on %d lightmap pages of %dx%d\n",
				len(s.Faces), s.Pages(), cfg.Lightmap.PageSize, cfg.Lightmap.PageSize)
			return nil
		},
	}
}
