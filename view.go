package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samuelyuan/go-lighter/geom"
	"github.com/samuelyuan/go-lighter/lightmap"
	"github.com/samuelyuan/go-lighter/render"
	"github.com/samuelyuan/go-lighter/scene"
	"github.com/spf13/cobra"
)

const (
	windowWidth  = 800
	windowHeight = 600
)

func init() {
	// GL calls must come from the main thread
	runtime.LockOSThread()
}

func newViewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view <scene>",
		Short: "Preview the baked lightmaps in a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			// The atlas layout is deterministic, so reloading gives the
			// same pages the bake wrote
			s, err := opts.loadScene(args[0], cfg)
			if err != nil {
				return err
			}
			format, _ := lightmap.ParseFormat(cfg.Lightmap.Format)
			return view(s, opts.outDir, format, cfg.Lightmap.PageSize)
		},
	}
}

func view(s *scene.Scene, dir string, format lightmap.Format, pageSize int) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("could not initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	window, err := NewWindow(windowWidth, windowHeight, "go-lighter")
	if err != nil {
		return err
	}
	renderer := render.NewRenderer()
	if err := renderer.Init(); err != nil {
		return err
	}

	textures := make([]*render.PageTexture, s.Pages())
	for page := range textures {
		filename := filepath.Join(dir, pageFilename(page, "", format))
		img, err := lightmap.ReadFile(filename)
		if err != nil {
			slog.Warn("lightmap page missing, drawing it white", "file", filename, "err", err)
		}
		textures[page] = render.NewPageTexture(img, int32(pageSize))
	}
	defer func() {
		for _, t := range textures {
			t.Delete()
		}
	}()

	bounds := sceneBounds(s)
	extent := bounds.Size().Len()
	camera := NewCamera(bounds.Center(), max(extent/4, 1))

	renderMap := render.CreateRenderingData(s.Faces, pageSize)
	slog.Info("rendering data is generated, begin rendering", "faces", len(s.Faces))
	prevLeaf := -1

	for !window.Closed() {
		dt := window.NextFrame()
		camera.Update(dt, window.Input)

		renderer.PrepareFrame(camera.View(), camera.Projection(window.Aspect(), max(extent*2, 10)))

		// Only draw the faces the PVS lets the camera leaf see
		if s.BSPTree != nil {
			position := camera.Position
			leaf := s.BSPTree.FindLeaf([3]float32(position))
			if leaf.LeafIndex != prevLeaf {
				renderMap = render.CreateRenderingData(s.VisibleFaces(position), pageSize)
				prevLeaf = leaf.LeafIndex
			}
		}
		render.DrawMap(renderer, renderMap, textures)
	}
	return nil
}

func sceneBounds(s *scene.Scene) geom.Box {
	bounds := geom.EmptyBox()
	for _, sector := range s.Lighter.Sectors {
		if sector.KDTree != nil && sector.KDTree.Len() > 0 {
			bounds = bounds.Union(sector.KDTree.Bounds())
		}
	}
	if bounds.IsEmpty() {
		return geom.BoxAround(mgl32.Vec3{}, 1)
	}
	return bounds
}
