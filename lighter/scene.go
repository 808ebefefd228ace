package lighter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samuelyuan/go-lighter/kdtree"
	"github.com/samuelyuan/go-lighter/lightmap"
)

var (
	ErrNoSector = errors.New("lighter: nil sector")
	ErrNoTree   = errors.New("lighter: sector has no k-d tree")
)

type pdKey struct {
	page  int
	light *Light
}

// PseudoDynamicLightmap is the contribution of one pseudo-dynamic light to
// one lightmap page
type PseudoDynamicLightmap struct {
	Page     int
	Light    *Light
	Lightmap *lightmap.Lightmap
}

// Scene owns the sectors and every lightmap page written by them
type Scene struct {
	Sectors []*Sector

	PageWidth  int
	PageHeight int

	mu          sync.Mutex
	lightmaps   []*lightmap.Lightmap
	pdLightmaps map[pdKey]*lightmap.Lightmap
}

func NewScene(pageWidth, pageHeight int) *Scene {
	return &Scene{
		PageWidth:   pageWidth,
		PageHeight:  pageHeight,
		pdLightmaps: make(map[pdKey]*lightmap.Lightmap),
	}
}

// AddSector creates an empty sector
func (s *Scene) AddSector(name string) *Sector {
	sector := &Sector{Name: name, Scene: s}
	s.Sectors = append(s.Sectors, sector)
	return sector
}

// EnsurePages makes sure static lightmaps exist for pages [0, n)
func (s *Scene) EnsurePages(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensurePagesLocked(n)
}

func (s *Scene) ensurePagesLocked(n int) {
	for len(s.lightmaps) < n {
		s.lightmaps = append(s.lightmaps, lightmap.New(s.PageWidth, s.PageHeight))
	}
}

// GetLightmap returns the lightmap a light writes for the given page.
// Static lights share one lightmap per page, pseudo-dynamic lights get
// their own, created on first use.
func (s *Scene) GetLightmap(page int, light *Light) *lightmap.Lightmap {
	if page < 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if light != nil && light.PseudoDynamic {
		key := pdKey{page: page, light: light}
		lm, ok := s.pdLightmaps[key]
		if !ok {
			lm = lightmap.New(s.PageWidth, s.PageHeight)
			s.pdLightmaps[key] = lm
		}
		return lm
	}

	s.ensurePagesLocked(page + 1)
	return s.lightmaps[page]
}

// Lightmaps returns the static lightmap pages
func (s *Scene) Lightmaps() []*lightmap.Lightmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*lightmap.Lightmap(nil), s.lightmaps...)
}

// PseudoDynamicLightmaps returns the per-light lightmaps sorted by page
// and light name
func (s *Scene) PseudoDynamicLightmaps() []PseudoDynamicLightmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PseudoDynamicLightmap, 0, len(s.pdLightmaps))
	for k, lm := range s.pdLightmaps {
		out = append(out, PseudoDynamicLightmap{Page: k.page, Light: k.light, Lightmap: lm})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Light.Name < out[j].Light.Name
	})
	return out
}

// BuildKDTrees builds the k-d tree of every sector
func (s *Scene) BuildKDTrees(opts kdtree.Options) {
	for _, sector := range s.Sectors {
		sector.BuildKDTree(opts)
	}
}

// Bake shoots direct lighting for every sector, splitting 100% progress
// evenly between them
func (s *Scene) Bake(ctx context.Context, dl *DirectLighting) error {
	for i, sector := range s.Sectors {
		if sector == nil {
			return fmt.Errorf("sector %d: %w", i, ErrNoSector)
		}
		if sector.KDTree == nil {
			return fmt.Errorf("sector %q: %w", sector.Name, ErrNoTree)
		}
	}
	if len(s.Sectors) == 0 || !dl.Config.Lighter.DoDirectLight {
		return nil
	}

	step := float32(100) / float32(len(s.Sectors))
	for _, sector := range s.Sectors {
		if err := dl.ShootDirectLighting(ctx, sector, step); err != nil {
			return fmt.Errorf("sector %q: %w", sector.Name, err)
		}
	}
	return nil
}
