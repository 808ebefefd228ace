package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samuelyuan/go-lighter/kdtree"
	"github.com/samuelyuan/go-lighter/lighter"
)

// SectorSummary describes one sector of a baked scene
type SectorSummary struct {
	Name       string
	Objects    int
	Primitives int
	Lights     int
	Tree       kdtree.Stats
}

// Summary is everything printed at the end of a run
type Summary struct {
	Sectors  []SectorSummary
	Counters lighter.CounterSnapshot
	Pages    int
	Elapsed  time.Duration
}

// Summarize collects the sector summaries of a scene
func Summarize(scene *lighter.Scene) []SectorSummary {
	var out []SectorSummary
	for _, sector := range scene.Sectors {
		s := SectorSummary{
			Name:       sector.Name,
			Objects:    len(sector.Objects),
			Primitives: len(sector.Primitives()),
			Lights:     len(sector.Lights),
		}
		if sector.KDTree != nil {
			s.Tree = sector.KDTree.Stats()
		}
		out = append(out, s)
	}
	return out
}

// WriteSectors prints one row per sector with its k-d tree shape
func WriteSectors(w io.Writer, sectors []SectorSummary) {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Sector", "Objects", "Primitives", "Lights", "Nodes", "Leaves", "Depth", "Refs"})

	var objects, prims, lights int
	for _, s := range sectors {
		table.Append([]string{
			s.Name,
			fmt.Sprint(s.Objects),
			fmt.Sprint(s.Primitives),
			fmt.Sprint(s.Lights),
			fmt.Sprint(s.Tree.Nodes),
			fmt.Sprint(s.Tree.Leaves),
			fmt.Sprint(s.Tree.MaxDepth),
			fmt.Sprint(s.Tree.ItemRefs),
		})
		objects += s.Objects
		prims += s.Primitives
		lights += s.Lights
	}
	table.SetFooter([]string{"Total", fmt.Sprint(objects), fmt.Sprint(prims), fmt.Sprint(lights), " ", " ", " ", " "})
	table.Render()
}

// WriteSummary prints the sector table followed by the lighting totals
func WriteSummary(w io.Writer, s Summary) {
	WriteSectors(w, s.Sectors)

	var rays, occluded int64
	for _, sector := range s.Sectors {
		rays += sector.Tree.RaysCast
		occluded += sector.Tree.RaysOccluded
	}

	c := s.Counters
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Direct lighting", "Count"})
	table.Append([]string{"Lights", fmt.Sprint(c.Lights)})
	table.Append([]string{"Lights out of reach", fmt.Sprint(c.LightsSkipped)})
	table.Append([]string{"Primitives shaded", fmt.Sprint(c.Primitives)})
	table.Append([]string{"Elements lit", fmt.Sprint(c.Elements)})
	table.Append([]string{"Elements culled", fmt.Sprint(c.ElementsCulled)})
	table.Append([]string{"Elements in shadow", fmt.Sprint(c.ElementsShadowed)})
	table.Append([]string{"Rays cast", fmt.Sprint(rays)})
	table.Append([]string{"Rays occluded", fmt.Sprint(occluded)})
	table.Append([]string{"Lightmap pages", fmt.Sprint(s.Pages)})
	table.SetFooter([]string{"Elapsed", s.Elapsed.Truncate(time.Millisecond).String()})
	table.Render()
}
