// Package stats tracks the progress of a lighting run and prints it.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muesli/termenv"
	"github.com/samuelyuan/go-lighter/lighter"
)

const (
	barWidth = 30

	// Redraws closer together than this are dropped, except the final one
	DefaultRedrawInterval = 100 * time.Millisecond
)

// Stats is the progress sink of a run. It implements lighter.Progress and
// is safe for concurrent use.
type Stats struct {
	Counters *lighter.Counters

	// Raycore returns the number of rays cast so far, if set
	Raycore func() int64

	RedrawInterval time.Duration

	progress atomic.Uint64 // float64 bits, percent of the current task
	task     atomic.Value  // string

	start time.Time

	mu       sync.Mutex
	out      *termenv.Output
	lastDraw time.Time
	drawn    bool
}

// New returns a Stats drawing a progress line on w. A nil w disables
// drawing.
func New(w io.Writer) *Stats {
	s := &Stats{
		Counters:       &lighter.Counters{},
		RedrawInterval: DefaultRedrawInterval,
		start:          time.Now(),
	}
	if w != nil {
		s.out = termenv.NewOutput(w)
	}
	s.task.Store("")
	return s
}

// SetTask starts a new task, resetting its progress to 0
func (s *Stats) SetTask(name string) {
	s.task.Store(name)
	s.progress.Store(math.Float64bits(0))
	s.mu.Lock()
	s.drawn = false
	s.mu.Unlock()
}

func (s *Stats) Task() string {
	return s.task.Load().(string)
}

// IncTaskProgress adds amount percent to the current task. Progress never
// decreases and is capped at 100.
func (s *Stats) IncTaskProgress(amount float32) {
	if amount <= 0 || amount != amount {
		return
	}
	for {
		old := s.progress.Load()
		next := math.Min(math.Float64frombits(old)+float64(amount), 100)
		if s.progress.CompareAndSwap(old, math.Float64bits(next)) {
			return
		}
	}
}

// TaskProgress returns the progress of the current task in percent
func (s *Stats) TaskProgress() float32 {
	return float32(math.Float64frombits(s.progress.Load()))
}

// Elapsed returns the time since New
func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.start)
}

// Redraw refreshes the progress line, at most once per RedrawInterval
func (s *Stats) Redraw(flags lighter.RedrawFlags) {
	s.redraw(flags, false)
}

// Finish draws the final state of the current task and ends the line
func (s *Stats) Finish() {
	s.redraw(lighter.DrawProgress|lighter.DrawRaycore|lighter.DrawStats, true)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out != nil && s.drawn {
		fmt.Fprintln(s.out)
	}
	s.drawn = false
}

func (s *Stats) redraw(flags lighter.RedrawFlags, force bool) {
	if s.out == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if !force && s.drawn && now.Sub(s.lastDraw) < s.RedrawInterval {
		return
	}
	s.lastDraw = now
	s.drawn = true

	s.out.ClearLine()
	fmt.Fprint(s.out, "\r"+s.line(flags))
}

// line formats the progress line for the given flags
func (s *Stats) line(flags lighter.RedrawFlags) string {
	var b strings.Builder
	b.WriteString(s.out.String(fmt.Sprintf("%-16s", s.Task())).Bold().String())

	if flags&lighter.DrawProgress != 0 {
		p := s.TaskProgress()
		filled := int(p / 100 * barWidth)
		bar := strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled)
		b.WriteString(" [")
		b.WriteString(s.out.String(bar).Foreground(s.out.Color("2")).String())
		fmt.Fprintf(&b, "] %5.1f%%", p)
	}
	if flags&lighter.DrawRaycore != 0 && s.Raycore != nil {
		fmt.Fprintf(&b, "  rays %d", s.Raycore())
	}
	if flags&lighter.DrawStats != 0 && s.Counters != nil {
		c := s.Counters.Snapshot()
		b.WriteString(s.out.String(fmt.Sprintf("  lights %d  elements %d", c.Lights, c.Elements)).Faint().String())
	}
	fmt.Fprintf(&b, "  %s", s.Elapsed().Truncate(time.Second))
	return b.String()
}
