package lighter

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samuelyuan/go-lighter/config"
	"github.com/samuelyuan/go-lighter/geom"
	"github.com/samuelyuan/go-lighter/kdtree"
	"github.com/samuelyuan/go-lighter/lightmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newQuadScene returns a scene with one sector holding a 4x4 quad in the
// z=0 plane facing +z. One world unit is one texel; the quad covers texels
// [1,5) x [1,5) of page 0.
func newQuadScene(reflectance geom.Color, patchRes int) (*Scene, *Sector, *Object) {
	scene := NewScene(8, 8)
	sector := scene.AddSector("main")

	o := NewObject("quad", 0)
	n := mgl32.Vec3{0, 0, 1}
	for _, p := range []mgl32.Vec2{{0, 0}, {4, 0}, {4, 4}, {0, 4}} {
		o.VertexData.AddVertex(mgl32.Vec3{p[0], p[1], 0}, n, p.Add(mgl32.Vec2{1, 1}))
	}
	o.AddPolygon([]int{0, 1, 2, 3}, reflectance)
	o.Prepare(patchRes, patchRes)
	sector.AddObject(o)
	return scene, sector, o
}

// addBlocker adds a large triangle at height z covering the quad, packed
// into page 1
func addBlocker(sector *Sector, z float32) {
	o := NewObject("blocker", 1)
	n := mgl32.Vec3{0, 0, 1}
	o.VertexData.AddVertex(mgl32.Vec3{-100, -100, z}, n, mgl32.Vec2{0, 0})
	o.VertexData.AddVertex(mgl32.Vec3{100, -100, z}, n, mgl32.Vec2{1, 0})
	o.VertexData.AddVertex(mgl32.Vec3{0, 100, z}, n, mgl32.Vec2{0, 1})
	o.AddPrimitive(Triangle{0, 1, 2}, geom.Gray(1))
	o.Prepare(0, 0)
	sector.AddObject(o)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Lighter.NumThreads = 4
	return cfg
}

func shoot(t *testing.T, cfg config.Config, sector *Sector) *DirectLighting {
	t.Helper()
	sector.BuildKDTree(kdtree.DefaultOptions)
	dl := NewDirectLighting(cfg, nil)
	require.NoError(t, dl.ShootDirectLighting(context.Background(), sector, 100))
	return dl
}

func assertColorInEpsilon(t *testing.T, want, got geom.Color, eps float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InEpsilon(t, want.R, got.R, eps, msgAndArgs...)
	assert.InEpsilon(t, want.G, got.G, eps, msgAndArgs...)
	assert.InEpsilon(t, want.B, got.B, eps, msgAndArgs...)
}

func TestQuadUnderRealisticLight(t *testing.T) {
	const (
		height     = 10
		radius     = 1000
		multiplier = 2
	)
	reflectance := geom.Gray(0.5)
	scene, sector, _ := newQuadScene(reflectance, 0)
	light := NewLight("top", mgl32.Vec3{2, 2, height}, geom.Color{R: 1, G: 0.5, B: 0.25}, AttnRealistic, radius)
	sector.AddLight(light)

	cfg := testConfig()
	cfg.DirectLight.PointLightMultiplier = multiplier
	shoot(t, cfg, sector)

	lm := scene.GetLightmap(0, nil)
	freeEnergy := light.Color.Scale(multiplier)
	assert.Equal(t, freeEnergy, light.FreeEnergy)

	// Texel (2, 3) spans world [1,2]x[2,3], fully inside one triangle
	ec := mgl32.Vec3{1.5, 2.5, 0}
	distSq := light.Position.Sub(ec).LenSqr()
	cosTheta := height / math32.Sqrt(distSq)
	exact := freeEnergy.Scale(radius * radius / distSq * cosTheta).Mul(reflectance)
	assertColorInEpsilon(t, exact, lm.At(2, 3), 1e-3)

	approx := freeEnergy.Scale(radius * radius / (height * height)).Mul(reflectance)
	assertColorInEpsilon(t, approx, lm.At(2, 3), 0.01)

	// Texel (3, 3) is split by the diagonal; both halves add up to a full texel
	ec = mgl32.Vec3{2.5, 2.5, 0}
	distSq = light.Position.Sub(ec).LenSqr()
	cosTheta = height / math32.Sqrt(distSq)
	exact = freeEnergy.Scale(radius * radius / distSq * cosTheta).Mul(reflectance)
	assertColorInEpsilon(t, exact, lm.At(3, 3), 1e-3)
}

// A strip of eight 1x1 quads along x, each its own polygon, covering
// texels u in [1,9), v = 1
func newStripScene() (*Scene, *Sector) {
	scene := NewScene(16, 4)
	sector := scene.AddSector("main")

	o := NewObject("strip", 0)
	n := mgl32.Vec3{0, 0, 1}
	for x := 0; x <= 8; x++ {
		fx := float32(x)
		o.VertexData.AddVertex(mgl32.Vec3{fx, 0, 0}, n, mgl32.Vec2{fx + 1, 1})
		o.VertexData.AddVertex(mgl32.Vec3{fx, 1, 0}, n, mgl32.Vec2{fx + 1, 2})
	}
	for i := 0; i < 8; i++ {
		o.AddPolygon([]int{2 * i, 2*i + 2, 2*i + 3, 2*i + 1}, geom.Gray(1))
	}
	o.Prepare(0, 0)
	sector.AddObject(o)
	return scene, sector
}

func TestRealisticLightReachesBeyondRadius(t *testing.T) {
	const (
		radius = 2
		height = 1
	)
	scene, sector := newStripScene()
	light := NewLight("top", mgl32.Vec3{0.5, 0.5, height}, geom.Gray(1), AttnRealistic, radius)
	sector.AddLight(light)
	shoot(t, testConfig(), sector)

	lm := scene.GetLightmap(0, nil)
	for i := 0; i < 8; i++ {
		distSq := float32(i*i + height*height)
		cosTheta := height / math32.Sqrt(distSq)
		want := light.FreeEnergy.Scale(radius * radius / distSq * cosTheta)
		assertColorInEpsilon(t, want, lm.At(i+1, 1), 1e-3, "texel %d", i)
	}
	assert.Positive(t, lm.At(8, 1).R)
}

func TestCutoffLimitsLight(t *testing.T) {
	scene, sector := newStripScene()
	light := NewLight("top", mgl32.Vec3{0.5, 0.5, 1}, geom.Gray(1), AttnRealistic, 2)
	light.SetCutoff(2.5)
	sector.AddLight(light)
	shoot(t, testConfig(), sector)

	lm := scene.GetLightmap(0, nil)
	assert.Positive(t, lm.At(3, 1).R)
	for u := 5; u <= 8; u++ {
		assert.Equal(t, geom.Black, lm.At(u, 1), "texel %d", u)
	}
}

func TestBackFacingLightContributesNothing(t *testing.T) {
	scene, sector, _ := newQuadScene(geom.Gray(1), 0)
	sector.AddLight(NewLight("below", mgl32.Vec3{2, 2, -5}, geom.Gray(1), AttnNone, 0))

	dl := shoot(t, testConfig(), sector)

	assert.True(t, scene.GetLightmap(0, nil).IsEmpty())
	counters := dl.Counters.Snapshot()
	assert.Zero(t, counters.Elements)
	assert.Positive(t, counters.ElementsCulled)
}

func TestUncoveredTexelsStayBlack(t *testing.T) {
	scene, sector, _ := newQuadScene(geom.Gray(1), 0)
	sector.AddLight(NewLight("top", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttnNone, 0))
	shoot(t, testConfig(), sector)

	lm := scene.GetLightmap(0, nil)
	for v := 0; v < lm.Height(); v++ {
		for u := 0; u < lm.Width(); u++ {
			inside := u >= 1 && u < 5 && v >= 1 && v < 5
			if inside {
				assert.Positive(t, lm.At(u, v).MinComponent(), "texel %d,%d", u, v)
			} else {
				assert.Equal(t, geom.Black, lm.At(u, v), "texel %d,%d", u, v)
			}
		}
	}
}

func TestOccludedLightContributesNothing(t *testing.T) {
	scene, sector, _ := newQuadScene(geom.Gray(1), 0)
	addBlocker(sector, 1)
	sector.AddLight(NewLight("top", mgl32.Vec3{2, 2, 5}, geom.Gray(1), AttnRealistic, 100))

	dl := shoot(t, testConfig(), sector)

	assert.True(t, scene.GetLightmap(0, nil).IsEmpty())
	assert.False(t, scene.GetLightmap(1, nil).IsEmpty())
	assert.Positive(t, dl.Counters.Snapshot().ElementsShadowed)
}

func makeLights() []*Light {
	clq := NewLight("clq", mgl32.Vec3{4, 0, 2}, geom.Color{R: 0.2, G: 0.4, B: 0.6}, AttnCLQ, 20)
	clq.AttenuationConsts = mgl32.Vec3{1, 0.1, 0.01}
	return []*Light{
		NewLight("a", mgl32.Vec3{1, 1, 2}, geom.Color{R: 1, G: 0.2, B: 0.1}, AttnLinear, 8),
		NewLight("b", mgl32.Vec3{3, 2, 4}, geom.Color{R: 0.3, G: 0.9, B: 0.5}, AttnInverse, 5),
		clq,
		NewLight("d", mgl32.Vec3{0, 4, 1}, geom.Gray(0.7), AttnRealistic, 2),
	}
}

func TestLightOrderDoesNotMatter(t *testing.T) {
	bake := func(order []int) *lightmap.Lightmap {
		scene, sector, _ := newQuadScene(geom.Color{R: 0.9, G: 0.6, B: 0.3}, 0)
		lights := makeLights()
		for _, i := range order {
			sector.AddLight(lights[i])
		}
		shoot(t, testConfig(), sector)
		return scene.GetLightmap(0, nil)
	}

	want := bake([]int{0, 1, 2, 3})
	for _, order := range [][]int{{3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}} {
		got := bake(order)
		for i, c := range want.Data() {
			g := got.Data()[i]
			assert.InDelta(t, c.R, g.R, 1e-4)
			assert.InDelta(t, c.G, g.G, 1e-4)
			assert.InDelta(t, c.B, g.B, 1e-4)
		}
	}
}

func TestEnergyIsNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rnd := func(lo, hi float32) float32 { return lo + rng.Float32()*(hi-lo) }

	scene, sector, _ := newQuadScene(geom.Color{R: -0.5, G: 0.5, B: 1}, 0)
	addBlocker(sector, 3)
	for i := 0; i < 30; i++ {
		l := NewLight("", mgl32.Vec3{rnd(-5, 9), rnd(-5, 9), rnd(-5, 5)},
			geom.Color{R: rnd(-1, 1), G: rnd(-1, 1), B: rnd(-1, 1)},
			AttenuationKind(rng.Intn(5)), rnd(-1, 20))
		l.AttenuationConsts = mgl32.Vec3{rnd(-1, 1), rnd(-1, 1), rnd(-1, 1)}
		l.PseudoDynamic = i%5 == 0
		sector.AddLight(l)
	}
	shoot(t, testConfig(), sector)

	maps := scene.Lightmaps()
	for _, pd := range scene.PseudoDynamicLightmaps() {
		maps = append(maps, pd.Lightmap)
	}
	require.NotEmpty(t, maps)
	for _, lm := range maps {
		for _, c := range lm.Data() {
			assert.GreaterOrEqual(t, c.MinComponent(), float32(0))
		}
	}
}

func TestPseudoDynamicLightsGetOwnLightmap(t *testing.T) {
	scene, sector, _ := newQuadScene(geom.Gray(1), 0)
	static := NewLight("static", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttnNone, 0)
	pd := NewLight("flicker", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttnNone, 0)
	pd.PseudoDynamic = true
	sector.AddLight(static)
	sector.AddLight(pd)
	shoot(t, testConfig(), sector)

	pds := scene.PseudoDynamicLightmaps()
	require.Len(t, pds, 1)
	assert.Equal(t, 0, pds[0].Page)
	assert.Same(t, pd, pds[0].Light)

	// both lights are identical, so both lightmaps are too
	static0 := scene.GetLightmap(0, static)
	assert.NotSame(t, static0, pds[0].Lightmap)
	assert.Equal(t, static0.Data(), pds[0].Lightmap.Data())
	assert.False(t, static0.IsEmpty())
}

func TestRadiosityPatchesCollectEnergy(t *testing.T) {
	_, sector, o := newQuadScene(geom.Gray(1), 2)
	sector.AddLight(NewLight("top", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttnNone, 0))

	cfg := testConfig()
	cfg.Lighter.DoRadiosity = true
	cfg.Radiosity.UPatchResolution = 2
	cfg.Radiosity.VPatchResolution = 2
	shoot(t, cfg, sector)

	lower, upper := o.Primitives[0], o.Primitives[1]
	require.Equal(t, 3, lower.UPatches())
	require.Equal(t, 3, lower.VPatches())

	assert.Positive(t, lower.Patches()[0].Energy.MinComponent())
	// the upper left triangle has no elements in the last patch column
	assert.Equal(t, geom.Black, upper.Patches()[2].Energy)
	for _, p := range append(lower.Patches(), upper.Patches()...) {
		assert.GreaterOrEqual(t, p.Energy.MinComponent(), float32(0))
	}
}

func TestPatchesUntouchedWithoutRadiosity(t *testing.T) {
	_, sector, o := newQuadScene(geom.Gray(1), 2)
	sector.AddLight(NewLight("top", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttnNone, 0))
	shoot(t, testConfig(), sector)

	for _, p := range o.Primitives[0].Patches() {
		assert.Equal(t, geom.Black, p.Energy)
	}
}

func TestDumpNormals(t *testing.T) {
	scene, sector, _ := newQuadScene(geom.Gray(1), 0)
	sector.AddLight(NewLight("below", mgl32.Vec3{2, 2, -5}, geom.Gray(1), AttnNone, 0))

	cfg := testConfig()
	cfg.Debug.DumpNormals = true
	shoot(t, cfg, sector)

	c := scene.GetLightmap(0, nil).At(2, 3)
	assert.InDelta(t, 0.5, c.R, 1e-6)
	assert.InDelta(t, 0.5, c.G, 1e-6)
	assert.InDelta(t, 1, c.B, 1e-6)
}

type recordingProgress struct {
	mu      sync.Mutex
	total   float32
	redraws int
}

func (p *recordingProgress) IncTaskProgress(amount float32) {
	p.mu.Lock()
	p.total += amount
	p.mu.Unlock()
}

func (p *recordingProgress) Redraw(RedrawFlags) {
	p.mu.Lock()
	p.redraws++
	p.mu.Unlock()
}

func TestProgressAddsUpToStep(t *testing.T) {
	_, sector, _ := newQuadScene(geom.Gray(1), 0)
	sector.AddLight(NewLight("top", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttnLinear, 10))
	sector.AddLight(NewLight("far", mgl32.Vec3{100, 100, 100}, geom.Gray(1), AttnLinear, 1))
	sector.BuildKDTree(kdtree.DefaultOptions)

	progress := &recordingProgress{}
	dl := NewDirectLighting(testConfig(), progress)
	require.NoError(t, dl.ShootDirectLighting(context.Background(), sector, 40))

	assert.InDelta(t, 40, progress.total, 1e-3)
	assert.Positive(t, progress.redraws)

	counters := dl.Counters.Snapshot()
	assert.Equal(t, int64(2), counters.Lights)
	assert.Equal(t, int64(1), counters.LightsSkipped)
	assert.Equal(t, int64(2), counters.Primitives)
}

func TestCancelledContext(t *testing.T) {
	scene, sector, _ := newQuadScene(geom.Gray(1), 0)
	sector.AddLight(NewLight("top", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttnNone, 0))
	sector.BuildKDTree(kdtree.DefaultOptions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDirectLighting(testConfig(), nil).ShootDirectLighting(ctx, sector, 100)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, scene.GetLightmap(0, nil).IsEmpty())
}

func TestUnknownAttenuationFallsBackToNone(t *testing.T) {
	scene, sector, _ := newQuadScene(geom.Gray(1), 0)
	light := NewLight("odd", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttenuationKind(42), 0)
	sector.AddLight(light)
	sector.BuildKDTree(kdtree.DefaultOptions)

	var buf bytes.Buffer
	dl := NewDirectLighting(testConfig(), nil)
	dl.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	require.NoError(t, dl.ShootDirectLighting(context.Background(), sector, 100))

	assert.Contains(t, buf.String(), "unknown attenuation")

	// cosTheta at texel (3, 3), which lies right below the light
	ec := mgl32.Vec3{2.5, 2.5, 0}
	cosTheta := 3 / light.Position.Sub(ec).Len()
	assertColorInEpsilon(t, geom.Gray(cosTheta), scene.GetLightmap(0, nil).At(3, 3), 1e-3)
}

func TestMissingKDTree(t *testing.T) {
	scene, sector, _ := newQuadScene(geom.Gray(1), 0)
	sector.AddLight(NewLight("top", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttnNone, 0))

	dl := NewDirectLighting(testConfig(), nil)
	assert.ErrorIs(t, dl.ShootDirectLighting(context.Background(), sector, 100), ErrNoTree)
	assert.ErrorIs(t, scene.Bake(context.Background(), dl), ErrNoTree)
	assert.ErrorIs(t, dl.ShootDirectLighting(context.Background(), nil, 100), ErrNoSector)
}

func TestSceneBake(t *testing.T) {
	scene, sector, _ := newQuadScene(geom.Gray(1), 0)
	sector.AddLight(NewLight("top", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttnNone, 0))
	scene.BuildKDTrees(kdtree.DefaultOptions)

	progress := &recordingProgress{}
	require.NoError(t, scene.Bake(context.Background(), NewDirectLighting(testConfig(), progress)))

	require.Len(t, scene.Lightmaps(), 1)
	assert.False(t, scene.Lightmaps()[0].IsEmpty())
	assert.InDelta(t, 100, progress.total, 1e-3)

	cfg := testConfig()
	cfg.Lighter.DoDirectLight = false
	empty, emptySector, _ := newQuadScene(geom.Gray(1), 0)
	emptySector.AddLight(NewLight("top", mgl32.Vec3{2, 2, 3}, geom.Gray(1), AttnNone, 0))
	empty.BuildKDTrees(kdtree.DefaultOptions)
	require.NoError(t, empty.Bake(context.Background(), NewDirectLighting(cfg, nil)))
	assert.Empty(t, empty.Lightmaps())
}
