package lighter

import (
	"context"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/samuelyuan/go-lighter/config"
	"github.com/samuelyuan/go-lighter/geom"
	"github.com/samuelyuan/go-lighter/kdtree"
	"golang.org/x/sync/errgroup"
)

// DirectLighting shoots light from every light of a sector straight onto
// the elements of the primitives it reaches
type DirectLighting struct {
	Config   config.Config
	Progress Progress
	Counters *Counters
	Logger   *slog.Logger
}

func NewDirectLighting(cfg config.Config, progress Progress) *DirectLighting {
	return &DirectLighting{
		Config:   cfg,
		Progress: progress,
		Counters: &Counters{},
	}
}

func (dl *DirectLighting) logger() *slog.Logger {
	if dl.Logger != nil {
		return dl.Logger
	}
	return slog.Default()
}

func (dl *DirectLighting) progress() Progress {
	if dl.Progress != nil {
		return dl.Progress
	}
	return nopProgress{}
}

// lightJob is everything shading one light needs
type lightJob struct {
	sector   *Sector
	light    *Light
	tracer   *kdtree.Raytracer[*Primitive]
	counters *Counters

	dumpNormals bool
	doRadiosity bool
	uPatchRes   int
	vPatchRes   int
}

// ShootDirectLighting adds the direct light of all lights of sector into
// the scene's lightmaps. progressStep percent are reported in total,
// split evenly between the lights. Lights are shaded in parallel; the
// only error is cancellation of ctx.
func (dl *DirectLighting) ShootDirectLighting(ctx context.Context, sector *Sector, progressStep float32) error {
	if sector == nil {
		return ErrNoSector
	}
	if sector.KDTree == nil {
		return ErrNoTree
	}
	if len(sector.Lights) == 0 {
		dl.progress().IncTaskProgress(progressStep)
		return nil
	}

	counters := dl.Counters
	if counters == nil {
		counters = &Counters{}
	}
	tracer := kdtree.NewRaytracer(sector.KDTree)
	lightProgressStep := progressStep / float32(len(sector.Lights))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dl.Config.Threads())

	for _, light := range sector.Lights {
		if gctx.Err() != nil {
			break
		}
		job := &lightJob{
			sector:      sector,
			light:       light,
			tracer:      tracer,
			counters:    counters,
			dumpNormals: dl.Config.Debug.DumpNormals,
			doRadiosity: dl.Config.Lighter.DoRadiosity,
			uPatchRes:   dl.Config.Radiosity.UPatchResolution,
			vPatchRes:   dl.Config.Radiosity.VPatchResolution,
		}
		g.Go(func() error {
			return dl.shootLight(gctx, job, lightProgressStep)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (dl *DirectLighting) shootLight(ctx context.Context, job *lightJob, progressStep float32) error {
	light := job.light
	light.FreeEnergy = light.Color.ClampNegative().Scale(dl.Config.DirectLight.PointLightMultiplier)
	job.counters.Lights.Add(1)

	prims, ok := job.sector.KDTree.CollectPrimitives(light.BoundingBox, nil)
	if !ok {
		job.counters.LightsSkipped.Add(1)
		dl.progress().IncTaskProgress(progressStep)
		dl.progress().Redraw(DrawProgress)
		return nil
	}

	switch light.Attenuation {
	case AttnNone:
		return shadePrimitives(ctx, dl.progress(), job, NoAttenuation{}, prims, progressStep)
	case AttnLinear:
		return shadePrimitives(ctx, dl.progress(), job, NewLinearAttenuation(light), prims, progressStep)
	case AttnInverse:
		return shadePrimitives(ctx, dl.progress(), job, NewInverseAttenuation(light), prims, progressStep)
	case AttnRealistic:
		return shadePrimitives(ctx, dl.progress(), job, NewRealisticAttenuation(light), prims, progressStep)
	case AttnCLQ:
		return shadePrimitives(ctx, dl.progress(), job, NewCLQAttenuation(light), prims, progressStep)
	default:
		dl.logger().Warn("unknown attenuation, using none", "light", light.Name, "attenuation", light.Attenuation)
		return shadePrimitives(ctx, dl.progress(), job, NoAttenuation{}, prims, progressStep)
	}
}

func shadePrimitives[A Attenuation](ctx context.Context, progress Progress, job *lightJob, attn A, prims []*Primitive, progressStep float32) error {
	primProgressStep := progressStep / float32(len(prims))
	for _, prim := range prims {
		if err := ctx.Err(); err != nil {
			return err
		}
		progress.IncTaskProgress(primProgressStep)
		shadePrimitive(job, attn, prim)
		job.counters.Primitives.Add(1)
		progress.Redraw(DrawRaycore | DrawProgress)
	}
	return nil
}

// shadePrimitive lights every element of prim with the job's light
func shadePrimitive[A Attenuation](job *lightJob, attn A, prim *Primitive) {
	uForm, vForm := prim.uFormVector, prim.vFormVector
	texelArea := uForm.Cross(vForm).Len()
	if texelArea < geom.Epsilon {
		return
	}
	area2pixel := 1 / texelArea

	lm := job.sector.Scene.GetLightmap(prim.globalLightmapID, job.light)
	if lm == nil {
		return
	}

	light := job.light
	planeNormal := prim.plane.Normal
	reflectance := prim.reflectance()
	minU, maxU, minV, maxV := prim.ComputeMinMaxUVInt()

	var shaded, culled, shadowed int64
	doPatches := job.doRadiosity && len(prim.patches) > 0 && job.uPatchRes > 0 && job.vPatchRes > 0

	elementCenter := prim.minCoord.Add(uForm.Mul(0.5)).Add(vForm.Mul(0.5))
	findex := 0
	for v := minV; v <= maxV; v++ {
		ec := elementCenter
		for u := minU; u <= maxU; u, findex, ec = u+1, findex+1, ec.Add(uForm) {
			elemArea := prim.elementAreas.Area(findex)
			if elemArea <= 0 {
				continue
			}
			lmArea := elemArea * area2pixel

			jiVec := light.Position.Sub(ec)
			distSq := jiVec.LenSqr()
			jiVec = geom.Normalize(jiVec)

			if !job.dumpNormals && jiVec.Dot(planeNormal) >= 0 {
				culled++
				continue
			}

			norm := prim.ComputeNormal(ec)
			if job.dumpNormals {
				lm.Set(u, v, encodeNormal(norm))
				shaded++
				continue
			}

			cosTheta := norm.Dot(jiVec)
			if cosTheta <= 0 {
				culled++
				continue
			}

			visFact := job.tracer.Vistest5(ec, uForm, vForm, light.Position, prim)
			if visFact <= 0 {
				shadowed++
				continue
			}

			phongConst := attn.Intensity(cosTheta, distSq)
			energy := light.FreeEnergy.Scale(phongConst * visFact)
			reflected := energy.Mul(reflectance)

			lm.Add(u, v, reflected.Scale(lmArea))
			shaded++

			if doPatches {
				prim.addPatchEnergy(PatchIndex(u, v, minU, minV, job.uPatchRes, job.vPatchRes, prim.uPatches), reflected)
			}
		}
		elementCenter = elementCenter.Add(vForm)
	}

	job.counters.Elements.Add(shaded)
	job.counters.ElementsCulled.Add(culled)
	job.counters.ElementsShadowed.Add(shadowed)
}

func encodeNormal(n mgl32.Vec3) geom.Color {
	return geom.Color{R: n[0]*0.5 + 0.5, G: n[1]*0.5 + 0.5, B: n[2]*0.5 + 0.5}
}
