package demo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/collide2d/components"
	"github.com/pthm-cable/collide2d/geom"
	"github.com/pthm-cable/collide2d/rigidbody"
	"github.com/pthm-cable/collide2d/scene"
	"github.com/pthm-cable/collide2d/telemetry"
)

var (
	groundTint = components.Tint{R: 110, G: 110, B: 120, A: 255}
	sensorTint = components.Tint{R: 230, G: 200, B: 60, A: 255}
)

// spawnArena creates the floor, two walls and a sensor strip above the floor.
func (d *Demo) spawnArena() error {
	dc := d.cfg.Demo
	wallX := dc.FloorWidth/2 + dc.FloorHeight/2

	statics := []scene.Spawn{
		{
			Shape:    geom.NewRectangle(dc.FloorWidth+2*dc.FloorHeight, dc.FloorHeight),
			Position: r2.Vec{Y: -dc.FloorHeight / 2},
			Layer:    LayerGround,
		},
		{
			Shape:    geom.NewRectangle(dc.FloorHeight, dc.WallHeight),
			Position: r2.Vec{X: -wallX, Y: dc.WallHeight / 2},
			Layer:    LayerGround,
		},
		{
			Shape:    geom.NewRectangle(dc.FloorHeight, dc.WallHeight),
			Position: r2.Vec{X: wallX, Y: dc.WallHeight / 2},
			Layer:    LayerGround,
		},
	}
	for i := range statics {
		statics[i].Kind = rigidbody.Static
		statics[i].Tint = groundTint
		if _, err := d.scene.Spawn(statics[i]); err != nil {
			return fmt.Errorf("spawning arena: %w", err)
		}
	}

	_, err := d.scene.Spawn(scene.Spawn{
		Shape:    geom.NewRectangle(dc.FloorWidth/4, dc.MaxSize*2),
		Position: r2.Vec{Y: dc.MaxSize},
		Layer:    LayerSensor,
		Kind:     rigidbody.Kinematic,
		Sensor:   true,
		Tint:     sensorTint,
	})
	if err != nil {
		return fmt.Errorf("spawning sensor: %w", err)
	}
	return nil
}

// SpawnBodies drops n random bodies from the spawn height.
func (d *Demo) SpawnBodies(n int) error {
	for range n {
		if _, err := d.scene.Spawn(d.randomBody()); err != nil {
			return err
		}
	}
	return nil
}

func (d *Demo) randomBody() scene.Spawn {
	dc := d.cfg.Demo
	size := dc.MinSize + d.rng.Float64()*(dc.MaxSize-dc.MinSize)
	spread := dc.FloorWidth/2 - dc.MaxSize
	sp := scene.Spawn{
		Position: r2.Vec{
			X: (d.rng.Float64()*2 - 1) * spread,
			Y: dc.SpawnHeight * (0.5 + 0.5*d.rng.Float64()),
		},
		Layer:    LayerBody,
		Kind:     rigidbody.Dynamic,
		Velocity: r2.Vec{X: (d.rng.Float64()*2 - 1) * 40},
		Tint:     randomTint(d.rng.Float64()),
	}
	if d.rng.Float64() < dc.CircleRatio {
		sp.Shape = geom.NewCircle(size / 2)
	} else {
		sp.Shape = geom.NewRectangle(size, size*(0.5+d.rng.Float64()))
		sp.Rotation = d.rng.Float64() * math.Pi / 4
	}
	return sp
}

// randomTint maps h in [0,1) to a saturated hue.
func randomTint(h float64) components.Tint {
	c := func(offset float64) uint8 {
		v := math.Abs(math.Mod(h*6+offset, 6)-3) - 1
		return uint8(80 + 175*math.Max(0, math.Min(1, v)))
	}
	return components.Tint{R: c(0), G: c(4), B: c(2), A: 255}
}

// restore replaces the scene with a snapshot. Bodies get fresh tints.
func (d *Demo) restore(path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	phys := d.scene.Physics()
	m, err := phys.Restore(snap)
	if err != nil {
		return fmt.Errorf("restoring %s: %w", path, err)
	}
	if d.seed == 0 {
		d.seed = snap.Seed
	}
	for i, id := range m.Bodies {
		b := phys.Body(id)
		tint := randomTint(float64(i) / float64(len(m.Bodies)))
		if b.Kind == rigidbody.Static {
			tint = groundTint
		}
		if _, err := d.scene.Adopt(b, tint); err != nil {
			return fmt.Errorf("restoring %s: %w", path, err)
		}
	}
	return nil
}
