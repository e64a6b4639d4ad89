package arena

import (
	"math"

	"github.com/ByteArena/box2d"
	"github.com/samuelfneumann/gonav/observation"
	"github.com/samuelfneumann/gonav/utils/floatutils"
)

// beamAngle returns the angle of beam i relative to the robot heading.
// Beam 0 points straight ahead and beams sweep counter-clockwise.
func (w *World) beamAngle(i int) float64 {
	return 2 * math.Pi * float64(i) / float64(w.config.Beams)
}

// scan casts one ray per laser beam from the robot's centre and
// returns the range to the nearest hit, or the maximum range if the
// beam hits nothing
func (w *World) scan(pose observation.Pose) []float64 {
	origin := box2d.MakeB2Vec2(pose.X, pose.Y)
	ranges := make([]float64, w.config.Beams)

	for i := range ranges {
		angle := pose.Theta + w.beamAngle(i)
		end := box2d.MakeB2Vec2(
			pose.X+w.config.MaxRange*math.Cos(angle),
			pose.Y+w.config.MaxRange*math.Sin(angle),
		)

		nearest := 1.0
		w.world.RayCast(func(fixture *box2d.B2Fixture, _, _ box2d.B2Vec2,
			fraction float64) float64 {
			// Ignore the robot's own body
			if fixture.GetBody() == w.robot {
				return -1
			}
			nearest = math.Min(nearest, fraction)
			return fraction
		}, origin, end)

		ranges[i] = floatutils.Clip(nearest*w.config.MaxRange, 0,
			w.config.MaxRange)
	}

	return ranges
}
