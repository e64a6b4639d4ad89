package arena

import (
	"math"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	env "github.com/samuelfneumann/gonav/environment"
)

// PixelsPerMetre is the scale at which the arena is rendered
const PixelsPerMetre float64 = 60.0

// Render draws the current state of the arena and saves it as a PNG
// image at path. Laser hits are drawn in red, the global plan in grey,
// and the current navigation target, if any, in orange.
func (w *World) Render(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.hasReset {
		return errors.New("render: world has not been reset")
	}

	width := int(math.Ceil(w.config.Width * PixelsPerMetre))
	height := int(math.Ceil(w.config.Height * PixelsPerMetre))
	dc := gg.NewContext(width, height)

	// Flip the y-axis so that the world frame points up
	px := func(x float64) float64 { return x * PixelsPerMetre }
	py := func(y float64) float64 { return float64(height) - y*PixelsPerMetre }

	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Walls
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.SetLineWidth(4)
	dc.DrawRectangle(0, 0, float64(width), float64(height))
	dc.Stroke()

	// Global plan
	dc.SetRGB(0.75, 0.75, 0.75)
	dc.SetLineWidth(2)
	for i := 1; i < len(w.plan); i++ {
		dc.DrawLine(px(w.plan[i-1].X), py(w.plan[i-1].Y), px(w.plan[i].X),
			py(w.plan[i].Y))
	}
	dc.Stroke()

	// Obstacles
	dc.SetRGB(0.35, 0.35, 0.4)
	for _, o := range w.scenario.Obstacles {
		dc.DrawCircle(px(o.Center.X), py(o.Center.Y), o.Radius*PixelsPerMetre)
		dc.Fill()
	}

	// Goal
	dc.SetRGB(0.1, 0.7, 0.2)
	dc.DrawCircle(px(w.scenario.Goal.X), py(w.scenario.Goal.Y), 8)
	dc.Fill()

	pose := w.pose()

	// Laser hits
	dc.SetRGB(0.9, 0.1, 0.1)
	for i, r := range w.scan(pose) {
		if r >= w.config.MaxRange {
			continue
		}
		angle := pose.Theta + w.beamAngle(i)
		dc.DrawCircle(px(pose.X+r*math.Cos(angle)),
			py(pose.Y+r*math.Sin(angle)), 1.5)
		dc.Fill()
	}

	// Navigation target
	if w.command.Kind == env.Goal {
		dc.SetRGB(1, 0.55, 0)
		dc.DrawCircle(px(w.command.Target.X), py(w.command.Target.Y), 5)
		dc.Fill()
	}

	// Robot and heading
	radius := w.config.RobotRadius
	dc.SetRGB(0.1, 0.3, 0.9)
	dc.DrawCircle(px(pose.X), py(pose.Y), radius*PixelsPerMetre)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(2)
	dc.DrawLine(px(pose.X), py(pose.Y),
		px(pose.X+radius*math.Cos(pose.Theta)),
		py(pose.Y+radius*math.Sin(pose.Theta)))
	dc.Stroke()

	if err := dc.SavePNG(path); err != nil {
		return errors.Wrapf(err, "render: could not save %v", path)
	}
	return nil
}
