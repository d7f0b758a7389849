package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/synthscene/pkg/compose"
	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
)

const (
	previewFPS    = 30
	orbitTorque   = 3.0
	defaultRadius = 16.0
	minRadius     = 4.0
	maxRadius     = 40.0
	maxOrbitPitch = math.Pi/2 - 0.05
)

// OrbitAxis tracks position and velocity for one orbit angle with spring decay.
type OrbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewOrbitAxis creates an axis whose velocity is critically damped toward 0.
func NewOrbitAxis(fps int) OrbitAxis {
	return OrbitAxis{velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *OrbitAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Orbit is the inspection camera's pitch and yaw around the capture scene.
type Orbit struct {
	Pitch, Yaw OrbitAxis
	Radius     float64
	fps        int
}

func NewOrbit(fps int) *Orbit {
	return &Orbit{Pitch: NewOrbitAxis(fps), Yaw: NewOrbitAxis(fps), Radius: defaultRadius, fps: fps}
}

func (o *Orbit) Update() {
	o.Pitch.Update()
	o.Yaw.Update()
	o.Pitch.Position = math.Max(-maxOrbitPitch, math.Min(maxOrbitPitch, o.Pitch.Position))
}

func (o *Orbit) ApplyImpulse(pitch, yaw float64) {
	o.Pitch.Velocity += pitch
	o.Yaw.Velocity += yaw
}

func (o *Orbit) Reset() {
	o.Pitch = NewOrbitAxis(o.fps)
	o.Yaw = NewOrbitAxis(o.fps)
	o.Radius = defaultRadius
}

// Eye returns the orbit position around target. Zero angles sit behind the
// capture camera looking down -Z.
func (o *Orbit) Eye(target math3d.Vec3) math3d.Vec3 {
	cp := math.Cos(o.Pitch.Position)
	return target.Add(math3d.V3(
		math.Sin(o.Yaw.Position)*cp,
		math.Sin(o.Pitch.Position),
		math.Cos(o.Yaw.Position)*cp,
	).Scale(o.Radius))
}

func hudLines(composer *compose.Composer, res *compose.FrameResult, stats render.CullingStats) (top, bottom string) {
	top = fmt.Sprintf(" frame %d  curriculum %v ", composer.Frame(), composer.State())
	if res != nil {
		s := res.Summary()
		top = fmt.Sprintf(" frame %d  scale %.2f  fg %d  distractors %d  occluders %d  background %d/%d  light %s ",
			res.Frame, res.ScaleFactor, s.Foreground, s.Distractors, s.Occluders, s.Background, s.BackgroundExpected, res.Light.Hex)
		if stats.Tested > 0 {
			top += fmt.Sprintf(" drawn %d/%d ", stats.Drawn, stats.Tested)
		}
	}
	bottom = " Space next frame  WASD/arrows orbit  +/- zoom  X wireframe  R reset  ? HUD  Esc quit "
	if composer.Done() {
		bottom = " finished  WASD/arrows orbit  +/- zoom  X wireframe  R reset  ? HUD  Esc quit "
	}
	return top, bottom
}

func drawHUD(height int, top, bottom string) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}
	fmt.Print(moveTo(1, 1) + clearLine + bgBlack + bold + fgWhite + top + reset)
	fmt.Print(moveTo(height, 1) + clearLine + bgBlack + fgCyan + bottom + reset)
}

func runPreview(ctx context.Context, composer *compose.Composer, capture *render.Camera) error {
	view, err := newSceneView(capture, composer.Statics())
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fb := render.NewFramebuffer(width, height*2)
	eye := render.NewCamera(fb.Width, fb.Height)
	eye.SetClipPlanes(0.1, 200)
	wf := render.NewWireframe(eye, fb)
	rast := render.NewRasterizer(eye, fb)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	orbit := NewOrbit(previewFPS)
	showHUD := true
	mode := modeSolid
	stepRequests := make(chan struct{}, 1)
	resized := make(chan [2]int, 1)

	inputTorque := struct{ pitch, yaw float64 }{}
	zoom := make(chan float64, 8)

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case resized <- [2]int{ev.Width, ev.Height}:
				default:
				}
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					cancel()
					return
				case ev.MatchString("space"):
					select {
					case stepRequests <- struct{}{}:
					default:
					}
				case ev.MatchString("w", "up"):
					inputTorque.pitch = orbitTorque
				case ev.MatchString("s", "down"):
					inputTorque.pitch = -orbitTorque
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -orbitTorque
				case ev.MatchString("d", "right"):
					inputTorque.yaw = orbitTorque
				case ev.MatchString("+", "="):
					zoom <- -1
				case ev.MatchString("-", "_"):
					zoom <- 1
				case ev.MatchString("r"):
					zoom <- 0
				case ev.MatchString("x"):
					if mode == modeSolid {
						mode = modeWireframe
					} else {
						mode = modeSolid
					}
				case ev.MatchString("?", "shift+/"):
					showHUD = !showHUD
				}
			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w", "up", "s", "down"):
					inputTorque.pitch = 0
				case ev.MatchString("a", "left", "d", "right"):
					inputTorque.yaw = 0
				}
			}
		}
	}()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	var last *compose.FrameResult
	targetDuration := time.Second / previewFPS
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case size := <-resized:
			width, height = size[0], size[1]
			term.Erase()
			term.Resize(width, height)
			fb.Resize(width, height*2)
			eye.SetResolution(fb.Width, fb.Height)
			rast.Resize()
		case dz := <-zoom:
			if dz == 0 {
				orbit.Reset()
			} else {
				orbit.Radius = math.Max(minRadius, math.Min(maxRadius, orbit.Radius+dz))
			}
		case <-stepRequests:
			if !composer.Done() {
				res, err := composer.Step(ctx)
				if err != nil {
					return err
				}
				last = &res
			}
		default:
		}

		now := time.Now()
		dt := math.Min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		orbit.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt)
		inputTorque.pitch *= 0.9
		inputTorque.yaw *= 0.9
		orbit.Update()

		target := view.target()
		eye.SetPosition(orbit.Eye(target))
		eye.LookAt(target)
		wf.Refresh()
		rast.Refresh()

		fb.Clear(render.ColorSky)
		rast.ClearDepth()
		view.Draw(wf, rast, mode, last)
		fb.Draw(term, uv.Rect(0, 0, width, height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}
		if showHUD {
			top, bottom := hudLines(composer, last, rast.Stats)
			drawHUD(height, top, bottom)
		}

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}
