package render

import (
	"testing"

	"github.com/taigrr/synthscene/pkg/math3d"
)

func countColor(fb *Framebuffer, c Color) int {
	n := 0
	for _, p := range fb.Pixels {
		if p == c {
			n++
		}
	}
	return n
}

func TestWireframeDrawBox(t *testing.T) {
	cam := NewCamera(80, 60)
	fb := NewFramebuffer(80, 60)
	w := NewWireframe(cam, fb)
	unit := AABBFromCenterExtents(math3d.Zero3(), math3d.One3())

	t.Run("visible", func(t *testing.T) {
		fb.Clear(ColorBlack)
		m := math3d.TRS(math3d.V3(0, 0, -10), math3d.QuatEuler(20, 30, 0), math3d.One3())
		if !w.DrawBox(m, unit, ColorForeground) {
			t.Fatal("box in front of camera was culled")
		}
		if countColor(fb, ColorForeground) == 0 {
			t.Error("no pixels drawn")
		}
	})

	t.Run("parked", func(t *testing.T) {
		fb.Clear(ColorBlack)
		m := math3d.TRS(math3d.V3(10000, 0, 0), math3d.QuatIdentity(), math3d.One3())
		if w.DrawBox(m, unit, ColorForeground) {
			t.Error("parked box should be culled")
		}
		if countColor(fb, ColorForeground) != 0 {
			t.Error("culled box drew pixels")
		}
	})
}

func TestWireframeRefresh(t *testing.T) {
	cam := NewCamera(80, 60)
	w := NewWireframe(cam, NewFramebuffer(80, 60))
	unit := AABBFromCenterExtents(math3d.Zero3(), math3d.One3())
	behind := math3d.Translate(math3d.V3(0, 0, 10))

	if w.DrawBox(behind, unit, ColorOccluder) {
		t.Fatal("box behind camera was drawn")
	}
	cam.SetRotation(0, 3.14159265, 0)
	w.Refresh()
	if !w.DrawBox(behind, unit, ColorOccluder) {
		t.Error("box should be visible after turning around")
	}
}

func TestFramebufferRectOutline(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	fb.DrawRectOutline(1, 1, 4, 3, ColorWhite)

	if got := countColor(fb, ColorWhite); got != 10 {
		t.Errorf("outline pixels = %d, want 10", got)
	}
	if fb.GetPixel(2, 2) == ColorWhite {
		t.Error("interior should stay empty")
	}
	fb.Resize(4, 4)
	if len(fb.Pixels) != 16 {
		t.Errorf("resized buffer len = %d", len(fb.Pixels))
	}
}
