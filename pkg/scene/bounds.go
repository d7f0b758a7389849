package scene

import (
	"fmt"

	"github.com/taigrr/synthscene/pkg/render"
)

// GeometryError reports a hierarchy with no renderable geometry.
type GeometryError struct {
	Object string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("scene: %q has no geometry in its hierarchy", e.Object)
}

// ComputeBounds unions the mesh bounds of n and all its descendants, each
// child carried through its local transform, and finally applies n's own
// local transform.
func ComputeBounds(n *Node) (render.AABB, error) {
	if n == nil {
		return render.AABB{}, &GeometryError{Object: "<nil>"}
	}
	b, ok := boundsUnchecked(n)
	if !ok {
		return render.AABB{}, &GeometryError{Object: n.name}
	}
	return b, nil
}

func boundsUnchecked(n *Node) (render.AABB, bool) {
	b, ok := n.Geometry()
	for _, c := range n.children {
		cb, cok := boundsUnchecked(c)
		if !cok {
			continue
		}
		if ok {
			b = b.Encapsulate(cb)
		} else {
			b, ok = cb, true
		}
	}
	if !ok {
		return render.AABB{}, false
	}
	return b.Transform(n.LocalMatrix()), true
}
