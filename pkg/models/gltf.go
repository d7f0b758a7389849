package models

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/synthscene/pkg/math3d"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/scene"
)

// GLTFLoader loads GLTF/GLB files into scene prefabs.
type GLTFLoader struct {
	// UseAccessorBounds trusts POSITION accessor min/max when present
	// instead of reading vertex data.
	UseAccessorBounds bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{UseAccessorBounds: true}
}

// LoadPrefab loads a binary or JSON glTF file as a prefab named after the
// file.
func LoadPrefab(path string) (*scene.Prefab, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns its default scene as a prefab.
func (l *GLTFLoader) Load(path string) (*scene.Prefab, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	meshes := make([]*render.AABB, len(doc.Meshes))
	for i, m := range doc.Meshes {
		b, ok, err := l.meshBounds(doc, m)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
		if ok {
			meshes[i] = &b
		}
	}

	root := scene.NewNode(name)
	for _, idx := range rootNodes(doc) {
		child, err := buildNode(doc, idx, meshes, 0)
		if err != nil {
			return nil, err
		}
		root.AddChild(child)
	}
	return &scene.Prefab{Name: name, Root: root}, nil
}

// rootNodes returns the top-level nodes of the default scene, falling back
// to the first scene, then to every parentless node.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// maxDepth bounds node recursion so a cyclic document cannot loop forever.
const maxDepth = 64

func buildNode(doc *gltf.Document, idx int, meshes []*render.AABB, depth int) (*scene.Node, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("node hierarchy deeper than %d", maxDepth)
	}

	src := doc.Nodes[idx]
	n := scene.NewNode(src.Name)
	t, r, s := nodeTRS(src)
	n.SetLocalPosition(t)
	n.SetLocalRotation(r)
	n.SetLocalScale(s)

	if src.Mesh != nil && *src.Mesh < len(meshes) && meshes[*src.Mesh] != nil {
		n.SetGeometry(*meshes[*src.Mesh])
	}

	for _, c := range src.Children {
		child, err := buildNode(doc, c, meshes, depth+1)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

// nodeTRS returns the node's local transform. A non-identity matrix wins
// over the separate TRS properties; zeroed rotation and scale are treated
// as unset.
func nodeTRS(n *gltf.Node) (math3d.Vec3, math3d.Quat, math3d.Vec3) {
	var m math3d.Mat4
	copy(m[:], n.Matrix[:])
	if m != math3d.Identity() && m != (math3d.Mat4{}) {
		return decompose(m)
	}

	t := math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2])
	r := math3d.Quat{X: n.Rotation[0], Y: n.Rotation[1], Z: n.Rotation[2], W: n.Rotation[3]}.Normalize()
	s := math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2])
	if s == math3d.Zero3() {
		s = math3d.One3()
	}
	return t, r, s
}

func decompose(m math3d.Mat4) (math3d.Vec3, math3d.Quat, math3d.Vec3) {
	t := m.Translation()
	s := math3d.V3(
		math3d.V3(m[0], m[1], m[2]).Len(),
		math3d.V3(m[4], m[5], m[6]).Len(),
		math3d.V3(m[8], m[9], m[10]).Len(),
	)
	if m.Determinant() < 0 {
		s.X = -s.X
	}

	rot := math3d.Identity()
	for col, l := range []float64{s.X, s.Y, s.Z} {
		if l == 0 {
			continue
		}
		for row := range 3 {
			rot[row+col*4] = m[row+col*4] / l
		}
	}
	return t, math3d.QuatFromMat4(rot), s
}

// meshBounds unions the POSITION bounds of every primitive of m.
func (l *GLTFLoader) meshBounds(doc *gltf.Document, m *gltf.Mesh) (render.AABB, bool, error) {
	mesh := NewMesh(m.Name)
	var out render.AABB
	found := false

	for _, prim := range m.Primitives {
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		if posIdx < 0 || posIdx >= len(doc.Accessors) {
			return render.AABB{}, false, fmt.Errorf("position accessor %d out of range", posIdx)
		}
		accessor := doc.Accessors[posIdx]

		var b render.AABB
		if l.UseAccessorBounds && len(accessor.Min) == 3 && len(accessor.Max) == 3 {
			b = render.NewAABB(
				math3d.V3(accessor.Min[0], accessor.Min[1], accessor.Min[2]),
				math3d.V3(accessor.Max[0], accessor.Max[1], accessor.Max[2]),
			)
		} else {
			positions, err := readVec3Accessor(doc, accessor)
			if err != nil {
				return render.AABB{}, false, fmt.Errorf("read positions: %w", err)
			}
			mesh.Positions = positions
			var ok bool
			if b, ok = mesh.Bounds(); !ok {
				continue
			}
		}

		if found {
			out = out.Encapsulate(b)
		} else {
			out, found = b, true
		}
	}
	return out, found, nil
}

// readVec3Accessor reads float VEC3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessor *gltf.Accessor) ([]math3d.Vec3, error) {
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = 12 // 3 floats * 4 bytes
	}
	count := accessor.Count
	if count > 0 && start+(count-1)*stride+12 > len(buffer.Data) {
		return nil, fmt.Errorf("accessor reads past end of buffer")
	}

	result := make([]math3d.Vec3, count)
	for i := range count {
		offset := start + i*stride
		result[i] = math3d.V3(
			readFloat32(buffer.Data[offset:]),
			readFloat32(buffer.Data[offset+4:]),
			readFloat32(buffer.Data[offset+8:]),
		)
	}
	return result, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

var prefabExts = []string{".glb", ".gltf"}

// LoadDir loads every .glb and .gltf file in dir, sorted by file name.
func LoadDir(dir string) ([]*scene.Prefab, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read prefab dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && slices.Contains(prefabExts, strings.ToLower(filepath.Ext(e.Name()))) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	loader := NewGLTFLoader()
	prefabs := make([]*scene.Prefab, 0, len(names))
	for _, name := range names {
		p, err := loader.Load(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		prefabs = append(prefabs, p)
	}
	return prefabs, nil
}
