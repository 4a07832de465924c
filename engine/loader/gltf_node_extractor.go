package loader

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/model"
)

// gltfNodeExtractorImpl is the implementation of the gltfNodeExtractor interface.
type gltfNodeExtractorImpl struct {
	parser gltfParser
}

// gltfNodeExtractor flattens the node hierarchy of the default scene into parent-first order.
type gltfNodeExtractor interface {
	// ExtractNodes walks the default scene (or every root node when the document has no scenes)
	// and returns its nodes with parents before children.
	//
	// Returns:
	//   - []model.Node: the flattened hierarchy
	//   - error: error if a node index is out of range or a node is reachable twice
	ExtractNodes() ([]model.Node, error)
}

var _ gltfNodeExtractor = &gltfNodeExtractorImpl{}

func newGLTFNodeExtractor(parser gltfParser) gltfNodeExtractor {
	return &gltfNodeExtractorImpl{parser: parser}
}

func (e *gltfNodeExtractorImpl) ExtractNodes() ([]model.Node, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}

	type entry struct{ node, parent int }
	visited := make([]bool, len(doc.Nodes))
	nodes := make([]model.Node, 0, len(doc.Nodes))

	queue := make([]entry, 0, len(roots))
	for _, r := range roots {
		queue = append(queue, entry{node: r, parent: -1})
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.node < 0 || cur.node >= len(doc.Nodes) {
			return nil, fmt.Errorf("node index %d out of range", cur.node)
		}
		if visited[cur.node] {
			return nil, fmt.Errorf("node %d is reachable more than once", cur.node)
		}
		visited[cur.node] = true

		src := &doc.Nodes[cur.node]
		n := model.Node{
			Name:      src.Name,
			Transform: nodeTransform(src),
			Parent:    cur.parent,
			MeshIndex: -1,
		}
		if n.Name == "" {
			n.Name = fmt.Sprintf("node_%d", cur.node)
		}
		if src.Mesh != nil {
			n.MeshIndex = *src.Mesh
		}
		self := len(nodes)
		nodes = append(nodes, n)
		for _, child := range src.Children {
			queue = append(queue, entry{node: child, parent: self})
		}
	}
	return nodes, nil
}

// sceneRoots returns the root nodes of the default scene, or every node that is nobody's child.
func sceneRoots(doc *gltfDocument) ([]int, error) {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil {
			idx = *doc.Scene
		}
		if idx < 0 || idx >= len(doc.Scenes) {
			return nil, fmt.Errorf("scene index %d out of range", idx)
		}
		return doc.Scenes[idx].Nodes, nil
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
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
	return roots, nil
}

func nodeTransform(n *gltfNode) model.Transform {
	if n.Matrix != nil {
		return decomposeMatrix(*n.Matrix)
	}
	t := model.IdentityTransform()
	if n.Translation != nil {
		t.Translation = *n.Translation
	}
	if n.Rotation != nil {
		r := *n.Rotation
		t.Rotation = common.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}.Normalize()
	}
	if n.Scale != nil {
		t.Scale = *n.Scale
	}
	return t
}

// decomposeMatrix splits a column-major affine matrix without shear into translation,
// rotation and scale. A mirrored matrix puts the reflection into the x scale.
func decomposeMatrix(m [16]float32) model.Transform {
	t := model.IdentityTransform()
	t.Translation = [3]float32{m[12], m[13], m[14]}

	sx := common.Length3([3]float32{m[0], m[1], m[2]})
	sy := common.Length3([3]float32{m[4], m[5], m[6]})
	sz := common.Length3([3]float32{m[8], m[9], m[10]})
	det := m[0]*(m[5]*m[10]-m[9]*m[6]) - m[4]*(m[1]*m[10]-m[9]*m[2]) + m[8]*(m[1]*m[6]-m[5]*m[2])
	if det < 0 {
		sx = -sx
	}
	t.Scale = [3]float32{sx, sy, sz}
	if math32.Abs(sx) < 1e-6 || sy < 1e-6 || sz < 1e-6 {
		return t
	}

	// Row-major rotation: r[row][col] = m[col*4+row] / scale[col].
	r00, r01, r02 := m[0]/sx, m[4]/sy, m[8]/sz
	r10, r11, r12 := m[1]/sx, m[5]/sy, m[9]/sz
	r20, r21, r22 := m[2]/sx, m[6]/sy, m[10]/sz

	var q common.Quat
	switch trace := r00 + r11 + r22; {
	case trace > 0:
		s := math32.Sqrt(trace+1) * 2
		q = common.Quat{X: (r21 - r12) / s, Y: (r02 - r20) / s, Z: (r10 - r01) / s, W: 0.25 * s}
	case r00 > r11 && r00 > r22:
		s := math32.Sqrt(1+r00-r11-r22) * 2
		q = common.Quat{X: 0.25 * s, Y: (r01 + r10) / s, Z: (r02 + r20) / s, W: (r21 - r12) / s}
	case r11 > r22:
		s := math32.Sqrt(1+r11-r00-r22) * 2
		q = common.Quat{X: (r01 + r10) / s, Y: 0.25 * s, Z: (r12 + r21) / s, W: (r02 - r20) / s}
	default:
		s := math32.Sqrt(1+r22-r00-r11) * 2
		q = common.Quat{X: (r02 + r20) / s, Y: (r12 + r21) / s, Z: 0.25 * s, W: (r10 - r01) / s}
	}
	t.Rotation = q.Normalize()
	return t
}
