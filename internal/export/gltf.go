package export

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/kbjakex/voxels03/internal/facecodec"
	"github.com/kbjakex/voxels03/internal/vertexpull"
)

// WriteGLB writes a face sequence as a binary glTF mesh, expanding vertices
// with the same rules the vertex shader uses: four corners per face, fan
// triangulation (0,1,2)(0,2,3), debug color from position. colorTable, when
// non-nil, is a flat RGB table indexed by textureId (the material table) and
// tints the debug color the way the fragment shader does.
func WriteGLB(path, name string, words []facecodec.Word, colorTable []float32) error {
	if bad := facecodec.CheckAll(words); bad != nil {
		return fmt.Errorf("export %s: %d corrupt face words (first at %d)", name, len(bad), bad[0])
	}

	n := len(words)
	positions := make([][3]float32, 0, 4*n)
	normals := make([][3]float32, 0, 4*n)
	colors := make([][4]float32, 0, 4*n)
	indices := make([]uint32, 0, 6*n)

	for i, w := range words {
		normal := vertexpull.Normal(w)
		tex := w.TextureID()
		tint := [3]float32{1, 1, 1}
		if colorTable != nil && 3*tex+2 < len(colorTable) {
			tint = [3]float32{colorTable[3*tex], colorTable[3*tex+1], colorTable[3*tex+2]}
		}
		for corner := range vertexpull.VerticesPerFace {
			v := vertexpull.At(words, i*vertexpull.VerticesPerFace+corner)
			positions = append(positions, [3]float32{v.Position[0], v.Position[1], v.Position[2]})
			normals = append(normals, [3]float32{normal[0], normal[1], normal[2]})
			colors = append(colors, [4]float32{v.Color[0] * tint[0], v.Color[1] * tint[1], v.Color[2] * tint[2], 1})
		}
		base := uint32(4 * i)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxels03 meshtool"

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.NORMAL:   uint32(normalAccessor),
			gltf.COLOR_0:  uint32(colorAccessor),
		},
		Indices: gltf.Index(uint32(indicesAccessor)),
	}

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float32{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	doc.Materials = []*gltf.Material{{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}
	prim.Material = gltf.Index(0)

	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	return gltf.SaveBinary(doc, path)
}
