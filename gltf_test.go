package tetraview

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"math"
	"testing"
	"testing/fstest"

	"github.com/qmuntal/gltf"
	"github.com/solarlune/tetra3d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bufferData = []byte{1, 2, 3, 4}

const externalGLTF = `{"asset":{"version":"2.0"},"buffers":[{"byteLength":4,"uri":"model.bin"}]}`

const embeddedGLTF = `{"asset":{"version":"2.0"},"buffers":[{"byteLength":4,"uri":"data:application/octet-stream;base64,AQIDBA=="}]}`

func decodeGLTF(t *testing.T, data []byte) *gltf.Document {
	t.Helper()
	doc := new(gltf.Document)
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(data)).Decode(doc))
	return doc
}

func TestEmbedBuffersExternal(t *testing.T) {

	dir := fstest.MapFS{"model.bin": {Data: bufferData}}

	out, err := EmbedBuffers([]byte(externalGLTF), dir)
	require.NoError(t, err)

	doc := decodeGLTF(t, out)
	require.Len(t, doc.Buffers, 1)
	assert.True(t, doc.Buffers[0].IsEmbeddedResource())
	assert.Equal(t, bufferData, doc.Buffers[0].Data)

}

func TestEmbedBuffersAlreadyEmbedded(t *testing.T) {

	out, err := EmbedBuffers([]byte(embeddedGLTF), fstest.MapFS{})
	require.NoError(t, err)
	assert.Equal(t, []byte(embeddedGLTF), out)

}

func TestEmbedBuffersMissingBuffer(t *testing.T) {
	_, err := EmbedBuffers([]byte(externalGLTF), fstest.MapFS{})
	assert.Error(t, err)
}

func TestEmbedBuffersGarbage(t *testing.T) {
	_, err := EmbedBuffers([]byte("definitely not glTF"), fstest.MapFS{})
	assert.Error(t, err)
}

// triangleBin is the buffer of a single triangle: positions, normals, and UVs (96 bytes), then uint16 indices (6 bytes).
func triangleBin() []byte {
	out := &bytes.Buffer{}
	floats := []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0, // positions
		0, 0, 1, 0, 0, 1, 0, 0, 1, // normals
		0, 0, 1, 0, 0, 1, // uvs
	}
	for _, f := range floats {
		binary.Write(out, binary.LittleEndian, math.Float32bits(f))
	}
	binary.Write(out, binary.LittleEndian, []uint16{0, 1, 2})
	return out.Bytes()
}

// triangleGLTF returns a .gltf document for a scene holding one triangle mesh whose buffer is in "model.bin". If texture
// isn't empty, the triangle's material uses that image file.
func triangleGLTF(texture string) []byte {

	primitive := `{"attributes":{"POSITION":0,"NORMAL":1,"TEXCOORD_0":2},"indices":3}`
	materials := ""

	if texture != "" {
		primitive = `{"attributes":{"POSITION":0,"NORMAL":1,"TEXCOORD_0":2},"indices":3,"material":0}`
		materials = fmt.Sprintf(`,
"materials":[{"name":"Painted","pbrMetallicRoughness":{"baseColorTexture":{"index":0}}}],
"textures":[{"source":0}],
"images":[{"uri":%q}]`, texture)
	}

	return []byte(fmt.Sprintf(`{
"asset":{"version":"2.0"},
"scene":0,
"scenes":[{"name":"Scene","nodes":[0]}],
"nodes":[{"name":"Triangle","mesh":0}],
"meshes":[{"name":"Triangle","primitives":[%s]}]%s,
"buffers":[{"byteLength":102,"uri":"model.bin"}],
"bufferViews":[{"buffer":0,"byteOffset":0,"byteLength":96},{"buffer":0,"byteOffset":96,"byteLength":6}],
"accessors":[
{"bufferView":0,"byteOffset":0,"componentType":5126,"count":3,"type":"VEC3","min":[0,0,0],"max":[1,1,0]},
{"bufferView":0,"byteOffset":36,"componentType":5126,"count":3,"type":"VEC3"},
{"bufferView":0,"byteOffset":72,"componentType":5126,"count":3,"type":"VEC2"},
{"bufferView":1,"componentType":5123,"count":3,"type":"SCALAR"}
]}`, primitive, materials))

}

func checkerPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 1, color.NRGBA{0, 0, 255, 255})
	out := &bytes.Buffer{}
	require.NoError(t, png.Encode(out, img))
	return out.Bytes()
}

func TestGLTFLoaderLoad(t *testing.T) {

	doc := triangleGLTF("")
	bin := triangleBin()
	require.Len(t, bin, 102)

	loader := NewGLTFLoader(fstest.MapFS{
		"public/model.gltf": {Data: doc},
		"public/model.bin":  {Data: bin},
	})

	var reports int
	var loaded int64
	root, err := loader.Load(context.Background(), "public/model.gltf", func(l, total int64) {
		reports++
		loaded = l
	})
	require.NoError(t, err)
	require.NotNil(t, root)

	assert.Equal(t, "model.gltf", root.Name())

	children := root.Children()
	require.Len(t, children, 1)
	_, isModel := children[0].(*tetra3d.Model)
	assert.True(t, isModel, "the triangle is loaded as a Model")

	assert.Positive(t, reports)
	assert.Equal(t, int64(len(doc)+len(bin)), loaded, "the buffer counts towards progress")

}

func TestGLTFLoaderLoadsTextures(t *testing.T) {

	doc := triangleGLTF("paint.png")
	bin := triangleBin()
	texture := checkerPNG(t)

	loader := NewGLTFLoader(fstest.MapFS{
		"public/model.gltf": {Data: doc},
		"public/model.bin":  {Data: bin},
		"public/paint.png":  {Data: texture},
	})

	var loaded int64
	library, err := loader.LoadLibrary(context.Background(), "public/model.gltf", func(l, total int64) { loaded = l })
	require.NoError(t, err)

	textured := 0
	for _, mat := range library.Materials {
		if mat.Texture != nil {
			textured++
			assert.Equal(t, "paint.png", mat.TexturePath)
		}
	}
	assert.Equal(t, 1, textured)

	assert.Equal(t, int64(len(doc)+len(bin)+len(texture)), loaded, "the texture counts towards progress")

}

func TestGLTFLoaderMissingTexture(t *testing.T) {

	loader := NewGLTFLoader(fstest.MapFS{
		"public/model.gltf": {Data: triangleGLTF("paint.png")},
		"public/model.bin":  {Data: triangleBin()},
	})

	_, err := loader.Load(context.Background(), "public/model.gltf", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

}

func TestGLTFLoaderMissingFile(t *testing.T) {

	loader := NewGLTFLoader(fstest.MapFS{})

	_, err := loader.Load(context.Background(), "public/model.gltf", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

}

func TestGLTFLoaderCancelled(t *testing.T) {

	loader := NewGLTFLoader(fstest.MapFS{"model.gltf": {Data: []byte(embeddedGLTF)}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx, "model.gltf", func(loaded, total int64) {
		t.Error("no progress should be reported after cancellation")
	})
	assert.ErrorIs(t, err, context.Canceled)

}

func TestMeteredReadReportsProgress(t *testing.T) {

	data := bytes.Repeat([]byte{'x'}, 10000)

	var reports [][2]int64
	meter := &progressMeter{report: func(loaded, total int64) {
		reports = append(reports, [2]int64{loaded, total})
	}}
	fsys := &meteredFS{
		fsys:  fstest.MapFS{"public/model.gltf": {Data: data}},
		ctx:   context.Background(),
		meter: meter,
	}

	out, err := readMetered(fsys, "public/model.gltf")
	require.NoError(t, err)
	assert.Equal(t, data, out)

	require.NotEmpty(t, reports)
	assert.Equal(t, [2]int64{10000, 10000}, reports[len(reports)-1])
	for i := 1; i < len(reports); i++ {
		assert.Greater(t, reports[i][0], reports[i-1][0], "progress only goes up")
	}

}

func TestMeteredBuffersCountTowardsProgress(t *testing.T) {

	var loaded int64
	fsys := &meteredFS{
		fsys: fstest.MapFS{
			"public/model.gltf": {Data: []byte(externalGLTF)},
			"public/model.bin":  {Data: bufferData},
		},
		ctx:   context.Background(),
		meter: &progressMeter{report: func(l, total int64) { loaded = l }},
	}

	data, err := readMetered(fsys, "public/model.gltf")
	require.NoError(t, err)

	dir, err := fs.Sub(fsys, "public")
	require.NoError(t, err)

	_, err = EmbedBuffers(data, dir)
	require.NoError(t, err)

	assert.Equal(t, int64(len(externalGLTF)+len(bufferData)), loaded)

}

func BenchmarkEmbedBuffers(b *testing.B) {
	b.StopTimer()
	data := bytes.Repeat([]byte{7}, 1<<20)
	doc := []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":1048576,"uri":"model.bin"}]}`)
	dir := fstest.MapFS{"model.bin": {Data: data}}
	b.StartTimer()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		if _, err := EmbedBuffers(doc, dir); err != nil {
			b.Fatal(err)
		}
	}
}
