package tetraview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sync"

	_ "image/jpeg"
	_ "image/png"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/qmuntal/gltf"
	"github.com/solarlune/tetra3d"
)

// ErrNoScene is returned when a glTF file loads but contains no scene to display.
var ErrNoScene = errors.New("glTF file has no scenes")

// glbMagic is the first four bytes of a binary glTF (.glb) file.
var glbMagic = []byte("glTF")

// GLTFLoader is an AssetLoader for .gltf and .glb files. Files are read through FS, counting bytes as they go for progress
// reporting. Buffers the file refers to by relative path are read through FS and embedded into the data handed to
// Tetra3D, and external texture images are read through FS once Tetra3D has parsed the materials, so both count towards
// progress as well.
type GLTFLoader struct {
	FS      fs.FS
	Options *tetra3d.GLTFLoadOptions // Passed to tetra3d.LoadGLTFData; nil uses Tetra3D's defaults.
}

// NewGLTFLoader creates a new GLTFLoader reading from fsys.
func NewGLTFLoader(fsys fs.FS) *GLTFLoader {
	return &GLTFLoader{FS: fsys}
}

// Load loads the glTF file at name (a slash-separated path within FS) and returns the root node of its exported scene
// (or its first scene, if the exporter didn't mark one).
func (gl *GLTFLoader) Load(ctx context.Context, name string, progress func(loaded, total int64)) (tetra3d.INode, error) {

	library, err := gl.LoadLibrary(ctx, name, progress)
	if err != nil {
		return nil, err
	}

	scene := library.ExportedScene
	if scene == nil {
		if len(library.Scenes) == 0 {
			return nil, fmt.Errorf("%s: %w", name, ErrNoScene)
		}
		scene = library.Scenes[0]
	}

	root := scene.Root
	root.SetName(path.Base(name))

	return root, nil

}

// LoadLibrary loads the glTF file at name into a tetra3d.Library.
func (gl *GLTFLoader) LoadLibrary(ctx context.Context, name string, progress func(loaded, total int64)) (*tetra3d.Library, error) {

	meter := &progressMeter{report: progress}
	fsys := &meteredFS{fsys: gl.FS, ctx: ctx, meter: meter}

	data, err := readMetered(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	dir, err := fs.Sub(fsys, path.Dir(name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	data, err = EmbedBuffers(data, dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	library, err := tetra3d.LoadGLTFData(bytes.NewReader(data), gl.Options)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}

	if err := loadTextures(library, dir); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return library, nil

}

// loadTextures reads the images that the library's materials refer to by path, relative to dir; Tetra3D only records
// the path of external images when loading from bytes. Materials sharing an image share the texture.
func loadTextures(library *tetra3d.Library, dir fs.FS) error {

	textures := map[string]*ebiten.Image{}

	for _, mat := range library.Materials {

		if mat.Texture != nil || mat.TexturePath == "" {
			continue
		}

		texture, ok := textures[mat.TexturePath]
		if !ok {
			img, _, err := ebitenutil.NewImageFromFileSystem(dir, path.Clean(mat.TexturePath))
			if err != nil {
				return fmt.Errorf("texture %s: %w", mat.TexturePath, err)
			}
			texture = img
			textures[mat.TexturePath] = texture
		}

		mat.Texture = texture

	}

	return nil

}

// EmbedBuffers decodes glTF data (either .gltf JSON or .glb), reading any externally referenced buffers from dir, and
// returns the document re-encoded with those buffers embedded as data URIs. If there were no external buffers, data is
// returned as-is.
func EmbedBuffers(data []byte, dir fs.FS) ([]byte, error) {

	doc := new(gltf.Document)

	if err := gltf.NewDecoderFS(bytes.NewReader(data), dir).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding glTF: %w", err)
	}

	external := false

	for _, buffer := range doc.Buffers {
		if buffer.URI == "" || buffer.IsEmbeddedResource() {
			continue
		}
		buffer.EmbeddedResource()
		external = true
	}

	if !external {
		return data, nil
	}

	out := bytes.Buffer{}
	enc := gltf.NewEncoder(&out)
	// A .glb's binary chunk has no URI, so it has to go back into a .glb.
	enc.AsBinary = bytes.HasPrefix(data, glbMagic)

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("re-encoding glTF: %w", err)
	}

	return out.Bytes(), nil

}

func readMetered(fsys *meteredFS, name string) ([]byte, error) {

	file, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil {
		fsys.meter.setTotal(info.Size())
	}

	return io.ReadAll(file)

}

// progressMeter counts the bytes read across every file opened through a meteredFS. The total only ever covers the
// file being loaded, not the buffers it refers to, so loaded can end up greater than total.
type progressMeter struct {
	mu     sync.Mutex
	loaded int64
	total  int64
	report func(loaded, total int64)
}

func (pm *progressMeter) setTotal(total int64) {
	pm.mu.Lock()
	pm.total = total
	pm.mu.Unlock()
}

func (pm *progressMeter) add(n int) {
	if n <= 0 {
		return
	}
	pm.mu.Lock()
	pm.loaded += int64(n)
	loaded, total := pm.loaded, pm.total
	pm.mu.Unlock()
	if pm.report != nil {
		pm.report(loaded, total)
	}
}

// meteredFS wraps an fs.FS so that reads from files it opens are counted by a progressMeter and stop once ctx is done.
type meteredFS struct {
	fsys  fs.FS
	ctx   context.Context
	meter *progressMeter
}

func (mfs *meteredFS) Open(name string) (fs.File, error) {
	if err := mfs.ctx.Err(); err != nil {
		return nil, err
	}
	file, err := mfs.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	return &meteredFile{File: file, fsys: mfs}, nil
}

type meteredFile struct {
	fs.File
	fsys *meteredFS
}

func (mf *meteredFile) Read(p []byte) (int, error) {
	if err := mf.fsys.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := mf.File.Read(p)
	mf.fsys.meter.add(n)
	return n, err
}
