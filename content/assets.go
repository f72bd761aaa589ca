package content

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	_ "golang.org/x/image/webp"
)

// FSAssets resolves thumbnail references to image files in a content root.
type FSAssets struct {
	fsys fs.FS
}

// NewFSAssets returns a resolver over fsys.
func NewFSAssets(fsys fs.FS) *FSAssets {
	return &FSAssets{fsys: fsys}
}

// ResolveImage resolves ref relative to the directory of the record at from.
// A leading "/" makes ref relative to the content root. The file must exist
// and carry a decodable image header.
func (a *FSAssets) ResolveImage(from, ref string) (Image, error) {
	p, err := assetPath(from, ref)
	if err != nil {
		return Image{}, err
	}
	f, err := a.fsys.Open(p)
	if err != nil {
		return Image{}, fmt.Errorf("image %q not found", ref)
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.IsDir() {
		return Image{}, fmt.Errorf("image %q is a directory", ref)
	}
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Image{}, fmt.Errorf("image %q: %v", ref, err)
	}
	return Image{
		Src:    ref,
		Path:   p,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func assetPath(from, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "://") {
		return "", fmt.Errorf("image %q must be a local file", ref)
	}
	var p string
	if strings.HasPrefix(ref, "/") {
		p = path.Clean(strings.TrimPrefix(ref, "/"))
	} else {
		p = path.Join(path.Dir(from), ref)
	}
	if !fs.ValidPath(p) || p == "." {
		return "", fmt.Errorf("image %q points outside the content root", ref)
	}
	return p, nil
}
