package bridge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/GriffinCanCode/AgentOS/mcpview/internal/policy"
)

// ErrNotFound is returned when a resource does not exist under the root.
var ErrNotFound = errors.New("resource not found")

// DirResolver serves ui:// URIs from a directory tree. ui://app/index.html
// maps to <root>/app/index.html.
type DirResolver struct {
	root string
}

// NewDirResolver creates a resolver rooted at dir.
func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{root: filepath.Clean(dir)}
}

// Root returns the directory being served.
func (d *DirResolver) Root() string { return d.root }

// Resolve reads the file named by uri and returns it as a Blob.
func (d *DirResolver) Resolve(_ context.Context, uri string) (any, error) {
	rel := strings.TrimPrefix(uri, policy.SchemeUI+"://")
	if u, err := url.Parse(uri); err == nil && u.Scheme == policy.SchemeUI {
		rel = u.Host + u.Path
	}
	return d.Open(rel)
}

// Open reads a slash-separated path relative to the root. Paths cannot escape
// the root, neither through ".." nor through symlinks.
func (d *DirResolver) Open(rel string) (Blob, error) {
	clean := path.Clean("/" + rel)
	full := filepath.Join(d.root, filepath.FromSlash(clean))

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Blob{}, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}
		return Blob{}, err
	}
	if info.IsDir() {
		full = filepath.Join(full, "index.html")
	}
	if err := d.contain(full); err != nil {
		return Blob{}, fmt.Errorf("%w: %s", err, clean)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Blob{}, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}
		return Blob{}, err
	}
	return Blob{Type: detectType(full, data), Data: data}, nil
}

// contain reports ErrNotFound unless full, with symlinks resolved, lies
// under the resolved root.
func (d *DirResolver) contain(full string) error {
	root, err := filepath.EvalSymlinks(d.root)
	if err != nil {
		return err
	}
	target, err := filepath.EvalSymlinks(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrNotFound
	}
	return nil
}

func detectType(name string, data []byte) string {
	if mime, ok := MimeForPath(name); ok {
		return mime
	}
	return mimetype.Detect(data).String()
}
