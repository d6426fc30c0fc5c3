package encoding

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/procurement-lens/internal/errors"
)

const artifactExt = ".json"

// ArtifactDir reads and writes JSON artifacts in one directory. Writes go
// to a temp file first and are renamed into place, so readers never see a
// partial artifact.
type ArtifactDir struct {
	root string
}

// NewArtifactDir creates the directory if it does not exist
func NewArtifactDir(root string) (*ArtifactDir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.NewConfigurationError("cannot create output directory "+root, err)
	}
	return &ArtifactDir{root: root}, nil
}

// OpenArtifactDir opens an existing directory for reading
func OpenArtifactDir(root string) (*ArtifactDir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewConfigurationError("cannot open artifact directory "+root, err)
	}
	if !info.IsDir() {
		return nil, errors.NewConfigurationError(root+" is not a directory", nil)
	}
	return &ArtifactDir{root: root}, nil
}

// Root is the directory artifacts are written to
func (d *ArtifactDir) Root() string { return d.root }

// ValidID rejects ids that would escape the directory
func ValidID(id string) bool {
	return id != "" && id != "." && id != ".." &&
		!strings.ContainsAny(id, `/\`) && !strings.ContainsRune(id, 0)
}

func (d *ArtifactDir) path(id string) string {
	return filepath.Join(d.root, id+artifactExt)
}

// Write stores v as <id>.json
func (d *ArtifactDir) Write(id string, v any) error {
	if !ValidID(id) {
		return errors.NewValidationError("invalid artifact id", map[string]string{"id": id})
	}

	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", id, err)
	}

	tmp, err := os.CreateTemp(d.root, "."+id+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		errors.SafeClose(tmp, tmpName)
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, d.path(id)); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Read returns the raw bytes of <id>.json
func (d *ArtifactDir) Read(id string) ([]byte, error) {
	if !ValidID(id) {
		return nil, errors.NewValidationError("invalid artifact id", map[string]string{"id": id})
	}
	data, err := os.ReadFile(d.path(id))
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("artifact " + id)
	}
	return data, err
}

// List returns the ids of every artifact whose id contains sep, sorted.
// An empty sep lists everything.
func (d *ArtifactDir) List(sep string) ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") || filepath.Ext(name) != artifactExt {
			continue
		}
		id := strings.TrimSuffix(name, artifactExt)
		if sep != "" && !strings.Contains(id, sep) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
