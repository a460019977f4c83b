package ontology

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/errors"
)

// ManifestName is the optional manifest file in an ontology directory.
const ManifestName = "ontology.toml"

// DefaultInclude selects the sources of a directory without a manifest.
var DefaultInclude = []string{"**/*.nt", "**/*.nq"}

// Manifest selects which files of an ontology directory are sources.
//
//	include = ["**/*.nt"]
//	exclude = ["drafts/**"]
//	origin_prefix = "file:"
type Manifest struct {
	Include      []string `toml:"include"`
	Exclude      []string `toml:"exclude"`
	OriginPrefix string   `toml:"origin_prefix"`
}

// LoadManifest reads dir/ontology.toml. A missing file yields the defaults.
func LoadManifest(dir string) (*Manifest, error) {
	m := &Manifest{}
	path := filepath.Join(dir, ManifestName)
	if _, err := toml.DecodeFile(path, m); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read manifest %s", path)
		}
	}
	if len(m.Include) == 0 {
		m.Include = DefaultInclude
	}
	for _, pattern := range append(append([]string{}, m.Include...), m.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf("manifest %s: invalid pattern %q", path, pattern)
		}
	}
	if m.OriginPrefix != "" && strings.TrimSpace(m.OriginPrefix) == eav.CoreOrigin {
		return nil, errors.Wrapf(errors.ErrReservedOrigin, "manifest %s: origin_prefix", path)
	}
	return m, nil
}

// Selects reports whether the slash-separated relative name is a source.
func (m *Manifest) Selects(name string) bool {
	if name == ManifestName {
		return false
	}
	for _, pattern := range m.Exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return false
		}
	}
	for _, pattern := range m.Include {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// OriginOf returns the origin of the named source, "" for the default.
func (m *Manifest) OriginOf(name string) string {
	if m.OriginPrefix == "" {
		return ""
	}
	return m.OriginPrefix + name
}

// LoadDir reads every source the manifest of dir selects, sorted by name.
// Names are slash-separated paths relative to dir.
func LoadDir(dir string) ([]Source, error) {
	m, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	var sources []Source
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !m.Selects(name) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read source %s", name)
		}
		info, err := d.Info()
		if err != nil {
			return errors.Wrapf(err, "stat source %s", name)
		}
		sources = append(sources, Source{
			Name:       name,
			Content:    content,
			Path:       path,
			ModifiedAt: info.ModTime(),
			Origin:     m.OriginOf(name),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load ontology directory %s", dir)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources, nil
}
