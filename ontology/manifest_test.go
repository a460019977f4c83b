package ontology

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/eavto/errors"
	itesting "github.com/teranos/eavto/internal/testing"
)

func names(sources []Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.Name
	}
	return out
}

func TestLoadDir_DefaultsWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	itesting.WriteTree(t, dir, map[string]string{
		"dogs.nt":         dogsNT,
		"base/animals.nt": animalsNT,
		"notes.txt":       "not a source",
		".hidden/x.nt":    animalsNT,
	})

	sources, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"base/animals.nt", "dogs.nt"}, names(sources))

	assert.Equal(t, []byte(animalsNT), sources[0].Content)
	assert.False(t, sources[0].ModifiedAt.IsZero())
	assert.Equal(t, filepath.Join(dir, "base", "animals.nt"), sources[0].Path)
	assert.Empty(t, sources[0].Origin)
}

func TestLoadDir_ManifestSelection(t *testing.T) {
	dir := t.TempDir()
	itesting.WriteFile(t, dir, ManifestName, `
include = ["**/*.nt", "extra/*.ttl"]
exclude = ["drafts/**"]
origin_prefix = "onto:"
`)
	itesting.WriteFile(t, dir, "animals.nt", animalsNT)
	itesting.WriteFile(t, dir, "drafts/wip.nt", dogsNT)
	itesting.WriteFile(t, dir, "extra/more.ttl", dogsNT)

	sources, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"animals.nt", "extra/more.ttl"}, names(sources))
	assert.Equal(t, "onto:animals.nt", sources[0].Origin)
	assert.Equal(t, "onto:animals.nt", OriginFor(sources[0]))
}

func TestLoadManifest_Invalid(t *testing.T) {
	dir := t.TempDir()
	itesting.WriteFile(t, dir, ManifestName, `include = [`)
	_, err := LoadManifest(dir)
	assert.Error(t, err)

	itesting.WriteFile(t, dir, ManifestName, `include = ["[unclosed"]`)
	_, err = LoadManifest(dir)
	assert.Error(t, err)

	itesting.WriteFile(t, dir, ManifestName, `origin_prefix = "core"`)
	_, err = LoadManifest(dir)
	assert.ErrorIs(t, err, errors.ErrReservedOrigin)
}

func TestManifest_Selects(t *testing.T) {
	m := &Manifest{Include: DefaultInclude, Exclude: []string{"**/*.draft.nt"}}
	assert.True(t, m.Selects("a.nt"))
	assert.True(t, m.Selects("deep/nested/b.nq"))
	assert.False(t, m.Selects("c.draft.nt"))
	assert.False(t, m.Selects(ManifestName))
	assert.False(t, m.Selects("readme.md"))
}
