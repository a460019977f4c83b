package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/eavto/am"
	"github.com/teranos/eavto/eav/types"
	itesting "github.com/teranos/eavto/internal/testing"
	"github.com/teranos/eavto/ontology/vocab"
)

func TestFormatObject(t *testing.T) {
	assert.Equal(t, "urn:example:rex", formatObject(types.IRI("urn:example:rex")))
	assert.Equal(t, "_:a.nt.b1", formatObject(types.Blank("a.nt.b1")))
	assert.Equal(t, `"Rex"`, formatObject(types.String("Rex")))
	assert.Equal(t, `"Hund"@de`, formatObject(types.LangString("Hund", "de")))
	assert.Equal(t, `"4"^^`+vocab.XSDInteger, formatObject(types.Typed("4", vocab.XSDInteger)))
}

func TestLoadSources_Files(t *testing.T) {
	dir := t.TempDir()
	a := itesting.WriteFile(t, dir, "a.nt", "# a\n")
	b := itesting.WriteFile(t, dir, "sub/b.nt", "# b\n")

	sources, err := loadSources([]string{a, b})
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "a.nt", sources[0].Name)
	assert.Equal(t, "b.nt", sources[1].Name)
	assert.False(t, sources[0].ModifiedAt.IsZero())

	_, err = loadSources([]string{filepath.Join(dir, "missing.nt")})
	assert.Error(t, err)
}

func TestLoadSources_Directory(t *testing.T) {
	dir := t.TempDir()
	itesting.WriteTree(t, dir, map[string]string{
		"sub/b.nt":  "# b\n",
		"notes.txt": "skip",
	})

	sources, err := loadSources([]string{dir})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "sub/b.nt", sources[0].Name)
}

func TestQueryConfig(t *testing.T) {
	cfg := am.Defaults()
	qc := queryConfig(cfg)
	assert.Equal(t, 20, qc.SearchLimit)
	assert.Nil(t, qc.BacklinkExclude, "empty list keeps the presentational defaults")

	cfg.Query.BacklinkExclude = []string{"urn:example:owns"}
	assert.Equal(t, []string{"urn:example:owns"}, queryConfig(cfg).BacklinkExclude)
}
