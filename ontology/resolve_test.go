package ontology

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAllT(t *testing.T, srcs ...Source) []*Parsed {
	t.Helper()
	var out []*Parsed
	for _, s := range srcs {
		p, err := Parse(context.Background(), s)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestResolveOrder_DefinerFirst(t *testing.T) {
	// "a-dogs" sorts before "b-animals" but depends on it.
	dogs := src("a-dogs.nt", dogsNT)
	animals := src("b-animals.nt", animalsNT)

	for _, input := range [][]Source{{dogs, animals}, {animals, dogs}} {
		order, warnings := ResolveOrder(parseAllT(t, input...))
		assert.Equal(t, []string{"b-animals.nt", "a-dogs.nt"}, order)
		assert.Empty(t, warnings)
	}
}

func TestResolveOrder_IndependentSourcesLexical(t *testing.T) {
	c := src("c.nt", `<urn:example:C> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .`)
	a := src("a.nt", `<urn:example:A> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .`)
	b := src("b.nt", `<urn:example:x> <urn:example:p> "unrelated" .`)

	order, warnings := ResolveOrder(parseAllT(t, c, b, a))
	assert.Equal(t, []string{"a.nt", "b.nt", "c.nt"}, order)
	assert.Empty(t, warnings)
}

func TestResolveOrder_Cycle(t *testing.T) {
	x := src("x.nt", `<urn:example:X> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <urn:example:Y> .`)
	y := src("y.nt", `<urn:example:Y> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <urn:example:X> .`)
	free := src("free.nt", `<urn:example:F> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .`)

	order, warnings := ResolveOrder(parseAllT(t, y, x, free))
	assert.Equal(t, []string{"free.nt", "x.nt", "y.nt"}, order)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarnDependencyCycle, warnings[0].Kind)
	assert.Equal(t, []string{"x.nt", "y.nt"}, warnings[0].Sources)
}

func TestResolveOrder_UnknownSuperclassIgnored(t *testing.T) {
	order, warnings := ResolveOrder(parseAllT(t, src("dogs.nt", dogsNT)))
	assert.Equal(t, []string{"dogs.nt"}, order)
	assert.Empty(t, warnings)
}
