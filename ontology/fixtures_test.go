package ontology

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/teranos/eavto/eav/storage"
	"github.com/teranos/eavto/eav/storage/testutil"
)

const ex = testutil.Ex

// animalsNT defines Animal and Mammal.
const animalsNT = `# base classes
<urn:example:Animal> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<urn:example:Animal> <http://www.w3.org/2000/01/rdf-schema#label> "Animal" .
<urn:example:Animal> <urn:eavto:core#icon> "paw" .
<urn:example:Mammal> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<urn:example:Mammal> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <urn:example:Animal> .
<urn:example:legs> <http://www.w3.org/2000/01/rdf-schema#domain> <urn:example:Animal> .
`

// dogsNT refines Mammal, so it depends on animalsNT.
const dogsNT = `<urn:example:Dog> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<urn:example:Dog> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <urn:example:Mammal> .
<urn:example:Dog> <http://www.w3.org/2000/01/rdf-schema#label> "Dog"@en .
<urn:example:rex> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <urn:example:Dog> .
<urn:example:rex> <urn:example:legs> "4"^^<http://www.w3.org/2001/XMLSchema#integer> .
`

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	return storage.NewStore(testutil.SetupTestDB(t), zaptest.NewLogger(t).Sugar())
}

func src(name, content string) Source {
	return Source{Name: name, Content: []byte(content)}
}
