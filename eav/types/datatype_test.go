package types

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/eavto/ontology/vocab"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, FamilyNumeric, Classify(vocab.XSDDouble))
	assert.Equal(t, FamilyInteger, Classify(vocab.XSDUnsignedShort))
	assert.Equal(t, FamilyTemporal, Classify(vocab.XSDDate))
	assert.Equal(t, FamilyBoolean, Classify(vocab.XSDBoolean))
	assert.Equal(t, FamilyNone, Classify(vocab.XSDString))
	assert.Equal(t, FamilyNone, Classify("urn:example:custom"))
}

func TestProject(t *testing.T) {
	t.Run("decimal populates num only", func(t *testing.T) {
		p, err := Project(Typed("3.25", vocab.XSDDecimal))
		require.NoError(t, err)
		require.NotNil(t, p.Num)
		assert.Equal(t, 3.25, *p.Num)
		assert.Nil(t, p.Int)
		assert.Nil(t, p.Time)
	})

	t.Run("double accepts exponent and INF", func(t *testing.T) {
		p, err := Project(Typed("1.5e3", vocab.XSDDouble))
		require.NoError(t, err)
		assert.Equal(t, 1500.0, *p.Num)

		p, err = Project(Typed("-INF", vocab.XSDFloat))
		require.NoError(t, err)
		assert.True(t, *p.Num < 0)
	})

	t.Run("integer populates int only", func(t *testing.T) {
		p, err := Project(Typed("+42", vocab.XSDInteger))
		require.NoError(t, err)
		require.NotNil(t, p.Int)
		assert.EqualValues(t, 42, *p.Int)
		assert.Nil(t, p.Num)
	})

	t.Run("integers wider than int64 populate num", func(t *testing.T) {
		p, err := Project(Typed("18446744073709551615", vocab.XSDUnsignedLong))
		require.NoError(t, err)
		assert.Nil(t, p.Int)
		require.NotNil(t, p.Num)
		assert.Equal(t, float64(math.MaxUint64), *p.Num)

		p, err = Project(Typed("9223372036854775808", vocab.XSDUnsignedLong))
		require.NoError(t, err)
		assert.Nil(t, p.Int)
		assert.Equal(t, 9223372036854775808.0, *p.Num)

		p, err = Project(Typed("-99999999999999999999", vocab.XSDInteger))
		require.NoError(t, err)
		assert.Nil(t, p.Int)
		assert.Equal(t, -1e20, *p.Num)

		p, err = Project(Typed("9223372036854775807", vocab.XSDUnsignedLong))
		require.NoError(t, err)
		require.NotNil(t, p.Int)
		assert.EqualValues(t, int64(math.MaxInt64), *p.Int)
		assert.Nil(t, p.Num)
	})

	t.Run("temporal populates time only", func(t *testing.T) {
		p, err := Project(Typed("2024-03-01T10:00:00+02:00", vocab.XSDDateTime))
		require.NoError(t, err)
		require.NotNil(t, p.Time)
		assert.True(t, p.Time.Equal(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)))

		p, err = Project(Typed("2024-03-01", vocab.XSDDate))
		require.NoError(t, err)
		assert.Equal(t, 2024, p.Time.Year())
	})

	t.Run("strings and references populate nothing", func(t *testing.T) {
		p, err := Project(String("42"))
		require.NoError(t, err)
		assert.Equal(t, Projection{}, p)

		p, err = Project(IRI("urn:example:x"))
		require.NoError(t, err)
		assert.Equal(t, Projection{}, p)
	})

	malformed := []Object{
		Typed("abc", vocab.XSDDecimal),
		Typed("1e5", vocab.XSDDecimal),
		Typed("1.5", vocab.XSDInteger),
		Typed("300", vocab.XSDUnsignedByte),
		Typed("-1", vocab.XSDNonNegativeInteger),
		Typed("18446744073709551616", vocab.XSDUnsignedLong),
		Typed("yesterday", vocab.XSDDateTime),
		Typed("maybe", vocab.XSDBoolean),
	}
	for _, o := range malformed {
		t.Run("rejects "+o.Value+" as "+vocab.Compact(o.Datatype), func(t *testing.T) {
			_, err := Project(o)
			assert.Error(t, err)
		})
	}
}

func TestFactValidate(t *testing.T) {
	valid := NewFact("urn:example:rex", vocab.RDFType, IRI("urn:example:Dog"))
	assert.NoError(t, valid.Validate())

	blankSubject := NewFact("_:b1", vocab.RDFSLabel, String("anon"))
	assert.NoError(t, blankSubject.Validate())

	cases := map[string]Fact{
		"empty subject":     NewFact("", vocab.RDFType, IRI("urn:example:Dog")),
		"empty predicate":   NewFact("urn:example:rex", "", IRI("urn:example:Dog")),
		"blank predicate":   NewFact("urn:example:rex", "_:p", IRI("urn:example:Dog")),
		"blank tagged iri":  NewFact("urn:example:rex", vocab.RDFType, Object{Kind: KindIRI, Value: "_:x"}),
		"unknown kind":      NewFact("urn:example:rex", vocab.RDFType, Object{Kind: "number", Value: "1"}),
		"malformed literal": NewFact("urn:example:rex", "urn:example:age", Typed("old", vocab.XSDInteger)),
		"lang on string":    NewFact("urn:example:rex", vocab.RDFSLabel, Object{Kind: KindLiteral, Value: "x", Datatype: vocab.XSDString, Lang: "en"}),
		"typed reference":   NewFact("urn:example:rex", vocab.RDFType, Object{Kind: KindIRI, Value: "urn:example:Dog", Datatype: vocab.XSDString}),
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, f.Validate())
		})
	}
}

func TestObjectHelpers(t *testing.T) {
	assert.Equal(t, "_:b1", Blank("b1").Value)
	assert.Equal(t, "_:b1", Blank("_:b1").Value)
	assert.Equal(t, KindBlank, Ref("_:x").Kind)
	assert.Equal(t, KindIRI, Ref("urn:x").Kind)
	assert.True(t, IRI("urn:x").IsReference())
	assert.False(t, String("x").IsReference())

	assert.Equal(t, vocab.XSDString, Object{Kind: KindLiteral, Value: "x"}.Normalized().Datatype)
	assert.Equal(t, vocab.RDFLangString, Object{Kind: KindLiteral, Value: "x", Lang: "en"}.Normalized().Datatype)
	assert.Equal(t, "", IRI("urn:x").Normalized().Datatype)
}
