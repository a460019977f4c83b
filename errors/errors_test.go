package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
		check    func(error) bool
	}{
		{"not found", ErrNotFound, IsNotFoundError},
		{"invalid request", ErrInvalidRequest, IsInvalidRequestError},
		{"validation", ErrValidation, IsValidationError},
		{"parse", ErrParse, IsParseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrapf(tt.sentinel, "resolve %s", "ex:rex")
			err = Wrap(err, "query service")

			assert.True(t, Is(err, tt.sentinel))
			assert.True(t, tt.check(err))
			assert.Contains(t, err.Error(), "query service: resolve ex:rex")
		})
	}
}

func TestReservedOrigin(t *testing.T) {
	err := Wrapf(ErrReservedOrigin, "retract origin %q", "core")
	assert.True(t, Is(err, ErrReservedOrigin))
	assert.False(t, IsNotFoundError(err))
	assert.False(t, IsInvalidRequestError(err))
}

type storageError struct{ table string }

func (e *storageError) Error() string { return "locked: " + e.table }

func TestAsThroughLayers(t *testing.T) {
	err := Wrap(WithDetail(&storageError{table: "facts"}, "busy for 5s"), "append batch")

	var target *storageError
	require.True(t, As(err, &target))
	assert.Equal(t, "facts", target.table)
	assert.Equal(t, []string{"busy for 5s"}, GetAllDetails(err))
}

func TestHintsSurviveWrapping(t *testing.T) {
	err := WithHintf(New("ontology directory missing"), "create %s or set ontology.dir", "ontology/")
	err = WithHint(err, "run eavto am where to see which file set it")
	err = Wrap(err, "start watcher")

	hints := GetAllHints(err)
	require.Len(t, hints, 2)
	assert.Equal(t, "create ontology/ or set ontology.dir", hints[0])
	assert.Contains(t, FlattenHints(err), "eavto am where")
}

func TestStackTrace(t *testing.T) {
	err := Newf("fact %d rejected", 3)
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
	assert.NotNil(t, GetStack(err))
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.Nil(t, WithDetail(nil, "detail"))
	assert.False(t, IsValidationError(nil))
}

func TestUnwrapAll(t *testing.T) {
	base := New("disk full")
	err := Wrap(Wrap(base, "commit"), "sync dogs.nt")
	assert.Equal(t, base.Error(), UnwrapAll(err).Error())
	assert.NotNil(t, UnwrapOnce(err))
}
func TestValidationError(t *testing.T) {
	err := Wrap(&ValidationError{Position: 3, Subject: "ex:s", Predicate: "ex:p", Reason: "not an integer"}, "append batch")

	var verr *ValidationError
	require.True(t, As(err, &verr))
	assert.Equal(t, 3, verr.Position)
	assert.Contains(t, err.Error(), "fact 3 (ex:s ex:p): not an integer")
	assert.True(t, IsValidationError(err))
	assert.False(t, IsParseError(err))
}

func TestParseError(t *testing.T) {
	err := Wrap(&ParseError{Source: "animals.nt", Line: 7, Reason: "unexpected token"}, "import")

	var perr *ParseError
	require.True(t, As(err, &perr))
	assert.Equal(t, "animals.nt", perr.Source)
	assert.Contains(t, err.Error(), "animals.nt:7: unexpected token")
	assert.True(t, IsParseError(err))

	noLine := &ParseError{Source: "empty.nt", Reason: "no statements"}
	assert.Equal(t, "empty.nt: no statements", noLine.Error())
}

func TestNotFoundHelpers(t *testing.T) {
	err := NewNotFoundError("entity %s", "ex:dog")
	assert.True(t, IsNotFoundError(err))
	assert.Contains(t, err.Error(), "entity ex:dog")
	assert.False(t, IsNotFoundError(nil))

	bad := NewInvalidRequestError("limit %d", -1)
	assert.True(t, IsInvalidRequestError(bad))
}

func TestAssertionFailure(t *testing.T) {
	err := AssertionFailedf("fact %d references missing transaction %d", 1, 99)
	assert.True(t, IsAssertionFailure(err))
}

func ExampleNew() {
	err := New("something went wrong")
	fmt.Println(err)
	// Output: something went wrong
}

func ExampleWrap() {
	baseErr := New("connection failed")
	err := Wrap(baseErr, "failed to connect to database")
	fmt.Println(err)
	// Output: failed to connect to database: connection failed
}

func ExampleWithHint() {
	err := New("timeout")
	err = WithHint(err, "try increasing the timeout value")

	hints := GetAllHints(err)
	fmt.Println(hints[0])
	// Output: try increasing the timeout value
}
