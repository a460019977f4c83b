package types

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/ontology/vocab"
)

// Family groups datatypes by the typed projection they populate.
type Family int

const (
	FamilyNone     Family = iota // strings, language strings, unknown datatypes
	FamilyNumeric                // decimal, double, float → Num
	FamilyInteger                // integer and its derived types → Int
	FamilyTemporal               // dateTime, dateTimeStamp, date → Time
	FamilyBoolean                // validated, no projection
)

func (f Family) String() string {
	switch f {
	case FamilyNumeric:
		return "numeric"
	case FamilyInteger:
		return "integer"
	case FamilyTemporal:
		return "temporal"
	case FamilyBoolean:
		return "boolean"
	}
	return "none"
}

var families = map[string]Family{
	vocab.XSDDecimal: FamilyNumeric,
	vocab.XSDDouble:  FamilyNumeric,
	vocab.XSDFloat:   FamilyNumeric,

	vocab.XSDInteger:            FamilyInteger,
	vocab.XSDInt:                FamilyInteger,
	vocab.XSDLong:               FamilyInteger,
	vocab.XSDShort:              FamilyInteger,
	vocab.XSDByte:               FamilyInteger,
	vocab.XSDNonNegativeInteger: FamilyInteger,
	vocab.XSDPositiveInteger:    FamilyInteger,
	vocab.XSDNonPositiveInteger: FamilyInteger,
	vocab.XSDNegativeInteger:    FamilyInteger,
	vocab.XSDUnsignedLong:       FamilyInteger,
	vocab.XSDUnsignedInt:        FamilyInteger,
	vocab.XSDUnsignedShort:      FamilyInteger,
	vocab.XSDUnsignedByte:       FamilyInteger,

	vocab.XSDDateTime:      FamilyTemporal,
	vocab.XSDDateTimeStamp: FamilyTemporal,
	vocab.XSDDate:          FamilyTemporal,

	vocab.XSDBoolean: FamilyBoolean,
}

// Classify returns the projection family of a datatype IRI.
func Classify(datatype string) Family {
	return families[datatype]
}

// integer bounds for the derived xsd types
var integerBounds = map[string][2]*big.Int{
	vocab.XSDLong:               {big.NewInt(math.MinInt64), big.NewInt(math.MaxInt64)},
	vocab.XSDInt:                {big.NewInt(math.MinInt32), big.NewInt(math.MaxInt32)},
	vocab.XSDShort:              {big.NewInt(math.MinInt16), big.NewInt(math.MaxInt16)},
	vocab.XSDByte:               {big.NewInt(math.MinInt8), big.NewInt(math.MaxInt8)},
	vocab.XSDNonNegativeInteger: {big.NewInt(0), nil},
	vocab.XSDPositiveInteger:    {big.NewInt(1), nil},
	vocab.XSDNonPositiveInteger: {nil, big.NewInt(0)},
	vocab.XSDNegativeInteger:    {nil, big.NewInt(-1)},
	vocab.XSDUnsignedLong:       {big.NewInt(0), new(big.Int).SetUint64(math.MaxUint64)},
	vocab.XSDUnsignedInt:        {big.NewInt(0), big.NewInt(math.MaxUint32)},
	vocab.XSDUnsignedShort:      {big.NewInt(0), big.NewInt(math.MaxUint16)},
	vocab.XSDUnsignedByte:       {big.NewInt(0), big.NewInt(math.MaxUint8)},
}

var (
	decimalLexical = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
	doubleLexical  = regexp.MustCompile(`^([+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?|[+-]?INF|NaN)$`)
	integerLexical = regexp.MustCompile(`^[+-]?\d+$`)
)

var temporalLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02Z07:00",
	"2006-01-02",
}

// Projection holds the typed column values of one literal.
type Projection struct {
	Num  *float64
	Int  *int64
	Time *time.Time
}

// Project validates a literal against its datatype and computes its typed
// projection. References and non-projected families return an empty
// projection. The error message is the rejection reason.
func Project(o Object) (Projection, error) {
	if o.Kind != KindLiteral {
		return Projection{}, nil
	}
	lexical := strings.TrimSpace(o.Value)

	switch Classify(o.Datatype) {
	case FamilyNumeric:
		if o.Datatype == vocab.XSDDecimal {
			if !decimalLexical.MatchString(lexical) {
				return Projection{}, errors.Newf("%q is not a valid %s", o.Value, vocab.Compact(o.Datatype))
			}
		} else if !doubleLexical.MatchString(lexical) {
			return Projection{}, errors.Newf("%q is not a valid %s", o.Value, vocab.Compact(o.Datatype))
		}
		v, err := parseDouble(lexical)
		if err != nil {
			return Projection{}, errors.Wrapf(err, "%q is not a valid %s", o.Value, vocab.Compact(o.Datatype))
		}
		if math.IsNaN(v) {
			// NaN has no order; SQLite stores it as NULL
			return Projection{}, nil
		}
		return Projection{Num: &v}, nil

	case FamilyInteger:
		if !integerLexical.MatchString(lexical) {
			return Projection{}, errors.Newf("%q is not a valid %s", o.Value, vocab.Compact(o.Datatype))
		}
		n, ok := new(big.Int).SetString(strings.TrimPrefix(lexical, "+"), 10)
		if !ok {
			return Projection{}, errors.Newf("%q is not a valid %s", o.Value, vocab.Compact(o.Datatype))
		}
		if b, bounded := integerBounds[o.Datatype]; bounded {
			if (b[0] != nil && n.Cmp(b[0]) < 0) || (b[1] != nil && n.Cmp(b[1]) > 0) {
				return Projection{}, errors.Newf("%s out of range for %s", o.Value, vocab.Compact(o.Datatype))
			}
		}
		if !n.IsInt64() {
			// valid but wider than int64: order it by its float approximation
			f, _ := new(big.Float).SetInt(n).Float64()
			return Projection{Num: &f}, nil
		}
		v := n.Int64()
		return Projection{Int: &v}, nil

	case FamilyTemporal:
		t, err := ParseTemporal(lexical)
		if err != nil {
			return Projection{}, errors.Newf("%q is not a valid %s", o.Value, vocab.Compact(o.Datatype))
		}
		return Projection{Time: &t}, nil

	case FamilyBoolean:
		switch lexical {
		case "true", "false", "1", "0":
			return Projection{}, nil
		}
		return Projection{}, errors.Newf("%q is not a valid xsd:boolean", o.Value)
	}
	return Projection{}, nil
}

func parseDouble(lexical string) (float64, error) {
	switch lexical {
	case "INF", "+INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(lexical, 64)
}

// ParseTemporal parses xsd:dateTime and xsd:date lexical forms.
// Values without a timezone are taken as UTC.
func ParseTemporal(lexical string) (time.Time, error) {
	var lastErr error
	for _, layout := range temporalLayouts {
		t, err := time.Parse(layout, lexical)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Validate checks the structural rules of a fact before it is appended.
// The returned error's message is the rejection reason.
func (f Fact) Validate() error {
	if strings.TrimSpace(f.Subject) == "" {
		return errors.New("empty subject")
	}
	if strings.ContainsAny(f.Subject, " \t\r\n") {
		return errors.Newf("subject %q contains whitespace", f.Subject)
	}
	if strings.TrimSpace(f.Predicate) == "" {
		return errors.New("empty predicate")
	}
	if IsBlank(f.Predicate) {
		return errors.Newf("predicate %q must be an IRI, not a blank identifier", f.Predicate)
	}
	if strings.ContainsAny(f.Predicate, " \t\r\n") {
		return errors.Newf("predicate %q contains whitespace", f.Predicate)
	}

	switch f.Object.Kind {
	case KindIRI:
		if f.Object.Value == "" {
			return errors.New("empty object reference")
		}
		if IsBlank(f.Object.Value) {
			return errors.Newf("object %q is a blank identifier but tagged iri", f.Object.Value)
		}
	case KindBlank:
		if !IsBlank(f.Object.Value) || len(f.Object.Value) == len(BlankPrefix) {
			return errors.Newf("object %q is not a blank identifier", f.Object.Value)
		}
	case KindLiteral:
		if f.Object.Lang != "" && f.Object.Datatype != vocab.RDFLangString {
			return errors.Newf("language tag on non-langString datatype %s", vocab.Compact(f.Object.Datatype))
		}
		if _, err := Project(f.Object); err != nil {
			return err
		}
	default:
		return errors.Newf("unknown object kind %q", f.Object.Kind)
	}
	if f.Object.IsReference() && (f.Object.Datatype != "" || f.Object.Lang != "") {
		return errors.New("reference objects carry no datatype or language")
	}
	return nil
}
