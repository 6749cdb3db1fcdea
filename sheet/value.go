package sheet

import "strconv"

// ErrorCategory classifies a formula evaluation failure. Unlike the
// exception kinds in errors.go, a Category is a value carried inside Value,
// never returned as a Go error.
type ErrorCategory uint8

const (
	// ErrArithmetic covers division by zero, overflow, and any evaluation
	// fault that isn't more specifically categorized.
	ErrArithmetic ErrorCategory = iota
	// ErrValue covers a referenced cell whose text can't be coerced to a
	// number.
	ErrValue
	// ErrRef covers a reference to an out-of-range position.
	ErrRef
)

// String renders the category using the exact tokens spreadsheet output
// requires.
func (c ErrorCategory) String() string {
	switch c {
	case ErrArithmetic:
		return "#ARITHM!"
	case ErrValue:
		return "#VALUE!"
	case ErrRef:
		return "#REF!"
	default:
		return "#ARITHM!"
	}
}

// valueKind tags which variant a Value currently holds.
type valueKind uint8

const (
	valueText valueKind = iota
	valueNumber
	valueError
)

// Value is the tagged result of reading a cell: a number, text, or a
// categorized formula error. The zero Value is Text(""), matching an empty
// cell.
type Value struct {
	kind     valueKind
	number   float64
	text     string
	category ErrorCategory
}

// NumberValue constructs a numeric Value.
func NumberValue(n float64) Value { return Value{kind: valueNumber, number: n} }

// TextValue constructs a text Value.
func TextValue(s string) Value { return Value{kind: valueText, text: s} }

// ErrorValue constructs an error Value of the given category.
func ErrorValue(cat ErrorCategory) Value { return Value{kind: valueError, category: cat} }

// IsNumber, IsText, and IsError report the Value's variant.
func (v Value) IsNumber() bool { return v.kind == valueNumber }
func (v Value) IsText() bool   { return v.kind == valueText }
func (v Value) IsError() bool  { return v.kind == valueError }

// Number returns the numeric payload; ok is false unless IsNumber.
func (v Value) Number() (n float64, ok bool) {
	return v.number, v.kind == valueNumber
}

// Text returns the text payload; ok is false unless IsText.
func (v Value) Text() (s string, ok bool) {
	return v.text, v.kind == valueText
}

// Category returns the error category; ok is false unless IsError.
func (v Value) Category() (cat ErrorCategory, ok bool) {
	return v.category, v.kind == valueError
}

// String formats the Value for display: numbers with default decimal
// formatting, text verbatim, and errors as one of #ARITHM!/#VALUE!/#REF!.
func (v Value) String() string {
	switch v.kind {
	case valueNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case valueText:
		return v.text
	case valueError:
		return v.category.String()
	default:
		return ""
	}
}
