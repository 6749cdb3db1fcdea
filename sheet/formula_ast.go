package sheet

import (
	"fmt"
	"math"

	"golang.org/x/exp/slices"
)

// FormulaError is the value-level evaluation fault a FormulaAST reports from
// Evaluate. It is never returned as a Go error from Sheet/Cell operations;
// it is carried inside a Value (see ErrorValue).
type FormulaError struct {
	Category ErrorCategory
}

func (e *FormulaError) Error() string {
	return e.Category.String()
}

// newArithmeticError, newValueError, and newRefError construct the three
// FormulaError categories spec'd in spec.md §4.3/§4.7.
func newArithmeticError() *FormulaError { return &FormulaError{Category: ErrArithmetic} }
func newValueError() *FormulaError      { return &FormulaError{Category: ErrValue} }
func newRefError() *FormulaError        { return &FormulaError{Category: ErrRef} }

// CellValueSource is the read-only view of a sheet a FormulaAST evaluates
// against. Sheet implements this; it is the seam that keeps the formula
// grammar decoupled from cell/sheet bookkeeping (spec.md §4.3's "external
// collaborator" contract).
type CellValueSource interface {
	// ValueAt returns the current value of the cell at pos. pos is assumed
	// valid and occupied (the Cell formula-set protocol auto-materializes
	// Empty cells for every valid reference before evaluation ever runs);
	// callers that can't guarantee this must check Position.IsValid first.
	ValueAt(pos Position) Value
}

// FormulaAST is the parsed, evaluable form of formula text — the external
// collaborator described in spec.md §4.3. ParseFormula is its sole
// construction entry point.
type FormulaAST interface {
	// Evaluate resolves every reference against src and computes the
	// formula's numeric result, or a categorized FormulaError.
	Evaluate(src CellValueSource) (float64, *FormulaError)
	// Print renders the canonical, whitespace-normalized, redundant-
	// parenthesis-free textual form (without a leading '=').
	Print() string
	// ReferencedCells returns every position the formula references,
	// sorted by Position.Less with duplicates removed.
	ReferencedCells() []Position
}

// exprNode is the sealed node hierarchy of the formula grammar. The design
// mirrors the Go standard library's ast package, same as the teacher's
// comment notes: a small closed set of node types dispatched on by a type
// switch rather than by virtual calls.
type exprNode interface {
	isExprNode()
}

type constNode struct{ value float64 }

type cellRefNode struct{ ref Position }

type unaryNode struct {
	op token
	x  exprNode
}

type binaryNode struct {
	op   token
	x, y exprNode
}

func (constNode) isExprNode()   {}
func (cellRefNode) isExprNode() {}
func (unaryNode) isExprNode()   {}
func (binaryNode) isExprNode()  {}

// formula is the concrete FormulaAST implementation.
type formula struct {
	root exprNode
}

// ParseFormula parses expr (the formula text with the leading '=' already
// stripped) into a FormulaAST. It returns ErrFormulaParse wrapped with
// detail on any syntax error.
func ParseFormula(expr string) (FormulaAST, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	root, rest, err := parseExpr(tokens)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: unexpected trailing input at %q", ErrFormulaParse, rest[0])
	}
	return &formula{root: root}, nil
}

func (f *formula) Evaluate(src CellValueSource) (float64, *FormulaError) {
	return evalNode(f.root, src)
}

func (f *formula) Print() string {
	return printNode(f.root, 0)
}

func (f *formula) ReferencedCells() []Position {
	var refs []Position
	collectRefs(f.root, &refs)
	slices.SortFunc(refs, func(a, b Position) bool { return a.Less(b) })
	return slices.Compact(refs)
}

func collectRefs(n exprNode, out *[]Position) {
	switch n := n.(type) {
	case cellRefNode:
		*out = append(*out, n.ref)
	case unaryNode:
		collectRefs(n.x, out)
	case binaryNode:
		collectRefs(n.x, out)
		collectRefs(n.y, out)
	}
}

func evalNode(n exprNode, src CellValueSource) (float64, *FormulaError) {
	switch n := n.(type) {
	case constNode:
		return n.value, nil
	case cellRefNode:
		return evalCellRef(n.ref, src)
	case unaryNode:
		x, err := evalNode(n.x, src)
		if err != nil {
			return 0, err
		}
		if n.op == tokenSub {
			return -x, nil
		}
		return 0, newArithmeticError()
	case binaryNode:
		x, err := evalNode(n.x, src)
		if err != nil {
			return 0, err
		}
		y, err := evalNode(n.y, src)
		if err != nil {
			return 0, err
		}
		return evalBinary(n.op, x, y)
	}
	return 0, newArithmeticError()
}

func evalBinary(op token, x, y float64) (float64, *FormulaError) {
	var result float64
	switch op {
	case tokenAdd:
		result = x + y
	case tokenSub:
		result = x - y
	case tokenMul:
		result = x * y
	case tokenDiv:
		if y == 0 {
			return 0, newArithmeticError()
		}
		result = x / y
	default:
		return 0, newArithmeticError()
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, newArithmeticError()
	}
	return result, nil
}

// evalCellRef resolves a single reference per spec.md §4.3: an invalid
// position is #REF!; an empty or empty-text cell coerces to 0; a non-empty
// text value that doesn't parse as a finite number is #VALUE!; an Error
// value propagates as-is.
func evalCellRef(pos Position, src CellValueSource) (float64, *FormulaError) {
	if !pos.IsValid() {
		return 0, newRefError()
	}
	val := src.ValueAt(pos)
	switch {
	case val.IsNumber():
		n, _ := val.Number()
		return n, nil
	case val.IsText():
		text, _ := val.Text()
		if text == "" {
			return 0, nil
		}
		n, ok := parseFiniteFloat(text)
		if !ok {
			return 0, newValueError()
		}
		return n, nil
	case val.IsError():
		cat, _ := val.Category()
		return 0, &FormulaError{Category: cat}
	}
	return 0, newArithmeticError()
}

func parseFiniteFloat(s string) (float64, bool) {
	n, err := parseFloatStrict(s)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
