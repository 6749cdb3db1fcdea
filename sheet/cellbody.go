package sheet

// escapeSign marks a leading apostrophe that forces otherwise formula-like
// text to be treated as plain text; it is stripped only when computing the
// cell's Value, never from the stored text (spec.md §3, §6).
const escapeSign = '\''

// bodyKind tags which variant a CellBody holds.
type bodyKind uint8

const (
	bodyEmpty bodyKind = iota
	bodyText
	bodyFormula
)

// CellBody is the tagged-variant replacement (per spec.md §9) for the
// original's pimpl/virtual-dispatch Empty/Text/Formula hierarchy
// (original_source/spreadsheet/cell.cpp: EmptyImpl/TextImpl/FormulaImpl).
type CellBody struct {
	kind  bodyKind
	text    string     // raw stored text; "" for Empty
	ast     FormulaAST // non-nil only when kind == bodyFormula
	forward []Position // sorted-unique referenced positions; empty unless Formula
}

// emptyBody constructs the Empty variant.
func emptyBody() CellBody {
	return CellBody{kind: bodyEmpty}
}

// textBody constructs the Text variant. s must be non-empty and must not be
// formula text ('=' followed by at least one character; a lone "=" is text);
// the caller (Cell.set) is responsible for routing those cases elsewhere.
func textBody(s string) CellBody {
	return CellBody{kind: bodyText, text: s}
}

// formulaBody parses text (including the leading '=') into the Formula
// variant. On success the body's stored text is the canonical form
// ("=" + ast.Print()), per spec.md §3/§4.5.
func formulaBody(text string) (CellBody, error) {
	expr := text[1:] // strip leading '='
	ast, err := ParseFormula(expr)
	if err != nil {
		return CellBody{}, err
	}
	refs := ast.ReferencedCells()
	return CellBody{
		kind:    bodyFormula,
		text:    "=" + ast.Print(),
		ast:     ast,
		forward: refs,
	}, nil
}

// Text returns the body's stored text: "" for Empty, the raw string for
// Text, or "=" + canonical print for Formula.
func (b CellBody) Text() string {
	return b.text
}

// IsFormula reports whether this body is the Formula variant.
func (b CellBody) IsFormula() bool {
	return b.kind == bodyFormula
}

// DirectValue computes the Value for a non-formula body. It must not be
// called on a Formula body (those require evaluation against a Sheet; see
// Cell.evaluateFormula).
func (b CellBody) DirectValue() Value {
	switch b.kind {
	case bodyEmpty:
		return TextValue("")
	case bodyText:
		if len(b.text) > 0 && b.text[0] == escapeSign {
			return TextValue(b.text[1:])
		}
		return TextValue(b.text)
	default:
		return TextValue("")
	}
}
