package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// mapSource is a trivial CellValueSource backed by a map, for exercising
// FormulaAST.Evaluate without a full Sheet.
type mapSource map[Position]Value

func (m mapSource) ValueAt(pos Position) Value {
	if v, ok := m[pos]; ok {
		return v
	}
	return TextValue("")
}

func TestParseFormula_Print(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"basic addition", "1+1", "1+1"},
		{"whitespace normalized", "  12 + 14", "12+14"},
		{"cell ref", "A1*13", "A1*13"},
		{"precedence mul before add", "A1*B2+C3*D4", "A1*B2+C3*D4"},
		{"unary minus folds into constant", "-123", "-123"},
		{"multiply two negatives", "-123*-456", "-123*-456"},
		{"subtract from a negative", "-123-456", "-123-456"},
		{"division chain", "A1/B2/C3/D4", "A1/B2/C3/D4"},
		{"parens needed on right subtraction", "1-(2-3)", "1-(2-3)"},
		{"parens dropped when associative", "(1-2)-3", "1-2-3"},
		{"parens needed for mul over add", "(1+2)*3", "(1+2)*3"},
		{"parens not needed for add over mul", "1+2*3", "1+2*3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, err := ParseFormula(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ast.Print())
		})
	}
}

func TestParseFormula_Errors(t *testing.T) {
	tests := []string{
		"A1*",
		"1+",
		"(1+2",
		"1+2)",
		"@",
		"",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseFormula(input)
			assert.ErrorIs(t, err, ErrFormulaParse)
		})
	}
}

func TestFormula_ReferencedCells(t *testing.T) {
	ast, err := ParseFormula("A1+A1+B2*A1")
	assert.NoError(t, err)
	assert.Equal(t, []Position{
		{Row: 0, Col: 0}, // A1
		{Row: 1, Col: 1}, // B2
	}, ast.ReferencedCells())
}

func TestFormula_Evaluate(t *testing.T) {
	a1 := Position{Row: 0, Col: 0}
	a2 := Position{Row: 1, Col: 0}

	tests := []struct {
		name      string
		input     string
		src       mapSource
		want      float64
		wantErr   bool
		wantErrAs ErrorCategory
	}{
		{"pure arithmetic", "1+2*3", nil, 7, false, 0},
		{"numeric cell", "A1+1", mapSource{a1: NumberValue(41)}, 42, false, 0},
		{"missing cell coerces to zero", "A1+1", mapSource{}, 1, false, 0},
		{"empty text coerces to zero", "A1+1", mapSource{a1: TextValue("")}, 1, false, 0},
		{"numeric text coerces", "A1+1", mapSource{a1: TextValue("41")}, 42, false, 0},
		{"non numeric text is value error", "A1+1", mapSource{a1: TextValue("hi")}, 0, true, ErrValue},
		{"division by zero is arithmetic error", "1/A1", mapSource{a1: NumberValue(0)}, 0, true, ErrArithmetic},
		{"propagates referenced error", "A1+1", mapSource{a1: ErrorValue(ErrRef)}, 0, true, ErrRef},
		{"unoccupied reference coerces to zero", "A2", mapSource{}, 0, false, 0},
		{"two references summed", "A1+A2", mapSource{a1: NumberValue(3), a2: NumberValue(4)}, 7, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, err := ParseFormula(tt.input)
			assert.NoError(t, err)
			got, ferr := ast.Evaluate(tt.src)
			if tt.wantErr {
				assert.NotNil(t, ferr)
				assert.Equal(t, tt.wantErrAs, ferr.Category)
				return
			}
			assert.Nil(t, ferr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens, err := tokenize("A1 + 12*(B2-3)")
	assert.NoError(t, err)
	assert.Equal(t, []token{"A1", tokenAdd, "12", tokenMul, tokenLPar, "B2", tokenSub, "3", tokenRPar}, tokens)
}

func TestTokenize_RejectsUnknownCharacter(t *testing.T) {
	_, err := tokenize("A1 & B2")
	assert.ErrorIs(t, err, ErrFormulaParse)
}
