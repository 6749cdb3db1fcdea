package sheet

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Sheet is a sparse two-dimensional grid of Cells. The zero value is not
// usable; construct one with NewSheet.
type Sheet struct {
	cells map[Position]*Cell
	rows  *occupancy
	cols  *occupancy
	log   *logrus.Logger
}

// NewSheet constructs an empty Sheet. This is the trivial "construction
// wiring" spec.md §1 treats as out of scope beyond its existence.
func NewSheet(opts ...Option) *Sheet {
	s := &Sheet{
		cells: make(map[Position]*Cell),
		rows:  newOccupancy(),
		cols:  newOccupancy(),
		log:   defaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lookup returns the cell at pos, or nil if absent. It does not validate
// pos; callers that accept externally supplied positions must do so first.
func (s *Sheet) lookup(pos Position) *Cell {
	return s.cells[pos]
}

// forwardOf returns the forward references of the cell at pos, or nil if no
// cell exists there. Used by Cell.hasCycle to probe the prospective graph.
func (s *Sheet) forwardOf(pos Position) []Position {
	if cell, ok := s.cells[pos]; ok {
		return cell.body.forward
	}
	return nil
}

// ValueAt implements CellValueSource for formula evaluation: an absent cell
// reads as empty text, matching spec.md §4.3's "empty or Text("") coerces to
// 0" rule one level up.
func (s *Sheet) ValueAt(pos Position) Value {
	if cell, ok := s.cells[pos]; ok {
		return cell.Value()
	}
	return TextValue("")
}

// insert registers a newly constructed cell and bumps occupancy counts.
func (s *Sheet) insert(cell *Cell) {
	s.cells[cell.pos] = cell
	s.rows.inc(cell.pos.Row)
	s.cols.inc(cell.pos.Col)
}

// remove deletes the cell at pos (if present) and drops occupancy counts.
// It performs no dependency bookkeeping: callers must ensure no formula
// still references pos, which in practice means only the orphan-cleanup
// path in cell.go and SetCell's own creation rollback call this.
func (s *Sheet) remove(pos Position) {
	if _, ok := s.cells[pos]; !ok {
		return
	}
	delete(s.cells, pos)
	s.rows.dec(pos.Row)
	s.cols.dec(pos.Col)
}

// materializeEmpty auto-creates an Empty cell at pos, for a formula that
// references a valid but previously unoccupied position (spec.md §3's
// lifecycle rule, §4.5 step 4).
func (s *Sheet) materializeEmpty(pos Position) *Cell {
	cell := newEmptyCell(s, pos)
	s.insert(cell)
	return cell
}

// SetCell writes text to the cell at pos, creating the cell if necessary.
// Returns ErrInvalidPosition for an out-of-range pos, ErrFormulaParse if
// text is malformed formula syntax, or ErrCircularDependency if committing
// would close a cycle; in both of the latter cases the sheet is left
// exactly as it was before the call (spec.md §7 strong exception safety).
func (s *Sheet) SetCell(pos Position, text string) error {
	if !pos.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}

	cell, exists := s.cells[pos]
	if !exists {
		cell = s.materializeEmpty(pos)
		if err := cell.set(text); err != nil {
			if cell.body.kind == bodyEmpty && len(cell.reverse) == 0 {
				s.remove(pos)
			}
			return err
		}
		return nil
	}

	if cell.Text() == text {
		return nil
	}
	return cell.set(text)
}

// GetCell returns the cell at pos, or nil if the position is unoccupied.
// Returns ErrInvalidPosition for an out-of-range pos.
func (s *Sheet) GetCell(pos Position) (*Cell, error) {
	if !pos.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}
	return s.cells[pos], nil
}

// ClearCell clears the cell at pos, equivalent to SetCell(pos, ""): it
// detaches the cell's forward edges (if any) and invalidates the cache of
// every ancestor, through the cell's own clear() method. A cell left
// textually empty with no remaining reverse edges is then dropped from the
// sheet entirely. Returns ErrInvalidPosition for an out-of-range pos; a nil
// error if pos was never occupied.
func (s *Sheet) ClearCell(pos Position) error {
	if !pos.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}
	if cell, ok := s.cells[pos]; ok {
		if err := cell.clear(); err != nil {
			return err
		}
	}
	return nil
}

// PrintableSize returns the tight (rows, cols) bound containing every
// occupied cell, or (0, 0) if the sheet is empty.
func (s *Sheet) PrintableSize() Size {
	var size Size
	if maxRow, ok := s.rows.max(); ok {
		size.Rows = maxRow + 1
	}
	if maxCol, ok := s.cols.max(); ok {
		size.Cols = maxCol + 1
	}
	return size
}

// PrintValues writes every cell's computed Value, tab-separated within a
// row, one row per line, over PrintableSize's extent.
func (s *Sheet) PrintValues(w io.Writer) error {
	return s.print(w, func(c *Cell) string { return c.Value().String() })
}

// PrintTexts writes every cell's stored text, tab-separated within a row,
// one row per line, over PrintableSize's extent.
func (s *Sheet) PrintTexts(w io.Writer) error {
	return s.print(w, func(c *Cell) string { return c.Text() })
}

func (s *Sheet) print(w io.Writer, render func(*Cell) string) error {
	size := s.PrintableSize()
	for r := 0; r < size.Rows; r++ {
		for c := 0; c < size.Cols; c++ {
			if c > 0 {
				if _, err := io.WriteString(w, "\t"); err != nil {
					return err
				}
			}
			if cell, ok := s.cells[Position{Row: r, Col: c}]; ok {
				if _, err := io.WriteString(w, render(cell)); err != nil {
					return err
				}
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
