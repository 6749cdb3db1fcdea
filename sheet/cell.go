package sheet

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Cell is a single spreadsheet cell: its body (empty/text/formula), a
// memoized value, and the position-keyed forward/reverse adjacency used for
// dependency tracking. Adjacency lives on the Cell rather than centralized
// on Sheet (see SPEC_FULL.md §3); sheet is a back-reference used only for
// lookups during evaluation, cycle detection, and cascading invalidation —
// Sheet owns Cells, never the reverse.
type Cell struct {
	sheet *Sheet
	pos   Position
	body  CellBody
	cache *Value

	// reverse holds positions of cells whose *current* formula body
	// references this cell (spec.md §3 invariant (2)).
	reverse map[Position]struct{}
}

// newEmptyCell constructs a freshly materialized Empty cell at pos, owned
// by sheet. It does not register the cell in sheet's bookkeeping; callers
// (Sheet.insert) do that.
func newEmptyCell(sheet *Sheet, pos Position) *Cell {
	return &Cell{
		sheet:   sheet,
		pos:     pos,
		body:    emptyBody(),
		reverse: make(map[Position]struct{}),
	}
}

// Value returns the cell's current value, using the cache when valid and
// otherwise computing (and, for formulas, memoizing) it. Non-formula values
// are cheap enough that spec.md §4.4 doesn't require caching them beyond
// the body itself.
func (c *Cell) Value() Value {
	if c.cache != nil {
		return *c.cache
	}
	if !c.body.IsFormula() {
		return c.body.DirectValue()
	}
	v := c.evaluateFormula()
	c.cache = &v
	return v
}

// Text returns the cell's stored text: "" for Empty, the raw string for
// Text (escape sign retained), or "=" + canonical print for Formula.
func (c *Cell) Text() string {
	return c.body.Text()
}

// ReferencedCells returns the cell's current forward references: a sorted,
// duplicate-free, read-only snapshot.
func (c *Cell) ReferencedCells() []Position {
	return slices.Clone(c.body.forward)
}

// evaluateFormula implements spec.md §4.7: an invalid reference short-
// circuits to Error(Ref) before the AST is even asked to evaluate; anything
// else is delegated to the AST against the owning sheet.
func (c *Cell) evaluateFormula() Value {
	for _, ref := range c.body.forward {
		if !ref.IsValid() {
			return ErrorValue(ErrRef)
		}
	}
	n, ferr := c.body.ast.Evaluate(c.sheet)
	if ferr != nil {
		return ErrorValue(ferr.Category)
	}
	return NumberValue(n)
}

// set implements the Cell.set(text) operation of spec.md §4.4: Empty, Text,
// or Formula depending on text's shape, with strong exception safety on the
// formula path (spec.md §4.5).
func (c *Cell) set(text string) error {
	switch {
	case text == "":
		return c.becomeNonFormula(emptyBody())
	case len(text) > 1 && text[0] == '=':
		return c.setFormula(text)
	default:
		return c.becomeNonFormula(textBody(text))
	}
}

// clear is equivalent to set(""), per spec.md §9's resolution of the two
// diverging behaviors in the original source.
func (c *Cell) clear() error {
	return c.set("")
}

// becomeNonFormula installs a non-formula body (Empty or Text), detaching
// any forward edges the previous formula body held, invalidating the cache
// transitively, and dropping c itself from the sheet if it ends up
// textually empty with no cell depending on it. It never fails.
func (c *Cell) becomeNonFormula(newBody CellBody) error {
	old := c.body
	if old.IsFormula() {
		c.detachForward(old.forward)
	}
	c.body = newBody
	c.invalidateCache()
	c.cleanupIfOrphaned()
	return nil
}

// detachForward removes self from the reverse set of every position in
// refs, deleting any cell that becomes empty-with-no-reverse as a result
// (spec.md §4.4/§4.5, "universal post-condition of any edge removal").
func (c *Cell) detachForward(refs []Position) {
	for _, p := range refs {
		target := c.sheet.lookup(p)
		if target == nil {
			continue
		}
		delete(target.reverse, c.pos)
		target.cleanupIfOrphaned()
	}
}

// cleanupIfOrphaned deletes c from its sheet if it is textually empty and no
// other cell depends on it (original_source/spreadsheet/cell.cpp
// EraseRefToThisCellFromChildCell).
func (c *Cell) cleanupIfOrphaned() {
	if c.body.kind == bodyEmpty && len(c.reverse) == 0 {
		c.sheet.remove(c.pos)
		c.sheet.log.WithField("position", c.pos.String()).
			Debug("removed empty cell with no dependents")
	}
}

// setFormula implements the formula-set protocol of spec.md §4.5 in full:
// parse, materialize missing references, tentatively install, cycle-check,
// then commit or roll back.
func (c *Cell) setFormula(text string) error {
	oldBody := c.body

	newBody, err := formulaBody(text)
	if err != nil {
		return err // nothing mutated yet; trivially rolled back
	}

	var materialized []Position
	for _, p := range newBody.forward {
		if p.IsValid() && c.sheet.lookup(p) == nil {
			c.sheet.materializeEmpty(p)
			materialized = append(materialized, p)
		}
	}

	c.body = newBody // tentative install

	if c.hasCycle() {
		c.body = oldBody
		c.rollbackMaterialized(materialized)
		c.sheet.log.WithField("position", c.pos.String()).
			WithField("formula", newBody.text).
			Debug("rejected formula: would close a dependency cycle")
		return fmt.Errorf("%w: %s references a cell that transitively depends on it", ErrCircularDependency, c.pos)
	}

	c.commitForwardDiff(oldBody.forward, newBody.forward)
	c.invalidateCache()
	return nil
}

// rollbackMaterialized removes auto-created Empty cells that ended up with
// no reverse edges after a rejected formula-set attempt.
func (c *Cell) rollbackMaterialized(materialized []Position) {
	for _, p := range materialized {
		if cell := c.sheet.lookup(p); cell != nil {
			cell.cleanupIfOrphaned()
		}
	}
}

// commitForwardDiff updates reverse edges on referenced cells for the
// transition from oldForward to newForward (spec.md §4.5 step 7).
func (c *Cell) commitForwardDiff(oldForward, newForward []Position) {
	oldSet := positionSet(oldForward)
	newSet := positionSet(newForward)

	for p := range newSet {
		if oldSet[p] {
			continue
		}
		if target := c.sheet.lookup(p); target != nil {
			target.reverse[c.pos] = struct{}{}
		}
	}
	for p := range oldSet {
		if newSet[p] {
			continue
		}
		if target := c.sheet.lookup(p); target != nil {
			delete(target.reverse, c.pos)
			target.cleanupIfOrphaned()
		}
	}
}

func positionSet(positions []Position) map[Position]bool {
	set := make(map[Position]bool, len(positions))
	for _, p := range positions {
		set[p] = true
	}
	return set
}

// hasCycle runs a two-color DFS over the prospective forward graph: the
// cell being reconfigured uses its tentatively-installed new forward set,
// every other cell uses its existing forward set (spec.md §4.8). Invalid
// and missing referenced positions are skipped — they can't participate in
// a cycle.
func (c *Cell) hasCycle() bool {
	visiting := make(map[Position]struct{})
	visited := make(map[Position]struct{})

	var visit func(p Position) bool
	visit = func(p Position) bool {
		if _, done := visited[p]; done {
			return false
		}
		if _, onStack := visiting[p]; onStack {
			return true
		}
		visiting[p] = struct{}{}
		for _, ref := range c.sheet.forwardOf(p) {
			if !ref.IsValid() {
				continue
			}
			if visit(ref) {
				return true
			}
		}
		delete(visiting, p)
		visited[p] = struct{}{}
		return false
	}
	return visit(c.pos)
}

// invalidateCache clears this cell's cache and transitively every ancestor
// reachable via reverse edges (spec.md §4.6), with a visited set so a
// reverse-edge inconsistency from an earlier aborted write can't loop
// forever (spec.md §9's explicit deviation from the bug-compatible
// original).
func (c *Cell) invalidateCache() {
	visited := map[Position]struct{}{c.pos: {}}
	c.cache = nil
	walked := c.propagateInvalidation(visited)
	if walked > 0 {
		c.sheet.log.WithField("position", c.pos.String()).
			WithField("ancestors_invalidated", walked).
			Debug("invalidated cache")
	}
}

// propagateInvalidation walks c's reverse edges. A cell whose cache was
// already nil needs no further traversal: every non-root cell visited here
// is necessarily a formula cell (only formula bodies populate forward
// edges, which is what puts a cell in another's reverse set), so its
// ancestors were already invalidated the last time its own cache went nil.
func (c *Cell) propagateInvalidation(visited map[Position]struct{}) int {
	count := 0
	for _, p := range maps.Keys(c.reverse) {
		if _, seen := visited[p]; seen {
			continue
		}
		visited[p] = struct{}{}
		next := c.sheet.lookup(p)
		if next == nil {
			continue
		}
		count++
		hadCache := next.cache != nil
		next.cache = nil
		if hadCache {
			count += next.propagateInvalidation(visited)
		}
	}
	return count
}
