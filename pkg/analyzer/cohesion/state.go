package cohesion

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// UnitKind distinguishes the two analysis granularities.
type UnitKind string

const (
	// UnitFunction analyzes control-structure bodies within one function.
	UnitFunction UnitKind = "function"
	// UnitClass analyzes method bodies within one class.
	UnitClass UnitKind = "class"
)

// Block is one cohesion sample inside a unit. For function units it is the
// body of a control structure; for class units it is a method body.
type Block struct {
	// Label is the method name for class blocks, empty for control blocks.
	Label     string
	Type      string
	StartLine int
	EndLine   int

	reads   *roaring.Bitmap
	writes  *roaring.Bitmap
	members *roaring.Bitmap

	ctor bool
}

func newBlock(label, blockType string, startLine, endLine int) *Block {
	return &Block{
		Label:     label,
		Type:      blockType,
		StartLine: startLine,
		EndLine:   endLine,
		reads:     roaring.New(),
		writes:    roaring.New(),
		members:   roaring.New(),
	}
}

// signal returns the identifier set compared between blocks: reads and
// writes for function units, accessed members for class units.
func (b *Block) signal(kind UnitKind) *roaring.Bitmap {
	if kind == UnitClass {
		return b.members
	}
	return roaring.Or(b.reads, b.writes)
}

func (b *Block) used(kind UnitKind) bool {
	if kind == UnitClass {
		return !b.members.IsEmpty()
	}
	return !b.reads.IsEmpty() || !b.writes.IsEmpty()
}

// Unit is one function or class gathered during traversal.
type Unit struct {
	Kind      UnitKind
	Name      string
	StartLine int
	EndLine   int
	Blocks    []*Block

	declared *roaring.Bitmap
}

// Span returns the unit length in lines, inclusive.
func (u *Unit) Span() int {
	return u.EndLine - u.StartLine + 1
}

// unitFrame pairs an in-progress unit with its accumulator stack. Function
// frames carry a sentinel bottom accumulator so identifier events between
// blocks have somewhere to land; it is never emitted as a block.
type unitFrame struct {
	unit *Unit
	accs []*Block
}

func (f *unitFrame) top() *Block {
	if len(f.accs) == 0 {
		return nil
	}
	return f.accs[len(f.accs)-1]
}

// TraversalState tracks nested units and blocks while an AST is walked.
// Event methods on a state with no matching open unit are no-ops, so
// callers never have to guard against malformed nesting.
type TraversalState struct {
	names  *interner
	frames []*unitFrame
}

// NewTraversalState creates an empty state with a fresh identifier interner.
func NewTraversalState() *TraversalState {
	return &TraversalState{names: newInterner()}
}

// EnterUnit opens a function or class unit at the given line span.
func (s *TraversalState) EnterUnit(kind UnitKind, name string, startLine, endLine int) {
	f := &unitFrame{
		unit: &Unit{
			Kind:      kind,
			Name:      name,
			StartLine: startLine,
			EndLine:   endLine,
			declared:  roaring.New(),
		},
	}
	if kind == UnitFunction {
		f.accs = append(f.accs, newBlock("", "", startLine, endLine))
	}
	s.frames = append(s.frames, f)
}

// ExitUnit closes the innermost unit and returns it, or nil when no unit
// is open.
func (s *TraversalState) ExitUnit() *Unit {
	if len(s.frames) == 0 {
		return nil
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f.unit
}

// EnterBlock opens a control-structure block in the innermost function
// unit. Ignored when no function unit is open.
func (s *TraversalState) EnterBlock(blockType string, startLine, endLine int) {
	f := s.innermost(UnitFunction)
	if f == nil {
		return
	}
	f.accs = append(f.accs, newBlock("", blockType, startLine, endLine))
}

// ExitBlock closes the innermost control block. Blocks that touched no
// identifiers are discarded rather than recorded.
func (s *TraversalState) ExitBlock() {
	f := s.innermost(UnitFunction)
	if f == nil || len(f.accs) <= 1 {
		return
	}
	b := f.top()
	f.accs = f.accs[:len(f.accs)-1]
	if b.used(UnitFunction) {
		f.unit.Blocks = append(f.unit.Blocks, b)
	}
}

// EnterMethod opens a method block in the innermost class unit. Ignored
// when no class unit is open.
func (s *TraversalState) EnterMethod(name string, ctor bool, startLine, endLine int) {
	c := s.innermost(UnitClass)
	if c == nil {
		return
	}
	b := newBlock(name, "method", startLine, endLine)
	b.ctor = ctor
	c.accs = append(c.accs, b)
}

// ExitMethod closes the innermost method block. Constructors and methods
// that touched no members are discarded.
func (s *TraversalState) ExitMethod() {
	c := s.innermost(UnitClass)
	if c == nil || len(c.accs) == 0 {
		return
	}
	b := c.top()
	c.accs = c.accs[:len(c.accs)-1]
	if !b.ctor && b.used(UnitClass) {
		c.unit.Blocks = append(c.unit.Blocks, b)
	}
}

// RecordRead attributes a variable read to the innermost function unit's
// current block.
func (s *TraversalState) RecordRead(name string) {
	f := s.innermost(UnitFunction)
	if f == nil {
		return
	}
	f.top().reads.Add(s.names.id(name))
}

// RecordWrite attributes a variable write to the innermost function unit's
// current block. Writes landing in the sentinel accumulator are unit-scope
// declarations.
func (s *TraversalState) RecordWrite(name string) {
	f := s.innermost(UnitFunction)
	if f == nil {
		return
	}
	id := s.names.id(name)
	f.top().writes.Add(id)
	if len(f.accs) == 1 {
		f.unit.declared.Add(id)
	}
}

// RecordMember attributes a receiver-qualified member access to the
// innermost class unit's current method block.
func (s *TraversalState) RecordMember(name string) {
	c := s.innermost(UnitClass)
	if c == nil || len(c.accs) == 0 {
		return
	}
	c.top().members.Add(s.names.id(name))
}

// Depth reports how many units are currently open.
func (s *TraversalState) Depth() int {
	return len(s.frames)
}

// innermost returns the deepest open frame of the given kind.
func (s *TraversalState) innermost(kind UnitKind) *unitFrame {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].unit.Kind == kind {
			return s.frames[i]
		}
	}
	return nil
}
