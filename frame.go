package streampb

import "google.golang.org/protobuf/reflect/protoreflect"

// MaxDepth is the default bound on frame stack depth (and, equivalently,
// on JSON nesting depth plus open string subframes). Exceeding it is a
// fatal "Nesting too deep" error. ParserMethod.SetMaxDepth can lower it per
// method; it cannot be raised.
const MaxDepth = 64

// frameKind discriminates what a frame represents. It plays the role the
// design assigns to the pair of booleans is_map/is_mapentry (which the
// design notes require never both be true): a single discriminant makes
// that exclusivity a property of the type rather than a convention callers
// must maintain.
type frameKind uint8

const (
	kindObject     frameKind = iota // a plain (non-map) message object
	kindMapObject                   // an object representing a map field; members synthesize map entries
	kindMapEntry                    // the synthetic map-entry submessage currently being filled
	kindArray                      // a repeated field's sequence
	kindStringValue                 // transient: scanning a STRING/BYTES field's value
)

// objPhase is the grammar position within an open object or array frame:
// which punctuation the parser is waiting for next. It is meaningless for
// kindMapEntry and kindStringValue frames, which never themselves consume
// '{'/'}'/'['/']'/','/':' tokens (handle_mapentry and begin/end-string
// delegate those decisions to the nearest enclosing object/array frame).
type objPhase uint8

const (
	phaseAwaitKey   objPhase = iota // object: expect '"' (a key) or, if no member seen yet, '}'
	phaseAwaitColon                 // object: expect ':' after a key
	phaseAwaitValue                 // expect a value; for array, also accept ']' if no element seen yet
	phaseAwaitComma                 // expect ',' or the closing bracket/brace
)

// frame is the per-depth semantic state of the parser described in the
// design's data model: which message is being built, which field is
// currently being populated, the name table used to resolve member names,
// and map-mode bookkeeping.
type frame struct {
	kind  frameKind
	sink  Sink
	msg   protoreflect.MessageDescriptor
	field protoreflect.FieldDescriptor // non-nil while parsing a value; nil while parsing a member name

	names *nameTable // non-nil for kindObject frames

	// owner is the field, in the *parent* frame, that this frame is the
	// value of: nil only for the root frame. end-subobject/end-array/
	// end-value-string use it to report endsubmsg/endseq/endstr to the
	// parent's sink with the right selector; endMapEntry uses it (on a
	// kindMapEntry frame, where it names the map field) to report
	// endsubmsg to the enclosing kindMapObject frame's sink.
	owner protoreflect.FieldDescriptor

	phase    objPhase
	seenItem bool // has at least one member/element been parsed in this frame
}

// frameStack is a bounded-capacity array of frames with an index "top",
// the language-neutral realization the design notes prefer over pointer
// arithmetic into a fixed buffer.
type frameStack struct {
	data [MaxDepth]frame
	top  int // -1 when empty
	max  int
}

func newFrameStack(max int) *frameStack {
	if max <= 0 || max > MaxDepth {
		max = MaxDepth
	}
	return &frameStack{top: -1, max: max}
}

func (s *frameStack) empty() bool { return s.top < 0 }
func (s *frameStack) depth() int  { return s.top + 1 }

// cur returns the top frame. The caller must ensure the stack is not empty.
func (s *frameStack) cur() *frame { return &s.data[s.top] }

func (s *frameStack) at(i int) *frame { return &s.data[i] }

// push adds a new frame, failing with "Nesting too deep" if the bound
// would be exceeded.
func (s *frameStack) push(f frame) error {
	if s.top+1 >= s.max {
		return &SemanticError{Message: "Nesting too deep"}
	}
	s.top++
	s.data[s.top] = f
	return nil
}

// pop removes and returns the top frame. The caller must ensure the stack
// is not empty.
func (s *frameStack) pop() frame {
	f := s.data[s.top]
	s.top--
	return f
}

// grammar returns the frame whose phase governs the next punctuation
// decision (colon, comma, close). It is ordinarily the top frame, except
// immediately after handle_mapentry has pushed a kindMapEntry frame on top
// of the enclosing kindMapObject frame: the map-entry frame holds the
// current field/message context for the *value*, but the colon/comma
// grammar for the member still belongs to the map object one level below.
func (s *frameStack) grammar() *frame {
	if s.data[s.top].kind == kindMapEntry {
		return &s.data[s.top-1]
	}
	return &s.data[s.top]
}
