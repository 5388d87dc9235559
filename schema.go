package streampb

import "google.golang.org/protobuf/reflect/protoreflect"

// nameTable maps both the JSON name and, if it differs, the proto name of
// each field of one message descriptor to that field's descriptor. It is
// built once per reachable message type and never mutated afterward.
type nameTable struct {
	byName map[string]protoreflect.FieldDescriptor
}

func buildNameTable(md protoreflect.MessageDescriptor) *nameTable {
	fields := md.Fields()
	t := &nameTable{byName: make(map[string]protoreflect.FieldDescriptor, fields.Len())}
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		t.byName[fd.JSONName()] = fd
		if pn := string(fd.Name()); pn != fd.JSONName() {
			t.byName[pn] = fd
		}
	}
	return t
}

// lookup resolves a JSON member name to its field descriptor.
func (t *nameTable) lookup(name string) (protoreflect.FieldDescriptor, bool) {
	fd, ok := t.byName[name]
	return fd, ok
}

// ParserMethod holds the per-descriptor name tables shared by every Parser
// built from it. It is built once, eagerly, by recursive descent over
// every message type reachable from root (including message-typed map
// values and submessage types nested arbitrarily deep; the synthetic
// map-entry types themselves get no table), and is read-only thereafter:
// concurrent Parsers may share one ParserMethod without locking, exactly
// as the design's Shared Resource Policy requires. Go's garbage collector
// plays the role the design gives to reference counting: callers that want
// to share a ParserMethod across goroutines just share the pointer.
type ParserMethod struct {
	root     protoreflect.MessageDescriptor
	tables   map[protoreflect.FullName]*nameTable
	maxDepth int
}

// NewParserMethod builds the name tables for root and every message type
// reachable from it through message-typed and map-typed fields.
func NewParserMethod(root protoreflect.MessageDescriptor) *ParserMethod {
	m := &ParserMethod{
		root:     root,
		tables:   make(map[protoreflect.FullName]*nameTable),
		maxDepth: MaxDepth,
	}
	m.build(root)
	return m
}

func (m *ParserMethod) build(md protoreflect.MessageDescriptor) {
	full := md.FullName()
	if _, ok := m.tables[full]; ok {
		return
	}
	m.tables[full] = buildNameTable(md)

	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		switch {
		case fd.IsMap():
			// The map-entry descriptor itself needs a name table only in
			// the (unreachable via JSON) sense that it has a key/value
			// pair; what matters is descending into the value type if it
			// is itself a message.
			if vf := fd.MapValue(); vf.Kind() == protoreflect.MessageKind {
				m.build(vf.Message())
			}
		case fd.Kind() == protoreflect.MessageKind, fd.Kind() == protoreflect.GroupKind:
			m.build(fd.Message())
		}
	}
}

// nameTableFor returns the previously-built name table for md, or nil if
// md was not reachable from the root descriptor this method was built
// from (which should not happen for any descriptor the parser itself
// selects, since every submessage type is discovered during NewParserMethod).
func (m *ParserMethod) nameTableFor(md protoreflect.MessageDescriptor) *nameTable {
	return m.tables[md.FullName()]
}

// SetMaxDepth sets the frame nesting bound for Parsers subsequently
// created from this method. Only values from 1 to MaxDepth take effect;
// zero, negative, or larger values leave the bound at MaxDepth (64).
func (m *ParserMethod) SetMaxDepth(n int) { m.maxDepth = n }

// Root returns the message descriptor this method was built from.
func (m *ParserMethod) Root() protoreflect.MessageDescriptor { return m.root }

// NewParser allocates a Parser bound to sink, reset to its initial state,
// ready to accept chunks via its Input method.
func (m *ParserMethod) NewParser(sink Sink) *Parser {
	return newParser(m, sink)
}
