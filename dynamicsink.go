package streampb

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// DynamicSink is a ready-to-use Sink implementation backed by
// protoreflect's dynamicpb package: it populates a dynamicpb.Message for
// the root descriptor a ParserMethod was built from, the way
// other_examples/yaninyzwitty-hyperpb-go__parse.go builds dynamic messages
// from reflection rather than generated accessors. Callers that want a
// different in-memory representation implement Sink themselves; this type
// exists so the package is useful out of the box.
type DynamicSink struct {
	*dynMessageSink
}

// NewDynamicSink allocates an empty message of desc's type and returns a
// Sink that populates it as the parser delivers events.
func NewDynamicSink(desc protoreflect.MessageDescriptor) *DynamicSink {
	return &DynamicSink{dynMessageSink: &dynMessageSink{msg: dynamicpb.NewMessage(desc)}}
}

// Result returns the message populated by parsing. It is only meaningful
// after the parser has reported the document complete.
func (s *DynamicSink) Result() protoreflect.Message { return s.msg }

// dynMessageSink scopes events belonging to one message value: its own
// scalar fields, and Begin calls for its submessage/sequence/string
// fields.
type dynMessageSink struct {
	msg protoreflect.Message

	pendingString *dynStringSink // set between BeginString and EndString
}

func (s *dynMessageSink) BeginMessage() error { return nil }
func (s *dynMessageSink) EndMessage() error   { return nil }

func (s *dynMessageSink) BeginSubMessage(f protoreflect.FieldDescriptor) (Sink, error) {
	if f.IsMap() {
		return &dynMapSink{target: s.msg, field: f}, nil
	}
	return &dynMessageSink{msg: s.msg.Mutable(f).Message()}, nil
}

func (s *dynMessageSink) EndSubMessage(f protoreflect.FieldDescriptor) error { return nil }

func (s *dynMessageSink) BeginSequence(f protoreflect.FieldDescriptor) (Sink, error) {
	if f.IsMap() {
		return &dynMapSink{target: s.msg, field: f}, nil
	}
	return &dynListSink{list: s.msg.Mutable(f).List(), field: f}, nil
}

func (s *dynMessageSink) EndSequence(f protoreflect.FieldDescriptor) error { return nil }

func (s *dynMessageSink) BeginString(f protoreflect.FieldDescriptor, sizeHint int) (Sink, error) {
	ss := &dynStringSink{buf: make([]byte, 0, sizeHint)}
	s.pendingString = ss
	return ss, nil
}

func (s *dynMessageSink) EndString(f protoreflect.FieldDescriptor) error {
	ss := s.pendingString
	s.pendingString = nil
	s.msg.Set(f, scalarBytesValue(f, ss.buf))
	return nil
}

func (s *dynMessageSink) PutString(f protoreflect.FieldDescriptor, p []byte, buf BufHandle) error {
	return fmt.Errorf("streampb: PutString called directly on a message sink for field %s", f.FullName())
}

func (s *dynMessageSink) PutInt32(f protoreflect.FieldDescriptor, v int32) error {
	if f.Kind() == protoreflect.EnumKind {
		s.msg.Set(f, protoreflect.ValueOfEnum(protoreflect.EnumNumber(v)))
		return nil
	}
	s.msg.Set(f, protoreflect.ValueOfInt32(v))
	return nil
}
func (s *dynMessageSink) PutInt64(f protoreflect.FieldDescriptor, v int64) error {
	s.msg.Set(f, protoreflect.ValueOfInt64(v))
	return nil
}
func (s *dynMessageSink) PutUint32(f protoreflect.FieldDescriptor, v uint32) error {
	s.msg.Set(f, protoreflect.ValueOfUint32(v))
	return nil
}
func (s *dynMessageSink) PutUint64(f protoreflect.FieldDescriptor, v uint64) error {
	s.msg.Set(f, protoreflect.ValueOfUint64(v))
	return nil
}
func (s *dynMessageSink) PutFloat(f protoreflect.FieldDescriptor, v float32) error {
	s.msg.Set(f, protoreflect.ValueOfFloat32(v))
	return nil
}
func (s *dynMessageSink) PutDouble(f protoreflect.FieldDescriptor, v float64) error {
	s.msg.Set(f, protoreflect.ValueOfFloat64(v))
	return nil
}
func (s *dynMessageSink) PutBool(f protoreflect.FieldDescriptor, v bool) error {
	s.msg.Set(f, protoreflect.ValueOfBool(v))
	return nil
}

// dynListSink scopes events belonging to one repeated field's elements.
type dynListSink struct {
	list  protoreflect.List
	field protoreflect.FieldDescriptor

	pendingString *dynStringSink
}

func (s *dynListSink) BeginMessage() error { return errWrongScope("BeginMessage", s.field) }
func (s *dynListSink) EndMessage() error   { return errWrongScope("EndMessage", s.field) }

func (s *dynListSink) BeginSubMessage(f protoreflect.FieldDescriptor) (Sink, error) {
	v := s.list.NewElement()
	s.list.Append(v)
	return &dynMessageSink{msg: v.Message()}, nil
}
func (s *dynListSink) EndSubMessage(f protoreflect.FieldDescriptor) error { return nil }

func (s *dynListSink) BeginSequence(f protoreflect.FieldDescriptor) (Sink, error) {
	return nil, errWrongScope("BeginSequence", s.field)
}
func (s *dynListSink) EndSequence(f protoreflect.FieldDescriptor) error {
	return errWrongScope("EndSequence", s.field)
}

func (s *dynListSink) BeginString(f protoreflect.FieldDescriptor, sizeHint int) (Sink, error) {
	ss := &dynStringSink{buf: make([]byte, 0, sizeHint)}
	s.pendingString = ss
	return ss, nil
}
func (s *dynListSink) EndString(f protoreflect.FieldDescriptor) error {
	ss := s.pendingString
	s.pendingString = nil
	s.list.Append(scalarBytesValue(s.field, ss.buf))
	return nil
}
func (s *dynListSink) PutString(f protoreflect.FieldDescriptor, p []byte, buf BufHandle) error {
	return errWrongScope("PutString", s.field)
}

func (s *dynListSink) PutInt32(f protoreflect.FieldDescriptor, v int32) error {
	if s.field.Kind() == protoreflect.EnumKind {
		s.list.Append(protoreflect.ValueOfEnum(protoreflect.EnumNumber(v)))
		return nil
	}
	s.list.Append(protoreflect.ValueOfInt32(v))
	return nil
}
func (s *dynListSink) PutInt64(f protoreflect.FieldDescriptor, v int64) error {
	s.list.Append(protoreflect.ValueOfInt64(v))
	return nil
}
func (s *dynListSink) PutUint32(f protoreflect.FieldDescriptor, v uint32) error {
	s.list.Append(protoreflect.ValueOfUint32(v))
	return nil
}
func (s *dynListSink) PutUint64(f protoreflect.FieldDescriptor, v uint64) error {
	s.list.Append(protoreflect.ValueOfUint64(v))
	return nil
}
func (s *dynListSink) PutFloat(f protoreflect.FieldDescriptor, v float32) error {
	s.list.Append(protoreflect.ValueOfFloat32(v))
	return nil
}
func (s *dynListSink) PutDouble(f protoreflect.FieldDescriptor, v float64) error {
	s.list.Append(protoreflect.ValueOfFloat64(v))
	return nil
}
func (s *dynListSink) PutBool(f protoreflect.FieldDescriptor, v bool) error {
	s.list.Append(protoreflect.ValueOfBool(v))
	return nil
}

// dynMapSink scopes events belonging to one map field: each member of the
// synthetic map-entry sequence arrives as a BeginSubMessage/EndSubMessage
// pair, with the key and value filled in on the child message sink
// exactly as any other message's fields would be, then committed to the
// real protoreflect.Map on EndSubMessage.
type dynMapSink struct {
	target protoreflect.Message
	field  protoreflect.FieldDescriptor

	pending protoreflect.Message // the entry currently being filled
}

func (s *dynMapSink) BeginMessage() error { return errWrongScope("BeginMessage", s.field) }
func (s *dynMapSink) EndMessage() error   { return errWrongScope("EndMessage", s.field) }

func (s *dynMapSink) BeginSubMessage(f protoreflect.FieldDescriptor) (Sink, error) {
	entry := dynamicpb.NewMessage(s.field.Message())
	s.pending = entry
	return &dynMessageSink{msg: entry}, nil
}

func (s *dynMapSink) EndSubMessage(f protoreflect.FieldDescriptor) error {
	entry := s.pending
	s.pending = nil
	if entry == nil {
		return fmt.Errorf("streampb: mapentry message has no key/value")
	}
	kfd, vfd := s.field.MapKey(), s.field.MapValue()
	key := entry.Get(kfd).MapKey()
	val := entry.Get(vfd)
	s.target.Mutable(s.field).Map().Set(key, val)
	return nil
}

func (s *dynMapSink) BeginSequence(f protoreflect.FieldDescriptor) (Sink, error) {
	return nil, errWrongScope("BeginSequence", s.field)
}
func (s *dynMapSink) EndSequence(f protoreflect.FieldDescriptor) error {
	return errWrongScope("EndSequence", s.field)
}
func (s *dynMapSink) BeginString(f protoreflect.FieldDescriptor, sizeHint int) (Sink, error) {
	return nil, errWrongScope("BeginString", s.field)
}
func (s *dynMapSink) EndString(f protoreflect.FieldDescriptor) error {
	return errWrongScope("EndString", s.field)
}
func (s *dynMapSink) PutString(f protoreflect.FieldDescriptor, p []byte, buf BufHandle) error {
	return errWrongScope("PutString", s.field)
}
func (s *dynMapSink) PutInt32(f protoreflect.FieldDescriptor, v int32) error {
	return errWrongScope("PutInt32", s.field)
}
func (s *dynMapSink) PutInt64(f protoreflect.FieldDescriptor, v int64) error {
	return errWrongScope("PutInt64", s.field)
}
func (s *dynMapSink) PutUint32(f protoreflect.FieldDescriptor, v uint32) error {
	return errWrongScope("PutUint32", s.field)
}
func (s *dynMapSink) PutUint64(f protoreflect.FieldDescriptor, v uint64) error {
	return errWrongScope("PutUint64", s.field)
}
func (s *dynMapSink) PutFloat(f protoreflect.FieldDescriptor, v float32) error {
	return errWrongScope("PutFloat", s.field)
}
func (s *dynMapSink) PutDouble(f protoreflect.FieldDescriptor, v float64) error {
	return errWrongScope("PutDouble", s.field)
}
func (s *dynMapSink) PutBool(f protoreflect.FieldDescriptor, v bool) error {
	return errWrongScope("PutBool", s.field)
}

// dynStringSink accumulates the chunks of one string or bytes value; it
// receives only PutString calls, and is read back by the parent sink's
// EndString method.
type dynStringSink struct{ buf []byte }

func (s *dynStringSink) PutString(f protoreflect.FieldDescriptor, p []byte, buf BufHandle) error {
	s.buf = append(s.buf, p...)
	return nil
}

func (s *dynStringSink) BeginMessage() error { return errWrongScope("BeginMessage", nil) }
func (s *dynStringSink) EndMessage() error   { return errWrongScope("EndMessage", nil) }
func (s *dynStringSink) BeginSubMessage(f protoreflect.FieldDescriptor) (Sink, error) {
	return nil, errWrongScope("BeginSubMessage", f)
}
func (s *dynStringSink) EndSubMessage(f protoreflect.FieldDescriptor) error {
	return errWrongScope("EndSubMessage", f)
}
func (s *dynStringSink) BeginSequence(f protoreflect.FieldDescriptor) (Sink, error) {
	return nil, errWrongScope("BeginSequence", f)
}
func (s *dynStringSink) EndSequence(f protoreflect.FieldDescriptor) error {
	return errWrongScope("EndSequence", f)
}
func (s *dynStringSink) BeginString(f protoreflect.FieldDescriptor, sizeHint int) (Sink, error) {
	return nil, errWrongScope("BeginString", f)
}
func (s *dynStringSink) EndString(f protoreflect.FieldDescriptor) error {
	return errWrongScope("EndString", f)
}
func (s *dynStringSink) PutInt32(f protoreflect.FieldDescriptor, v int32) error {
	return errWrongScope("PutInt32", f)
}
func (s *dynStringSink) PutInt64(f protoreflect.FieldDescriptor, v int64) error {
	return errWrongScope("PutInt64", f)
}
func (s *dynStringSink) PutUint32(f protoreflect.FieldDescriptor, v uint32) error {
	return errWrongScope("PutUint32", f)
}
func (s *dynStringSink) PutUint64(f protoreflect.FieldDescriptor, v uint64) error {
	return errWrongScope("PutUint64", f)
}
func (s *dynStringSink) PutFloat(f protoreflect.FieldDescriptor, v float32) error {
	return errWrongScope("PutFloat", f)
}
func (s *dynStringSink) PutDouble(f protoreflect.FieldDescriptor, v float64) error {
	return errWrongScope("PutDouble", f)
}
func (s *dynStringSink) PutBool(f protoreflect.FieldDescriptor, v bool) error {
	return errWrongScope("PutBool", f)
}

func errWrongScope(method string, f protoreflect.FieldDescriptor) error {
	if f == nil {
		return fmt.Errorf("streampb: %s not valid at this scope", method)
	}
	return fmt.Errorf("streampb: %s not valid at this scope (field %s)", method, f.FullName())
}

func scalarBytesValue(f protoreflect.FieldDescriptor, b []byte) protoreflect.Value {
	if f.Kind() == protoreflect.BytesKind {
		return protoreflect.ValueOfBytes(append([]byte(nil), b...))
	}
	return protoreflect.ValueOfString(string(b))
}
