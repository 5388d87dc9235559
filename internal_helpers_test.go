package streampb

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// buildInternalTestSchema builds a tiny message descriptor for the
// white-box tests in this package, independent of the black-box package's
// own fixture (internal tests cannot import the _test package).
//
//	message Internal {
//	  int32 n = 1;
//	  int64 big = 2;
//	  uint32 u = 3;
//	  float f = 4;
//	  double d = 5;
//	  bool flag = 6;
//	  string s = 7;
//	  bytes b = 8;
//	}
func buildInternalTestSchema() protoreflect.MessageDescriptor {
	str := func(s string) *string { return &s }
	i32 := func(n int32) *int32 { return &n }
	typ := func(t descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type { return &t }
	opt := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL

	field := func(name string, num int32, t descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
		l := opt
		return &descriptorpb.FieldDescriptorProto{
			Name:   str(name),
			Number: i32(num),
			Type:   typ(t),
			Label:  &l,
		}
	}

	msg := &descriptorpb.DescriptorProto{
		Name: str("Internal"),
		Field: []*descriptorpb.FieldDescriptorProto{
			field("n", 1, descriptorpb.FieldDescriptorProto_TYPE_INT32),
			field("big", 2, descriptorpb.FieldDescriptorProto_TYPE_INT64),
			field("u", 3, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
			field("f", 4, descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
			field("d", 5, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
			field("flag", 6, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
			field("s", 7, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			field("b", 8, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
		},
	}

	fdProto := &descriptorpb.FileDescriptorProto{
		Name:        str("streampb_internal_test/internal.proto"),
		Package:     str("streampb_internal_test"),
		Syntax:      str("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{msg},
	}

	fd, err := protodesc.NewFile(fdProto, protoregistry.GlobalFiles)
	if err != nil {
		panic("buildInternalTestSchema: " + err.Error())
	}
	return fd.Messages().ByName("Internal")
}

// recordingSink is a minimal Sink that logs each call it receives as a
// formatted string, for tests that check sequencing and argument values
// rather than a populated message.
type recordingSink struct {
	events []string
	fail   error // if set, every method returns this error instead of recording
}

func (s *recordingSink) record(format string, args ...any) error {
	if s.fail != nil {
		return s.fail
	}
	s.events = append(s.events, fmt.Sprintf(format, args...))
	return nil
}

func (s *recordingSink) BeginMessage() error { return s.record("BeginMessage") }
func (s *recordingSink) EndMessage() error   { return s.record("EndMessage") }

func (s *recordingSink) BeginSubMessage(f protoreflect.FieldDescriptor) (Sink, error) {
	if err := s.record("BeginSubMessage(%s)", f.Name()); err != nil {
		return nil, err
	}
	return s, nil
}
func (s *recordingSink) EndSubMessage(f protoreflect.FieldDescriptor) error {
	return s.record("EndSubMessage(%s)", f.Name())
}

func (s *recordingSink) BeginSequence(f protoreflect.FieldDescriptor) (Sink, error) {
	if err := s.record("BeginSequence(%s)", f.Name()); err != nil {
		return nil, err
	}
	return s, nil
}
func (s *recordingSink) EndSequence(f protoreflect.FieldDescriptor) error {
	return s.record("EndSequence(%s)", f.Name())
}

func (s *recordingSink) BeginString(f protoreflect.FieldDescriptor, sizeHint int) (Sink, error) {
	if err := s.record("BeginString(%s,%d)", f.Name(), sizeHint); err != nil {
		return nil, err
	}
	return s, nil
}
func (s *recordingSink) EndString(f protoreflect.FieldDescriptor) error {
	return s.record("EndString(%s)", f.Name())
}
func (s *recordingSink) PutString(f protoreflect.FieldDescriptor, p []byte, buf BufHandle) error {
	return s.record("PutString(%s,%q)", f.Name(), p)
}

func (s *recordingSink) PutInt32(f protoreflect.FieldDescriptor, v int32) error {
	return s.record("PutInt32(%s,%d)", f.Name(), v)
}
func (s *recordingSink) PutInt64(f protoreflect.FieldDescriptor, v int64) error {
	return s.record("PutInt64(%s,%d)", f.Name(), v)
}
func (s *recordingSink) PutUint32(f protoreflect.FieldDescriptor, v uint32) error {
	return s.record("PutUint32(%s,%d)", f.Name(), v)
}
func (s *recordingSink) PutUint64(f protoreflect.FieldDescriptor, v uint64) error {
	return s.record("PutUint64(%s,%d)", f.Name(), v)
}
func (s *recordingSink) PutFloat(f protoreflect.FieldDescriptor, v float32) error {
	return s.record("PutFloat(%s,%g)", f.Name(), v)
}
func (s *recordingSink) PutDouble(f protoreflect.FieldDescriptor, v float64) error {
	return s.record("PutDouble(%s,%g)", f.Name(), v)
}
func (s *recordingSink) PutBool(f protoreflect.FieldDescriptor, v bool) error {
	return s.record("PutBool(%s,%v)", f.Name(), v)
}
