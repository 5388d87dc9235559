package streampb_test

import (
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// buildTestSchema constructs, without any .proto compilation step, the
// message descriptor used throughout this package's tests:
//
//	enum Color { RED = 0; GREEN = 1; BLUE = 2; }
//	message Child { string name = 1; int32 value = 2; Child next = 3; }
//	message Root {
//	  int32 a = 1;
//	  string b = 2;
//	  bytes bytes_field = 3;
//	  bool flag = 4;
//	  Color color = 5;
//	  Child child = 6;
//	  repeated int32 items = 7;
//	  repeated Child children = 8;
//	  map<string, int32> tags = 9;
//	  repeated string names = 10;
//	}
func buildTestSchema() protoreflect.MessageDescriptor {
	str := func(s string) *string { return &s }
	i32 := func(n int32) *int32 { return &n }
	typ := func(t descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type { return &t }
	label := func(l descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto_Label { return &l }

	optional := label(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL)
	repeated := label(descriptorpb.FieldDescriptorProto_LABEL_REPEATED)

	field := func(name string, num int32, t descriptorpb.FieldDescriptorProto_Type, l *descriptorpb.FieldDescriptorProto_Label, typeName string) *descriptorpb.FieldDescriptorProto {
		fd := &descriptorpb.FieldDescriptorProto{
			Name:   str(name),
			Number: i32(num),
			Type:   typ(t),
			Label:  l,
		}
		if typeName != "" {
			fd.TypeName = str(typeName)
		}
		return fd
	}

	colorEnum := &descriptorpb.EnumDescriptorProto{
		Name: str("Color"),
		Value: []*descriptorpb.EnumValueDescriptorProto{
			{Name: str("RED"), Number: i32(0)},
			{Name: str("GREEN"), Number: i32(1)},
			{Name: str("BLUE"), Number: i32(2)},
		},
	}

	childMsg := &descriptorpb.DescriptorProto{
		Name: str("Child"),
		Field: []*descriptorpb.FieldDescriptorProto{
			field("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING, optional, ""),
			field("value", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32, optional, ""),
			field("next", 3, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, optional, ".test.Child"),
		},
	}

	tagsEntry := &descriptorpb.DescriptorProto{
		Name: str("TagsEntry"),
		Field: []*descriptorpb.FieldDescriptorProto{
			field("key", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING, optional, ""),
			field("value", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32, optional, ""),
		},
		Options: &descriptorpb.MessageOptions{MapEntry: boolPtr(true)},
	}

	rootMsg := &descriptorpb.DescriptorProto{
		Name: str("Root"),
		Field: []*descriptorpb.FieldDescriptorProto{
			field("a", 1, descriptorpb.FieldDescriptorProto_TYPE_INT32, optional, ""),
			field("b", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING, optional, ""),
			field("bytes_field", 3, descriptorpb.FieldDescriptorProto_TYPE_BYTES, optional, ""),
			field("flag", 4, descriptorpb.FieldDescriptorProto_TYPE_BOOL, optional, ""),
			field("color", 5, descriptorpb.FieldDescriptorProto_TYPE_ENUM, optional, ".test.Color"),
			field("child", 6, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, optional, ".test.Child"),
			field("items", 7, descriptorpb.FieldDescriptorProto_TYPE_INT32, repeated, ""),
			field("children", 8, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, repeated, ".test.Child"),
			field("tags", 9, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, repeated, ".test.Root.TagsEntry"),
			field("names", 10, descriptorpb.FieldDescriptorProto_TYPE_STRING, repeated, ""),
		},
		NestedType: []*descriptorpb.DescriptorProto{tagsEntry},
	}

	fdProto := &descriptorpb.FileDescriptorProto{
		Name:       str("test/root.proto"),
		Package:    str("test"),
		Syntax:     str("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{rootMsg, childMsg},
		EnumType:   []*descriptorpb.EnumDescriptorProto{colorEnum},
	}

	fd, err := protodesc.NewFile(fdProto, protoregistry.GlobalFiles)
	if err != nil {
		panic("buildTestSchema: " + err.Error())
	}
	return fd.Messages().ByName("Root")
}

func boolPtr(b bool) *bool { return &b }
