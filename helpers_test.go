package streampb_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	streampb "github.com/hedgehog/upb"
)

// wantMessage parses jsonText with the reference protojson codec, giving an
// expected value to diff the streaming parser's output against.
func wantMessage(t *testing.T, root protoreflect.MessageDescriptor, jsonText string) protoreflect.Message {
	t.Helper()
	msg := dynamicpb.NewMessage(root)
	if err := protojson.Unmarshal([]byte(jsonText), msg); err != nil {
		t.Fatalf("protojson.Unmarshal(%q): %v", jsonText, err)
	}
	return msg
}

// parseAll feeds the whole of input to a fresh parser in chunks of at most
// chunkSize bytes (0 means "one chunk"), then calls End, and returns the
// populated message.
func parseAll(t *testing.T, root protoreflect.MessageDescriptor, input string, chunkSize int) (protoreflect.Message, error) {
	t.Helper()

	method := streampb.NewParserMethod(root)
	sink := streampb.NewDynamicSink(root)
	p := method.NewParser(sink)
	in := p.Input()

	data := []byte(input)
	if chunkSize <= 0 {
		chunkSize = len(data)
		if chunkSize == 0 {
			chunkSize = 1
		}
	}
	for len(data) > 0 {
		n := chunkSize
		if n > len(data) {
			n = len(data)
		}
		consumed, err := in.Parse(data[:n], nil)
		if err != nil {
			return sink.Result(), err
		}
		if consumed != n {
			t.Fatalf("Parse consumed %d of %d bytes with no error", consumed, n)
		}
		data = data[n:]
	}
	if err := in.End(); err != nil {
		return sink.Result(), err
	}
	return sink.Result(), nil
}

// mustJSON renders msg as canonical JSON text for comparison, the way the
// teacher's stream_test.go diffs formatted event text rather than raw
// structs.
func mustJSON(t *testing.T, msg protoreflect.Message) string {
	t.Helper()
	out, err := protojson.MarshalOptions{}.Marshal(msg.Interface())
	if err != nil {
		t.Fatalf("protojson.Marshal: %v", err)
	}
	return string(out)
}

// diffJSON reports a formatted (-want, +got) diff between two protojson
// renderings, or "" if they denote the same message.
func diffJSON(want, got protoreflect.Message) string {
	wantBytes, err1 := protojson.MarshalOptions{}.Marshal(want.Interface())
	gotBytes, err2 := protojson.MarshalOptions{}.Marshal(got.Interface())
	if err1 != nil || err2 != nil {
		return cmp.Diff(err1, err2)
	}
	return cmp.Diff(string(wantBytes), string(gotBytes))
}
