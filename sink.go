package streampb

import "google.golang.org/protobuf/reflect/protoreflect"

// BufHandle is an opaque handle passed through from the bytes-sink
// protocol to downstream Sink.PutString calls, so an implementation that
// wants zero-copy aliasing of the caller's original chunk can recognize
// when that is safe. The parser itself never inspects it.
type BufHandle any

// BytesSink is the input side of the parser: the caller pushes chunks of
// raw JSON bytes to Parse and signals end of input with End.
type BytesSink interface {
	// Parse consumes as much of chunk as forms complete tokens, driving
	// Sink events as it goes, and returns the number of bytes consumed.
	// If consumed < len(chunk), a fatal error occurred and err is
	// non-nil; the caller must stop feeding this parser further input for
	// the current document.
	Parse(chunk []byte, buf BufHandle) (consumed int, err error)

	// End signals that no further input is available. It reports an error
	// if the document was left incomplete (an open object, array, or
	// string value).
	End() error
}

// Sink is the output side of the parser: the downstream consumer of
// semantic events, opaque to the parser itself (the schema/descriptor
// system and the sink are both external collaborators). Its methods
// mirror the structure of a protobuf message.
//
// Begin methods that return a child Sink scope subsequent events for that
// nested value (a submessage, a sequence's elements, or a string's
// chunks) to the returned value; the matching End method is always called
// on the *parent* sink, passing the same field selector.
//
// Any method may report an error, which stops parsing. Per the design's
// acknowledged gap, a non-nil error from a Sink method is treated as fatal
// (it aborts the parse) but the partial data already delivered is not
// rolled back; there is no pushback/retry protocol.
type Sink interface {
	BeginMessage() error
	EndMessage() error

	BeginSubMessage(f protoreflect.FieldDescriptor) (Sink, error)
	EndSubMessage(f protoreflect.FieldDescriptor) error

	BeginSequence(f protoreflect.FieldDescriptor) (Sink, error)
	EndSequence(f protoreflect.FieldDescriptor) error

	BeginString(f protoreflect.FieldDescriptor, sizeHint int) (Sink, error)
	EndString(f protoreflect.FieldDescriptor) error
	PutString(f protoreflect.FieldDescriptor, p []byte, buf BufHandle) error

	PutInt32(f protoreflect.FieldDescriptor, v int32) error
	PutInt64(f protoreflect.FieldDescriptor, v int64) error
	PutUint32(f protoreflect.FieldDescriptor, v uint32) error
	PutUint64(f protoreflect.FieldDescriptor, v uint64) error
	PutFloat(f protoreflect.FieldDescriptor, v float32) error
	PutDouble(f protoreflect.FieldDescriptor, v float64) error
	PutBool(f protoreflect.FieldDescriptor, v bool) error
}
