// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package streampb implements a streaming JSON-to-protobuf parser.
//
// # Overview
//
// A [Parser] consumes arbitrarily chunked JSON input and emits a sequence of
// schema-typed events against a caller-supplied protobuf message
// descriptor. It never materializes a full parse tree; each token is
// reported to a [Sink] as soon as it is recognized, binding each JSON
// construct to a protobuf field and coercing it to that field's declared
// type along the way.
//
// Construct a [ParserMethod] once per message descriptor (it builds and
// retains the JSON-name-to-field tables for every message type reachable
// from the root), then spin up one [Parser] per document from it:
//
//	method := streampb.NewParserMethod(root)
//	sink := streampb.NewDynamicSink(root)
//	p := method.NewParser(sink)
//	in := p.Input()
//	for _, chunk := range chunks {
//	    if _, err := in.Parse(chunk, nil); err != nil {
//	        log.Fatalf("parse failed: %v", err)
//	    }
//	}
//	in.End()
//	msg := sink.Result()
//
// # Chunking
//
// Input may be split at any byte boundary, including in the middle of a
// string escape or a number literal. The parser suspends at the end of each
// Parse call and resumes exactly where it left off on the next call. The
// events raised are the same however the input was chunked, except that
// the text of a string field may be split across a different number of
// PutString calls.
//
// # Sinks
//
// The [Sink] interface accepts parser events. Its methods mirror the
// structure of a protobuf message: BeginMessage/EndMessage for the message
// itself, BeginSubMessage/EndSubMessage for submessage fields,
// BeginSequence/EndSequence for repeated fields (including the synthetic
// sequence of map-entry submessages used to represent map fields),
// BeginString/EndString plus PutString for string and bytes fields, and one
// Put method per scalar kind. [DynamicSink] is a ready-to-use
// implementation backed by protoreflect's dynamicpb package.
package streampb
