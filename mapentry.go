package streampb

import "google.golang.org/protobuf/reflect/protoreflect"

// beginMapEntry implements handle_mapentry: it is invoked when a member
// name finishes inside a kindMapObject frame. It synthesizes one map-entry
// submessage, emits the accumulated member name as the entry's key (using
// whatever coercion the key field's declared type requires), and leaves a
// kindMapEntry frame on top of frames ready for the value to be parsed as
// an ordinary field of that entry.
func beginMapEntry(frames *frameStack, memberName string) error {
	outer := frames.cur() // the kindMapObject frame
	mapField := outer.owner

	entrySink, err := outer.sink.BeginSubMessage(mapField)
	if err != nil {
		return sinkErr(err)
	}
	if err := entrySink.BeginMessage(); err != nil {
		return sinkErr(err)
	}

	keyField := mapField.MapKey()
	valueField := mapField.MapValue()

	if err := frames.push(frame{
		kind:  kindMapEntry,
		sink:  entrySink,
		msg:   mapField.Message(),
		field: keyField,
		owner: mapField,
	}); err != nil {
		return err
	}

	if err := putMapKey(entrySink, keyField, memberName); err != nil {
		return err
	}

	// Key emitted; the frame now awaits the value field.
	frames.cur().field = valueField
	return nil
}

// putMapKey emits memberName, the raw (already-unescaped) JSON object key
// text, as keyField's value on entrySink, choosing the coercion the key's
// declared kind requires.
func putMapKey(entrySink Sink, keyField protoreflect.FieldDescriptor, memberName string) error {
	switch keyField.Kind() {
	case protoreflect.BoolKind:
		return coerceBoolKey(entrySink, keyField, memberName)

	case protoreflect.StringKind, protoreflect.BytesKind:
		child, err := entrySink.BeginString(keyField, len(memberName))
		if err != nil {
			return sinkErr(err)
		}
		if err := child.PutString(keyField, []byte(memberName), nil); err != nil {
			return sinkErr(err)
		}
		return sinkErr(entrySink.EndString(keyField))

	default:
		// All remaining map-key-eligible kinds are integral, delivered as
		// a quoted JSON string; the number parser accepts that text
		// exactly as it accepts an unquoted number literal.
		return coerceNumber(entrySink, keyField, memberName)
	}
}

// endMapEntry implements the second half of end-member when the popped
// frame is a kindMapEntry: it closes the entry message and reports
// endsubmsg to the enclosing sequence frame (now top of frames) using the
// map field's selector.
func endMapEntry(frames *frameStack) error {
	entry := frames.pop()
	if err := entry.sink.EndMessage(); err != nil {
		return sinkErr(err)
	}
	outer := frames.cur()
	return sinkErr(outer.sink.EndSubMessage(entry.owner))
}
