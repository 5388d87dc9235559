package streampb

import (
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// coerceNumber converts the accumulated number literal text to field's
// declared scalar type and emits it to sink via the matching Put method.
//
// Known limitation (preserved, not silently fixed): integer-kinded fields
// reject exponent or fractional literals such as "1e6", even though the
// JSON number grammar permits them, because strconv.ParseInt/ParseUint
// require a plain base-10 integer. This mirrors the source design's
// documented gap rather than widening acceptance.
func coerceNumber(sink Sink, field protoreflect.FieldDescriptor, text string) error {
	switch field.Kind() {
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return numberErr(field)
		}
		return sink.PutInt32(field, int32(v))

	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return numberErr(field)
		}
		return sink.PutInt64(field, v)

	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		v, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return numberErr(field)
		}
		return sink.PutUint32(field, uint32(v))

	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return numberErr(field)
		}
		return sink.PutUint64(field, v)

	case protoreflect.FloatKind:
		// A literal beyond the float32 range makes strconv.ParseFloat
		// report ErrRange, which is rejected like any other parse
		// failure.
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return numberErr(field)
		}
		return sink.PutFloat(field, float32(v))

	case protoreflect.DoubleKind:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return numberErr(field)
		}
		return sink.PutDouble(field, v)

	default:
		return fieldErr(field, "Number specified for non-numeric field")
	}
}

// coerceBoolKey parses a JSON map key's text, which must be exactly "true"
// or "false", per the map-entry synthesis rule for bool-keyed maps.
func coerceBoolKey(sink Sink, field protoreflect.FieldDescriptor, text string) error {
	switch text {
	case "true":
		return sink.PutBool(field, true)
	case "false":
		return sink.PutBool(field, false)
	default:
		return fieldErr(field, "Map bool key not 'true' or 'false'")
	}
}

func numberErr(field protoreflect.FieldDescriptor) error {
	return fieldErr(field, "error parsing number")
}
