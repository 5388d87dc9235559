package streampb

import (
	"go4.org/mem"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// multipartMode is the state of the multipart text router: INACTIVE
// between values, ACCUMULATE while buffering text for later inspection
// (member names, numbers, enum names, bytes fields, map keys), or
// PUSH_EAGERLY while forwarding string-field chunks directly to the sink
// without buffering.
type multipartMode uint8

const (
	multipartInactive multipartMode = iota
	multipartAccumulate
	multipartPushEagerly
)

// multipart directs accumulated or captured text either into an
// accumulator for later inspection, or eagerly to the sink's string
// handler. Exactly one multipart value is active at a time, because only
// one string or number value can be in flight at any point in the grammar.
type multipart struct {
	mode multipartMode
	acc  accumulator

	sink  Sink
	field protoreflect.FieldDescriptor

	buf BufHandle // the current chunk's bufhandle, for aliased PUSH_EAGERLY forwards
}

// SetBuf records the bufhandle of the chunk currently being scanned. The
// parser calls this once per Parse invocation.
func (m *multipart) SetBuf(buf BufHandle) { m.buf = buf }

// StartAccumulate begins buffering text for later inspection (member
// names, numbers, enum symbolic names, bytes fields before base64
// decoding, and map keys).
func (m *multipart) StartAccumulate() {
	m.mode = multipartAccumulate
	m.acc.Clear()
}

// StartPush begins eagerly forwarding text to sink's string handler for
// field f, without buffering. Used for ordinary (non-map-key, non-enum)
// string fields.
func (m *multipart) StartPush(sink Sink, field protoreflect.FieldDescriptor) {
	m.mode = multipartPushEagerly
	m.sink = sink
	m.field = field
}

// Text delivers a chunk of decoded text to whichever destination is
// currently active.
func (m *multipart) Text(b []byte, canAlias bool) error {
	switch m.mode {
	case multipartAccumulate:
		return m.acc.Append(b, canAlias)
	case multipartPushEagerly:
		if len(b) == 0 {
			return nil
		}
		var bh BufHandle
		if canAlias {
			bh = m.buf
		}
		return m.sink.PutString(m.field, b, bh)
	default:
		return nil
	}
}

// Bytes returns the accumulated text. Valid only in ACCUMULATE mode.
func (m *multipart) Bytes() mem.RO { return m.acc.Get() }

// End returns the router to INACTIVE and releases any accumulated text.
func (m *multipart) End() {
	m.mode = multipartInactive
	m.acc.Clear()
	m.sink = nil
	m.field = nil
}

// reminder: buf is intentionally left set across End, since it reflects
// the chunk currently being scanned rather than any particular value.
