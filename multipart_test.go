package streampb

import "testing"

func TestMultipart_accumulate(t *testing.T) {
	var m multipart
	m.StartAccumulate()
	if err := m.Text([]byte("ab"), true); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if err := m.Text([]byte("cd"), true); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got := m.Bytes().StringCopy(); got != "abcd" {
		t.Fatalf("Bytes() = %q, want %q", got, "abcd")
	}
	m.End()
	if m.mode != multipartInactive {
		t.Fatalf("End did not reset mode")
	}
}

func TestMultipart_pushEagerly(t *testing.T) {
	root := buildInternalTestSchema()
	fd := root.Fields().ByName("s")
	sink := &recordingSink{}

	var m multipart
	m.SetBuf("chunk-handle")
	m.StartPush(sink, fd)

	if err := m.Text([]byte("hi"), true); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if err := m.Text(nil, true); err != nil { // empty text must be a no-op
		t.Fatalf("Text(empty): %v", err)
	}
	if err := m.Text([]byte("!"), false); err != nil {
		t.Fatalf("Text: %v", err)
	}

	want := []string{`PutString(s,"hi")`, `PutString(s,"!")`}
	if len(sink.events) != len(want) {
		t.Fatalf("events = %v, want %v", sink.events, want)
	}
	for i := range want {
		if sink.events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, sink.events[i], want[i])
		}
	}
}

func TestMultipart_setBufSurvivesEnd(t *testing.T) {
	var m multipart
	m.SetBuf("handle")
	m.StartAccumulate()
	m.End()
	if m.buf != "handle" {
		t.Fatalf("buf reset by End(), want it to survive across values")
	}
}
