package streampb

// captureState is a tagged sum type distinguishing "no capture", "capture
// anchored in the current chunk", and "capture suspended across a buffer
// seam". The design notes call out the source implementation's use of a
// sentinel pointer value for the third state as an implementation hack;
// this type replaces it with an explicit discriminant.
type captureState uint8

const (
	captureNone captureState = iota
	captureActive
	captureSuspended
)

// capture marks a start offset in the chunk currently being scanned and,
// on a matching end event, forwards the captured range to a multipart
// router. At most one capture is active at a time (shared by member
// names, numbers, enum symbolic names, bytes fields, and map keys, none of
// which can nest within one another).
type capture struct {
	state captureState
	start int // offset into the current chunk; meaningful when state == captureActive
}

// Begin starts a capture at the given offset into the current chunk. It
// requires multipart accumulation to already be active and no other
// capture in progress.
func (c *capture) Begin(pos int) {
	c.state = captureActive
	c.start = pos
}

// End closes the capture, forwarding chunk[c.start:pos] to mp with
// can_alias=true, and returns to the "no capture" state.
func (c *capture) End(mp *multipart, chunk []byte, pos int) error {
	err := mp.Text(chunk[c.start:pos], true)
	c.state = captureNone
	return err
}

// Suspend is called when a chunk is exhausted while a capture is active
// but has not seen its terminating event. It forwards the partial slice
// with can_alias=false, forcing the multipart router to copy it before the
// chunk's backing array is reused by the caller, then marks the capture
// suspended so the next chunk can resume it.
func (c *capture) Suspend(mp *multipart, chunk []byte) error {
	if c.state != captureActive {
		return nil
	}
	if err := mp.Text(chunk[c.start:], false); err != nil {
		// Leave the capture active so the caller can rewind and re-scan
		// the token from its start offset on the next attempt.
		return err
	}
	c.state = captureSuspended
	return nil
}

// Resume is called at the start of every Parse invocation. If a capture
// was suspended at the end of the previous chunk, it re-anchors the
// capture at pos (ordinarily 0, the start of the new chunk).
func (c *capture) Resume(pos int) {
	if c.state == captureSuspended {
		c.state = captureActive
		c.start = pos
	}
}

// Active reports whether a capture is currently in progress (anchored in
// the current chunk; not suspended).
func (c *capture) Active() bool { return c.state == captureActive }
