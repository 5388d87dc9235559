package streampb

import "go4.org/mem"

// initialAccumBytes is the size of the first owned buffer an accumulator
// allocates, once it can no longer alias its input. Doubling from here
// keeps reallocation rare for the short member names and numbers that make
// up most JSON documents.
const initialAccumBytes = 128

// accumulator holds a logical byte string assembled from zero or more
// input slices. While only a single slice has ever been appended and the
// caller allows it, the accumulator aliases that slice directly (no copy).
// Once a second slice arrives, or the caller forbids aliasing (because the
// source chunk will not outlive this call), the accumulator copies
// everything seen so far into an owned, geometrically-growing buffer.
type accumulator struct {
	owned []byte // retained across Clear, to amortize allocation
	alias mem.RO // valid only while owned is empty
}

// Clear resets the logical content to empty. The owned buffer's storage is
// retained so a subsequent Append can reuse it.
func (a *accumulator) Clear() {
	a.owned = a.owned[:0]
	a.alias = mem.RO{}
}

func (a *accumulator) empty() bool { return len(a.owned) == 0 && a.alias.Len() == 0 }

// Append adds b to the logical content. If canAlias is true and the
// accumulator is currently empty, b is adopted by reference; otherwise it
// is copied into the owned buffer (along with any content currently
// aliased, which is copied in first).
func (a *accumulator) Append(b []byte, canAlias bool) error {
	if len(b) == 0 {
		return nil
	}
	if canAlias && a.empty() {
		a.alias = mem.B(b)
		return nil
	}
	aliased := a.alias
	need := len(a.owned) + aliased.Len() + len(b)
	if need < 0 {
		return &SemanticError{Message: "Integer overflow"}
	}
	if err := a.grow(need); err != nil {
		return err
	}
	if aliased.Len() > 0 {
		a.owned = mem.Append(a.owned, aliased)
		a.alias = mem.RO{}
	}
	a.owned = append(a.owned, b...)
	return nil
}

// grow ensures the owned buffer has capacity for at least need bytes,
// doubling from initialAccumBytes with an overflow check on the doubling
// itself (a saturating multiply: if doubling would wrap around to a
// smaller number, that is reported as an integer overflow rather than
// silently under-allocating).
func (a *accumulator) grow(need int) error {
	if cap(a.owned) >= need {
		return nil
	}
	newCap := initialAccumBytes
	if cap(a.owned) > newCap {
		newCap = cap(a.owned)
	}
	for newCap < need {
		next := newCap * 2
		if next <= newCap {
			return &SemanticError{Message: "Integer overflow"}
		}
		newCap = next
	}
	buf := make([]byte, len(a.owned), newCap)
	copy(buf, a.owned)
	a.owned = buf
	return nil
}

// Get returns the logical content accumulated so far. The result is valid
// only until the next Append call whose argument is not aliased (i.e.
// until the next call with canAlias == false, or a call made while the
// accumulator already held aliased content).
func (a *accumulator) Get() mem.RO {
	if a.alias.Len() > 0 {
		return a.alias
	}
	return mem.B(a.owned)
}
