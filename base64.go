package streampb

import (
	"go4.org/mem"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// b64Table maps an ASCII byte to its 6-bit standard-base64 value, or -1 if
// the byte is not part of the alphabet. It is a package-level constant
// table, not the module-static mutable table the design notes flag as a
// re-architecture target.
var b64Table = func() (t [256]int8) {
	for i := range t {
		t[i] = -1
	}
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	for i := 0; i < len(alphabet); i++ {
		t[alphabet[i]] = int8(i)
	}
	return t
}()

// decodeBase64 decodes the accumulated bytes field b in 4-character groups
// and forwards the decoded bytes to sink.PutString for field, one, two, or
// three bytes at a time (the design is buffered-only; streaming base64
// decode across chunk boundaries is explicitly out of scope).
func decodeBase64(sink Sink, field protoreflect.FieldDescriptor, b mem.RO) error {
	n := b.Len()
	if n%4 != 0 {
		return fieldErr(field, "Base64 input not a multiple of 4")
	}
	var group [4]byte
	for i := 0; i < n; i += 4 {
		for j := 0; j < 4; j++ {
			group[j] = b.At(i + j)
		}
		out, nout, err := decodeBase64Group(group)
		if err != nil {
			return fieldErr(field, err.Error())
		}
		if err := sink.PutString(field, out[:nout], nil); err != nil {
			return err
		}
	}
	return nil
}

// decodeBase64Group decodes one 4-character group into up to 3 bytes.
// Concatenating the four 6-bit values into a 24-bit word and slicing it
// into bytes avoids any bit-shuffling special case for the padded forms;
// only the output length differs.
func decodeBase64Group(g [4]byte) (out [3]byte, n int, err error) {
	eq2, eq3 := g[2] == '=', g[3] == '='
	var vals [4]int32
	for i, ch := range g {
		if ch == '=' {
			// Padding is only legal at position 3 (one trailing byte
			// dropped) or positions 2-3 together (two trailing bytes
			// dropped).
			if !(i == 3 || (i == 2 && eq3)) {
				return out, 0, errBadPadding
			}
			continue
		}
		v := b64Table[ch]
		if v < 0 {
			return out, 0, errBadBase64Chars
		}
		vals[i] = int32(v)
	}
	word := vals[0]<<18 | vals[1]<<12 | vals[2]<<6 | vals[3]
	out[0] = byte(word >> 16)
	out[1] = byte(word >> 8)
	out[2] = byte(word)
	switch {
	case eq2 && eq3:
		return out, 1, nil
	case eq3:
		return out, 2, nil
	default:
		return out, 3, nil
	}
}

var (
	errBadPadding     = errString("Incorrect base64 padding")
	errBadBase64Chars = errString("Non-base64 characters")
)

type errString string

func (e errString) Error() string { return string(e) }

func fieldErr(field protoreflect.FieldDescriptor, msg string) error {
	name := ""
	if field != nil {
		name = string(field.Name())
	}
	return &SemanticError{Field: name, Message: msg}
}
