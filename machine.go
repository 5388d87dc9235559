package streampb

import (
	"fmt"

	"go4.org/mem"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/hedgehog/upb/internal/escape"
)

// lexMode is the parser's current sub-token scanning mode: what kind of
// bytes it expects next, independent of the semantic frame stack. Unlike
// container nesting (object/array/string-value), none of these modes can
// nest inside itself, so a flat set of Parser fields suffices where the
// source machine used a second, Ragel-generated integer stack.
type lexMode uint8

const (
	lexBetween       lexMode = iota // skipping whitespace / awaiting a structural token or value
	lexString                       // inside a string's plain-text run
	lexStringEscape                 // just consumed '\\', awaiting the escape character
	lexStringUnicode                // accumulating a \uXXXX escape's four hex digits
	lexNumber                       // inside a number literal
	lexLiteral                      // matching "true", "false", or "null" literally
)

// stringScanKind records what an open string scan (lexString and its
// sub-modes) will do with the text once the closing quote is seen. This
// mirrors handle_mapentry's need to distinguish plain member-name text from
// field-value text without pushing a frame for the former.
type stringScanKind uint8

const (
	scanMemberName stringScanKind = iota
	scanStringField
	scanBytesField
	scanEnumField
)

// Parser is a single streaming parse in progress: all of its state
// persists across Parse calls, so chunk boundaries never lose context.
// A Parser is not safe for concurrent use, though many Parsers may share
// one ParserMethod (see ParserMethod's comment).
type Parser struct {
	method   *ParserMethod
	rootSink Sink

	frames *frameStack
	mp     multipart
	cap    capture

	mode     lexMode
	scanKind stringScanKind

	litWant string // "true", "false", or "null"
	litPos  int

	hexVal   uint16
	hexCount int

	offset int
	line   int
	col    int

	finished bool // the root object has been closed
	err      error
}

// newParser allocates a Parser bound to sink, in its initial state.
func newParser(method *ParserMethod, sink Sink) *Parser {
	return &Parser{
		method:   method,
		frames:   newFrameStack(method.maxDepth),
		rootSink: sink,
		line:     1,
	}
}

// Input returns the bytes-sink side of p, through which chunks are fed.
func (p *Parser) Input() BytesSink { return p }

// Parse implements BytesSink. It scans as much of chunk as forms complete
// tokens, driving Sink events as it goes.
func (p *Parser) Parse(chunk []byte, buf BufHandle) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.mp.SetBuf(buf)
	p.cap.Resume(0)

	i := 0
	for i < len(chunk) {
		var err error
		switch p.mode {
		case lexBetween:
			err = p.stepBetween(chunk, &i)
		case lexString:
			err = p.stepString(chunk, &i)
		case lexStringEscape:
			err = p.stepStringEscape(chunk, &i)
		case lexStringUnicode:
			err = p.stepStringUnicode(chunk, &i)
		case lexNumber:
			err = p.stepNumber(chunk, &i)
		case lexLiteral:
			err = p.stepLiteral(chunk, &i)
		}
		if err != nil {
			p.fail(err)
			return i, p.err
		}
	}
	if err := p.cap.Suspend(&p.mp, chunk); err != nil {
		p.fail(err)
		return i, p.err
	}
	// A capture closed by an escape just before the seam can leave the
	// accumulator aliasing this chunk; copy it before the chunk is released.
	if acc := &p.mp.acc; acc.alias.Len() > 0 {
		held := mem.Append(nil, acc.alias)
		acc.Clear()
		if err := acc.Append(held, false); err != nil {
			p.fail(err)
			return i, p.err
		}
	}
	return i, nil
}

// End implements BytesSink. It reports an error if the document was left
// incomplete: an open object, array, or string/number value.
func (p *Parser) End() error {
	if p.err != nil {
		return p.err
	}
	if !p.finished || !p.frames.empty() || p.mode != lexBetween {
		p.fail(p.syntaxErr("Parse error: unexpected end of input"))
		return p.err
	}
	return nil
}

// fail tags err with the current parse location (if it is one of the
// machine's own error kinds and doesn't already carry one), records it as
// the Parser's sticky error, and returns it.
func (p *Parser) fail(err error) error {
	if err == nil {
		return nil
	}
	switch e := err.(type) {
	case *SyntaxError:
		if (e.Location == Location{}) {
			e.Location = p.loc()
		}
	case *SemanticError:
		if (e.Location == Location{}) {
			e.Location = p.loc()
		}
	}
	p.err = err
	return err
}

func (p *Parser) syntaxErr(msg string) error {
	return &SyntaxError{Location: p.loc(), Message: msg}
}

func (p *Parser) semanticErr(msg string) error {
	return &SemanticError{Location: p.loc(), Message: msg}
}

func (p *Parser) loc() Location {
	return Location{Offset: p.offset, LineCol: LineCol{Line: p.line, Column: p.col}}
}

// advance records that b has been consumed at the current position.
func (p *Parser) advance(b byte) {
	p.offset++
	if b == '\n' {
		p.line++
		p.col = 0
	} else {
		p.col++
	}
}

func isWS(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func isNumberByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '-' || b == '+' || b == '.' || b == 'e' || b == 'E'
}

// memString copies a mem.RO value into a string. Used only at the end of a
// buffered (ACCUMULATE) scan, where the text is short-lived (member names,
// numbers, enum symbols).
func memString(b mem.RO) string {
	buf := make([]byte, b.Len())
	for i := 0; i < b.Len(); i++ {
		buf[i] = b.At(i)
	}
	return string(buf)
}

// stepBetween skips whitespace and, once a non-whitespace byte is found,
// dispatches it according to the current grammar position: the very first
// '{' of the document, or a structural/value token within whatever object
// or array is open.
func (p *Parser) stepBetween(chunk []byte, i *int) error {
	for *i < len(chunk) && isWS(chunk[*i]) {
		p.advance(chunk[*i])
		*i++
	}
	if *i >= len(chunk) {
		return nil
	}
	b := chunk[*i]

	if p.frames.empty() {
		return p.dispatchRoot(chunk, i, b)
	}

	g := p.frames.grammar()
	switch g.kind {
	case kindObject, kindMapObject:
		return p.dispatchObject(g, chunk, i, b)
	case kindArray:
		return p.dispatchArray(g, chunk, i, b)
	default:
		return p.semanticErr("internal: unexpected grammar frame kind")
	}
}

// dispatchRoot handles "main := ws object ws": the single '{' that opens
// the document, and rejects anything after the matching '}'.
func (p *Parser) dispatchRoot(chunk []byte, i *int, b byte) error {
	if p.finished {
		return p.syntaxErr(fmt.Sprintf("Parse error at %q: trailing data", b))
	}
	if b != '{' {
		return p.syntaxErr(fmt.Sprintf("Parse error at %q: expected '{'", b))
	}
	names := p.method.nameTableFor(p.method.root)
	if err := p.frames.push(frame{kind: kindObject, sink: p.rootSink, msg: p.method.root, names: names, phase: phaseAwaitKey}); err != nil {
		return err
	}
	if err := p.rootSink.BeginMessage(); err != nil {
		return sinkErr(err)
	}
	p.advance(b)
	*i++
	return nil
}

// dispatchObject handles one byte of "object := '{' ws (member (','
// member)*)? '}'" for a frame g that is either an ordinary message object
// or a map's synthetic member sequence.
func (p *Parser) dispatchObject(g *frame, chunk []byte, i *int, b byte) error {
	switch g.phase {
	case phaseAwaitKey:
		if b == '}' && !g.seenItem {
			return p.closeObject(chunk, i, b)
		}
		if b != '"' {
			return p.syntaxErr(fmt.Sprintf("Parse error at %q: expected member name", b))
		}
		p.mp.StartAccumulate()
		p.scanKind = scanMemberName
		return p.beginStringScan(chunk, i, b)

	case phaseAwaitColon:
		if b != ':' {
			return p.syntaxErr(fmt.Sprintf("Parse error at %q: expected ':'", b))
		}
		g.phase = phaseAwaitValue
		p.advance(b)
		*i++
		return nil

	case phaseAwaitValue:
		return p.dispatchValue(p.frames.cur(), chunk, i, b)

	case phaseAwaitComma:
		switch b {
		case ',':
			g.phase = phaseAwaitKey
			p.advance(b)
			*i++
			return nil
		case '}':
			return p.closeObject(chunk, i, b)
		default:
			return p.syntaxErr(fmt.Sprintf("Parse error at %q: expected ',' or '}'", b))
		}

	default:
		return p.semanticErr("internal: bad object phase")
	}
}

// closeObject handles end-object followed by end-subobject: it closes the
// top frame (emitting endmsg unless it was a map frame, which never got a
// startmsg either) and, unless this was the root, reports the closure to
// the parent via endseq or endsubmsg.
func (p *Parser) closeObject(chunk []byte, i *int, b byte) error {
	top := p.frames.cur()
	if top.kind != kindMapObject {
		if err := top.sink.EndMessage(); err != nil {
			return sinkErr(err)
		}
	}
	popped := p.frames.pop()
	p.advance(b)
	*i++

	if p.frames.empty() {
		p.finished = true
		return nil
	}
	parent := p.frames.cur()
	if popped.kind == kindMapObject {
		if err := parent.sink.EndSequence(popped.owner); err != nil {
			return sinkErr(err)
		}
	} else {
		if err := parent.sink.EndSubMessage(popped.owner); err != nil {
			return sinkErr(err)
		}
	}
	return p.valueFinished()
}

// dispatchArray handles one byte of "array := '[' ws (element (','
// element)*)? ']'".
func (p *Parser) dispatchArray(g *frame, chunk []byte, i *int, b byte) error {
	switch g.phase {
	case phaseAwaitValue:
		if b == ']' && !g.seenItem {
			return p.closeArray(chunk, i, b)
		}
		return p.dispatchValue(p.frames.cur(), chunk, i, b)

	case phaseAwaitComma:
		switch b {
		case ',':
			g.phase = phaseAwaitValue
			p.advance(b)
			*i++
			return nil
		case ']':
			return p.closeArray(chunk, i, b)
		default:
			return p.syntaxErr(fmt.Sprintf("Parse error at %q: expected ',' or ']'", b))
		}

	default:
		return p.semanticErr("internal: bad array phase")
	}
}

func (p *Parser) closeArray(chunk []byte, i *int, b byte) error {
	popped := p.frames.pop()
	p.advance(b)
	*i++
	if err := p.frames.cur().sink.EndSequence(popped.owner); err != nil {
		return sinkErr(err)
	}
	return p.valueFinished()
}

// valueFinished is called once a member's or element's value has been
// fully emitted. If the value just completed was a map entry's value, it
// first closes the synthetic map-entry frame (end-member's is_mapentry
// case); whichever frame is then on top awaits the next ',' or close.
func (p *Parser) valueFinished() error {
	if !p.frames.empty() && p.frames.cur().kind == kindMapEntry {
		if err := endMapEntry(p.frames); err != nil {
			return err
		}
	}
	if p.frames.empty() {
		return nil
	}
	f := p.frames.cur()
	if f.kind != kindArray {
		f.field = nil
	}
	f.phase = phaseAwaitComma
	f.seenItem = true
	return nil
}

// dispatchValue is "value2": it looks at the first byte of a value and
// starts the matching sub-scan against g, the frame whose current field
// (g.field) the value belongs to.
func (p *Parser) dispatchValue(g *frame, chunk []byte, i *int, b byte) error {
	switch {
	case b == '{':
		return p.startSubobject(g, chunk, i, b)
	case b == '[':
		return p.startArrayValue(g, chunk, i, b)
	case b == '"':
		return p.startValueString(g, chunk, i, b)
	case b == 't', b == 'f', b == 'n':
		return p.startLiteral(g, chunk, i, b)
	case b == '-' || (b >= '0' && b <= '9'):
		return p.startNumber(g, chunk, i, b)
	default:
		return p.syntaxErr(fmt.Sprintf("Parse error at %q", b))
	}
}

// startSubobject implements start-subobject.
func (p *Parser) startSubobject(g *frame, chunk []byte, i *int, b byte) error {
	fd := g.field
	if fd == nil {
		return p.semanticErr("internal: no current field")
	}
	if fd.IsMap() {
		child, err := g.sink.BeginSequence(fd)
		if err != nil {
			return sinkErr(err)
		}
		if err := p.frames.push(frame{kind: kindMapObject, sink: child, msg: fd.Message(), owner: fd, phase: phaseAwaitKey}); err != nil {
			return err
		}
		p.advance(b)
		*i++
		return nil
	}
	if fd.Kind() != protoreflect.MessageKind && fd.Kind() != protoreflect.GroupKind {
		return p.semanticErr("Object specified for non-message field")
	}
	child, err := g.sink.BeginSubMessage(fd)
	if err != nil {
		return sinkErr(err)
	}
	names := p.method.nameTableFor(fd.Message())
	if err := p.frames.push(frame{kind: kindObject, sink: child, msg: fd.Message(), names: names, owner: fd, phase: phaseAwaitKey}); err != nil {
		return err
	}
	if err := child.BeginMessage(); err != nil {
		return sinkErr(err)
	}
	p.advance(b)
	*i++
	return nil
}

// startArrayValue implements start-array.
func (p *Parser) startArrayValue(g *frame, chunk []byte, i *int, b byte) error {
	fd := g.field
	if fd == nil || fd.IsMap() || !fd.IsList() {
		return p.semanticErr("Array specified for non-repeated field")
	}
	child, err := g.sink.BeginSequence(fd)
	if err != nil {
		return sinkErr(err)
	}
	if err := p.frames.push(frame{kind: kindArray, sink: child, field: fd, owner: fd, phase: phaseAwaitValue}); err != nil {
		return err
	}
	p.advance(b)
	*i++
	return nil
}

// startValueString implements start-value-string.
func (p *Parser) startValueString(g *frame, chunk []byte, i *int, b byte) error {
	fd := g.field
	if fd == nil {
		return p.semanticErr("internal: no current field")
	}
	switch fd.Kind() {
	case protoreflect.StringKind, protoreflect.BytesKind:
		child, err := g.sink.BeginString(fd, 0)
		if err != nil {
			return sinkErr(err)
		}
		if err := p.frames.push(frame{kind: kindStringValue, sink: child, field: fd, owner: fd}); err != nil {
			return err
		}
		if fd.Kind() == protoreflect.StringKind {
			p.mp.StartPush(child, fd)
			p.scanKind = scanStringField
		} else {
			p.mp.StartAccumulate()
			p.scanKind = scanBytesField
		}
	case protoreflect.EnumKind:
		p.mp.StartAccumulate()
		p.scanKind = scanEnumField
	default:
		return p.semanticErr("String specified for non-string/non-enum field")
	}
	return p.beginStringScan(chunk, i, b)
}

// beginStringScan consumes the opening quote and switches to lexString,
// anchoring a capture right after it.
func (p *Parser) beginStringScan(chunk []byte, i *int, b byte) error {
	p.advance(b)
	*i++
	p.mode = lexString
	p.cap.Begin(*i)
	return nil
}

// startLiteral implements the "true" / "false" / "null" productions.
func (p *Parser) startLiteral(g *frame, chunk []byte, i *int, b byte) error {
	switch b {
	case 't':
		p.litWant = "true"
	case 'f':
		p.litWant = "false"
	default:
		p.litWant = "null"
	}
	p.litPos = 0
	p.mode = lexLiteral
	return p.stepLiteral(chunk, i)
}

func (p *Parser) stepLiteral(chunk []byte, i *int) error {
	for *i < len(chunk) && p.litPos < len(p.litWant) {
		b := chunk[*i]
		if b != p.litWant[p.litPos] {
			return p.syntaxErr(fmt.Sprintf("Parse error at %q: invalid literal", b))
		}
		p.advance(b)
		*i++
		p.litPos++
	}
	if p.litPos < len(p.litWant) {
		return nil
	}
	return p.finishLiteral()
}

// finishLiteral implements the "bool / null" transition: null is silently
// accepted as "leave default"; true/false require a BOOL field.
func (p *Parser) finishLiteral() error {
	g := p.frames.cur()
	switch p.litWant {
	case "true", "false":
		fd := g.field
		if fd == nil || fd.Kind() != protoreflect.BoolKind {
			return p.semanticErr("Boolean value specified for non-bool field")
		}
		if err := g.sink.PutBool(fd, p.litWant == "true"); err != nil {
			return sinkErr(err)
		}
	}
	p.mode = lexBetween
	p.litWant = ""
	return p.valueFinished()
}

// startNumber implements on-number-start: accumulate and scan until the
// first non-number-grammar byte.
func (p *Parser) startNumber(g *frame, chunk []byte, i *int, b byte) error {
	p.mp.StartAccumulate()
	p.mode = lexNumber
	p.cap.Begin(*i)
	return p.stepNumber(chunk, i)
}

func (p *Parser) stepNumber(chunk []byte, i *int) error {
	for *i < len(chunk) && isNumberByte(chunk[*i]) {
		p.advance(chunk[*i])
		*i++
	}
	if *i >= len(chunk) {
		return nil
	}
	// The terminator is not consumed; it is re-scanned by the caller's
	// frame in its own context (value2's "rewind one byte" rule).
	if err := p.cap.End(&p.mp, chunk, *i); err != nil {
		return err
	}
	text := memString(p.mp.Bytes())
	p.mp.End()
	g := p.frames.cur()
	if err := coerceNumber(g.sink, g.field, text); err != nil {
		return err
	}
	p.mode = lexBetween
	return p.valueFinished()
}

// stepString scans a string's plain-text run, stopping at '\\' or the
// closing '"'.
func (p *Parser) stepString(chunk []byte, i *int) error {
	if !p.cap.Active() {
		p.cap.Begin(*i)
	}
	for *i < len(chunk) {
		b := chunk[*i]
		switch b {
		case '"':
			if err := p.cap.End(&p.mp, chunk, *i); err != nil {
				return err
			}
			p.advance(b)
			*i++
			return p.finishString(chunk, i)
		case '\\':
			if err := p.cap.End(&p.mp, chunk, *i); err != nil {
				return err
			}
			p.advance(b)
			*i++
			p.mode = lexStringEscape
			return nil
		default:
			p.advance(b)
			*i++
		}
	}
	return nil
}

func (p *Parser) stepStringEscape(chunk []byte, i *int) error {
	b := chunk[*i]
	if b == 'u' {
		p.advance(b)
		*i++
		p.mode = lexStringUnicode
		p.hexVal = 0
		p.hexCount = 0
		return nil
	}
	decoded, ok := escape.Simple(b)
	if !ok {
		return p.syntaxErr(fmt.Sprintf("Parse error: invalid escape %q", b))
	}
	if err := p.mp.Text([]byte{decoded}, false); err != nil {
		return err
	}
	p.advance(b)
	*i++
	p.mode = lexString
	return nil
}

func (p *Parser) stepStringUnicode(chunk []byte, i *int) error {
	for *i < len(chunk) && p.hexCount < 4 {
		b := chunk[*i]
		v, ok := escape.HexValue(b)
		if !ok {
			return p.syntaxErr(fmt.Sprintf("Parse error: invalid hex digit %q", b))
		}
		p.hexVal = p.hexVal<<4 | uint16(v)
		p.advance(b)
		*i++
		p.hexCount++
	}
	if p.hexCount < 4 {
		return nil
	}
	buf := escape.AppendUTF16(nil, rune(p.hexVal))
	if err := p.mp.Text(buf, false); err != nil {
		return err
	}
	p.mode = lexString
	return nil
}

// finishString implements end-membername and end-value-string, chosen by
// what kind of string scan is closing.
func (p *Parser) finishString(chunk []byte, i *int) error {
	switch p.scanKind {
	case scanMemberName:
		return p.finishMemberName()

	case scanStringField:
		child := p.frames.pop()
		p.mp.End()
		if err := p.frames.cur().sink.EndString(child.field); err != nil {
			return sinkErr(err)
		}
		p.mode = lexBetween
		return p.valueFinished()

	case scanBytesField:
		child := p.frames.pop()
		data := p.mp.Bytes()
		decodeErr := decodeBase64(child.sink, child.field, data)
		p.mp.End()
		if decodeErr != nil {
			return decodeErr
		}
		if err := p.frames.cur().sink.EndString(child.field); err != nil {
			return sinkErr(err)
		}
		p.mode = lexBetween
		return p.valueFinished()

	case scanEnumField:
		g := p.frames.cur()
		text := memString(p.mp.Bytes())
		p.mp.End()
		fd := g.field
		ev := fd.Enum().Values().ByName(protoreflect.Name(text))
		if ev == nil {
			return p.semanticErr("Enum value unknown: " + text)
		}
		if err := g.sink.PutInt32(fd, int32(ev.Number())); err != nil {
			return sinkErr(err)
		}
		p.mode = lexBetween
		return p.valueFinished()

	default:
		return p.semanticErr("internal: unknown string scan kind")
	}
}

// finishMemberName implements end-membername.
func (p *Parser) finishMemberName() error {
	name := memString(p.mp.Bytes())
	p.mp.End()

	g := p.frames.grammar()
	if g.kind == kindMapObject {
		if err := beginMapEntry(p.frames, name); err != nil {
			return err
		}
	} else {
		fd, ok := g.names.lookup(name)
		if !ok {
			return p.semanticErr("No such field: " + name)
		}
		g.field = fd
	}
	g.phase = phaseAwaitColon
	p.mode = lexBetween
	return nil
}
