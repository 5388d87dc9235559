package streampb

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

// A Location describes the position in the input at which an error was
// detected. Offset is relative to the start of the logical document, not
// the start of the chunk currently being parsed.
type Location struct {
	Offset int // byte offset from the start of the document, 0-based
	LineCol
}
