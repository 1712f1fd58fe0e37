// Package writer accumulates generated C preprocessor text line by line.
package writer

import (
	"fmt"
	"strings"
)

// Writer builds C header text. Guards and conditionals take a body callback
// so the closing directive is always written after the body, and not at all
// when the body fails.
type Writer struct {
	sb strings.Builder
}

// New creates an empty writer
func New() *Writer {
	return &Writer{}
}

// Write writes s as-is
func (w *Writer) Write(s string) {
	w.sb.WriteString(s)
}

// Writef writes a formatted string without adding a newline
func (w *Writer) Writef(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, format, args...)
}

// WriteLine writes s followed by a newline
func (w *Writer) WriteLine(s string) {
	w.sb.WriteString(s)
	w.Newline()
}

// WriteLinef writes a formatted line
func (w *Writer) WriteLinef(format string, args ...interface{}) {
	w.Writef(format, args...)
	w.Newline()
}

// Newline writes a line break. Calling it right after a full line produces
// a blank line.
func (w *Writer) Newline() {
	w.sb.WriteByte('\n')
}

// WriteDefine writes "#define name value". An empty value still keeps the
// separating space, giving a macro with no replacement text.
func (w *Writer) WriteDefine(name, value string) {
	w.WriteLinef("#define %s %s", name, value)
}

// WriteGuard wraps body in an include guard keyed by name:
//
//	#ifndef name
//	#define name 1
//	...
//	#endif /* name */
func (w *Writer) WriteGuard(name string, body func() error) error {
	w.WriteLinef("#ifndef %s", name)
	w.WriteDefine(name, "1")
	if err := body(); err != nil {
		return err
	}
	w.WriteComment("#endif", name)
	return nil
}

// WriteConditional wraps body in "#if defined(symbol)" ... "#endif /* symbol */".
func (w *Writer) WriteConditional(symbol string, body func() error) error {
	w.WriteLinef("#if defined(%s)", symbol)
	if err := body(); err != nil {
		return err
	}
	w.WriteComment("#endif", symbol)
	return nil
}

// WriteComment writes directive followed by a C block comment, e.g.
// "#endif /* GLBIND_WGL */". An empty directive writes just the comment.
func (w *Writer) WriteComment(directive, comment string) {
	if directive != "" {
		w.Write(directive + " ")
	}
	w.WriteLinef("/* %s */", comment)
}

// Len returns the number of bytes written so far
func (w *Writer) Len() int {
	return w.sb.Len()
}

// String returns the generated text
func (w *Writer) String() string {
	return w.sb.String()
}

// Bytes returns the generated text as a byte slice
func (w *Writer) Bytes() []byte {
	return []byte(w.sb.String())
}

// Reset discards everything written
func (w *Writer) Reset() {
	w.sb.Reset()
}
