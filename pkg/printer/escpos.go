package printer

import (
	"bytes"
	"strings"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Alignment is the ESC a argument.
type Alignment byte

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

// FontSize is the GS ! argument.
type FontSize byte

const (
	FontNormal FontSize = 0x00
	FontDouble FontSize = 0x11 // Double width + double height
	FontWide   FontSize = 0x10 // Double width only
	FontTall   FontSize = 0x01 // Double height only
)

// Drawer kick pulse: pin 2, 25 * 2ms on, 250 * 2ms off.
const (
	drawerPin     = 0x00
	drawerOnTime  = 0x19
	drawerOffTime = 0xFA
)

// DefaultWidth is the character width of 58mm paper.
const DefaultWidth = 32

// Style is the complete text style of one printed line. It is a value: every
// line states its own style, so nothing leaks from one line to the next.
type Style struct {
	Align Alignment
	Bold  bool
	Size  FontSize
}

var (
	StyleNormal = Style{}
	StyleBold   = Style{Bold: true}
	StyleCenter = Style{Align: AlignCenter}
	StyleTitle  = Style{Align: AlignCenter, Bold: true, Size: FontDouble}
)

// Document builds an ESC/POS byte stream for thermal printers.
// All text is passed through ToASCII before it is written.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument creates a new ESC/POS document with the given character width
// and writes the ESC @ initialize command.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = DefaultWidth
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

// Width returns the line width in characters at normal size.
func (d *Document) Width() int {
	return d.width
}

// Init sends the ESC @ (initialize printer) command.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// DrawerKick sends one ESC p pulse to the cash drawer port.
func (d *Document) DrawerKick() *Document {
	d.buf.Write([]byte{ESC, 'p', drawerPin, drawerOnTime, drawerOffTime})
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) applyStyle(s Style) {
	bold := byte(0)
	if s.Bold {
		bold = 1
	}
	d.buf.Write([]byte{
		ESC, 'a', byte(s.Align),
		ESC, 'E', bold,
		GS, '!', byte(s.Size),
	})
}

// Line writes one line of text in the given style followed by a line feed.
func (d *Document) Line(s Style, text string) *Document {
	d.applyStyle(s)
	d.buf.WriteString(ToASCII(text))
	d.buf.WriteByte(LF)
	return d
}

// Separator prints a full-width separator line (e.g. "--------------------------------").
func (d *Document) Separator(char byte) *Document {
	return d.Line(StyleNormal, strings.Repeat(string(char), d.width))
}

// KeyValue prints a left-aligned key and right-aligned value on the same line,
// separated by at least one space.
// Example: "Subtotal                  100.00"
func (d *Document) KeyValue(s Style, key, value string) *Document {
	return d.Line(s, PadBetween(ToASCII(key), ToASCII(value), d.width))
}

// PartialCut sends the partial cut command.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// PadBetween joins left and right with max(1, width-len(left)-len(right)) spaces.
func PadBetween(left, right string, width int) string {
	spaces := width - len(left) - len(right)
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}

// Truncate shortens s to at most n characters, marking the cut with "..".
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s
	}
	if n <= 2 {
		return s[:n]
	}
	return s[:n-2] + ".."
}
