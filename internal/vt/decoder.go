// Package vt turns raw terminal output into display operations.
//
// The decoder is a byte filter, not an escape-sequence interpreter: every
// byte is classified on its own, so the bytes of a CSI or OSC sequence show
// up as individual printable characters and multi-byte UTF-8 input is
// dropped byte by byte.
package vt

import "fmt"

// OpKind identifies a display operation.
type OpKind uint8

const (
	OpPrint OpKind = iota
	OpNewline
	OpCarriageReturn
	OpBackspace
)

func (k OpKind) String() string {
	switch k {
	case OpPrint:
		return "Print"
	case OpNewline:
		return "Newline"
	case OpCarriageReturn:
		return "CarriageReturn"
	case OpBackspace:
		return "Backspace"
	default:
		return fmt.Sprintf("OpKind(%d)", uint8(k))
	}
}

// Op is one edit applied to the grid. Ch is only meaningful for OpPrint.
type Op struct {
	Kind OpKind
	Ch   rune
}

// Print returns the Print operation for ch.
func Print(ch rune) Op { return Op{Kind: OpPrint, Ch: ch} }

var (
	Newline        = Op{Kind: OpNewline}
	CarriageReturn = Op{Kind: OpCarriageReturn}
	Backspace      = Op{Kind: OpBackspace}
)

func (o Op) String() string {
	if o.Kind == OpPrint {
		return fmt.Sprintf("Print(%q)", o.Ch)
	}
	return o.Kind.String()
}

// Decoder classifies output bytes. It keeps no state between calls, so a
// zero Decoder is ready to use and may be shared by value.
type Decoder struct{}

// NewDecoder returns a Decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// Advance appends the operations for in to out and returns the extended slice.
func (Decoder) Advance(in []byte, out []Op) []Op {
	for _, b := range in {
		switch {
		case b == '\n':
			out = append(out, Newline)
		case b == '\r':
			out = append(out, CarriageReturn)
		case b == 0x08:
			out = append(out, Backspace)
		case b >= 0x20 && b <= 0x7e:
			out = append(out, Print(rune(b)))
		}
	}
	return out
}

// Decode returns the operations for in as a fresh slice.
func Decode(in []byte) []Op {
	return Decoder{}.Advance(in, make([]Op, 0, len(in)))
}
