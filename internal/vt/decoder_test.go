package vt

import (
	"reflect"
	"testing"
)

func TestDecodeMapping(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []Op
	}{
		{"empty", nil, []Op{}},
		{"printable", []byte("Az~ "), []Op{Print('A'), Print('z'), Print('~'), Print(' ')}},
		{"newline", []byte{'\n'}, []Op{Newline}},
		{"carriage return", []byte{'\r'}, []Op{CarriageReturn}},
		{"backspace", []byte{0x08}, []Op{Backspace}},
		{"crlf fixture", []byte("AB\r\nC"), []Op{Print('A'), Print('B'), CarriageReturn, Newline, Print('C')}},
		{"controls dropped", []byte{0x00, 0x07, '\t', 0x1b, 0x7f}, []Op{}},
		{"high bytes dropped", []byte{0x80, 0xc3, 0xa9, 0xff}, []Op{}},
		{
			"escape sequence is not interpreted",
			[]byte("\x1b[31mX"),
			[]Op{Print('['), Print('3'), Print('1'), Print('m'), Print('X')},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Decode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAdvanceAppends(t *testing.T) {
	d := NewDecoder()
	out := []Op{Newline}
	out = d.Advance([]byte("a"), out)
	out = d.Advance([]byte("\r"), out)
	want := []Op{Newline, Print('a'), CarriageReturn}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestAdvanceIsStatelessAcrossSplits(t *testing.T) {
	// A UTF-8 character split over two reads is dropped in both halves.
	var d Decoder
	first := d.Advance([]byte{'x', 0xc3}, nil)
	second := d.Advance([]byte{0xa9, 'y'}, nil)
	if !reflect.DeepEqual(first, []Op{Print('x')}) {
		t.Fatalf("first chunk = %v", first)
	}
	if !reflect.DeepEqual(second, []Op{Print('y')}) {
		t.Fatalf("second chunk = %v", second)
	}
}

func TestEveryByteClassified(t *testing.T) {
	for b := 0; b < 256; b++ {
		ops := Decode([]byte{byte(b)})
		switch {
		case b == '\n', b == '\r', b == 0x08:
			if len(ops) != 1 || ops[0].Kind == OpPrint {
				t.Fatalf("byte %#x: got %v", b, ops)
			}
		case b >= 0x20 && b <= 0x7e:
			if len(ops) != 1 || ops[0] != Print(rune(b)) {
				t.Fatalf("byte %#x: got %v", b, ops)
			}
		default:
			if len(ops) != 0 {
				t.Fatalf("byte %#x: expected no ops, got %v", b, ops)
			}
		}
	}
}

func TestOpString(t *testing.T) {
	if got := Print('q').String(); got != `Print('q')` {
		t.Fatalf("Print string = %s", got)
	}
	if got := Backspace.String(); got != "Backspace" {
		t.Fatalf("Backspace string = %s", got)
	}
	if got := OpKind(9).String(); got != "OpKind(9)" {
		t.Fatalf("unknown kind string = %s", got)
	}
}
