// Package charset detects byte-order marks and decodes text streams to UTF-8.
package charset

import "bytes"

// SniffLength is the number of leading bytes inspected for a byte-order mark
const SniffLength = 6

// Signature is a byte-order mark identifying a charset
type Signature struct {
	Charset string
	Bytes   []byte
}

// signatures is ordered: the first match wins. UTF-32LE must precede UTF-16LE
// because FF FE is a prefix of FF FE 00 00.
var signatures = []Signature{
	{Charset: "UTF-8", Bytes: []byte{0xEF, 0xBB, 0xBF}},
	{Charset: "UTF-32BE", Bytes: []byte{0x00, 0x00, 0xFE, 0xFF}},
	{Charset: "UTF-32LE", Bytes: []byte{0xFF, 0xFE, 0x00, 0x00}},
	{Charset: "UTF-16BE", Bytes: []byte{0xFE, 0xFF}},
	{Charset: "UTF-16LE", Bytes: []byte{0xFF, 0xFE}},
	{Charset: "GB18030", Bytes: []byte{0x84, 0x31, 0x95, 0x33}},
}

// Signatures returns the byte-order mark table in match order
func Signatures() []Signature {
	out := make([]Signature, len(signatures))
	for i, s := range signatures {
		out[i] = Signature{Charset: s.Charset, Bytes: bytes.Clone(s.Bytes)}
	}
	return out
}

// Sniff returns the first signature that is a prefix of head.
// head is not modified; callers peek it without consuming the stream.
func Sniff(head []byte) (Signature, bool) {
	for _, s := range signatures {
		if bytes.HasPrefix(head, s.Bytes) {
			return s, true
		}
	}
	return Signature{}, false
}
