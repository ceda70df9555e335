// Package resp implements the RESP (Redis Serialization Protocol) framing
// used on the wire: a streaming decoder, an encoder, and the Frame value
// type shared by both (component E).
package resp

// Kind tags which of the five RESP frame shapes a Frame holds.
type Kind byte

const (
	KindSimple Kind = iota
	KindError
	KindInteger
	KindBulk
	KindArray
)

// Frame is RESP's wire value: one of Simple, Error, Integer, Bulk (bytes or
// nil), or Array (frames or nil). Only one payload field is meaningful per
// Kind; the null flags distinguish "$-1\r\n" / "*-1\r\n" from empty.
type Frame struct {
	Kind Kind

	Str []byte // KindSimple, KindError

	Int int64 // KindInteger

	Bulk     []byte // KindBulk
	BulkNull bool

	Array     []Frame // KindArray
	ArrayNull bool
}

// Simple constructs a "+...\r\n" frame.
func Simple(s string) Frame { return Frame{Kind: KindSimple, Str: []byte(s)} }

// Err constructs a "-...\r\n" frame.
func Err(msg string) Frame { return Frame{Kind: KindError, Str: []byte(msg)} }

// Integer constructs a ":...\r\n" frame.
func Integer(v int64) Frame { return Frame{Kind: KindInteger, Int: v} }

// Bulk constructs a "$<len>\r\n<bytes>\r\n" frame. A nil slice still encodes
// as an empty bulk string ("$0\r\n\r\n"); use BulkNil for "$-1\r\n".
func Bulk(b []byte) Frame { return Frame{Kind: KindBulk, Bulk: b} }

// BulkNil constructs the nil bulk frame "$-1\r\n".
func BulkNil() Frame { return Frame{Kind: KindBulk, BulkNull: true} }

// Array constructs a "*<count>\r\n..." frame.
func Array(items []Frame) Frame { return Frame{Kind: KindArray, Array: items} }

// ArrayNil constructs the nil array frame "*-1\r\n".
func ArrayNil() Frame { return Frame{Kind: KindArray, ArrayNull: true} }

// OKFrame is the shared "+OK\r\n" constant commands reply with on success.
var OKFrame = Simple("OK")
