package dict

import (
	"fmt"

	"github.com/edirooss/resp-store/internal/wire"
)

// EncodeValue serializes v into the shared binary value format: a one-byte
// tag followed by a type-specific payload. This is the format DUMP emits and
// RESTORE parses, and the format write records embed for value arguments.
func EncodeValue(v Value) []byte {
	var buf []byte
	switch t := v.(type) {
	case Null:
		buf = append(buf, wire.TagNull)
	case Str:
		buf = append(buf, wire.TagStr)
		buf = wire.PutBytes(buf, []byte(t))
	case Bytes:
		buf = append(buf, wire.TagBytes)
		buf = wire.PutBytes(buf, []byte(t))
	case Int:
		buf = append(buf, wire.TagInt)
		buf = wire.PutInt64(buf, int64(t))
	case Float:
		buf = append(buf, wire.TagFloat)
		buf = wire.PutFloat64(buf, float64(t))
	case *Deque:
		buf = append(buf, wire.TagDeque)
		buf = wire.PutUvarint(buf, uint64(len(t.items)))
		for _, item := range t.items {
			buf = wire.PutBytes(buf, item)
		}
	case *Kvp:
		buf = append(buf, wire.TagKvp)
		buf = wire.PutUvarint(buf, uint64(len(t.fields)))
		for field, val := range t.fields {
			buf = wire.PutBytes(buf, []byte(field))
			buf = wire.PutBytes(buf, val)
		}
	case *Set:
		buf = append(buf, wire.TagSet)
		buf = wire.PutUvarint(buf, uint64(len(t.members)))
		for member := range t.members {
			buf = wire.PutBytes(buf, []byte(member))
		}
	case *SortedSet:
		buf = append(buf, wire.TagSortedSet)
		buf = wire.PutUvarint(buf, uint64(len(t.hash)))
		for member, node := range t.hash {
			buf = wire.PutBytes(buf, []byte(member))
			buf = wire.PutFloat64(buf, node.score)
		}
	default:
		panic(fmt.Sprintf("dict: EncodeValue: unhandled value type %T", v))
	}
	return buf
}

// DecodeValue parses one value from the front of buf, returning the value
// and the number of bytes consumed.
func DecodeValue(buf []byte) (Value, int, error) {
	if len(buf) < 1 {
		return nil, 0, wire.ErrTruncated
	}
	tag := buf[0]
	off := 1
	switch tag {
	case wire.TagNull:
		return Null{}, off, nil
	case wire.TagStr:
		b, n, err := wire.ReadBytes(buf[off:])
		if err != nil {
			return nil, 0, err
		}
		return Str(b), off + n, nil
	case wire.TagBytes:
		b, n, err := wire.ReadBytes(buf[off:])
		if err != nil {
			return nil, 0, err
		}
		return Bytes(b), off + n, nil
	case wire.TagInt:
		v, n, err := wire.ReadInt64(buf[off:])
		if err != nil {
			return nil, 0, err
		}
		return Int(v), off + n, nil
	case wire.TagFloat:
		v, n, err := wire.ReadFloat64(buf[off:])
		if err != nil {
			return nil, 0, err
		}
		return Float(v), off + n, nil
	case wire.TagDeque:
		count, n, err := wire.ReadUvarint(buf[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n
		d := NewDeque()
		for i := uint64(0); i < count; i++ {
			b, bn, berr := wire.ReadBytes(buf[off:])
			if berr != nil {
				return nil, 0, berr
			}
			off += bn
			d.items = append(d.items, b)
		}
		return d, off, nil
	case wire.TagKvp:
		count, n, err := wire.ReadUvarint(buf[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n
		k := NewKvp()
		for i := uint64(0); i < count; i++ {
			field, fn, ferr := wire.ReadBytes(buf[off:])
			if ferr != nil {
				return nil, 0, ferr
			}
			off += fn
			val, vn, verr := wire.ReadBytes(buf[off:])
			if verr != nil {
				return nil, 0, verr
			}
			off += vn
			k.fields[string(field)] = val
		}
		return k, off, nil
	case wire.TagSet:
		count, n, err := wire.ReadUvarint(buf[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n
		s := NewSet()
		for i := uint64(0); i < count; i++ {
			member, mn, merr := wire.ReadBytes(buf[off:])
			if merr != nil {
				return nil, 0, merr
			}
			off += mn
			s.members[string(member)] = struct{}{}
		}
		return s, off, nil
	case wire.TagSortedSet:
		count, n, err := wire.ReadUvarint(buf[off:])
		if err != nil {
			return nil, 0, err
		}
		off += n
		z := NewSortedSet()
		for i := uint64(0); i < count; i++ {
			member, mn, merr := wire.ReadBytes(buf[off:])
			if merr != nil {
				return nil, 0, merr
			}
			off += mn
			score, sn, serr := wire.ReadFloat64(buf[off:])
			if serr != nil {
				return nil, 0, serr
			}
			off += sn
			node := &zNode{score: score, member: string(member)}
			z.hash[string(member)] = node
			z.ordered.ReplaceOrInsert(node)
		}
		return z, off, nil
	default:
		return nil, 0, wire.ErrUnknownTag
	}
}

// EncodeEntry serializes an Entry for DUMP: value bytes, then ExpiresAt,
// Freq, and LastVisitMillis, in that fixed order. RESTORE must accept this
// layout bit-for-bit from the same implementation.
func EncodeEntry(e Entry) []byte {
	buf := EncodeValue(e.Value)
	buf = wire.PutInt64(buf, e.ExpiresAt)
	buf = append(buf, e.Freq)
	buf = wire.PutInt64(buf, e.LastVisitMillis)
	return buf
}

// DecodeEntry parses an Entry previously produced by EncodeEntry.
func DecodeEntry(buf []byte) (Entry, error) {
	v, n, err := DecodeValue(buf)
	if err != nil {
		return Entry{}, err
	}
	buf = buf[n:]
	expiresAt, n, err := wire.ReadInt64(buf)
	if err != nil {
		return Entry{}, err
	}
	buf = buf[n:]
	if len(buf) < 1 {
		return Entry{}, wire.ErrTruncated
	}
	freq := buf[0]
	buf = buf[1:]
	lastVisit, _, err := wire.ReadInt64(buf)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Value: v, ExpiresAt: expiresAt, Freq: freq, LastVisitMillis: lastVisit}, nil
}
