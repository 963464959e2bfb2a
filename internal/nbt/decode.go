package nbt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMalformed is returned when the byte stream is not a valid tag tree.
var ErrMalformed = errors.New("malformed tag data")

// maxDepth bounds container nesting.
const maxDepth = 512

// Parse decodes a complete tag tree. The root tag must be a compound; its
// name and payload are returned.
func Parse(data []byte) (string, *Compound, error) {
	d := &decoder{buf: data}

	typ, err := d.u8()
	if err != nil {
		return "", nil, err
	}
	if Type(typ) != TagCompound {
		return "", nil, fmt.Errorf("%w: root tag is %s, want compound", ErrMalformed, Type(typ))
	}
	name, err := d.str()
	if err != nil {
		return "", nil, err
	}
	root, err := d.compound("", 0)
	if err != nil {
		return "", nil, err
	}
	return name, root, nil
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) fail(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrMalformed, d.off, fmt.Sprintf(format, args...))
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.buf)-d.off < n {
		return nil, d.fail("need %d bytes, have %d", n, len(d.buf)-d.off)
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) u8() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) u64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *decoder) length() (int, error) {
	n, err := d.u32()
	if err != nil {
		return 0, err
	}
	if int32(n) < 0 {
		return 0, d.fail("negative length %d", int32(n))
	}
	return int(n), nil
}

func (d *decoder) str() (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", err
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) compound(path string, depth int) (*Compound, error) {
	if depth > maxDepth {
		return nil, d.fail("nesting deeper than %d", maxDepth)
	}
	c := &Compound{path: path}
	for {
		typ, err := d.u8()
		if err != nil {
			return nil, err
		}
		if Type(typ) == TagEnd {
			return c, nil
		}
		name, err := d.str()
		if err != nil {
			return nil, err
		}
		tag, err := d.payload(Type(typ), joinPath(path, name), depth+1)
		if err != nil {
			return nil, err
		}
		c.Entries = append(c.Entries, Entry{Name: name, Tag: tag})
	}
}

func (d *decoder) list(path string, depth int) (*List, error) {
	if depth > maxDepth {
		return nil, d.fail("nesting deeper than %d", maxDepth)
	}
	elem, err := d.u8()
	if err != nil {
		return nil, err
	}
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	l := &List{path: path, ElemType: Type(elem)}
	if Type(elem) == TagEnd {
		return l, nil
	}
	// Each element takes at least one byte.
	if n > len(d.buf)-d.off {
		return nil, d.fail("list length %d exceeds input", n)
	}
	l.Items = make([]Tag, 0, n)
	for i := 0; i < n; i++ {
		tag, err := d.payload(Type(elem), fmt.Sprintf("%s[%d]", path, i), depth+1)
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, tag)
	}
	return l, nil
}

func (d *decoder) payload(typ Type, path string, depth int) (Tag, error) {
	tag := Tag{Type: typ}
	switch typ {
	case TagByte:
		v, err := d.u8()
		if err != nil {
			return tag, err
		}
		tag.Int = int64(int8(v))
	case TagShort:
		v, err := d.u16()
		if err != nil {
			return tag, err
		}
		tag.Int = int64(int16(v))
	case TagInt:
		v, err := d.u32()
		if err != nil {
			return tag, err
		}
		tag.Int = int64(int32(v))
	case TagLong:
		v, err := d.u64()
		if err != nil {
			return tag, err
		}
		tag.Int = int64(v)
	case TagFloat:
		v, err := d.u32()
		if err != nil {
			return tag, err
		}
		tag.Float = float64(math.Float32frombits(v))
	case TagDouble:
		v, err := d.u64()
		if err != nil {
			return tag, err
		}
		tag.Float = math.Float64frombits(v)
	case TagByteArray:
		n, err := d.length()
		if err != nil {
			return tag, err
		}
		b, err := d.take(n)
		if err != nil {
			return tag, err
		}
		tag.Bytes = append([]byte(nil), b...)
	case TagString:
		s, err := d.str()
		if err != nil {
			return tag, err
		}
		tag.Str = s
	case TagList:
		l, err := d.list(path, depth)
		if err != nil {
			return tag, err
		}
		tag.List = l
	case TagCompound:
		c, err := d.compound(path, depth)
		if err != nil {
			return tag, err
		}
		tag.Compound = c
	case TagIntArray:
		n, err := d.length()
		if err != nil {
			return tag, err
		}
		b, err := d.take(n * 4)
		if err != nil {
			return tag, err
		}
		tag.Ints = make([]int32, n)
		for i := range tag.Ints {
			tag.Ints[i] = int32(binary.BigEndian.Uint32(b[i*4:]))
		}
	case TagLongArray:
		n, err := d.length()
		if err != nil {
			return tag, err
		}
		b, err := d.take(n * 8)
		if err != nil {
			return tag, err
		}
		tag.Longs = make([]int64, n)
		for i := range tag.Longs {
			tag.Longs[i] = int64(binary.BigEndian.Uint64(b[i*8:]))
		}
	default:
		return tag, d.fail("unknown tag type %d", byte(typ))
	}
	return tag, nil
}
