package nbt

import (
	"errors"
	"fmt"
)

// Type identifies a tag's payload kind.
type Type byte

// Tag types as they appear on the wire.
const (
	TagEnd Type = iota
	TagByte
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagByteArray
	TagString
	TagList
	TagCompound
	TagIntArray
	TagLongArray
)

var typeNames = [...]string{
	"end", "byte", "short", "int", "long", "float", "double",
	"byte_array", "string", "list", "compound", "int_array", "long_array",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", byte(t))
}

// Accessor failures.
var (
	ErrMissingField = errors.New("missing field")
	ErrTypeMismatch = errors.New("type mismatch")
)

// FieldError describes a failed lookup inside a compound or list.
type FieldError struct {
	Path string
	Kind error // ErrMissingField or ErrTypeMismatch
	Want Type
	Got  Type
}

func (e *FieldError) Error() string {
	if errors.Is(e.Kind, ErrTypeMismatch) {
		return fmt.Sprintf("nbt %s: %v (want %s, got %s)", e.Path, e.Kind, e.Want, e.Got)
	}
	return fmt.Sprintf("nbt %s: %v", e.Path, e.Kind)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// Tag is a decoded tag payload. Exactly one value field is meaningful,
// selected by Type.
type Tag struct {
	Type Type

	Int      int64 // byte, short, int, long
	Float    float64
	Str      string
	Bytes    []byte
	Ints     []int32
	Longs    []int64
	List     *List
	Compound *Compound
}

// Integer returns the value of any integral scalar tag.
func (t Tag) Integer() (int64, bool) {
	switch t.Type {
	case TagByte, TagShort, TagInt, TagLong:
		return t.Int, true
	}
	return 0, false
}

// Entry is a named compound child.
type Entry struct {
	Name string
	Tag  Tag
}

// Compound is an ordered set of named tags.
type Compound struct {
	path    string
	Entries []Entry
}

// List is an ordered sequence of same-typed, unnamed tags.
type List struct {
	path     string
	ElemType Type
	Items    []Tag
}

// Get returns the child tag with the given name.
func (c *Compound) Get(name string) (Tag, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e.Tag, true
		}
	}
	return Tag{}, false
}

// First returns the first child in wire order.
func (c *Compound) First() (Entry, bool) {
	if len(c.Entries) == 0 {
		return Entry{}, false
	}
	return c.Entries[0], true
}

// Len returns the number of children.
func (c *Compound) Len() int {
	return len(c.Entries)
}

// Path returns the dotted location of this compound within its tree.
func (c *Compound) Path() string {
	return c.path
}

func (c *Compound) lookup(name string, want Type) (Tag, error) {
	path := joinPath(c.path, name)
	tag, ok := c.Get(name)
	if !ok {
		return Tag{}, &FieldError{Path: path, Kind: ErrMissingField, Want: want}
	}
	if tag.Type != want {
		return Tag{}, &FieldError{Path: path, Kind: ErrTypeMismatch, Want: want, Got: tag.Type}
	}
	return tag, nil
}

// String returns a string child.
func (c *Compound) String(name string) (string, error) {
	tag, err := c.lookup(name, TagString)
	if err != nil {
		return "", err
	}
	return tag.Str, nil
}

// Compound returns a compound child.
func (c *Compound) Compound(name string) (*Compound, error) {
	tag, err := c.lookup(name, TagCompound)
	if err != nil {
		return nil, err
	}
	return tag.Compound, nil
}

// List returns a list child.
func (c *Compound) List(name string) (*List, error) {
	tag, err := c.lookup(name, TagList)
	if err != nil {
		return nil, err
	}
	return tag.List, nil
}

// Integer returns an integral child of any width.
func (c *Compound) Integer(name string) (int64, error) {
	path := joinPath(c.path, name)
	tag, ok := c.Get(name)
	if !ok {
		return 0, &FieldError{Path: path, Kind: ErrMissingField, Want: TagInt}
	}
	v, ok := tag.Integer()
	if !ok {
		return 0, &FieldError{Path: path, Kind: ErrTypeMismatch, Want: TagInt, Got: tag.Type}
	}
	return v, nil
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.Items)
}

// CompoundAt returns the i-th item as a compound.
func (l *List) CompoundAt(i int) (*Compound, error) {
	path := fmt.Sprintf("%s[%d]", l.path, i)
	if i < 0 || i >= len(l.Items) {
		return nil, &FieldError{Path: path, Kind: ErrMissingField, Want: TagCompound}
	}
	tag := l.Items[i]
	if tag.Type != TagCompound {
		return nil, &FieldError{Path: path, Kind: ErrTypeMismatch, Want: TagCompound, Got: tag.Type}
	}
	return tag.Compound, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
