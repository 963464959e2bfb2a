// Package nbttest builds tag trees and item blobs for tests.
package nbttest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"math"

	"github.com/klauspost/compress/gzip"

	"github.com/rickgao/economy-pricing/internal/nbt"
)

// Node is a tag under construction.
type Node struct {
	typ   nbt.Type
	value any
}

// Field is a named compound child.
type Field struct {
	Name string
	Node Node
}

// F names a node.
func F(name string, n Node) Field { return Field{Name: name, Node: n} }

func Byte(v int8) Node { return Node{nbt.TagByte, v} }
func Short(v int16) Node { return Node{nbt.TagShort, v} }
func Int(v int32) Node { return Node{nbt.TagInt, v} }
func Long(v int64) Node { return Node{nbt.TagLong, v} }
func Double(v float64) Node { return Node{nbt.TagDouble, v} }
func String(v string) Node { return Node{nbt.TagString, v} }
func Compound(fields ...Field) Node {
	return Node{nbt.TagCompound, fields}
}

// List builds a list whose items all share the type of the first item.
// An empty list is encoded with element type end.
func List(items ...Node) Node {
	return Node{nbt.TagList, items}
}

// Encode serializes a root compound with the given name.
func Encode(name string, root Node) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(nbt.TagCompound))
	writeString(&buf, name)
	writePayload(&buf, root)
	return buf.Bytes()
}

// Gzip compresses data.
func Gzip(data []byte) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

// Blob wraps a root compound the way listing endpoints deliver item bytes:
// base64(gzip(tree)).
func Blob(root Node) string {
	return base64.StdEncoding.EncodeToString(Gzip(Encode("", root)))
}

// ItemBlob builds a listing blob carrying a single item whose
// ExtraAttributes compound holds the given fields.
func ItemBlob(extra ...Field) string {
	return Blob(Compound(
		F("i", List(Compound(
			F("id", Short(1)),
			F("Count", Byte(1)),
			F("tag", Compound(
				F("ExtraAttributes", Compound(extra...)),
			)),
		))),
	))
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
}

func writePayload(buf *bytes.Buffer, n Node) {
	switch v := n.value.(type) {
	case int8:
		buf.WriteByte(byte(v))
	case int16:
		binary.Write(buf, binary.BigEndian, v)
	case int32:
		binary.Write(buf, binary.BigEndian, v)
	case int64:
		binary.Write(buf, binary.BigEndian, v)
	case float64:
		binary.Write(buf, binary.BigEndian, math.Float64bits(v))
	case string:
		writeString(buf, v)
	case []Field:
		for _, f := range v {
			buf.WriteByte(byte(f.Node.typ))
			writeString(buf, f.Name)
			writePayload(buf, f.Node)
		}
		buf.WriteByte(byte(nbt.TagEnd))
	case []Node:
		elem := nbt.TagEnd
		if len(v) > 0 {
			elem = v[0].typ
		}
		buf.WriteByte(byte(elem))
		binary.Write(buf, binary.BigEndian, int32(len(v)))
		for _, item := range v {
			writePayload(buf, item)
		}
	}
}
