// Package nbt decodes the hierarchical binary tag format used for item metadata.
//
// The format is a tree of named, typed tags (big-endian):
//   - scalars: byte, short, int, long, float, double, string
//   - arrays: byte, int and long arrays
//   - containers: list (homogeneous, unnamed) and compound (named children)
//
// Compound children keep their wire order so callers can ask for the first
// child. Accessors never panic on malformed input: they return a *FieldError
// wrapping ErrMissingField or ErrTypeMismatch.
package nbt
