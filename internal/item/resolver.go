package item

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rickgao/economy-pricing/internal/nbt"
)

// Raw ids with special canonicalization.
const (
	RawPet        = "PET"
	RawRune       = "RUNE"
	RawUniqueRune = "UNIQUE_RUNE"
	RawPotion     = "POTION"
)

// Fallback ids when optional metadata is absent.
const (
	EmptyRune     = "EMPTY_RUNE"
	UnknownPotion = "UNKNOWN_POTION"
)

// maxDecompressed bounds a single decompressed blob.
const maxDecompressed = 4 << 20

// Decode stages reported in DecodeError.
const (
	StageBase64 = "base64"
	StageGzip   = "gzip"
	StageParse  = "parse"
	StagePath   = "path"
	StageID     = "canonical_id"
)

// DecodeError reports why one listing's blob could not be resolved.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode item (%s): %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Attribute is one entry of an item's attributes compound.
type Attribute struct {
	Name  string
	Level int64
}

// Identity is the resolved identity of one listed item.
type Identity struct {
	ID         string // canonical id
	RawID      string // ExtraAttributes.id as found
	Attributes []Attribute

	// AttributeErr is set when the attributes compound is present but
	// malformed. The identity stays usable; Attributes is nil.
	AttributeErr error
}

// Resolver turns item blobs into identities. It holds no state and is safe
// for concurrent use.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve decodes a blob and canonicalizes its id. Only the fields the id
// depends on can fail it; a bad attributes compound is reported in
// Identity.AttributeErr.
func (r *Resolver) Resolve(blob string) (Identity, error) {
	extra, err := ExtraAttributes(blob)
	if err != nil {
		return Identity{}, err
	}

	rawID, err := extra.String("id")
	if err != nil {
		return Identity{}, &DecodeError{Stage: StagePath, Err: err}
	}

	id, err := canonicalID(rawID, extra)
	if err != nil {
		return Identity{}, &DecodeError{Stage: StageID, Err: err}
	}

	ident := Identity{ID: id, RawID: rawID}
	if ident.Attributes, err = attributes(extra); err != nil {
		ident.AttributeErr = err
	}
	return ident, nil
}

// ExtraAttributes decodes a blob down to the first item's ExtraAttributes
// compound.
func ExtraAttributes(blob string) (*nbt.Compound, error) {
	compressed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return nil, &DecodeError{Stage: StageBase64, Err: err}
	}

	raw, err := gunzip(compressed)
	if err != nil {
		return nil, &DecodeError{Stage: StageGzip, Err: err}
	}

	_, root, err := nbt.Parse(raw)
	if err != nil {
		return nil, &DecodeError{Stage: StageParse, Err: err}
	}

	extra, err := navigate(root)
	if err != nil {
		return nil, &DecodeError{Stage: StagePath, Err: err}
	}
	return extra, nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxDecompressed+1))
	if err != nil {
		return nil, err
	}
	if len(out) > maxDecompressed {
		return nil, fmt.Errorf("decompressed size exceeds %d bytes", maxDecompressed)
	}
	return out, nil
}

// navigate walks root.i[0].tag.ExtraAttributes. Some encoders wrap the item
// list in one extra unnamed compound; that layer is skipped.
func navigate(root *nbt.Compound) (*nbt.Compound, error) {
	items, err := root.List("i")
	if err != nil {
		first, ok := root.First()
		if !ok || first.Tag.Type != nbt.TagCompound {
			return nil, err
		}
		if items, err = first.Tag.Compound.List("i"); err != nil {
			return nil, err
		}
	}

	entry, err := items.CompoundAt(0)
	if err != nil {
		return nil, err
	}
	tag, err := entry.Compound("tag")
	if err != nil {
		return nil, err
	}
	return tag.Compound("ExtraAttributes")
}

func canonicalID(rawID string, extra *nbt.Compound) (string, error) {
	switch rawID {
	case RawPet:
		return petID(extra)
	case RawRune, RawUniqueRune:
		return runeID(extra)
	case RawPotion:
		return potionID(extra)
	default:
		return rawID, nil
	}
}

type petInfo struct {
	Type string `json:"type"`
	Tier string `json:"tier"`
}

func petID(extra *nbt.Compound) (string, error) {
	raw, err := extra.String("petInfo")
	if err != nil {
		return "", err
	}

	var info petInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return "", fmt.Errorf("parse petInfo: %w", err)
	}
	if info.Type == "" {
		return "", &nbt.FieldError{Path: "petInfo.type", Kind: nbt.ErrMissingField, Want: nbt.TagString}
	}
	if info.Tier == "" {
		return "", &nbt.FieldError{Path: "petInfo.tier", Kind: nbt.ErrMissingField, Want: nbt.TagString}
	}
	return info.Type + "_PET_" + info.Tier, nil
}

func runeID(extra *nbt.Compound) (string, error) {
	if _, ok := extra.Get("runes"); !ok {
		return EmptyRune, nil
	}
	runes, err := extra.Compound("runes")
	if err != nil {
		return "", err
	}

	first, ok := runes.First()
	if !ok {
		return "", &nbt.FieldError{Path: runes.Path() + "[0]", Kind: nbt.ErrMissingField, Want: nbt.TagInt}
	}
	level, ok := first.Tag.Integer()
	if !ok {
		return "", &nbt.FieldError{
			Path: runes.Path() + "." + first.Name,
			Kind: nbt.ErrTypeMismatch,
			Want: nbt.TagInt,
			Got:  first.Tag.Type,
		}
	}
	return fmt.Sprintf("%s_%d_RUNE", first.Name, level), nil
}

func potionID(extra *nbt.Compound) (string, error) {
	if _, ok := extra.Get("potion"); !ok {
		return UnknownPotion, nil
	}
	name, err := extra.String("potion")
	if err != nil {
		return "", err
	}
	level, err := extra.Integer("potion_level")
	if err != nil {
		return "", err
	}
	upper := cases.Upper(language.Und).String(name)
	return fmt.Sprintf("%s_%d_POTION", upper, level), nil
}

// attributes reads the optional attributes compound. Every child must be an
// integer level.
func attributes(extra *nbt.Compound) ([]Attribute, error) {
	if _, ok := extra.Get("attributes"); !ok {
		return nil, nil
	}
	c, err := extra.Compound("attributes")
	if err != nil {
		return nil, err
	}

	attrs := make([]Attribute, 0, c.Len())
	for _, e := range c.Entries {
		level, ok := e.Tag.Integer()
		if !ok {
			return nil, &nbt.FieldError{
				Path: c.Path() + "." + e.Name,
				Kind: nbt.ErrTypeMismatch,
				Want: nbt.TagInt,
				Got:  e.Tag.Type,
			}
		}
		attrs = append(attrs, Attribute{Name: e.Name, Level: level})
	}
	return attrs, nil
}
