package item

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/rickgao/economy-pricing/internal/nbt"
	nt "github.com/rickgao/economy-pricing/internal/nbt/nbttest"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want string
	}{
		{
			name: "plain id passes through",
			blob: nt.ItemBlob(nt.F("id", nt.String("HYPERION"))),
			want: "HYPERION",
		},
		{
			name: "pet",
			blob: nt.ItemBlob(
				nt.F("id", nt.String("PET")),
				nt.F("petInfo", nt.String(`{"type":"SKELETON_HORSE","active":false,"exp":0.0,"tier":"LEGENDARY"}`)),
			),
			want: "SKELETON_HORSE_PET_LEGENDARY",
		},
		{
			name: "rune with runes compound",
			blob: nt.ItemBlob(
				nt.F("id", nt.String("RUNE")),
				nt.F("runes", nt.Compound(nt.F("ENSORCELLED_RUNE", nt.Int(3)))),
			),
			want: "ENSORCELLED_RUNE_3_RUNE",
		},
		{
			name: "unique rune takes first child",
			blob: nt.ItemBlob(
				nt.F("id", nt.String("UNIQUE_RUNE")),
				nt.F("runes", nt.Compound(
					nt.F("GRAND_SEARING", nt.Int(3)),
					nt.F("SPARKLING", nt.Int(1)),
				)),
			),
			want: "GRAND_SEARING_3_RUNE",
		},
		{
			name: "rune without runes compound",
			blob: nt.ItemBlob(nt.F("id", nt.String("RUNE"))),
			want: EmptyRune,
		},
		{
			name: "potion",
			blob: nt.ItemBlob(
				nt.F("id", nt.String("POTION")),
				nt.F("potion", nt.String("speed")),
				nt.F("potion_level", nt.Int(3)),
			),
			want: "SPEED_3_POTION",
		},
		{
			name: "potion without name",
			blob: nt.ItemBlob(
				nt.F("id", nt.String("POTION")),
				nt.F("potion_level", nt.Int(3)),
			),
			want: UnknownPotion,
		},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.blob)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got.ID != tt.want {
				t.Errorf("ID = %q, want %q", got.ID, tt.want)
			}
		})
	}
}

func TestResolveAttributes(t *testing.T) {
	blob := nt.ItemBlob(
		nt.F("id", nt.String("CRIMSON_CHESTPLATE")),
		nt.F("attributes", nt.Compound(
			nt.F("mana_pool", nt.Int(5)),
			nt.F("breeze", nt.Int(2)),
		)),
	)

	got, err := NewResolver().Resolve(blob)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.RawID != "CRIMSON_CHESTPLATE" {
		t.Errorf("RawID = %q, want %q", got.RawID, "CRIMSON_CHESTPLATE")
	}
	want := []Attribute{{"mana_pool", 5}, {"breeze", 2}}
	if len(got.Attributes) != len(want) {
		t.Fatalf("Attributes = %+v, want %+v", got.Attributes, want)
	}
	for i := range want {
		if got.Attributes[i] != want[i] {
			t.Errorf("Attributes[%d] = %+v, want %+v", i, got.Attributes[i], want[i])
		}
	}
}

func TestResolveMalformedAttributesKeepsIdentity(t *testing.T) {
	tests := []struct {
		name  string
		field nt.Field
	}{
		{"level is not an integer", nt.F("attributes", nt.Compound(nt.F("vitality", nt.Double(1.5))))},
		{"attributes is not a compound", nt.F("attributes", nt.String("vitality"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := nt.ItemBlob(nt.F("id", nt.String("MOLTEN_BELT")), tt.field)

			got, err := NewResolver().Resolve(blob)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got.ID != "MOLTEN_BELT" {
				t.Errorf("ID = %q, want MOLTEN_BELT", got.ID)
			}
			if got.Attributes != nil {
				t.Errorf("Attributes = %+v, want nil", got.Attributes)
			}
			if !errors.Is(got.AttributeErr, nbt.ErrTypeMismatch) {
				t.Errorf("AttributeErr = %v, want %v", got.AttributeErr, nbt.ErrTypeMismatch)
			}
		})
	}
}

func TestResolveWrappedItemList(t *testing.T) {
	blob := nt.Blob(nt.Compound(
		nt.F("", nt.Compound(
			nt.F("i", nt.List(nt.Compound(
				nt.F("tag", nt.Compound(
					nt.F("ExtraAttributes", nt.Compound(nt.F("id", nt.String("TERMINATOR")))),
				)),
			))),
		)),
	))

	got, err := NewResolver().Resolve(blob)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != "TERMINATOR" {
		t.Errorf("ID = %q, want %q", got.ID, "TERMINATOR")
	}
}

func TestResolveFailures(t *testing.T) {
	tests := []struct {
		name      string
		blob      string
		wantStage string
		wantKind  error
	}{
		{
			name:      "not base64",
			blob:      "!!not-base64!!",
			wantStage: StageBase64,
		},
		{
			name:      "not gzip",
			blob:      base64.StdEncoding.EncodeToString([]byte("plain bytes")),
			wantStage: StageGzip,
		},
		{
			name:      "not a tag tree",
			blob:      base64.StdEncoding.EncodeToString(nt.Gzip([]byte{0xff, 0x00})),
			wantStage: StageParse,
			wantKind:  nbt.ErrMalformed,
		},
		{
			name:      "empty item list",
			blob:      nt.Blob(nt.Compound(nt.F("i", nt.List()))),
			wantStage: StagePath,
			wantKind:  nbt.ErrMissingField,
		},
		{
			name: "missing tag compound",
			blob: nt.Blob(nt.Compound(
				nt.F("i", nt.List(nt.Compound(nt.F("Count", nt.Byte(1))))),
			)),
			wantStage: StagePath,
			wantKind:  nbt.ErrMissingField,
		},
		{
			name:      "missing id",
			blob:      nt.ItemBlob(nt.F("uuid", nt.String("abc"))),
			wantStage: StagePath,
			wantKind:  nbt.ErrMissingField,
		},
		{
			name:      "id is not a string",
			blob:      nt.ItemBlob(nt.F("id", nt.Int(4))),
			wantStage: StagePath,
			wantKind:  nbt.ErrTypeMismatch,
		},
		{
			name:      "pet without petInfo",
			blob:      nt.ItemBlob(nt.F("id", nt.String("PET"))),
			wantStage: StageID,
			wantKind:  nbt.ErrMissingField,
		},
		{
			name: "pet without tier",
			blob: nt.ItemBlob(
				nt.F("id", nt.String("PET")),
				nt.F("petInfo", nt.String(`{"type":"ENDER_DRAGON"}`)),
			),
			wantStage: StageID,
			wantKind:  nbt.ErrMissingField,
		},
		{
			name: "pet with malformed petInfo",
			blob: nt.ItemBlob(
				nt.F("id", nt.String("PET")),
				nt.F("petInfo", nt.String(`{"type":`)),
			),
			wantStage: StageID,
		},
		{
			name: "rune with empty runes compound",
			blob: nt.ItemBlob(
				nt.F("id", nt.String("RUNE")),
				nt.F("runes", nt.Compound()),
			),
			wantStage: StageID,
			wantKind:  nbt.ErrMissingField,
		},
		{
			name: "rune level is a string",
			blob: nt.ItemBlob(
				nt.F("id", nt.String("RUNE")),
				nt.F("runes", nt.Compound(nt.F("MUSIC", nt.String("3")))),
			),
			wantStage: StageID,
			wantKind:  nbt.ErrTypeMismatch,
		},
		{
			name: "potion without level",
			blob: nt.ItemBlob(
				nt.F("id", nt.String("POTION")),
				nt.F("potion", nt.String("speed")),
			),
			wantStage: StageID,
			wantKind:  nbt.ErrMissingField,
		},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(tt.blob)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("err = %T, want *DecodeError", err)
			}
			if de.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q (err: %v)", de.Stage, tt.wantStage, err)
			}
			if tt.wantKind != nil && !errors.Is(err, tt.wantKind) {
				t.Errorf("err = %v, want %v", err, tt.wantKind)
			}
		})
	}
}
