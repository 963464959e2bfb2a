// Package item resolves listing item blobs to canonical item identifiers.
//
// A blob is base64 text wrapping gzip-compressed tag data. The resolver walks
//
//	root.i[0].tag.ExtraAttributes
//
// and canonicalizes the raw id:
//   - PET: {type}_PET_{tier} from the petInfo JSON string
//   - RUNE, UNIQUE_RUNE: {name}_{level}_RUNE from the first runes child, or EMPTY_RUNE
//   - POTION: {NAME}_{level}_POTION from potion/potion_level, or UNKNOWN_POTION
//   - anything else: the raw id
//
// Every failure is returned as a *DecodeError; callers skip the listing.
package item
