// Package models defines the overlay entity and the rules that keep it consistent.
//
// An [Overlay] is a positioned, sized and layered annotation composited over a
// video canvas. It comes in two variants sharing one collection, distinguished
// by [Overlay.Type]:
//
//   - [KindText]: carries [TextAttrs] (content and a typographic [TextStyle])
//   - [KindImage]: carries [ImageAttrs] (image URL, alt text and an [ImageStyle])
//
// Exactly one of [Overlay.Text] and [Overlay.Image] is set, and it always matches
// the variant tag. The variant tag never changes once an overlay exists.
//
// # Validation Boundary
//
// Storage backends keep the discriminator and the variant fields side by side in a
// flat document (see [Document]), so nothing in the storage format prevents a text
// overlay from carrying an image URL. This package is where that is prevented:
//
//   - [ValidateAndFillDefaults] turns caller input into a complete overlay, merging
//     the supplied fields over variant-specific defaults
//   - [ApplyUpdate] merges a partial [Fields] patch into an existing overlay,
//     key by key for the nested position, size and style objects
//
// Both are pure functions over plain data. They never touch a clock, an identifier
// generator or a database; those belong to the persistence gateway.
//
// # Typed IDs
//
// [OverlayID] wraps a UUID and knows its SurrealDB table, so the same value marshals
// to a plain string in JSON, to a RecordID in CBOR and to a uuid column in SQL.
//
// # Errors
//
// Every rejection is a [*ValidationError]. Its code can be matched with errors.Is
// against [ErrMissingField], [ErrInvalidType], [ErrImmutableFieldChange] and
// [ErrInvalidField]. Validation errors are always correctable by the caller.
package models
