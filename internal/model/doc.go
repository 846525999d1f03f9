// Package model defines the catalog's data types: the scanner's native
// FileItem, the flattened Photo, Video and Audio export records handed to
// viewers, and the tag records.
//
// Export records are produced only by the projection helpers in this package
// (PhotoFromItem, GalleryFromItems, PlaylistFromItems, ...). The scanner never
// emits them directly.
//
// JSON decoding is hand-written per type. Each Decode function accepts any
// JSON object, defaults missing or mistyped fields to their zero values and
// fails only when the top-level value has the wrong shape.
package model
