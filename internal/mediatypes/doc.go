// Package mediatypes provides the media kind enum and extension-based
// classification shared by the scanner, the tag store and the transfer codecs.
//
// This package is a dependency-free foundation that can be imported by other
// packages without creating import cycles.
//
// # Kinds
//
//	mediatypes.KindFolder  // Directories
//	mediatypes.KindPhoto   // Photo extensions (jpg, jpeg, webp, png, tiff)
//	mediatypes.KindVideo   // Video extensions (gif, mp4, avi, mpeg)
//	mediatypes.KindAudio   // Audio extensions (mp3, ogg, flac, opus)
//	mediatypes.KindUnknown // Anything else
//
// The integer values are persisted in the tag tables and written to transfer
// buffers, so they must not be renumbered.
//
// # Classification
//
// Extension sets are configurable. Matching is case-insensitive and the first
// set that matches wins, in the order photo, video, audio:
//
//	sets := mediatypes.DefaultExtensionSets()
//	kind := sets.Classify("IMG_0001.JPG", false) // KindPhoto
package mediatypes
