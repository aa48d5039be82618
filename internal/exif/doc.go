// Package exif extracts camera make/model identity from the EXIF block of a
// JPEG byte buffer without any external metadata library.
//
// The package is two composed stages over an in-memory prefix of the file:
// a JPEG marker scanner that locates the APP1/Exif segment, and a TIFF/IFD
// directory reader that pulls the Make and Model ASCII tags out of the 0th
// image file directory. Every read is bounds-checked against the buffer;
// malformed, truncated, or EXIF-less input collapses to a single "not found"
// outcome rather than an error. The parser performs no I/O, keeps no state,
// and is safe to invoke concurrently on independent buffers.
package exif
