package exif

import (
	"bytes"
	"encoding/binary"
)

// MaxSniffBytes is the number of leading file bytes the parser needs. The
// EXIF header and 0th IFD of a well-formed JPEG sit within the first tens of
// kilobytes, so callers read at most this much before parsing.
const MaxSniffBytes = 65536

const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8 // start of image
	markerAPP1   = 0xE1 // application segment carrying EXIF or XMP
	markerSOS    = 0xDA // start of scan; entropy-coded data follows
)

// exifSignature prefixes the APP1 payload when the segment carries EXIF
// rather than some other application payload such as XMP.
var exifSignature = []byte{'E', 'x', 'i', 'f', 0x00, 0x00}

// FindTIFF walks the JPEG marker stream in buf and returns the offset at
// which the embedded TIFF structure of the first APP1/Exif segment begins.
// It reports false for any input that is not a JPEG, carries no EXIF before
// the scan data starts, or is malformed or truncated in any way.
func FindTIFF(buf []byte) (int, bool) {
	if len(buf) < 2 || buf[0] != markerPrefix || buf[1] != markerSOI {
		return 0, false
	}

	offset := 2
	for offset+4 <= len(buf) {
		if buf[offset] != markerPrefix {
			// Malformed marker stream.
			return 0, false
		}
		code := buf[offset+1]
		if code == markerSOS {
			// No further markers past the scan header.
			return 0, false
		}

		// Segment length is big-endian and includes its own two bytes.
		segLen := int(binary.BigEndian.Uint16(buf[offset+2 : offset+4]))
		if segLen < 2 {
			return 0, false
		}

		if code == markerAPP1 {
			sigEnd := offset + 4 + len(exifSignature)
			if sigEnd <= len(buf) && bytes.Equal(buf[offset+4:sigEnd], exifSignature) {
				return sigEnd, true
			}
			// Unrelated APP1 payload (e.g. XMP); a later segment may still
			// carry the EXIF block.
		}

		offset += 2 + segLen
	}
	return 0, false
}
