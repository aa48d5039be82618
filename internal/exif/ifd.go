package exif

import (
	"encoding/binary"
	"strings"
)

const (
	tagMake  = 0x010F
	tagModel = 0x0110

	typeASCII = 2

	tiffMagic      = 0x002A
	tiffHeaderSize = 8 // order mark + magic + first IFD offset
	ifdEntrySize   = 12
)

// Device is the camera identity extracted from the 0th IFD.
type Device struct {
	Make  string
	Model string
}

// Display composes the human-readable device string. Some manufacturers
// embed the brand in the model field already, so a model that starts with
// the make is returned alone. This is a display heuristic, not an EXIF rule.
func (d Device) Display() string {
	mk := strings.TrimSpace(d.Make)
	md := strings.TrimSpace(d.Model)
	switch {
	case mk == "":
		return md
	case md == "":
		return mk
	case strings.HasPrefix(md, mk):
		return md
	default:
		return mk + " " + md
	}
}

// ReadDevice interprets the TIFF structure starting at tiffStart and walks
// the 0th IFD for the Make and Model ASCII tags. It reports false when the
// header is invalid or neither tag yields a value; structural inconsistency
// anywhere collapses to the same not-found outcome.
func ReadDevice(buf []byte, tiffStart int) (Device, bool) {
	var dev Device

	order, ok := byteOrderAt(buf, tiffStart)
	if !ok {
		return dev, false
	}
	if magic, ok := readU16(buf, tiffStart+2, order); !ok || magic != tiffMagic {
		return dev, false
	}
	firstIFD, ok := readU32(buf, tiffStart+4, order)
	if !ok || firstIFD < tiffHeaderSize {
		return dev, false
	}

	dirStart := tiffStart + int(firstIFD)
	count, ok := readU16(buf, dirStart, order)
	if !ok {
		return dev, false
	}

	for i := 0; i < int(count); i++ {
		entry := dirStart + 2 + i*ifdEntrySize
		tag, ok := readU16(buf, entry, order)
		if !ok {
			break // truncated directory
		}
		if tag != tagMake && tag != tagModel {
			continue
		}
		typ, ok := readU16(buf, entry+2, order)
		if !ok || typ != typeASCII {
			continue
		}
		length, ok := readU32(buf, entry+4, order)
		if !ok {
			break
		}

		var value string
		if length <= 4 {
			// Short values are stored inline in the value/offset field.
			value = readASCII(buf, entry+8, int(length))
		} else {
			valueOffset, ok := readU32(buf, entry+8, order)
			if !ok {
				break
			}
			value = readASCII(buf, tiffStart+int(valueOffset), int(length))
		}

		value = strings.TrimSpace(value)
		switch {
		case tag == tagMake && dev.Make == "":
			dev.Make = value
		case tag == tagModel && dev.Model == "":
			dev.Model = value
		}
	}

	if dev.Make == "" && dev.Model == "" {
		return Device{}, false
	}
	return dev, true
}

// ParseDevice runs the marker scanner and directory reader over buf (capped
// at MaxSniffBytes) and returns the composed device string.
func ParseDevice(buf []byte) (string, bool) {
	if len(buf) > MaxSniffBytes {
		buf = buf[:MaxSniffBytes]
	}
	tiffStart, ok := FindTIFF(buf)
	if !ok {
		return "", false
	}
	dev, ok := ReadDevice(buf, tiffStart)
	if !ok {
		return "", false
	}
	return dev.Display(), true
}

// byteOrderAt resolves the TIFF byte-order mark. Exactly this one value
// determines the order of every subsequent multi-byte read, so the resolved
// order is passed explicitly to each read helper.
func byteOrderAt(buf []byte, offset int) (binary.ByteOrder, bool) {
	if offset < 0 || offset+2 > len(buf) {
		return nil, false
	}
	switch {
	case buf[offset] == 'I' && buf[offset+1] == 'I':
		return binary.LittleEndian, true
	case buf[offset] == 'M' && buf[offset+1] == 'M':
		return binary.BigEndian, true
	default:
		return nil, false
	}
}

func readU16(buf []byte, offset int, order binary.ByteOrder) (uint16, bool) {
	if offset < 0 || offset+2 > len(buf) {
		return 0, false
	}
	return order.Uint16(buf[offset : offset+2]), true
}

func readU32(buf []byte, offset int, order binary.ByteOrder) (uint32, bool) {
	if offset < 0 || offset+4 > len(buf) {
		return 0, false
	}
	return order.Uint32(buf[offset : offset+4]), true
}

// readASCII copies up to count declared bytes starting at offset, stopping
// early at the first NUL (the declared length includes the terminator) or at
// the buffer boundary, never trusting count over the actual buffer length.
func readASCII(buf []byte, offset, count int) string {
	if offset < 0 || count <= 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < count; i++ {
		pos := offset + i
		if pos >= len(buf) {
			break
		}
		c := buf[pos]
		if c == 0 {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}
