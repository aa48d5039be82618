package exif

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindTIFFRejectsNonJPEG(t *testing.T) {
	testCases := []struct {
		name  string
		input []byte
	}{
		{name: "Empty", input: nil},
		{name: "SingleByte", input: []byte{0xFF}},
		{name: "PNGHeader", input: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}},
		{name: "PlainText", input: []byte("definitely not a JPEG, trust me")},
		{name: "SOIOnly", input: []byte{0xFF, 0xD8}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := FindTIFF(tc.input)
			assert.False(t, ok)
		})
	}
}

func TestFindTIFFLocatesExifSegment(t *testing.T) {
	tiff := buildTIFF(binary.LittleEndian, "Canon", "Canon EOS R5")
	jpeg := wrapJPEG(app1Exif(tiff))

	start, ok := FindTIFF(jpeg)
	assert.True(t, ok)
	// SOI (2) + marker (2) + length (2) + "Exif\0\0" (6)
	assert.Equal(t, 12, start)
}

func TestFindTIFFSkipsUnrelatedAPP1(t *testing.T) {
	tiff := buildTIFF(binary.LittleEndian, "Canon", "Canon EOS R5")
	jpeg := wrapJPEG(app1XMP(), app1Exif(tiff))

	start, ok := FindTIFF(jpeg)
	assert.True(t, ok)

	dev, ok := ReadDevice(jpeg, start)
	assert.True(t, ok)
	assert.Equal(t, "Canon", dev.Make)
}

func TestFindTIFFStopsAtSOS(t *testing.T) {
	tiff := buildTIFF(binary.LittleEndian, "Canon", "Canon EOS R5")
	// Scan data begins before the EXIF segment: the scanner must not walk
	// into the entropy-coded region looking for it.
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xDA, 0x00, 0x04, 0x01, 0x02}
	jpeg = append(jpeg, app1Exif(tiff)...)

	_, ok := FindTIFF(jpeg)
	assert.False(t, ok)
}

func TestFindTIFFMalformedMarkerStream(t *testing.T) {
	jpeg := []byte{0xFF, 0xD8, 0x00, 0xE1, 0x00, 0x10, 0x00, 0x00}
	_, ok := FindTIFF(jpeg)
	assert.False(t, ok)
}

func TestFindTIFFSegmentLengthPastBuffer(t *testing.T) {
	// APP0 claims a payload far larger than the buffer actually holds.
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0xFF, 0xFF, 0x00, 0x00}
	_, ok := FindTIFF(jpeg)
	assert.False(t, ok)

	// Same for a truncated APP1/Exif segment whose signature is cut off.
	jpeg = []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x20, 'E', 'x'}
	_, ok = FindTIFF(jpeg)
	assert.False(t, ok)
}

func TestParseDeviceAppliesPrefixRule(t *testing.T) {
	tiff := buildTIFF(binary.LittleEndian, "Canon", "Canon EOS R5")
	got, ok := ParseDevice(wrapJPEG(app1Exif(tiff)))
	assert.True(t, ok)
	assert.Equal(t, "Canon EOS R5", got)
}

func TestParseDeviceComposesMakeAndModel(t *testing.T) {
	tiff := buildTIFF(binary.LittleEndian, "Apple", "iPhone 14 Pro")
	got, ok := ParseDevice(wrapJPEG(app1Exif(tiff)))
	assert.True(t, ok)
	assert.Equal(t, "Apple iPhone 14 Pro", got)
}

func TestParseDeviceBigEndianTIFF(t *testing.T) {
	tiff := buildTIFF(binary.BigEndian, "NIKON CORPORATION", "NIKON Z 6")
	got, ok := ParseDevice(wrapJPEG(app1Exif(tiff)))
	assert.True(t, ok)
	assert.Equal(t, "NIKON CORPORATION NIKON Z 6", got)
}

func TestParseDeviceSingleField(t *testing.T) {
	makeOnly := buildTIFF(binary.LittleEndian, "Canon", "")
	got, ok := ParseDevice(wrapJPEG(app1Exif(makeOnly)))
	assert.True(t, ok)
	assert.Equal(t, "Canon", got)

	modelOnly := buildTIFF(binary.LittleEndian, "", "iPhone 14 Pro")
	got, ok = ParseDevice(wrapJPEG(app1Exif(modelOnly)))
	assert.True(t, ok)
	assert.Equal(t, "iPhone 14 Pro", got)
}

func TestParseDeviceIsIdempotent(t *testing.T) {
	jpeg := wrapJPEG(app1Exif(buildTIFF(binary.LittleEndian, "Apple", "iPhone 14 Pro")))
	first, okFirst := ParseDevice(jpeg)
	second, okSecond := ParseDevice(jpeg)
	assert.Equal(t, okFirst, okSecond)
	assert.Equal(t, first, second)
}

func TestParseDeviceIgnoresExifBeyondSniffCap(t *testing.T) {
	// Pad with maximal COM segments so the EXIF block lands past 64 KiB.
	var jpeg []byte
	jpeg = append(jpeg, 0xFF, 0xD8)
	for i := 0; i < 2; i++ {
		jpeg = append(jpeg, 0xFF, 0xFE, 0xFF, 0xFF)
		jpeg = append(jpeg, make([]byte, 0xFFFF-2)...)
	}
	jpeg = append(jpeg, app1Exif(buildTIFF(binary.LittleEndian, "Canon", "EOS R5"))...)
	jpeg = append(jpeg, 0xFF, 0xDA, 0x00, 0x02)

	_, ok := ParseDevice(jpeg)
	assert.False(t, ok)
}

func TestReadDeviceRejectsBadHeader(t *testing.T) {
	valid := buildTIFF(binary.LittleEndian, "Canon", "EOS R5")

	badOrder := append([]byte{}, valid...)
	badOrder[0], badOrder[1] = 'X', 'X'

	badMagic := append([]byte{}, valid...)
	badMagic[2], badMagic[3] = 0x00, 0x00

	lowIFD := append([]byte{}, valid...)
	binary.LittleEndian.PutUint32(lowIFD[4:8], 4) // below the header's own size

	for name, buf := range map[string][]byte{
		"order": badOrder,
		"magic": badMagic,
		"ifd":   lowIFD,
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := ReadDevice(buf, 0)
			assert.False(t, ok)
		})
	}
}

func TestReadDeviceIgnoresNonASCIIType(t *testing.T) {
	// A numeric entry sharing the Make tag must not be decoded as a string.
	short := ifdEntry{tag: tagMake, typ: 3, count: 1, inline: [4]byte{0x07, 0x00, 0x00, 0x00}}
	tiff := buildTIFFEntries(binary.LittleEndian, []ifdEntry{short})

	_, ok := ReadDevice(tiff, 0)
	assert.False(t, ok)
}

func TestReadDeviceInlineBoundary(t *testing.T) {
	// count == 4 including NUL: stored inline in the value field itself.
	inline := asciiEntry(tagMake, "abc")
	assert.Equal(t, uint32(4), inline.count)
	assert.Nil(t, inline.data)

	// count == 5: stored out of line behind an offset.
	indirect := asciiEntry(tagModel, "abcd")
	assert.Equal(t, uint32(5), indirect.count)
	assert.NotNil(t, indirect.data)

	tiff := buildTIFFEntries(binary.LittleEndian, []ifdEntry{inline, indirect})
	dev, ok := ReadDevice(tiff, 0)
	assert.True(t, ok)
	assert.Equal(t, "abc", dev.Make)
	assert.Equal(t, "abcd", dev.Model)
}

func TestReadDeviceTruncatedDirectory(t *testing.T) {
	tiff := buildTIFF(binary.LittleEndian, "Canon", "EOS R5")

	// Claim far more entries than the buffer holds; the walk must stop at
	// the boundary with whatever it already collected.
	binary.LittleEndian.PutUint16(tiff[8:10], 500)
	dev, ok := ReadDevice(tiff, 0)
	assert.True(t, ok)
	assert.Equal(t, "Canon", dev.Make)

	// Cut the buffer inside the directory itself.
	_, ok = ReadDevice(tiff[:12], 0)
	assert.False(t, ok)
}

func TestReadDeviceValueOffsetPastBuffer(t *testing.T) {
	entry := ifdEntry{tag: tagModel, typ: typeASCII, count: 32}
	binary.LittleEndian.PutUint32(entry.inline[:], 0xFFFF)
	tiff := buildTIFFEntries(binary.LittleEndian, []ifdEntry{entry})

	_, ok := ReadDevice(tiff, 0)
	assert.False(t, ok)
}

func TestDisplay(t *testing.T) {
	testCases := []struct {
		name string
		dev  Device
		want string
	}{
		{name: "Composite", dev: Device{Make: "Apple", Model: "iPhone 14 Pro"}, want: "Apple iPhone 14 Pro"},
		{name: "ModelEmbedsMake", dev: Device{Make: "Canon", Model: "Canon EOS R5"}, want: "Canon EOS R5"},
		{name: "MakeOnly", dev: Device{Make: "Canon"}, want: "Canon"},
		{name: "ModelOnly", dev: Device{Model: "EOS R5"}, want: "EOS R5"},
		{name: "SurroundingWhitespace", dev: Device{Make: " Canon ", Model: " EOS R5 "}, want: "Canon EOS R5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.dev.Display())
		})
	}
}

// ifdEntry is the 12-byte directory record used by the test builders. When
// data is nil the inline field is written verbatim; otherwise the field
// becomes an offset to data placed after the directory.
type ifdEntry struct {
	tag    uint16
	typ    uint16
	count  uint32
	inline [4]byte
	data   []byte
}

func asciiEntry(tag uint16, value string) ifdEntry {
	raw := append([]byte(value), 0x00)
	e := ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(raw))}
	if len(raw) <= 4 {
		copy(e.inline[:], raw)
		return e
	}
	e.data = raw
	return e
}

// buildTIFF assembles a TIFF block whose 0th IFD carries ASCII Make/Model
// entries. Empty strings are omitted from the directory entirely.
func buildTIFF(order binary.ByteOrder, makeStr, modelStr string) []byte {
	var entries []ifdEntry
	if makeStr != "" {
		entries = append(entries, asciiEntry(tagMake, makeStr))
	}
	if modelStr != "" {
		entries = append(entries, asciiEntry(tagModel, modelStr))
	}
	return buildTIFFEntries(order, entries)
}

func buildTIFFEntries(order binary.ByteOrder, entries []ifdEntry) []byte {
	buf := make([]byte, 0, 128)
	if order == binary.LittleEndian {
		buf = append(buf, 'I', 'I')
	} else {
		buf = append(buf, 'M', 'M')
	}
	buf = appendU16(buf, order, tiffMagic)
	buf = appendU32(buf, order, tiffHeaderSize) // first IFD right after the header

	buf = appendU16(buf, order, uint16(len(entries)))
	// directory + trailing next-IFD pointer
	dataStart := tiffHeaderSize + 2 + len(entries)*ifdEntrySize + 4
	var data []byte
	for _, e := range entries {
		buf = appendU16(buf, order, e.tag)
		buf = appendU16(buf, order, e.typ)
		buf = appendU32(buf, order, e.count)
		if e.data == nil {
			buf = append(buf, e.inline[:]...)
		} else {
			buf = appendU32(buf, order, uint32(dataStart+len(data)))
			data = append(data, e.data...)
		}
	}
	buf = appendU32(buf, order, 0) // no IFD1
	return append(buf, data...)
}

func appendU16(buf []byte, order binary.ByteOrder, v uint16) []byte {
	var tmp [2]byte
	order.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU32(buf []byte, order binary.ByteOrder, v uint32) []byte {
	var tmp [4]byte
	order.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func app1Exif(tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	seg := []byte{0xFF, 0xE1}
	seg = appendU16(seg, binary.BigEndian, uint16(len(payload)+2))
	return append(seg, payload...)
}

func app1XMP() []byte {
	payload := []byte("http://ns.adobe.com/xap/1.0/\x00<x:xmpmeta/>")
	seg := []byte{0xFF, 0xE1}
	seg = appendU16(seg, binary.BigEndian, uint16(len(payload)+2))
	return append(seg, payload...)
}

func wrapJPEG(segments ...[]byte) []byte {
	jpeg := []byte{0xFF, 0xD8}
	for _, seg := range segments {
		jpeg = append(jpeg, seg...)
	}
	return append(jpeg, 0xFF, 0xDA, 0x00, 0x02)
}
