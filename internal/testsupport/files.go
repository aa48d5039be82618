package testsupport

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// JPEGWithDevice assembles a minimal JPEG carrying an APP1/Exif segment
// whose 0th IFD declares the given make and model as ASCII tags. Used by
// pipeline and API tests that need a parseable fixture on disk.
func JPEGWithDevice(makeStr, modelStr string) []byte {
	tiff := tiffWithDevice(makeStr, modelStr)

	payload := append([]byte("Exif\x00\x00"), tiff...)
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE1}
	jpeg = binary.BigEndian.AppendUint16(jpeg, uint16(len(payload)+2))
	jpeg = append(jpeg, payload...)
	return append(jpeg, 0xFF, 0xDA, 0x00, 0x02)
}

// WriteJPEG writes a device-tagged JPEG fixture into dir and returns its path.
func WriteJPEG(t testing.TB, dir, name, makeStr, modelStr string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, JPEGWithDevice(makeStr, modelStr), 0o644); err != nil {
		t.Fatalf("write jpeg fixture: %v", err)
	}
	return path
}

func tiffWithDevice(makeStr, modelStr string) []byte {
	le := binary.LittleEndian

	type entry struct {
		tag  uint16
		data []byte
	}
	var entries []entry
	if makeStr != "" {
		entries = append(entries, entry{tag: 0x010F, data: append([]byte(makeStr), 0x00)})
	}
	if modelStr != "" {
		entries = append(entries, entry{tag: 0x0110, data: append([]byte(modelStr), 0x00)})
	}

	buf := []byte{'I', 'I'}
	buf = le.AppendUint16(buf, 0x002A)
	buf = le.AppendUint32(buf, 8)

	buf = le.AppendUint16(buf, uint16(len(entries)))
	dataStart := 8 + 2 + len(entries)*12 + 4
	var data []byte
	for _, e := range entries {
		buf = le.AppendUint16(buf, e.tag)
		buf = le.AppendUint16(buf, 2) // ASCII
		buf = le.AppendUint32(buf, uint32(len(e.data)))
		if len(e.data) <= 4 {
			field := make([]byte, 4)
			copy(field, e.data)
			buf = append(buf, field...)
		} else {
			buf = le.AppendUint32(buf, uint32(dataStart+len(data)))
			data = append(data, e.data...)
		}
	}
	buf = le.AppendUint32(buf, 0)
	return append(buf, data...)
}
