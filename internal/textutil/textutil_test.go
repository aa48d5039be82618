package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "photo.jpg", want: "photo.jpg"},
		{name: "strips path", in: "../../etc/passwd", want: "passwd"},
		{name: "windows path", in: `C:\Users\me\cat.jpg`, want: "cat.jpg"},
		{name: "spaces", in: "my holiday photo.jpg", want: "my_holiday_photo.jpg"},
		{name: "specials dropped", in: "a;b|c&d.jpg", want: "abcd.jpg"},
		{name: "empty", in: "", want: "upload"},
		{name: "dots only", in: "...", want: "upload"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.in); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Truncate("a long rationale string", 10); got != "a long ..." {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Truncate("abcdef", 2); got != "ab" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("unexpected: %q", got)
	}
}
