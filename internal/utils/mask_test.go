package utils

import (
	"strings"
	"testing"
)

func TestMaskValueTwentyChars(t *testing.T) {
	value := "abcd0123456789xyzWXY"
	if len(value) != 20 {
		t.Fatalf("fixture length = %d", len(value))
	}
	got := MaskValue(value, 4, 4)
	if !strings.HasPrefix(got, "abcd") {
		t.Errorf("prefix not preserved: %q", got)
	}
	if !strings.HasSuffix(got, "zWXY") {
		t.Errorf("suffix not preserved: %q", got)
	}
	if n := strings.Count(got, string(MaskChar)); n != 12 {
		t.Errorf("expected 12 mask chars, got %d (%q)", n, got)
	}
	if len(got) != len(value) {
		t.Errorf("length changed: %d -> %d", len(value), len(got))
	}
}

func TestMaskValueEdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		start, end int
		want       string
	}{
		{"empty", "", 4, 4, ""},
		{"shorter than window", "abc", 4, 4, "***"},
		{"exactly window", "abcdefgh", 4, 4, "********"},
		{"one hidden", "abcdXefgh", 4, 4, "abcd*efgh"},
		{"subscription id", "12345678-aaaa-bbbb-cccc-1234567890ab", 4, 4, "1234****************************90ab"},
		{"zero offsets", "secret", 0, 0, "******"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskValue(tt.value, tt.start, tt.end); got != tt.want {
				t.Errorf("MaskValue(%q, %d, %d) = %q, want %q", tt.value, tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestPreviewTokenHidesTail(t *testing.T) {
	token := "eyJ0eXAiOiJKV1QiLCJhbGciOiJSUzI1NiJ9.payload.signature"
	got := PreviewToken(token, 20)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
	if strings.Contains(got, "signature") || strings.Contains(got, "payload") {
		t.Errorf("preview leaked token tail: %q", got)
	}
	if n := strings.Count(got, string(MaskChar)); n != 12 {
		t.Errorf("expected 12 mask chars for width 20, got %d", n)
	}

	short := PreviewToken(token, 10)
	if n := strings.Count(short, string(MaskChar)); n != 2 {
		t.Errorf("expected 2 mask chars for width 10, got %d (%q)", n, short)
	}
}
