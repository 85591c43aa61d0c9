package cli

import "testing"

func TestDeriveName(t *testing.T) {
	tests := map[string]string{
		"/videos/My Cool.Video.mp4":             "my-cool-video",
		"https://cdn.example.com/1762_clip.mp4": "1762-clip",
		"___.mp4":                               "shotcut",
		"abc123.mkv":                            "abc123",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := deriveName(in); got != want {
				t.Fatalf("deriveName(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestNormalizeNameSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizeNameSegment(in); got != want {
				t.Fatalf("normalizeNameSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}
