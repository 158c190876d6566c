package services

import "testing"

func TestInferMimeType(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
		fallback string
		want     string
	}{
		{"mp4 extension", "video.mp4", "", "video/mp4"},
		{"mp4 extension uppercase", "VIDEO.MP4", "", "video/mp4"},
		{"jpeg falls back to default", "photo.jpg", "", "image/jpeg"},
		{"png falls back to default", "shot.png", "", "image/jpeg"},
		{"no extension", "README", "", "image/jpeg"},
		{"custom fallback", "photo.png", "image/png", "image/png"},
		{"mp4 wins over fallback", "clip.mp4", "image/png", "video/mp4"},
		{"mp4 in the middle of the name", "clip.mp4.txt", "", "image/jpeg"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferMimeType(tc.fileName, tc.fallback); got != tc.want {
				t.Errorf("InferMimeType(%q, %q) = %q, want %q", tc.fileName, tc.fallback, got, tc.want)
			}
		})
	}
}
