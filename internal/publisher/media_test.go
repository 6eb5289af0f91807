package publisher

import "testing"

func TestAbsoluteMediaURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"relative path", "https://app.example.com", "/uploads/img.png", "https://app.example.com/uploads/img.png"},
		{"bare filename", "https://app.example.com/media/", "img.png", "https://app.example.com/media/img.png"},
		{"already absolute", "https://app.example.com", "https://cdn.example.com/img.png", "https://cdn.example.com/img.png"},
		{"empty ref", "https://app.example.com", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AbsoluteMediaURL(tt.base, tt.ref)
			if got != tt.want {
				t.Errorf("AbsoluteMediaURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}
