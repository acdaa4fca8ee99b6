package scaffold

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"Déjà Vu", "deja-vu"},
		{"日本語のタイトル", "ri-ben-yu-notaitoru"},
		{"  spaced   out  ", "spaced-out"},
		{"Symbols?! & Stuff", "symbols-stuff"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "verylongword "
	}
	if got := Slugify(long); len(got) > 100 {
		t.Errorf("slug length = %d, want <= 100", len(got))
	}
}
