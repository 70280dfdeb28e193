package artifacts

import "testing"

func TestPublicURL(t *testing.T) {
	cases := []struct {
		base, path, want string
	}{
		{"http://localhost:8080/files", "pictures/a.png", "http://localhost:8080/files/pictures/a.png"},
		{"http://localhost:8080/files/", "pictures/a.png", "http://localhost:8080/files/pictures/a.png"},
		{"http://localhost:8080/files", "/pictures/a.png", "http://localhost:8080/files/pictures/a.png"},
		{"http://localhost:8080/files", "", ""},
	}
	for _, c := range cases {
		if got := PublicURL(c.base, c.path); got != c.want {
			t.Errorf("PublicURL(%q, %q) = %q, want %q", c.base, c.path, got, c.want)
		}
	}
}

func TestPathFromURL(t *testing.T) {
	base := "http://localhost:8080/files"
	if got := PathFromURL(base, "http://localhost:8080/files/signatures/s.png"); got != "signatures/s.png" {
		t.Errorf("PathFromURL = %q", got)
	}
	if got := PathFromURL(base, "http://elsewhere.test/signatures/s.png"); got != "" {
		t.Errorf("foreign URL should map to empty path, got %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{"my photo (1).png", "my_photo__1_.png"},
		{"", "file"},
	}
	for _, c := range cases {
		if got := sanitizeFilename(c.in); got != c.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
