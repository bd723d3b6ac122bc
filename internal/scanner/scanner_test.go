package scanner

import (
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func newFs(t *testing.T, paths ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range paths {
		if err := afero.WriteFile(fs, p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"dir/a.png", true},
		{"a.bmp", true},
		{"a.webp", true},
		{"a.gif", false},
		{"a.tiff", false},
		{"noext", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsSupported(tt.path); got != tt.want {
				t.Errorf("IsSupported(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestCollect(t *testing.T) {
	fs := newFs(t,
		"/photos/b.jpg",
		"/photos/a.png",
		"/photos/notes.txt",
		"/photos/._a.png",
		"/photos/x.converting.jpg",
		"/photos/.hidden/c.jpg",
		"/photos/sub/d.webp",
		"/single/z.bmp",
	)

	tests := []struct {
		name      string
		args      []string
		recursive bool
		want      []string
	}{
		{
			name: "directory sorted",
			args: []string{"/photos"},
			want: []string{"/photos/a.png", "/photos/b.jpg"},
		},
		{
			name:      "recursive skips hidden",
			args:      []string{"/photos"},
			recursive: true,
			want:      []string{"/photos/a.png", "/photos/b.jpg", "/photos/sub/d.webp"},
		},
		{
			name: "explicit files keep order",
			args: []string{"/single/z.bmp", "/photos/b.jpg", "/photos/a.png"},
			want: []string{"/single/z.bmp", "/photos/b.jpg", "/photos/a.png"},
		},
		{
			name: "duplicates removed",
			args: []string{"/photos/b.jpg", "/photos"},
			want: []string{"/photos/b.jpg", "/photos/a.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(fs, nil)
			s.Recursive = tt.recursive
			got, err := s.Collect(tt.args)
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Collect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollect_Errors(t *testing.T) {
	fs := newFs(t, "/photos/notes.txt")
	s := New(fs, nil)

	if _, err := s.Collect([]string{"/missing.jpg"}); err == nil {
		t.Error("Collect() with missing file should fail")
	}
	if _, err := s.Collect([]string{"/photos/notes.txt"}); err == nil {
		t.Error("Collect() with unsupported file should fail")
	}
}
