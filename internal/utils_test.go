package internal

import "testing"

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		want string
	}{
		{"src/chapter1.md", ".html", "chapter1.html"},
		{"chapter1.md", ".html", "chapter1.html"},
		{"/abs/path/λόγος.md", ".tex", "λόγος.tex"},
		{"noext", ".html", "noext.html"},
		{"archive.tar.gz", ".bak", "archive.tar.bak"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ReplaceExt(tt.path, tt.ext); got != tt.want {
				t.Errorf("ReplaceExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
			}
		})
	}
}

func TestIsMarkdown(t *testing.T) {
	tests := map[string]bool{
		"a.md":       true,
		"A.MD":       true,
		"b.markdown": true,
		"title.txt":  false,
		"c.html":     false,
		"md":         false,
	}

	for name, want := range tests {
		if got := IsMarkdown(name); got != want {
			t.Errorf("IsMarkdown(%q) = %v, want %v", name, got, want)
		}
	}
}
