package hosting

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

// unzip expands an archive into a name -> content map.
func unzip(t *testing.T, archive []byte) map[string]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}

	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestArchiveStaticFiles(t *testing.T) {
	b := Bundle{
		HTML: "<html><head></head><body>hi</body></html>",
		CSS:  "body { color: red; }",
		JS:   "console.log('hi');",
	}

	archive, err := b.Archive()
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	files := unzip(t, archive)
	if len(files) != 3 {
		t.Fatalf("archive has %d files, want 3: %v", len(files), files)
	}
	if files["style.css"] != b.CSS {
		t.Errorf("style.css = %q, want %q", files["style.css"], b.CSS)
	}
	if files["script.js"] != b.JS {
		t.Errorf("script.js = %q, want %q", files["script.js"], b.JS)
	}
	if _, ok := files["netlify.toml"]; ok {
		t.Error("static archive should not contain netlify.toml")
	}
}

func TestArchiveOmitsEmptyAssets(t *testing.T) {
	b := Bundle{HTML: "<html></html>"}

	archive, err := b.Archive()
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	files := unzip(t, archive)
	if len(files) != 1 {
		t.Fatalf("archive has %d files, want only index.html: %v", len(files), files)
	}
	if _, ok := files["index.html"]; !ok {
		t.Error("archive missing index.html")
	}
}

func TestArchiveFullStack(t *testing.T) {
	b := Bundle{
		HTML:      "<html><body></body></html>",
		FullStack: true,
		Functions: map[string]string{
			"hello":  "exports.handler = async () => ({statusCode: 200});",
			"api.js": "exports.handler = async () => ({statusCode: 201});",
		},
	}

	archive, err := b.Archive()
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	files := unzip(t, archive)
	if got := files["netlify.toml"]; !strings.Contains(got, `functions = "netlify/functions"`) {
		t.Errorf("netlify.toml = %q, want functions directory declaration", got)
	}
	if _, ok := files["netlify/functions/hello.js"]; !ok {
		t.Errorf("archive missing netlify/functions/hello.js: %v", files)
	}
	if _, ok := files["netlify/functions/api.js"]; !ok {
		t.Errorf("function name with extension should keep a single .js: %v", files)
	}
}

func TestArchiveFullStackWithoutFunctions(t *testing.T) {
	b := Bundle{HTML: "<html></html>", FullStack: true}

	archive, err := b.Archive()
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	files := unzip(t, archive)
	if _, ok := files["netlify.toml"]; !ok {
		t.Error("full-stack archive must carry netlify.toml even without functions")
	}
}

func TestArchiveDeterministic(t *testing.T) {
	b := Bundle{
		HTML:      "<html><head></head><body></body></html>",
		CSS:       "body {}",
		JS:        "void 0;",
		FullStack: true,
		Functions: map[string]string{"a": "x", "b": "y", "c": "z"},
	}

	first, err := b.Archive()
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	second, err := b.Archive()
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("identical bundles produced different archives")
	}
}

func TestInjectedHTML(t *testing.T) {
	tests := []struct {
		name string
		b    Bundle
		want []string
		not  []string
	}{
		{
			name: "css injected before head close",
			b:    Bundle{HTML: "<head><title>t</title></head><body></body>", CSS: "x"},
			want: []string{`<link rel="stylesheet" href="style.css">` + "\n</head>"},
		},
		{
			name: "js injected before body close",
			b:    Bundle{HTML: "<head></head><body><p>hi</p></body>", JS: "x"},
			want: []string{`<script src="script.js"></script>` + "\n</body>"},
		},
		{
			name: "no head tag prepends link",
			b:    Bundle{HTML: "<p>bare</p>", CSS: "x"},
			want: []string{`<link rel="stylesheet" href="style.css">` + "\n<p>bare</p>"},
		},
		{
			name: "no body tag appends script",
			b:    Bundle{HTML: "<p>bare</p>", JS: "x"},
			want: []string{"<p>bare</p>\n" + `<script src="script.js"></script>`},
		},
		{
			name: "existing references are untouched",
			b: Bundle{
				HTML: `<head><link href="style.css"></head><body><script src="script.js"></script></body>`,
				CSS:  "x",
				JS:   "y",
			},
			not: []string{`rel="stylesheet"`},
		},
		{
			name: "no assets means no injection",
			b:    Bundle{HTML: "<head></head><body></body>"},
			not:  []string{"style.css", "script.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.b.injectedHTML()
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("injectedHTML() = %q, missing %q", got, want)
				}
			}
			for _, not := range tt.not {
				if strings.Contains(got, not) {
					t.Errorf("injectedHTML() = %q, should not contain %q", got, not)
				}
			}
		})
	}
}

func TestFunctionFileName(t *testing.T) {
	if got := functionFileName("hello"); got != "hello.js" {
		t.Errorf("functionFileName(hello) = %q", got)
	}
	if got := functionFileName("hello.js"); got != "hello.js" {
		t.Errorf("functionFileName(hello.js) = %q", got)
	}
}

func TestFunctionEndpoint(t *testing.T) {
	got := FunctionEndpoint("https://my-site.netlify.app", "hello.js")
	want := "https://my-site.netlify.app/.netlify/functions/hello"
	if got != want {
		t.Errorf("FunctionEndpoint() = %q, want %q", got, want)
	}
}
