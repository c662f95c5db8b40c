package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bindery/bindery/internal/assemble"
)

func testBook() assemble.Book {
	return assemble.Book{
		Title:               "Trees & Shrubs",
		Author:              "A. Author",
		NumberChaptersInTOC: true,
		Chapters: []assemble.Chapter{
			{Title: "Trees & Shrubs", HTML: "<div class=\"cover\"><h1>Trees &amp; Shrubs</h1></div>", BeforeTOC: true, ExcludeFromTOC: true},
			{Title: "Preface", HTML: "<p>before the marks</p>"},
			{Title: "The First Chapter", HTML: "<p>hello</p>"},
		},
	}
}

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(body)
	}
	return files
}

func TestBuildToBuffer(t *testing.T) {
	buf, err := NewBuilder(testBook()).BuildToBuffer()
	if err != nil {
		t.Fatalf("BuildToBuffer() error = %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}

	t.Run("mimetype is first and uncompressed", func(t *testing.T) {
		if len(zr.File) == 0 {
			t.Fatal("archive is empty")
		}
		first := zr.File[0]
		if first.Name != "mimetype" {
			t.Errorf("first entry = %q, want mimetype", first.Name)
		}
		if first.Method != zip.Store {
			t.Errorf("mimetype method = %d, want Store", first.Method)
		}
	})

	files := readArchive(t, buf.Bytes())

	t.Run("required files present", func(t *testing.T) {
		for _, name := range []string{
			"META-INF/container.xml",
			"OEBPS/content.opf",
			"OEBPS/nav.xhtml",
			"OEBPS/toc.ncx",
			"OEBPS/styles/style.css",
			"OEBPS/chapters/ch_000.xhtml",
			"OEBPS/chapters/ch_001.xhtml",
			"OEBPS/chapters/ch_002.xhtml",
		} {
			if _, ok := files[name]; !ok {
				t.Errorf("missing %s", name)
			}
		}
	})

	t.Run("package metadata escaped", func(t *testing.T) {
		opf := files["OEBPS/content.opf"]
		if !strings.Contains(opf, "<dc:title>Trees &amp; Shrubs</dc:title>") {
			t.Errorf("content.opf missing escaped title:\n%s", opf)
		}
		if !strings.Contains(opf, "<dc:creator>A. Author</dc:creator>") {
			t.Error("content.opf missing creator")
		}
	})

	t.Run("spine includes every chapter", func(t *testing.T) {
		opf := files["OEBPS/content.opf"]
		for _, id := range []string{"ch_000", "ch_001", "ch_002"} {
			if !strings.Contains(opf, "<itemref idref=\""+id+"\"/>") {
				t.Errorf("spine missing %s", id)
			}
		}
	})

	t.Run("spine order follows the manifest, cover first", func(t *testing.T) {
		// Reading order is carried entirely by the spine; the cover must
		// come before everything else in it.
		opf := files["OEBPS/content.opf"]
		prev := -1
		for _, id := range []string{"ch_000", "ch_001", "ch_002"} {
			pos := strings.Index(opf, "<itemref idref=\""+id+"\"/>")
			if pos <= prev {
				t.Fatalf("spine out of manifest order at %s:\n%s", id, opf)
			}
			prev = pos
		}
	})

	t.Run("nav skips excluded chapters and numbers the rest", func(t *testing.T) {
		nav := files["OEBPS/nav.xhtml"]
		if strings.Contains(nav, "ch_000") {
			t.Error("nav should not reference the cover chapter")
		}
		if !strings.Contains(nav, ">1. Preface<") {
			t.Errorf("nav missing numbered preface entry:\n%s", nav)
		}
		if !strings.Contains(nav, ">2. The First Chapter<") {
			t.Error("nav missing numbered chapter entry")
		}
	})

	t.Run("ncx mirrors nav entries", func(t *testing.T) {
		ncx := files["OEBPS/toc.ncx"]
		if !strings.Contains(ncx, "<text>1. Preface</text>") {
			t.Errorf("ncx missing preface entry:\n%s", ncx)
		}
		if strings.Contains(ncx, "ch_000") {
			t.Error("ncx should not reference the cover chapter")
		}
	})
}

func TestNavWithoutNumbering(t *testing.T) {
	book := testBook()
	book.NumberChaptersInTOC = false
	buf, err := NewBuilder(book).BuildToBuffer()
	if err != nil {
		t.Fatalf("BuildToBuffer() error = %v", err)
	}
	files := readArchive(t, buf.Bytes())
	nav := files["OEBPS/nav.xhtml"]
	if !strings.Contains(nav, ">Preface<") {
		t.Errorf("nav missing plain entry:\n%s", nav)
	}
	if strings.Contains(nav, "1. Preface") {
		t.Error("nav should not number entries when numbering is off")
	}
}

func TestBuildWritesFileAtomically(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "exports", "book.epub")

	if err := NewBuilder(testBook()).Build(out); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("output is not a valid archive: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("export directory has %d entries, want only the epub", len(entries))
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Plain Title", "Plain_Title.epub"},
		{"Trees & Shrubs", "Trees__Shrubs.epub"},
		{"???", "book.epub"},
		{"  spaced  ", "spaced.epub"},
	}
	for _, tt := range tests {
		if got := Filename(tt.in); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a & b", "a &amp; b"},
		{"<tag>", "&lt;tag&gt;"},
		{`"quoted" 'apos'`, "&quot;quoted&quot; &apos;apos&apos;"},
	}
	for _, tt := range tests {
		if got := escapeXML(tt.in); got != tt.want {
			t.Errorf("escapeXML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
