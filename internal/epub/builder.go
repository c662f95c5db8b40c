// Package epub serializes an assembled book manifest into an ePub 3.0 file.
package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bindery/bindery/internal/assemble"
)

// Builder creates ePub 3.0 files from an assembled manifest.
type Builder struct {
	book assemble.Book
	id   string
}

// NewBuilder creates a new epub builder.
func NewBuilder(book assemble.Book) *Builder {
	return &Builder{
		book: book,
		id:   "urn:uuid:" + uuid.New().String(),
	}
}

// Build generates the epub and writes it to the specified path.
// The file is written to a temporary sibling and renamed into place so a
// failed export never leaves a partial file behind.
func (b *Builder) Build(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".epub-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := b.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finish output file: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to place output file: %w", err)
	}
	return nil
}

// BuildToBuffer generates the epub into memory.
func (b *Builder) BuildToBuffer() (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := b.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteTo writes the epub to a writer.
func (b *Builder) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)

	if err := b.writeMimetype(zw); err != nil {
		return err
	}
	if err := b.writeContainer(zw); err != nil {
		return err
	}
	if err := b.writePackage(zw); err != nil {
		return err
	}
	if err := b.writeNavigation(zw); err != nil {
		return err
	}
	if err := b.writeNCX(zw); err != nil {
		return err
	}
	if err := b.writeStylesheet(zw); err != nil {
		return err
	}

	for i, ch := range b.book.Chapters {
		if err := b.writeChapter(zw, i, ch); err != nil {
			return fmt.Errorf("failed to write chapter %q: %w", ch.Title, err)
		}
	}

	return zw.Close()
}

// chapterID names a chapter's file inside the container.
func chapterID(index int) string {
	return fmt.Sprintf("ch_%03d", index)
}

// Filename turns a book title into a safe .epub filename.
func Filename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}, title)
	name = strings.Trim(name, "_")
	if name == "" {
		name = "book"
	}
	return name + ".epub"
}

// writeMimetype writes the mimetype file (must be first and uncompressed).
func (b *Builder) writeMimetype(zw *zip.Writer) error {
	header := &zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create mimetype: %w", err)
	}
	_, err = w.Write([]byte("application/epub+zip"))
	return err
}

// writeContainer writes META-INF/container.xml.
func (b *Builder) writeContainer(zw *zip.Writer) error {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

	w, err := zw.Create("META-INF/container.xml")
	if err != nil {
		return fmt.Errorf("failed to create container.xml: %w", err)
	}
	_, err = w.Write([]byte(content))
	return err
}

func (b *Builder) writePackage(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/content.opf")
	if err != nil {
		return fmt.Errorf("failed to create content.opf: %w", err)
	}
	_, err = w.Write([]byte(b.generatePackage()))
	return err
}

func (b *Builder) writeNavigation(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/nav.xhtml")
	if err != nil {
		return fmt.Errorf("failed to create nav.xhtml: %w", err)
	}
	_, err = w.Write([]byte(b.generateNavigation()))
	return err
}

func (b *Builder) writeNCX(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/toc.ncx")
	if err != nil {
		return fmt.Errorf("failed to create toc.ncx: %w", err)
	}
	_, err = w.Write([]byte(b.generateNCX()))
	return err
}

func (b *Builder) writeStylesheet(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/styles/style.css")
	if err != nil {
		return fmt.Errorf("failed to create style.css: %w", err)
	}
	_, err = w.Write([]byte(defaultStylesheet))
	return err
}

func (b *Builder) writeChapter(zw *zip.Writer, index int, ch assemble.Chapter) error {
	filename := fmt.Sprintf("OEBPS/chapters/%s.xhtml", chapterID(index))
	w, err := zw.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	_, err = w.Write([]byte(chapterXHTML(ch)))
	return err
}

const defaultStylesheet = `/* Bindery ePub Stylesheet */

body {
  font-family: Georgia, "Times New Roman", serif;
  font-size: 1em;
  line-height: 1.6;
  margin: 1em;
  text-align: justify;
}

h1, h2, h3 {
  font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;
  font-weight: bold;
  margin-top: 1.5em;
  margin-bottom: 0.5em;
  text-align: left;
}

h1 {
  font-size: 1.8em;
}

p {
  margin: 0.5em 0;
  text-indent: 1.5em;
}

p:first-of-type,
h1 + p, h2 + p {
  text-indent: 0;
}

.cover {
  text-align: center;
  margin-top: 30%;
}

.cover .author {
  font-style: italic;
  text-indent: 0;
}
`
