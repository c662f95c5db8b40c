package epub

import (
	"fmt"
	"strings"
	"time"
)

// generatePackage creates the OPF package document.
func (b *Builder) generatePackage() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="book-id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
`)

	sb.WriteString(fmt.Sprintf("    <dc:identifier id=\"book-id\">%s</dc:identifier>\n", escapeXML(b.id)))
	sb.WriteString(fmt.Sprintf("    <dc:title>%s</dc:title>\n", escapeXML(b.book.Title)))
	if b.book.Author != "" {
		sb.WriteString(fmt.Sprintf("    <dc:creator>%s</dc:creator>\n", escapeXML(b.book.Author)))
	}
	sb.WriteString("    <dc:language>en</dc:language>\n")
	sb.WriteString(fmt.Sprintf("    <meta property=\"dcterms:modified\">%s</meta>\n",
		time.Now().UTC().Format("2006-01-02T15:04:05Z")))

	sb.WriteString(`  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="css" href="styles/style.css" media-type="text/css"/>
`)

	for i := range b.book.Chapters {
		id := chapterID(i)
		sb.WriteString(fmt.Sprintf("    <item id=\"%s\" href=\"chapters/%s.xhtml\" media-type=\"application/xhtml+xml\"/>\n", id, id))
	}

	sb.WriteString(`  </manifest>
  <spine toc="ncx">
`)

	for i := range b.book.Chapters {
		sb.WriteString(fmt.Sprintf("    <itemref idref=\"%s\"/>\n", chapterID(i)))
	}

	sb.WriteString(`  </spine>
</package>`)

	return sb.String()
}

// escapeXML escapes special characters for XML content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
