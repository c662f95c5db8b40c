package epub

import (
	"fmt"
	"strings"
)

// navEntry pairs a TOC label with the chapter file it points at.
type navEntry struct {
	label string
	href  string
}

// navEntries collects the TOC entries in spine order, honoring the
// per-chapter exclusion flag and optional entry numbering.
func (b *Builder) navEntries() []navEntry {
	var entries []navEntry
	number := 0
	for i, ch := range b.book.Chapters {
		if ch.ExcludeFromTOC {
			continue
		}
		label := ch.Title
		if b.book.NumberChaptersInTOC {
			number++
			label = fmt.Sprintf("%d. %s", number, label)
		}
		entries = append(entries, navEntry{
			label: label,
			href:  fmt.Sprintf("chapters/%s.xhtml", chapterID(i)),
		})
	}
	return entries
}

// generateNavigation creates the EPUB 3 navigation document.
func (b *Builder) generateNavigation() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>Table of Contents</title>
  <link rel="stylesheet" type="text/css" href="styles/style.css"/>
</head>
<body>
  <nav epub:type="toc" id="toc">
    <h1>Table of Contents</h1>
    <ol>
`)

	for _, e := range b.navEntries() {
		sb.WriteString(fmt.Sprintf("      <li><a href=\"%s\">%s</a></li>\n", e.href, escapeXML(e.label)))
	}

	sb.WriteString(`    </ol>
  </nav>
</body>
</html>`)

	return sb.String()
}

// generateNCX creates the NCX table of contents for EPUB 2 readers.
func (b *Builder) generateNCX() string {
	var sb strings.Builder

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
`)
	sb.WriteString(fmt.Sprintf("    <meta name=\"dtb:uid\" content=\"%s\"/>\n", escapeXML(b.id)))
	sb.WriteString(`    <meta name="dtb:depth" content="1"/>
    <meta name="dtb:totalPageCount" content="0"/>
    <meta name="dtb:maxPageNumber" content="0"/>
  </head>
  <docTitle>
`)
	sb.WriteString(fmt.Sprintf("    <text>%s</text>\n", escapeXML(b.book.Title)))
	sb.WriteString(`  </docTitle>
  <navMap>
`)

	for i, e := range b.navEntries() {
		sb.WriteString(fmt.Sprintf(`    <navPoint id="navpoint-%d" playOrder="%d">
      <navLabel><text>%s</text></navLabel>
      <content src="%s"/>
    </navPoint>
`, i+1, i+1, escapeXML(e.label), e.href))
	}

	sb.WriteString(`  </navMap>
</ncx>`)

	return sb.String()
}
