package epub

import (
	"fmt"

	"github.com/bindery/bindery/internal/assemble"
)

// chapterXHTML wraps a chapter's pre-rendered body in an XHTML document.
// Chapter bodies arrive already escaped from the assembler.
func chapterXHTML(ch assemble.Chapter) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>%s</title>
  <link rel="stylesheet" type="text/css" href="../styles/style.css"/>
</head>
<body>
%s
</body>
</html>`, escapeXML(ch.Title), ch.HTML)
}
