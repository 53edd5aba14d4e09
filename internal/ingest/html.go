package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLReader extracts visible text from HTML documents, skipping script,
// style and other non-content subtrees. Block elements become paragraph
// breaks so the chunker can find natural boundaries.
type HTMLReader struct{}

// Extensions implements Reader.
func (HTMLReader) Extensions() []string {
	return []string{".html", ".htm"}
}

// Read implements Reader.
func (HTMLReader) Read(name string, data []byte) (string, error) {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return "", err
	}
	return visibleText(doc), nil
}

// blockElements trigger a paragraph break in the extracted text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// visibleText walks the parse tree collecting text nodes.
func visibleText(root *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
			if blockElements[n.Data] {
				buf.WriteString("\n\n")
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(root)
	return strings.TrimSpace(buf.String())
}
