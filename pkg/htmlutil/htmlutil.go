package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText concatenates every text node under node, in document order.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// FirstChildText returns the text of the first child of the first node in sel.
// A text child is returned as is, an element child is flattened with GetText.
// ok is false when the selection is empty or the node has no children.
func FirstChildText(sel *goquery.Selection) (text string, ok bool) {
	if sel.Length() == 0 {
		return "", false
	}
	child := sel.Nodes[0].FirstChild
	if child == nil {
		return "", false
	}
	if child.Type == html.TextNode {
		return child.Data, true
	}
	return GetText(child), true
}

// Lines splits the text of sel on newlines, trimming each fragment and
// dropping the empty ones.
func Lines(sel *goquery.Selection) []string {
	var out []string
	for _, line := range strings.Split(sel.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
