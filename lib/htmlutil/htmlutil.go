package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText concatenates every text node below node.
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
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	var out strings.Builder
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			out.WriteRune(c)
		}
	}
	return out.String()
}

// CleanText strips non printable characters (including &nbsp; leftovers),
// trims, and collapses inner whitespace to single spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// NodeText is CleanText(GetText(node)).
func NodeText(node *html.Node) string {
	return CleanText(GetText(node))
}

// Cells returns the cleaned text of every <td> directly inside row.
func Cells(row *goquery.Selection) []string {
	tds := row.ChildrenFiltered("td")
	out := make([]string, 0, tds.Length())
	for _, n := range tds.Nodes {
		out = append(out, NodeText(n))
	}
	return out
}
