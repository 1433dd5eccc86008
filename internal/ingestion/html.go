package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTag = regexp.MustCompile(`(?i)<(p|div|br|li|ul|ol|h[1-6]|span|b|strong|em|i|a|section|article|table|body|html)[\s/>]`)

// noiseSelector lists elements whose text never belongs to a posting.
const noiseSelector = "script, style, noscript, template, iframe, svg, nav, footer, header, form, " +
	".ad, .advertisement, .ads, .sidebar, .cookie-banner, .cookie-consent, .popup"

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "tr": true, "table": true,
	"blockquote": true, "pre": true, "dl": true, "dt": true, "dd": true,
}

// LooksLikeHTML reports whether content contains common HTML tags.
func LooksLikeHTML(content string) bool {
	return htmlTag.MatchString(content)
}

// HTMLToText renders an HTML document or fragment as plain text. Block
// elements start new lines and list items become "- " bullets.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find(noiseSelector).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return renderText(root), nil
}

// ExtractMainText returns the text of the first element matching one of
// contentSelectors, or of the body when none match. noiseSelectors are
// removed first.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	var main *goquery.Selection
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}
	return renderText(main), nil
}

func renderText(sel *goquery.Selection) string {
	var sb strings.Builder
	sel.Each(func(_ int, s *goquery.Selection) {
		writeNode(&sb, s)
	})
	return CleanText(sb.String())
}

func writeNode(sb *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		name := goquery.NodeName(child)
		switch {
		case name == "#text":
			sb.WriteString(child.Text())
		case name == "br":
			sb.WriteString("\n")
		case name == "li":
			sb.WriteString("\n- ")
			writeNode(sb, child)
			sb.WriteString("\n")
		case blockElements[name]:
			sb.WriteString("\n")
			writeNode(sb, child)
			sb.WriteString("\n")
		case strings.HasPrefix(name, "#"):
			// comments and doctypes
		default:
			writeNode(sb, child)
		}
	})
}
