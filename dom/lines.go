package dom

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
)

// newLineConverter builds the reusable, goroutine-safe Markdown converter
// that linearises card HTML. Markdown is a convenient intermediate: the base
// plugin strips script/style noise and block elements become line breaks,
// which preserves "name above title" layouts as adjacent lines.
func newLineConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

var (
	mdImageRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdLinkRe  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// cardLines converts a card to plain text lines, top to bottom.
func (m *Matcher) cardLines(card *goquery.Selection) []string {
	raw, err := goquery.OuterHtml(card)
	var md string
	if err == nil {
		md, err = m.conv.ConvertString(raw)
	}
	if err != nil {
		md = card.Text()
	}
	return splitLines(md)
}

// splitLines strips Markdown decoration and returns the non-empty lines.
func splitLines(md string) []string {
	md = mdImageRe.ReplaceAllString(md, "")
	md = mdLinkRe.ReplaceAllString(md, "$1")
	var lines []string
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimLeft(line, "#>*-| ")
		line = strings.ReplaceAll(line, "**", "")
		line = strings.ReplaceAll(line, `\`, "")
		line = collapseSpaces(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
