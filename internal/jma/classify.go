package jma

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lox/jmaetrn/internal/htmlutil"
)

// futureDateNotice is shown in #main instead of a table when the requested
// day has not been published yet.
const futureDateNotice = "閲覧可能な日まで戻るか、「メニューに戻る」ボタンをクリックして下さい。"

const excerptRunes = 200

// classifyMissingTable explains a page without an observation table. Only
// the known notice maps to KindFutureDate; anything else is
// KindUnrecognizedPage rather than a guess.
func classifyMissingTable(doc *goquery.Document, ctx Error) *Error {
	text := mainText(doc)
	e := ctx
	if strings.Contains(htmlutil.StripSpace(text), htmlutil.StripSpace(futureDateNotice)) {
		e.Kind = KindFutureDate
		return &e
	}
	e.Kind = KindUnrecognizedPage
	e.Detail = htmlutil.Excerpt(text, excerptRunes)
	return &e
}

// mainText is the plain text of the page's #main container, or of the
// whole body when the container is missing.
func mainText(doc *goquery.Document) string {
	sel := doc.Find("#main").First()
	if sel.Length() == 0 {
		sel = doc.Find("body").First()
	}
	html, err := sel.Html()
	if err != nil {
		return strings.TrimSpace(sel.Text())
	}
	return strings.TrimSpace(htmlutil.ToText(html))
}
