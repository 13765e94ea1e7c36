package htmldom

import (
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"

	"github.com/livefir/docdiff/internal/tree"
)

var (
	minifier *minify.M
	once     sync.Once
)

// getMinifier returns the shared HTML minifier. End tags and quotes are
// kept so the parser sees the same structure the author wrote.
func getMinifier() *minify.M {
	once.Do(func() {
		minifier = minify.New()
		minifier.Add("text/html", &mhtml.Minifier{
			KeepEndTags:      true,
			KeepQuotes:       true,
			KeepDocumentTags: true,
		})
	})
	return minifier
}

// minifyHTML collapses insignificant whitespace. Text without markup only
// has its whitespace normalized. The minifier keeps a newline from a
// whitespace run, so text nodes also go through collapseWhitespace after
// parsing.
func minifyHTML(src string) string {
	if !strings.Contains(src, "<") {
		return strings.Trim(collapseSpace(src), " ")
	}
	out, err := getMinifier().String("text/html", src)
	if err != nil {
		return src
	}
	return out
}

// collapseWhitespace reduces every run of HTML whitespace in the text
// below e to one space. Preformatted elements and non-breaking spaces are
// left alone.
func collapseWhitespace(e *tree.Element) {
	if e.Name == "pre" || e.Name == "textarea" {
		return
	}
	for _, child := range e.Nodes {
		switch c := child.(type) {
		case *tree.Text:
			c.Data = collapseSpace(c.Data)
		case *tree.Element:
			collapseWhitespace(c)
		}
	}
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if strings.ContainsRune(" \t\n\f\r", r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
