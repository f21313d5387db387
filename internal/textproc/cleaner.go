// Package textproc turns raw email input into clean plain text: decoding
// uploaded documents and normalizing body text for classification.
package textproc

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// MinContentLength is the floor below which cleaned text is treated as
// having no usable content.
const MinContentLength = 10

var (
	// headerLineRe matches English and Portuguese email header labels at
	// the start of a line, followed by a colon.
	headerLineRe = regexp.MustCompile(`(?i)^(from|de|to|para|subject|assunto|date|data|cc|bcc|reply-to|message-id|received)\s*:`)

	urlRe = regexp.MustCompile(`https?://\S+`)

	// noiseRe matches everything outside letters, digits, underscore,
	// whitespace and basic punctuation. \p{L}\p{N} rather than \w because
	// Go's \w is ASCII-only and would strip accented PT-BR letters.
	noiseRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()-]`)

	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// Clean normalizes raw email text: strips markup when present, drops
// header lines, quoted replies, blank and tiny lines, removes URLs and
// noise characters and collapses whitespace. Returns "" when the result
// is shorter than MinContentLength.
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	lower := strings.ToLower(raw)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<div") || strings.Contains(lower, "<br") {
		raw = StripMarkup(raw)
	}

	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if headerLineRe.MatchString(line) {
			continue
		}
		if strings.HasPrefix(line, ">") {
			continue
		}
		if utf8.RuneCountInString(line) < 3 {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return ""
	}

	text := strings.Join(kept, " ")
	text = urlRe.ReplaceAllString(text, " ")
	text = noiseRe.ReplaceAllString(text, " ")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) < MinContentLength {
		return ""
	}
	return text
}

// StripMarkup extracts the text nodes of an HTML fragment, joined with
// single spaces. Script and style subtrees are skipped. On a parse error
// the input is returned unchanged.
func StripMarkup(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, " ")
}
