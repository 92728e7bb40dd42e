// Package htmlimport turns existing HTML documents into slideshow drafts.
// The document is converted to markdown and split into slides at top-level
// headings, so a lecture page or exported deck can be re-edited as a
// slideshow.
package htmlimport

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"edulite-cli/internal/edu"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote|html|body)[\s>/]`)

// containsHTML checks if a string appears to contain HTML markup.
func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Slides converts an HTML document to markdown and splits it into slides at
// H1 boundaries. Content before the first heading becomes an untitled
// opening slide. Plain text input is accepted and treated as one slide.
func Slides(document string) ([]edu.Slide, error) {
	if strings.TrimSpace(document) == "" {
		return nil, fmt.Errorf("document is empty")
	}

	markdown := document
	if containsHTML(document) {
		converted, err := htmltomarkdown.ConvertString(document)
		if err != nil {
			return nil, fmt.Errorf("converting html: %w", err)
		}
		markdown = converted
	}

	slides := split(markdown)
	if len(slides) == 0 {
		return nil, fmt.Errorf("document produced no content")
	}
	return slides, nil
}

// split cuts markdown into slides at lines starting with a single "# ".
func split(markdown string) []edu.Slide {
	var slides []edu.Slide
	var title string
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if title == "" && content == "" {
			return
		}
		if content == "" {
			// A bare heading still makes a slide; keep the heading as content
			// so the slide is not empty.
			content = "# " + title
		}
		slides = append(slides, edu.Slide{
			Order:   len(slides),
			Title:   title,
			Content: content,
		})
	}

	for _, line := range strings.Split(markdown, "\n") {
		if heading, ok := strings.CutPrefix(line, "# "); ok {
			flush()
			title = strings.TrimSpace(heading)
			body = body[:0]
			continue
		}
		body = append(body, line)
	}
	flush()

	return slides
}
