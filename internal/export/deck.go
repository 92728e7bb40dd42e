package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode"

	"edulite-cli/internal/edu"
)

// deckTemplate is the standalone HTML deck shell. Slides are stacked
// sections; the embedded script drives arrow-key navigation so the exported
// file works offline in any browser.
var deckTemplate = template.Must(template.New("deck").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 0; background: #1a1a2e; color: #eee; }
section { display: none; min-height: 100vh; padding: 4rem; box-sizing: border-box; }
section.active { display: block; }
h1 { color: #8ab4f8; }
footer { position: fixed; bottom: 1rem; right: 1rem; color: #888; }
</style>
</head>
<body>
{{range $i, $s := .Slides}}<section{{if eq $i 0}} class="active"{{end}}>
<h1>{{$s.Title}}</h1>
{{$s.Body}}
</section>
{{end}}<footer>{{.Title}} &mdash; {{len .Slides}} slides</footer>
<script>
(function () {
  var slides = document.querySelectorAll("section");
  var current = 0;
  function show(i) {
    if (i < 0 || i >= slides.length) return;
    slides[current].classList.remove("active");
    current = i;
    slides[current].classList.add("active");
  }
  document.addEventListener("keydown", function (e) {
    if (e.key === "ArrowRight" || e.key === " ") show(current + 1);
    if (e.key === "ArrowLeft") show(current - 1);
    if (e.key === "Home") show(0);
    if (e.key === "End") show(slides.length - 1);
  });
})();
</script>
</body>
</html>
`))

type deckSlide struct {
	Title string
	Body  template.HTML
}

type deckData struct {
	Title  string
	Lang   string
	Slides []deckSlide
}

// WriteDeck renders the slideshow into a self-contained HTML deck. Slides
// use the server-rendered HTML when present and fall back to the raw
// markdown source, escaped, in a pre block.
func WriteDeck(w io.Writer, detail *edu.SlideshowDetail) error {
	data := deckData{
		Title: detail.Title,
		Lang:  detail.Language,
	}
	if data.Lang == "" {
		data.Lang = "en"
	}

	for _, slide := range detail.Slides {
		body := slide.Rendered
		if body == "" {
			body = "<pre>" + template.HTMLEscapeString(slide.Content) + "</pre>"
		}
		data.Slides = append(data.Slides, deckSlide{
			Title: slide.Title,
			// Rendered HTML comes back from the server's markdown renderer.
			Body: template.HTML(body),
		})
	}

	if err := deckTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering deck: %w", err)
	}
	return nil
}

// DeckName builds the export file name for a slideshow: a slug of the title
// plus the ID, with .age appended when the deck is encrypted.
func DeckName(detail *edu.SlideshowDetail, encrypted bool) string {
	slug := slugify(detail.Title)
	if slug == "" {
		slug = "slideshow"
	}
	name := fmt.Sprintf("%s-%d.html", slug, detail.ID)
	if encrypted {
		name += ".age"
	}
	return name
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Exporter renders decks and stores them on a target, optionally encrypting
// on the way out.
type Exporter struct {
	target    Target
	encryptor edu.Encryptor
	encrypt   bool
	logger    edu.Logger
}

// NewExporter creates an Exporter. encryptor may be nil when encrypt is false.
func NewExporter(target Target, encryptor edu.Encryptor, encrypt bool, logger edu.Logger) (*Exporter, error) {
	if encrypt {
		if encryptor == nil {
			return nil, fmt.Errorf("encrypted export target requires an encryptor")
		}
		if !encryptor.IsConfigured() {
			return nil, fmt.Errorf("encryption keys not set up; run key setup first")
		}
	}
	if logger == nil {
		logger = &edu.NopLogger{}
	}
	return &Exporter{
		target:    target,
		encryptor: encryptor,
		encrypt:   encrypt,
		logger:    logger,
	}, nil
}

// Export renders the slideshow and stores it on the target. It returns the
// stored deck name.
func (e *Exporter) Export(detail *edu.SlideshowDetail) (string, error) {
	var deck bytes.Buffer
	if err := WriteDeck(&deck, detail); err != nil {
		return "", err
	}

	payload := deck.Bytes()
	if e.encrypt {
		var encrypted bytes.Buffer
		if err := e.encryptor.Encrypt(bytes.NewReader(payload), &encrypted); err != nil {
			return "", fmt.Errorf("encrypting deck: %w", err)
		}
		payload = encrypted.Bytes()
	}

	name := DeckName(detail, e.encrypt)
	if err := e.target.PutDeck(name, bytes.NewReader(payload), int64(len(payload))); err != nil {
		return "", err
	}

	e.logger.Info("deck exported", "name", name, "slides", len(detail.Slides), "bytes", len(payload))
	return name, nil
}

// Fetch retrieves a previously exported deck, decrypting it with ctx when
// the exporter is configured for encryption. ctx may be nil for plaintext
// targets.
func (e *Exporter) Fetch(name string, w io.Writer, ctx edu.DecryptionContext) error {
	if !e.encrypt {
		return e.target.GetDeck(name, w)
	}
	if ctx == nil {
		return fmt.Errorf("deck %s is encrypted; unlock the key first", name)
	}

	var encrypted bytes.Buffer
	if err := e.target.GetDeck(name, &encrypted); err != nil {
		return err
	}
	if err := ctx.Decrypt(bytes.NewReader(encrypted.Bytes()), w); err != nil {
		return fmt.Errorf("decrypting deck %s: %w", name, err)
	}
	return nil
}
