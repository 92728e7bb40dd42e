package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"edulite-cli/internal/edu"
)

type slideBody struct {
	ID       int       `json:"id,omitempty"`
	Order    int       `json:"order"`
	Title    string    `json:"title,omitempty"`
	Content  string    `json:"content,omitempty"`
	Rendered string    `json:"rendered_content,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Created  time.Time `json:"created_at,omitempty"`
	Updated  time.Time `json:"updated_at,omitempty"`
}

func (b slideBody) model() edu.Slide {
	return edu.Slide{
		ID:       b.ID,
		Order:    b.Order,
		Title:    b.Title,
		Content:  b.Content,
		Rendered: b.Rendered,
		Notes:    b.Notes,
	}
}

type slideshowBody struct {
	ID                int         `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	CreatedBy         int         `json:"created_by"`
	CreatedByUsername string      `json:"created_by_username"`
	Visibility        string      `json:"visibility"`
	Language          string      `json:"language"`
	Country           string      `json:"country"`
	Subject           string      `json:"subject"`
	IsPublished       bool        `json:"is_published"`
	Version           int         `json:"version"`
	SlideCount        int         `json:"slide_count"`
	Slides            []slideBody `json:"slides"`
	RemainingSlideIDs []int       `json:"remaining_slide_ids"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (b slideshowBody) model() edu.Slideshow {
	return edu.Slideshow{
		ID:                b.ID,
		Title:             b.Title,
		Description:       b.Description,
		Visibility:        edu.Visibility(b.Visibility),
		Language:          b.Language,
		Country:           b.Country,
		Subject:           b.Subject,
		Published:         b.IsPublished,
		Version:           b.Version,
		CreatedBy:         b.CreatedBy,
		CreatedByUsername: b.CreatedByUsername,
		SlideCount:        b.SlideCount,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func (b slideshowBody) detail() *edu.SlideshowDetail {
	d := &edu.SlideshowDetail{
		Slideshow:         b.model(),
		RemainingSlideIDs: b.RemainingSlideIDs,
	}
	for _, s := range b.Slides {
		d.Slides = append(d.Slides, s.model())
	}
	return d
}

type showInputBody struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Visibility  string       `json:"visibility"`
	Language    string       `json:"language,omitempty"`
	Country     string       `json:"country,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	IsPublished bool         `json:"is_published"`
	Version     int          `json:"version,omitempty"`
	Slides      []slideInput `json:"slides"`
}

type slideInput struct {
	Order   int    `json:"order"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Notes   string `json:"notes,omitempty"`
}

func encodeShowInput(in edu.ShowInput) showInputBody {
	body := showInputBody{
		Title:       in.Title,
		Description: in.Description,
		Visibility:  string(in.Visibility),
		Language:    in.Language,
		Country:     in.Country,
		Subject:     in.Subject,
		IsPublished: in.Published,
		Version:     in.Version,
		Slides:      make([]slideInput, 0, len(in.Slides)),
	}
	for _, s := range in.Slides {
		body.Slides = append(body.Slides, slideInput{
			Order:   s.Order,
			Title:   s.Title,
			Content: s.Content,
			Notes:   s.Notes,
		})
	}
	return body
}

// ShowListOptions filter the slideshow list and search endpoints.
type ShowListOptions struct {
	ListOptions
	Visibility edu.Visibility
	Subject    string
	Language   string
	Country    string
	Mine       bool
}

func (o ShowListOptions) query() url.Values {
	q := o.ListOptions.query()
	if o.Visibility != "" {
		q.Set("visibility", string(o.Visibility))
	}
	if o.Subject != "" {
		q.Set("subject", o.Subject)
	}
	if o.Language != "" {
		q.Set("language", o.Language)
	}
	if o.Country != "" {
		q.Set("country", o.Country)
	}
	if o.Mine {
		q.Set("mine", "true")
	}
	return q
}

// ListSlideshows returns one page of slideshows visible to the user.
func (c *Client) ListSlideshows(ctx context.Context, opts ShowListOptions) (*Page[edu.Slideshow], error) {
	var page Page[slideshowBody]
	if err := c.do(ctx, http.MethodGet, "/slideshows/", opts.query(), nil, &page); err != nil {
		return nil, err
	}
	return convertPage(page), nil
}

// SearchSlideshows searches slideshows by title or description. The query
// must be at least two characters.
func (c *Client) SearchSlideshows(ctx context.Context, query string, opts ShowListOptions) (*Page[edu.Slideshow], error) {
	q := opts.query()
	q.Set("q", query)
	var page Page[slideshowBody]
	if err := c.do(ctx, http.MethodGet, "/slideshows/search/", q, nil, &page); err != nil {
		return nil, err
	}
	return convertPage(page), nil
}

func convertPage(page Page[slideshowBody]) *Page[edu.Slideshow] {
	out := &Page[edu.Slideshow]{
		Count:       page.Count,
		Next:        page.Next,
		Previous:    page.Previous,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
	}
	for _, b := range page.Results {
		out.Results = append(out.Results, b.model())
	}
	return out
}

// SlideshowDetail fetches one slideshow. With initial > 0 the response
// carries only the first initial slides plus the IDs of the rest for
// progressive loading; with initial <= 0 every slide is inline.
func (c *Client) SlideshowDetail(ctx context.Context, id, initial int) (*edu.SlideshowDetail, error) {
	var q url.Values
	if initial > 0 {
		q = url.Values{"initial": {fmt.Sprint(initial)}}
	}
	var body slideshowBody
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/slideshows/%d/", id), q, nil, &body); err != nil {
		return nil, err
	}
	return body.detail(), nil
}

// Slide fetches a single slide.
func (c *Client) Slide(ctx context.Context, showID, slideID int) (*edu.Slide, error) {
	var body slideBody
	path := fmt.Sprintf("/slideshows/%d/slides/%d/", showID, slideID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &body); err != nil {
		return nil, err
	}
	s := body.model()
	return &s, nil
}

// CreateSlide appends a single slide to a slideshow.
func (c *Client) CreateSlide(ctx context.Context, showID int, in edu.SlideInput) (*edu.Slide, error) {
	req := slideInput{Order: in.Order, Title: in.Title, Content: in.Content, Notes: in.Notes}
	var body slideBody
	path := fmt.Sprintf("/slideshows/%d/slides/", showID)
	if err := c.do(ctx, http.MethodPost, path, nil, req, &body); err != nil {
		return nil, err
	}
	s := body.model()
	return &s, nil
}

// UpdateSlide updates a single slide in place.
func (c *Client) UpdateSlide(ctx context.Context, showID, slideID int, in edu.SlideInput) (*edu.Slide, error) {
	req := slideInput{Order: in.Order, Title: in.Title, Content: in.Content, Notes: in.Notes}
	var body slideBody
	path := fmt.Sprintf("/slideshows/%d/slides/%d/", showID, slideID)
	if err := c.do(ctx, http.MethodPatch, path, nil, req, &body); err != nil {
		return nil, err
	}
	s := body.model()
	return &s, nil
}

// DeleteSlide removes a single slide.
func (c *Client) DeleteSlide(ctx context.Context, showID, slideID int) error {
	path := fmt.Sprintf("/slideshows/%d/slides/%d/", showID, slideID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// CreateSlideshow creates a slideshow with its slides in one request.
func (c *Client) CreateSlideshow(ctx context.Context, in edu.ShowInput) (*edu.SlideshowDetail, error) {
	var body slideshowBody
	if err := c.do(ctx, http.MethodPost, "/slideshows/", nil, encodeShowInput(in), &body); err != nil {
		return nil, err
	}
	return body.detail(), nil
}

// UpdateSlideshow updates a slideshow. The input's Version is the client's
// last-known server version; a stale version yields a KindConflict *Error.
func (c *Client) UpdateSlideshow(ctx context.Context, id int, in edu.ShowInput) (*edu.SlideshowDetail, error) {
	var body slideshowBody
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/slideshows/%d/", id), nil, encodeShowInput(in), &body); err != nil {
		return nil, err
	}
	return body.detail(), nil
}

// DeleteSlideshow deletes a slideshow. Owner only.
func (c *Client) DeleteSlideshow(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/slideshows/%d/", id), nil, nil, nil)
}

// RenderMarkdown renders markdown to HTML server-side without saving.
// The endpoint is throttled, so callers should debounce.
func (c *Client) RenderMarkdown(ctx context.Context, content string) (string, error) {
	if content == "" {
		return "", nil
	}
	req := map[string]string{"content": content}
	var resp struct {
		Rendered string `json:"rendered_content"`
	}
	if err := c.do(ctx, http.MethodPost, "/slideshows/preview/", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Rendered, nil
}
