package edu

import (
	"context"
	"time"
)

// DefaultPreviewDebounce is how long the previewer waits for typing to settle
// before rendering. The server throttles the preview endpoint, so rapid edits
// must coalesce.
const DefaultPreviewDebounce = 500 * time.Millisecond

// Renderer is the slice of the API client the previewer needs.
type Renderer interface {
	// RenderMarkdown renders markdown to HTML without saving anything.
	RenderMarkdown(ctx context.Context, content string) (string, error)
}

// PreviewResult is one rendered preview, delivered on Previewer.Results.
type PreviewResult struct {
	Key       string
	Content   string
	HTML      string
	FromCache bool
	Err       error
}

type previewRequest struct {
	key     string
	content string
}

// Previewer turns a stream of edits into a stream of rendered previews.
// Requests are debounced: a render only starts once no newer request has
// arrived for the debounce window, and a newer request cancels any render
// still in flight. The cache short-circuits renders whose content has not
// changed since last time.
type Previewer struct {
	renderer Renderer
	cache    *PreviewCache
	delay    time.Duration

	requests chan previewRequest
	results  chan PreviewResult
	stop     chan struct{}
	stopped  chan struct{}
}

// NewPreviewer creates a Previewer and starts its worker. The caller must
// call Close when done.
func NewPreviewer(renderer Renderer, cache *PreviewCache, delay time.Duration) *Previewer {
	p := &Previewer{
		renderer: renderer,
		cache:    cache,
		delay:    delay,
		requests: make(chan previewRequest, 16),
		results:  make(chan PreviewResult, 16),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go p.run()
	return p
}

// Request asks for a preview of content, identified by a per-slide key.
// Rapid successive requests coalesce; only the latest one renders.
func (p *Previewer) Request(key, content string) {
	select {
	case p.requests <- previewRequest{key: key, content: content}:
	case <-p.stop:
	}
}

// Results delivers rendered previews. Results for superseded requests are
// never delivered.
func (p *Previewer) Results() <-chan PreviewResult { return p.results }

// Close stops the worker and cancels any render in flight.
func (p *Previewer) Close() {
	close(p.stop)
	<-p.stopped
}

func (p *Previewer) run() {
	defer close(p.stopped)

	timer := time.NewTimer(p.delay)
	if !timer.Stop() {
		<-timer.C
	}

	var (
		pending  *previewRequest
		gen      int
		cancel   context.CancelFunc
		rendered = make(chan PreviewResult, 1)
		renderGn int
	)
	defer func() {
		if cancel != nil {
			cancel()
		}
	}()

	for {
		select {
		case req := <-p.requests:
			pending = &req
			gen++
			if cancel != nil {
				cancel()
				cancel = nil
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(p.delay)

		case <-timer.C:
			if pending == nil {
				continue
			}
			req := *pending
			pending = nil

			if html, ok := p.cache.Get(req.key, req.content); ok {
				p.emit(PreviewResult{Key: req.key, Content: req.content, HTML: html, FromCache: true})
				continue
			}

			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			renderGn = gen
			go func(ctx context.Context, req previewRequest) {
				html, err := p.renderer.RenderMarkdown(ctx, req.content)
				select {
				case rendered <- PreviewResult{Key: req.key, Content: req.content, HTML: html, Err: err}:
				case <-p.stop:
				}
			}(ctx, req)

		case res := <-rendered:
			// Drop results from renders superseded by a newer request.
			if renderGn != gen {
				continue
			}
			if res.Err == nil {
				p.cache.Set(res.Key, res.Content, res.HTML)
			}
			p.emit(res)

		case <-p.stop:
			return
		}
	}
}

func (p *Previewer) emit(res PreviewResult) {
	select {
	case p.results <- res:
	case <-p.stop:
	}
}
