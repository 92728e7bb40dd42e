package testutil

import (
	"context"
	"fmt"
	"sync"

	"edulite-cli/internal/edu"
)

// StubShowAPI is a scriptable in-memory implementation of the API surface
// the loader and reconciler consume. Slides are keyed by slide ID; FailSlides
// marks slide IDs whose individual fetch should fail. Calls are recorded for
// assertions.
type StubShowAPI struct {
	mu sync.Mutex

	Detail      *edu.SlideshowDetail
	DetailErr   error
	SlidesByID  map[int]edu.Slide
	FailSlides  map[int]bool
	CreateErr   error
	UpdateErr   error
	Created     []edu.ShowInput
	Updated     []edu.ShowInput
	SlideCalls  []int
	DetailCalls int

	// SaveResult is returned from Create/Update when the corresponding Err
	// is nil. When nil, a minimal detail echoing the input is synthesized.
	SaveResult *edu.SlideshowDetail
}

// NewStubShowAPI creates an empty StubShowAPI.
func NewStubShowAPI() *StubShowAPI {
	return &StubShowAPI{
		SlidesByID: make(map[int]edu.Slide),
		FailSlides: make(map[int]bool),
	}
}

// SeedShow populates the stub with a slideshow of n slides, of which the
// first initial are included in the detail response and the rest are
// available through per-slide fetches. Slide IDs are 100+order.
func (a *StubShowAPI) SeedShow(id, n, initial int) {
	show := edu.Slideshow{
		ID:         id,
		Title:      fmt.Sprintf("Show %d", id),
		Visibility: edu.VisibilityPrivate,
		Version:    1,
		SlideCount: n,
	}
	detail := &edu.SlideshowDetail{Slideshow: show}
	for order := 0; order < n; order++ {
		slide := edu.Slide{
			ID:      100 + order,
			Order:   order,
			Content: fmt.Sprintf("# Slide %d", order+1),
		}
		a.SlidesByID[slide.ID] = slide
		if order < initial {
			detail.Slides = append(detail.Slides, slide)
		} else {
			detail.RemainingSlideIDs = append(detail.RemainingSlideIDs, slide.ID)
		}
	}
	a.Detail = detail
}

func (a *StubShowAPI) SlideshowDetail(ctx context.Context, id, initial int) (*edu.SlideshowDetail, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.DetailCalls++
	if a.DetailErr != nil {
		return nil, a.DetailErr
	}
	if a.Detail == nil {
		return nil, fmt.Errorf("no slideshow %d", id)
	}
	d := *a.Detail
	if initial <= 0 {
		// Full fetch: every slide inline, none remaining.
		d.Slides = nil
		for order := 0; order < d.SlideCount; order++ {
			for _, s := range a.SlidesByID {
				if s.Order == order {
					d.Slides = append(d.Slides, s)
					break
				}
			}
		}
		if len(d.Slides) == 0 {
			d.Slides = append([]edu.Slide{}, a.Detail.Slides...)
		}
		d.RemainingSlideIDs = nil
	}
	return &d, nil
}

func (a *StubShowAPI) Slide(ctx context.Context, showID, slideID int) (*edu.Slide, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.SlideCalls = append(a.SlideCalls, slideID)
	if a.FailSlides[slideID] {
		return nil, fmt.Errorf("slide %d unavailable", slideID)
	}
	s, ok := a.SlidesByID[slideID]
	if !ok {
		return nil, fmt.Errorf("no slide %d", slideID)
	}
	return &s, nil
}

func (a *StubShowAPI) CreateSlideshow(ctx context.Context, in edu.ShowInput) (*edu.SlideshowDetail, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Created = append(a.Created, in)
	if a.CreateErr != nil {
		return nil, a.CreateErr
	}
	return a.saveResult(in, 1), nil
}

func (a *StubShowAPI) UpdateSlideshow(ctx context.Context, id int, in edu.ShowInput) (*edu.SlideshowDetail, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Updated = append(a.Updated, in)
	if a.UpdateErr != nil {
		return nil, a.UpdateErr
	}
	return a.saveResult(in, in.Version+1), nil
}

func (a *StubShowAPI) saveResult(in edu.ShowInput, version int) *edu.SlideshowDetail {
	if a.SaveResult != nil {
		return a.SaveResult
	}
	detail := &edu.SlideshowDetail{
		Slideshow: edu.Slideshow{
			ID:         1,
			Title:      in.Title,
			Visibility: in.Visibility,
			Version:    version,
			SlideCount: len(in.Slides),
		},
	}
	for i, s := range in.Slides {
		detail.Slides = append(detail.Slides, edu.Slide{
			ID:      200 + i,
			Order:   s.Order,
			Title:   s.Title,
			Content: s.Content,
			Notes:   s.Notes,
		})
	}
	return detail
}
