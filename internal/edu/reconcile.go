package edu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNoSlides is returned when a save would submit a slideshow with no
	// slides left after empty ones are filtered out.
	ErrNoSlides = errors.New("slideshow needs at least one slide with content")

	// ErrLastSlide is returned when deleting the only remaining slide.
	ErrLastSlide = errors.New("cannot delete the last slide")
)

// DraftKey returns the local-store key for a slideshow's draft.
// Unsaved slideshows (no server identity yet) share the key for id 0.
func DraftKey(showID int) string {
	if showID == 0 {
		return "slideshow-draft-new"
	}
	return fmt.Sprintf("slideshow-draft-%d", showID)
}

// ShowAPI is the slice of the API client the reconciler needs.
type ShowAPI interface {
	// SlideshowDetail fetches a slideshow; initial <= 0 fetches every slide.
	SlideshowDetail(ctx context.Context, id, initial int) (*SlideshowDetail, error)
	CreateSlideshow(ctx context.Context, in ShowInput) (*SlideshowDetail, error)
	UpdateSlideshow(ctx context.Context, id int, in ShowInput) (*SlideshowDetail, error)
}

// DraftStore persists drafts locally between editor sessions.
type DraftStore interface {
	// GetDraft returns the draft stored under key, or nil if none exists.
	GetDraft(key string) (*Draft, error)
	PutDraft(d *Draft) error
	DeleteDraft(key string) error
}

// Outcome describes how an editor session was seeded.
type Outcome int

const (
	// OutcomeSeededFromServer: no local draft existed; state came from the server.
	OutcomeSeededFromServer Outcome = iota
	// OutcomeResumedDraft: a local draft was found and trusted.
	OutcomeResumedDraft
	// OutcomeDiscardedStaleDraft: a local draft existed but the server's
	// version had advanced past it, so the draft was discarded.
	OutcomeDiscardedStaleDraft
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSeededFromServer:
		return "seeded from server"
	case OutcomeResumedDraft:
		return "resumed local draft"
	case OutcomeDiscardedStaleDraft:
		return "discarded stale draft"
	default:
		return "unknown"
	}
}

// Reconciler opens editor sessions, arbitrating between locally persisted
// drafts and the server's authoritative state. A draft whose stored version
// is behind the server's is always discarded, never merged.
type Reconciler struct {
	api      ShowAPI
	drafts   DraftStore
	clock    Clock
	idgen    IDGenerator
	validate *validator.Validate
	logger   Logger
}

// NewReconciler creates a Reconciler with the provided dependencies.
func NewReconciler(api ShowAPI, drafts DraftStore, clock Clock, idgen IDGenerator, logger Logger) *Reconciler {
	return &Reconciler{
		api:      api,
		drafts:   drafts,
		clock:    clock,
		idgen:    idgen,
		validate: validator.New(),
		logger:   logger,
	}
}

// Open starts an editor session for an existing slideshow.
//
// With no local draft, the server's current state seeds the session. With a
// draft present, the server's current version decides: server ahead means the
// draft is stale and is discarded (the session reseeds from the server);
// otherwise the draft is resumed and the session starts dirty. If the server
// cannot be reached at all the draft is still resumed, but the session is
// flagged unverified so callers can tell the user that reconciliation was
// skipped.
func (r *Reconciler) Open(ctx context.Context, showID int) (*Session, Outcome, error) {
	key := DraftKey(showID)

	draft, err := r.drafts.GetDraft(key)
	if err != nil {
		return nil, 0, fmt.Errorf("reading draft %s: %w", key, err)
	}

	if draft == nil {
		sess, err := r.seedFromServer(ctx, showID)
		if err != nil {
			return nil, 0, err
		}
		return sess, OutcomeSeededFromServer, nil
	}

	detail, err := r.api.SlideshowDetail(ctx, showID, 0)
	if err != nil {
		// Offline or server error: trust the draft, but say so.
		r.logger.Warn("version check failed, resuming draft unverified", "show", showID, "error", err)
		sess := &Session{r: r, draft: *draft, dirty: true, unverified: true}
		return sess, OutcomeResumedDraft, nil
	}

	if detail.Version > draft.Version {
		r.logger.Info("discarding stale draft", "show", showID, "draft_version", draft.Version, "server_version", detail.Version)
		if err := r.drafts.DeleteDraft(key); err != nil {
			return nil, 0, fmt.Errorf("discarding stale draft %s: %w", key, err)
		}
		return r.sessionFromDetail(detail), OutcomeDiscardedStaleDraft, nil
	}

	sess := &Session{r: r, draft: *draft, dirty: true}
	return sess, OutcomeResumedDraft, nil
}

// New starts an editor session for a slideshow that does not exist on the
// server yet, resuming the local "new slideshow" draft if one is pending.
func (r *Reconciler) New() (*Session, error) {
	draft, err := r.drafts.GetDraft(DraftKey(0))
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}
	if draft != nil {
		return &Session{r: r, draft: *draft, dirty: true}, nil
	}

	now := r.clock.Now()
	sess := &Session{
		r: r,
		draft: Draft{
			Key:        DraftKey(0),
			Visibility: VisibilityPrivate,
			Slides:     []Slide{{TempID: r.idgen.New(), Order: 0}},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
	return sess, nil
}

func (r *Reconciler) seedFromServer(ctx context.Context, showID int) (*Session, error) {
	detail, err := r.api.SlideshowDetail(ctx, showID, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching slideshow %d: %w", showID, err)
	}
	return r.sessionFromDetail(detail), nil
}

func (r *Reconciler) sessionFromDetail(detail *SlideshowDetail) *Session {
	now := r.clock.Now()
	slides := make([]Slide, len(detail.Slides))
	copy(slides, detail.Slides)
	return &Session{
		r: r,
		draft: Draft{
			Key:         DraftKey(detail.ID),
			ShowID:      detail.ID,
			Title:       detail.Title,
			Description: detail.Description,
			Visibility:  detail.Visibility,
			Language:    detail.Language,
			Country:     detail.Country,
			Subject:     detail.Subject,
			Published:   detail.Published,
			Version:     detail.Version,
			Slides:      slides,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// Session is an in-progress edit of one slideshow. Every mutation updates the
// in-memory draft and re-persists it; debouncing rapid edits is the caller's
// concern, not the session's.
type Session struct {
	r          *Reconciler
	draft      Draft
	dirty      bool
	unverified bool
}

// Draft returns a copy of the session's current draft state.
func (s *Session) Draft() Draft {
	d := s.draft
	d.Slides = make([]Slide, len(s.draft.Slides))
	copy(d.Slides, s.draft.Slides)
	return d
}

// Dirty reports whether the session holds changes not yet saved to the server.
func (s *Session) Dirty() bool { return s.dirty }

// Unverified reports whether the session resumed a draft without being able
// to compare versions against the server.
func (s *Session) Unverified() bool { return s.unverified }

// SetTitle updates the slideshow title.
func (s *Session) SetTitle(title string) error {
	s.draft.Title = title
	return s.persist()
}

// SetDescription updates the slideshow description.
func (s *Session) SetDescription(desc string) error {
	s.draft.Description = desc
	return s.persist()
}

// SetVisibility updates the slideshow visibility.
func (s *Session) SetVisibility(v Visibility) error {
	s.draft.Visibility = v
	return s.persist()
}

// SetPublished updates the publication flag.
func (s *Session) SetPublished(published bool) error {
	s.draft.Published = published
	return s.persist()
}

// SetMetadata updates the language, country and subject codes.
func (s *Session) SetMetadata(language, country, subject string) error {
	s.draft.Language = language
	s.draft.Country = country
	s.draft.Subject = subject
	return s.persist()
}

// InsertSlide inserts a new empty slide at the given index (clamped to the
// slide list) and returns its index. The new slide gets a client-assigned
// temporary identity until it is persisted.
func (s *Session) InsertSlide(at int) (int, error) {
	if at < 0 {
		at = 0
	}
	if at > len(s.draft.Slides) {
		at = len(s.draft.Slides)
	}
	slide := Slide{TempID: s.r.idgen.New()}
	s.draft.Slides = append(s.draft.Slides, Slide{})
	copy(s.draft.Slides[at+1:], s.draft.Slides[at:])
	s.draft.Slides[at] = slide
	s.renumber()
	return at, s.persist()
}

// UpdateSlide replaces the content, title and notes of the slide at index i.
func (s *Session) UpdateSlide(i int, title, content, notes string) error {
	if i < 0 || i >= len(s.draft.Slides) {
		return fmt.Errorf("no slide at index %d", i)
	}
	s.draft.Slides[i].Title = title
	s.draft.Slides[i].Content = content
	s.draft.Slides[i].Notes = notes
	return s.persist()
}

// MoveSlide moves the slide at index from to index to, renumbering densely.
func (s *Session) MoveSlide(from, to int) error {
	n := len(s.draft.Slides)
	if from < 0 || from >= n {
		return fmt.Errorf("no slide at index %d", from)
	}
	if to < 0 {
		to = 0
	}
	if to >= n {
		to = n - 1
	}
	slide := s.draft.Slides[from]
	s.draft.Slides = append(s.draft.Slides[:from], s.draft.Slides[from+1:]...)
	s.draft.Slides = append(s.draft.Slides, Slide{})
	copy(s.draft.Slides[to+1:], s.draft.Slides[to:])
	s.draft.Slides[to] = slide
	s.renumber()
	return s.persist()
}

// DuplicateSlide inserts a copy of the slide at index i directly after it.
// The copy gets a fresh temporary identity.
func (s *Session) DuplicateSlide(i int) error {
	if i < 0 || i >= len(s.draft.Slides) {
		return fmt.Errorf("no slide at index %d", i)
	}
	dup := s.draft.Slides[i]
	dup.ID = 0
	dup.TempID = s.r.idgen.New()
	s.draft.Slides = append(s.draft.Slides, Slide{})
	copy(s.draft.Slides[i+2:], s.draft.Slides[i+1:])
	s.draft.Slides[i+1] = dup
	s.renumber()
	return s.persist()
}

// ReplaceSlides swaps the entire slide list, keeping server identities out
// of the new slides and assigning fresh temporary ones. Used by document
// import. The list must not be empty.
func (s *Session) ReplaceSlides(slides []Slide) error {
	if len(slides) == 0 {
		return ErrNoSlides
	}
	replacement := make([]Slide, len(slides))
	copy(replacement, slides)
	for i := range replacement {
		replacement[i].ID = 0
		replacement[i].TempID = s.r.idgen.New()
	}
	s.draft.Slides = replacement
	s.renumber()
	return s.persist()
}

// DeleteSlide removes the slide at index i. A slideshow always retains at
// least one slide.
func (s *Session) DeleteSlide(i int) error {
	if i < 0 || i >= len(s.draft.Slides) {
		return fmt.Errorf("no slide at index %d", i)
	}
	if len(s.draft.Slides) == 1 {
		return ErrLastSlide
	}
	s.draft.Slides = append(s.draft.Slides[:i], s.draft.Slides[i+1:]...)
	s.renumber()
	return s.persist()
}

// Save pushes the draft to the server. Slides with empty content (after
// trimming) are filtered out; if that leaves none, the save is rejected
// client-side with ErrNoSlides before any request is built. The request
// carries the draft's last-known version so the server can reject a stale
// write; a conflict error passes through unchanged for the caller to resolve
// (the only resolution is Reload). On success the local draft is cleared and
// the server-assigned identity and version are adopted.
func (s *Session) Save(ctx context.Context) error {
	in, err := s.buildInput()
	if err != nil {
		return err
	}

	var detail *SlideshowDetail
	if s.draft.ShowID == 0 {
		detail, err = s.r.api.CreateSlideshow(ctx, in)
	} else {
		detail, err = s.r.api.UpdateSlideshow(ctx, s.draft.ShowID, in)
	}
	if err != nil {
		return err
	}

	oldKey := s.draft.Key
	s.adopt(detail)
	if err := s.r.drafts.DeleteDraft(oldKey); err != nil {
		return fmt.Errorf("clearing draft %s: %w", oldKey, err)
	}
	s.dirty = false
	s.unverified = false
	s.r.logger.Info("slideshow saved", "show", detail.ID, "version", detail.Version)
	return nil
}

// Reload discards the local draft and reseeds the session from the server.
// This is the resolution path after a version conflict.
func (s *Session) Reload(ctx context.Context) error {
	if s.draft.ShowID == 0 {
		return fmt.Errorf("cannot reload a slideshow that was never saved")
	}
	detail, err := s.r.api.SlideshowDetail(ctx, s.draft.ShowID, 0)
	if err != nil {
		return fmt.Errorf("fetching slideshow %d: %w", s.draft.ShowID, err)
	}
	if err := s.r.drafts.DeleteDraft(s.draft.Key); err != nil {
		return fmt.Errorf("discarding draft %s: %w", s.draft.Key, err)
	}
	fresh := s.r.sessionFromDetail(detail)
	s.draft = fresh.draft
	s.dirty = false
	s.unverified = false
	return nil
}

func (s *Session) buildInput() (ShowInput, error) {
	slides := make([]SlideInput, 0, len(s.draft.Slides))
	for _, sl := range s.draft.Slides {
		if strings.TrimSpace(sl.Content) == "" {
			continue
		}
		slides = append(slides, SlideInput{
			Order:   len(slides),
			Title:   sl.Title,
			Content: sl.Content,
			Notes:   sl.Notes,
		})
	}
	if len(slides) == 0 {
		return ShowInput{}, ErrNoSlides
	}

	in := ShowInput{
		Title:       s.draft.Title,
		Description: s.draft.Description,
		Visibility:  s.draft.Visibility,
		Language:    s.draft.Language,
		Country:     s.draft.Country,
		Subject:     s.draft.Subject,
		Published:   s.draft.Published,
		Version:     s.draft.Version,
		Slides:      slides,
	}
	if err := s.r.validate.Struct(in); err != nil {
		return ShowInput{}, fmt.Errorf("invalid slideshow: %w", err)
	}
	return in, nil
}

func (s *Session) adopt(detail *SlideshowDetail) {
	fresh := s.r.sessionFromDetail(detail)
	s.draft = fresh.draft
}

func (s *Session) renumber() {
	for i := range s.draft.Slides {
		s.draft.Slides[i].Order = i
	}
}

func (s *Session) persist() error {
	s.dirty = true
	s.draft.UpdatedAt = s.r.clock.Now()
	d := s.Draft()
	if err := s.r.drafts.PutDraft(&d); err != nil {
		return fmt.Errorf("persisting draft %s: %w", s.draft.Key, err)
	}
	return nil
}
