package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"edulite-cli/internal/api"
	"edulite-cli/internal/auth"
	"edulite-cli/internal/config"
	"edulite-cli/internal/edu"
	"edulite-cli/internal/encryption"
	"edulite-cli/internal/export"
	"edulite-cli/internal/htmlimport"
	"edulite-cli/internal/localstore"
)

// App is the application layer between the CLI and the domain packages.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string arguments, and manages resource lifecycles on Close.
type App struct {
	cfg       *config.Config
	client    *api.Client
	creds     api.CredentialSource
	store     localstore.Store
	encryptor edu.Encryptor
	cache     *edu.PreviewCache
	logger    edu.Logger
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "ShowList", "Present").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url not configured")
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID, operation)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	creds, err := newCredentialSource(cfg.Tokens)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating token store: %w", err)
	}

	refreshURL := strings.TrimRight(cfg.BaseURL, "/") + "/token/refresh/"
	httpClient := &http.Client{
		Transport: api.NewAuthTransport(nil, creds, refreshURL),
		Timeout:   30 * time.Second,
	}

	client, err := api.NewClient(cfg.BaseURL, httpClient, logger)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating api client: %w", err)
	}

	store, err := localstore.NewStoreFromConfig(cfg.LocalStore, edu.RealClock{})
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating local store: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	return &App{
		cfg:       cfg,
		client:    client,
		creds:     creds,
		store:     store,
		encryptor: enc,
		cache:     edu.NewPreviewCache(edu.DefaultPreviewCacheSize, edu.DefaultPreviewTTL, edu.RealClock{}),
		logger:    logger,
		logFile:   logFile,
	}, nil
}

// newCredentialSource builds the token store named by the config.
func newCredentialSource(cfg config.TokensConfig) (api.CredentialSource, error) {
	switch cfg.Type {
	case "file", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for file token store")
		}
		return auth.NewFileStore(cfg.Path), nil
	case "memory":
		return auth.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown token store type: %s", cfg.Type)
	}
}

// Session management

// Login exchanges credentials for a token pair and stores it.
func (a *App) Login(ctx context.Context, username, password string) error {
	pair, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.creds.SetTokens(pair.Access, pair.Refresh); err != nil {
		return fmt.Errorf("storing tokens: %w", err)
	}
	a.logger.Info("logged in", "username", username)
	return nil
}

// Logout discards the stored token pair.
func (a *App) Logout() error {
	return a.creds.Clear()
}

// LoggedIn reports whether a usable session exists: an access token is
// stored, and either it or the refresh token has not expired yet.
func (a *App) LoggedIn() bool {
	access, err := a.creds.AccessToken()
	if err != nil || access == "" {
		return false
	}
	if !auth.Expired(access, time.Now()) {
		return true
	}
	refresh, err := a.creds.RefreshToken()
	if err != nil || refresh == "" {
		return false
	}
	return !auth.Expired(refresh, time.Now())
}

// Slideshows

// ListSlideshows fetches one page of slideshows.
func (a *App) ListSlideshows(ctx context.Context, opts api.ShowListOptions) (*api.Page[edu.Slideshow], error) {
	return a.client.ListSlideshows(ctx, opts)
}

// SearchSlideshows fetches one page of slideshows matching the query.
func (a *App) SearchSlideshows(ctx context.Context, query string, opts api.ShowListOptions) (*api.Page[edu.Slideshow], error) {
	return a.client.SearchSlideshows(ctx, query, opts)
}

// LoadSlideshow starts a progressive load of the slideshow: the returned
// Deck has the first slides ready and fills in the rest in the background.
func (a *App) LoadSlideshow(ctx context.Context, id int) (*edu.Deck, error) {
	loader := edu.NewLoader(a.client, a.logger)
	return loader.Load(ctx, id)
}

// LoadSlideshowComplete loads the slideshow and waits until every slide has
// been fetched or marked failed. Used by export, where partial decks are
// not acceptable.
func (a *App) LoadSlideshowComplete(ctx context.Context, id int) (*edu.Deck, error) {
	deck, err := a.LoadSlideshow(ctx, id)
	if err != nil {
		return nil, err
	}
	select {
	case <-deck.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if failed := deck.FailedOrders(); len(failed) > 0 {
		return nil, fmt.Errorf("slideshow %d loaded with %d missing slides", id, len(failed))
	}
	return deck, nil
}

// DeleteSlideshow removes a slideshow on the server and discards any local
// draft for it.
func (a *App) DeleteSlideshow(ctx context.Context, id int) error {
	if err := a.client.DeleteSlideshow(ctx, id); err != nil {
		return err
	}
	if err := a.store.DeleteDraft(edu.DraftKey(id)); err != nil {
		a.logger.Warn("deleting local draft after remote delete", "show_id", id, "error", err)
	}
	return nil
}

// Editing

func (a *App) reconciler() *edu.Reconciler {
	return edu.NewReconciler(a.client, a.store, edu.RealClock{}, edu.UUIDGenerator{}, a.logger)
}

// EditSlideshow opens an editor session for an existing slideshow,
// reconciling any local draft against the server version.
func (a *App) EditSlideshow(ctx context.Context, id int) (*edu.Session, edu.Outcome, error) {
	return a.reconciler().Open(ctx, id)
}

// NewSlideshow opens an editor session for a slideshow that does not exist
// on the server yet.
func (a *App) NewSlideshow() (*edu.Session, edu.Outcome, error) {
	session, err := a.reconciler().New()
	if err != nil {
		return nil, 0, err
	}
	outcome := edu.OutcomeSeededFromServer
	if session.Dirty() {
		outcome = edu.OutcomeResumedDraft
	}
	return session, outcome, nil
}

// ImportDocument converts an HTML or plain-text document into a new editor
// session, one slide per top-level heading.
func (a *App) ImportDocument(path, title string) (*edu.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	slides, err := htmlimport.Slides(string(data))
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}

	session, _, err := a.NewSlideshow()
	if err != nil {
		return nil, err
	}
	if err := session.ReplaceSlides(slides); err != nil {
		return nil, err
	}
	if title != "" {
		if err := session.SetTitle(title); err != nil {
			return nil, err
		}
	}
	a.logger.Info("document imported", "path", path, "slides", len(slides))
	return session, nil
}

// Previewer starts a debounced markdown previewer backed by the server
// renderer and the in-memory preview cache. The caller owns it and must
// Close it.
func (a *App) Previewer() *edu.Previewer {
	return edu.NewPreviewer(a.client, a.cache, edu.DefaultPreviewDebounce)
}

// Export

// ExportSlideshow renders the slideshow as a standalone HTML deck and
// stores it on the named export target. Returns the stored deck name.
func (a *App) ExportSlideshow(ctx context.Context, id int, targetName string) (string, error) {
	targetCfg, err := a.cfg.ExportTarget(targetName)
	if err != nil {
		return "", err
	}

	target, err := export.NewTargetFromConfig(targetCfg)
	if err != nil {
		return "", fmt.Errorf("creating export target: %w", err)
	}
	if err := target.ValidateSetup(); err != nil {
		return "", fmt.Errorf("export target %s: %w", targetName, err)
	}

	exporter, err := export.NewExporter(target, a.encryptor, targetCfg.Encrypt, a.logger)
	if err != nil {
		return "", err
	}

	deck, err := a.LoadSlideshowComplete(ctx, id)
	if err != nil {
		return "", err
	}

	detail := &edu.SlideshowDetail{Slideshow: deck.Show}
	for _, slide := range deck.SlidesInOrder() {
		detail.Slides = append(detail.Slides, slide)
	}

	return exporter.Export(detail)
}

// SetupEncryption generates the age key pair used for encrypted exports.
func (a *App) SetupEncryption(passphrase string) error {
	if a.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys already exist")
	}
	return a.encryptor.Setup(passphrase)
}

// Courses

func (a *App) ListCourses(ctx context.Context, opts api.ListOptions) (*api.Page[edu.Course], error) {
	return a.client.ListCourses(ctx, opts)
}

func (a *App) Course(ctx context.Context, id int) (*edu.Course, error) {
	return a.client.Course(ctx, id)
}

func (a *App) CreateCourse(ctx context.Context, in edu.CourseInput) (*edu.Course, error) {
	return a.client.CreateCourse(ctx, in)
}

func (a *App) UpdateCourse(ctx context.Context, id int, in edu.CourseInput) (*edu.Course, error) {
	return a.client.UpdateCourse(ctx, id, in)
}

func (a *App) DeleteCourse(ctx context.Context, id int) error {
	return a.client.DeleteCourse(ctx, id)
}

func (a *App) Modules(ctx context.Context, courseID int) ([]edu.CourseModule, error) {
	return a.client.Modules(ctx, courseID)
}

func (a *App) Module(ctx context.Context, courseID, moduleID int) (*edu.CourseModule, error) {
	return a.client.Module(ctx, courseID, moduleID)
}

func (a *App) CreateModule(ctx context.Context, courseID int, in edu.CourseModuleInput) (*edu.CourseModule, error) {
	return a.client.CreateModule(ctx, courseID, in)
}

func (a *App) UpdateModule(ctx context.Context, courseID, moduleID int, in edu.CourseModuleInput) (*edu.CourseModule, error) {
	return a.client.UpdateModule(ctx, courseID, moduleID, in)
}

func (a *App) DeleteModule(ctx context.Context, courseID, moduleID int) error {
	return a.client.DeleteModule(ctx, courseID, moduleID)
}

func (a *App) Enroll(ctx context.Context, courseID int) (*edu.CourseMembership, error) {
	return a.client.Enroll(ctx, courseID)
}

func (a *App) Memberships(ctx context.Context, courseID int, opts api.ListOptions) (*api.Page[edu.CourseMembership], error) {
	return a.client.Memberships(ctx, courseID, opts)
}

func (a *App) InviteMember(ctx context.Context, courseID, userID int, role string) (*edu.CourseMembership, error) {
	return a.client.InviteMember(ctx, courseID, userID, role)
}

func (a *App) UpdateMembership(ctx context.Context, courseID, membershipID int, status, role string) (*edu.CourseMembership, error) {
	return a.client.UpdateMembership(ctx, courseID, membershipID, status, role)
}

func (a *App) RemoveMember(ctx context.Context, courseID, membershipID int) error {
	return a.client.RemoveMember(ctx, courseID, membershipID)
}

// Profile

func (a *App) Profile(ctx context.Context) (*edu.Profile, error) {
	return a.client.Profile(ctx)
}

func (a *App) UpdateProfile(ctx context.Context, in edu.ProfileInput) (*edu.Profile, error) {
	return a.client.UpdateProfile(ctx, in)
}

// Preferences

func (a *App) Preferences() (localstore.Preferences, error) {
	return a.store.GetPreferences()
}

func (a *App) SetPreferences(prefs localstore.Preferences) error {
	return a.store.PutPreferences(prefs)
}

// Close releases the local store and the log file.
func (a *App) Close() error {
	var firstErr error

	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing local store: %w", err)
	}

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}

	return firstErr
}
