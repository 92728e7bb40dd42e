package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"edulite-cli/internal/api"
	"edulite-cli/internal/edu"
)

func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := api.NewClient(srv.URL+"/api", srv.Client(), edu.NewNopLogger())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestClient_SlideshowDetail(t *testing.T) {
	t.Parallel()

	t.Run("progressive request carries the initial parameter", func(t *testing.T) {
		t.Parallel()
		var gotInitial string
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/slideshows/7/" {
				t.Errorf("path = %s", r.URL.Path)
			}
			gotInitial = r.URL.Query().Get("initial")
			json.NewEncoder(w).Encode(map[string]any{
				"id": 7, "title": "Fractions", "visibility": "public",
				"is_published": true, "version": 2, "slide_count": 9,
				"slides": []map[string]any{
					{"id": 100, "order": 0, "content": "# One", "rendered_content": "<h1>One</h1>"},
				},
				"remaining_slide_ids": []int{101, 102},
			})
		}))

		detail, err := c.SlideshowDetail(context.Background(), 7, 3)
		if err != nil {
			t.Fatalf("SlideshowDetail() error = %v", err)
		}

		if gotInitial != "3" {
			t.Errorf("initial param = %q, want 3", gotInitial)
		}
		if detail.Title != "Fractions" || detail.SlideCount != 9 {
			t.Errorf("detail = %+v", detail.Slideshow)
		}
		if len(detail.Slides) != 1 || detail.Slides[0].Rendered != "<h1>One</h1>" {
			t.Errorf("slides = %+v", detail.Slides)
		}
		if len(detail.RemainingSlideIDs) != 2 {
			t.Errorf("remaining = %v", detail.RemainingSlideIDs)
		}
	})

	t.Run("full fetch omits the initial parameter", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Has("initial") {
				t.Error("initial param should be absent")
			}
			json.NewEncoder(w).Encode(map[string]any{"id": 7, "title": "Fractions"})
		}))

		if _, err := c.SlideshowDetail(context.Background(), 7, 0); err != nil {
			t.Fatalf("SlideshowDetail() error = %v", err)
		}
	})
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	t.Parallel()

	statusCase := func(status int, body string, want api.Kind) func(*testing.T) {
		return func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				w.Write([]byte(body))
			}))

			_, err := c.SlideshowDetail(context.Background(), 1, 0)
			var apiErr *api.Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *api.Error", err)
			}
			if apiErr.Kind != want {
				t.Errorf("kind = %v, want %v", apiErr.Kind, want)
			}
		}
	}

	t.Run("403 is permission", statusCase(http.StatusForbidden, `{"detail":"nope"}`, api.KindPermission))
	t.Run("404 is not found", statusCase(http.StatusNotFound, `{"detail":"missing"}`, api.KindNotFound))
	t.Run("429 is rate limited", statusCase(http.StatusTooManyRequests, `{"detail":"slow down"}`, api.KindRateLimited))
	t.Run("500 is server", statusCase(http.StatusInternalServerError, ``, api.KindServer))

	t.Run("400 with field errors is validation", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"title":["This field is required."]}`))
		}))

		_, err := c.CreateSlideshow(context.Background(), edu.ShowInput{})
		var apiErr *api.Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want *api.Error", err)
		}
		if apiErr.Kind != api.KindValidation {
			t.Fatalf("kind = %v, want validation", apiErr.Kind)
		}
		if msgs := apiErr.Fields["title"]; len(msgs) != 1 {
			t.Errorf("field errors = %v", apiErr.Fields)
		}
	})

	t.Run("409 is a conflict with versions", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"version_conflict","message":"Slideshow was modified since you loaded it","server_version":3,"client_version":2}`))
		}))

		_, err := c.UpdateSlideshow(context.Background(), 1, edu.ShowInput{})
		if !api.IsConflict(err) {
			t.Fatalf("IsConflict() = false for %v", err)
		}
		var apiErr *api.Error
		errors.As(err, &apiErr)
		if apiErr.ServerVersion != 3 || apiErr.ClientVersion != 2 {
			t.Errorf("versions = %d/%d, want 3/2", apiErr.ServerVersion, apiErr.ClientVersion)
		}
	})

	t.Run("400 disguising a version conflict is a conflict", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"version_conflict","server_version":5,"client_version":4}`))
		}))

		_, err := c.UpdateSlideshow(context.Background(), 1, edu.ShowInput{})
		if !api.IsConflict(err) {
			t.Fatalf("IsConflict() = false for %v", err)
		}
		var apiErr *api.Error
		errors.As(err, &apiErr)
		if apiErr.ServerVersion != 5 {
			t.Errorf("server version = %d, want 5", apiErr.ServerVersion)
		}
	})

	t.Run("unreachable server is a transport error", func(t *testing.T) {
		t.Parallel()
		c, err := api.NewClient("http://127.0.0.1:1", nil, edu.NewNopLogger())
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}

		_, err = c.SlideshowDetail(context.Background(), 1, 0)
		var apiErr *api.Error
		if !errors.As(err, &apiErr) || apiErr.Kind != api.KindTransport {
			t.Errorf("error = %v, want transport kind", err)
		}
	})
}

func TestClient_UpdateCarriesVersion(t *testing.T) {
	t.Parallel()

	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "version": 5})
	}))

	in := edu.ShowInput{
		Title:      "T",
		Visibility: edu.VisibilityPrivate,
		Version:    4,
		Slides:     []edu.SlideInput{{Order: 0, Content: "# A"}},
	}
	if _, err := c.UpdateSlideshow(context.Background(), 1, in); err != nil {
		t.Fatalf("UpdateSlideshow() error = %v", err)
	}

	if got["version"] != float64(4) {
		t.Errorf("request version = %v, want 4", got["version"])
	}
	slides, _ := got["slides"].([]any)
	if len(slides) != 1 {
		t.Fatalf("request slides = %v", got["slides"])
	}
}
