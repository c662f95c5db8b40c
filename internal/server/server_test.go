package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bindery/bindery/internal/document"
	"github.com/bindery/bindery/internal/home"
	"github.com/bindery/bindery/internal/profile"
	"github.com/bindery/bindery/internal/server/endpoints"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	homeDir, err := home.New(filepath.Join(t.TempDir(), ".bindery"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(Config{Home: homeDir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func seedDocument(s *Server, id string, pages ...string) {
	s.Services().Documents.Add(document.Document{
		ID:        id,
		Title:     "Test Book",
		Author:    "T. Author",
		PageCount: len(pages),
		Mode:      document.ModeText,
		CreatedAt: time.Now(),
	}, document.ExtractedSlots(pages))
}

func doJSON(t *testing.T, method, url string, body any, wantStatus int, out any) {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var e endpoints.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&e)
		t.Fatalf("%s %s status = %d, want %d (error: %s)", method, url, resp.StatusCode, wantStatus, e.Error)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
}

func TestHealthAndStatus(t *testing.T) {
	_, ts := testServer(t)

	var health endpoints.HealthResponse
	doJSON(t, "GET", ts.URL+"/health", nil, http.StatusOK, &health)
	if health.Status != "ok" {
		t.Errorf("health status = %q, want ok", health.Status)
	}

	var status endpoints.StatusResponse
	doJSON(t, "GET", ts.URL+"/status", nil, http.StatusOK, &status)
	if status.Server != "running" {
		t.Errorf("server status = %q, want running", status.Server)
	}
	if status.ActiveProfile != "Default" {
		t.Errorf("active profile = %q, want Default", status.ActiveProfile)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	s, ts := testServer(t)
	seedDocument(s, "doc-1", "page one text", "page two text")

	t.Run("list", func(t *testing.T) {
		var docs []endpoints.DocumentSummary
		doJSON(t, "GET", ts.URL+"/api/documents", nil, http.StatusOK, &docs)
		if len(docs) != 1 || docs[0].ID != "doc-1" {
			t.Fatalf("unexpected list: %+v", docs)
		}
		if docs[0].PageCount != 2 {
			t.Errorf("page count = %d, want 2", docs[0].PageCount)
		}
	})

	t.Run("get unknown returns 404", func(t *testing.T) {
		doJSON(t, "GET", ts.URL+"/api/documents/nope", nil, http.StatusNotFound, nil)
	})

	t.Run("delete", func(t *testing.T) {
		doJSON(t, "DELETE", ts.URL+"/api/documents/doc-1", nil, http.StatusOK, nil)
		doJSON(t, "GET", ts.URL+"/api/documents/doc-1", nil, http.StatusNotFound, nil)
	})
}

func TestPageEditing(t *testing.T) {
	s, ts := testServer(t)
	seedDocument(s, "doc-1", "first page", "second page here")

	t.Run("pages start from the original", func(t *testing.T) {
		var resp endpoints.PagesResponse
		doJSON(t, "GET", ts.URL+"/api/documents/doc-1/pages", nil, http.StatusOK, &resp)
		if resp.HasOverlay {
			t.Error("expected no overlay before edits")
		}
		if len(resp.Pages) != 2 || resp.Pages[0].Text != "first page" {
			t.Fatalf("unexpected pages: %+v", resp.Pages)
		}
		if resp.Pages[0].Provenance != document.ProvenanceExtracted {
			t.Errorf("provenance = %q, want extracted", resp.Pages[0].Provenance)
		}
	})

	t.Run("set page text seeds the overlay", func(t *testing.T) {
		var resp endpoints.PagesResponse
		doJSON(t, "PUT", ts.URL+"/api/documents/doc-1/pages/0",
			endpoints.SetPageTextRequest{Text: "edited"}, http.StatusOK, &resp)
		if !resp.HasOverlay {
			t.Error("expected overlay after edit")
		}
		if resp.Pages[0].Text != "edited" {
			t.Errorf("page 0 = %q, want edited", resp.Pages[0].Text)
		}
	})

	t.Run("split inserts a page", func(t *testing.T) {
		// "second page here": split after "second "
		var resp endpoints.PagesResponse
		doJSON(t, "POST", ts.URL+"/api/documents/doc-1/pages/1/split",
			endpoints.SplitPageRequest{Offset: 7}, http.StatusOK, &resp)
		if len(resp.Pages) != 3 {
			t.Fatalf("page count after split = %d, want 3", len(resp.Pages))
		}
		if resp.Pages[1].Text != "second" || resp.Pages[2].Text != "page here" {
			t.Errorf("split halves = %q / %q", resp.Pages[1].Text, resp.Pages[2].Text)
		}
	})

	t.Run("boundary split is rejected", func(t *testing.T) {
		doJSON(t, "POST", ts.URL+"/api/documents/doc-1/pages/0/split",
			endpoints.SplitPageRequest{Offset: 0}, http.StatusBadRequest, nil)
	})

	t.Run("reset restores the original", func(t *testing.T) {
		var resp endpoints.PagesResponse
		doJSON(t, "POST", ts.URL+"/api/documents/doc-1/overlay/reset", nil, http.StatusOK, &resp)
		if resp.HasOverlay {
			t.Error("expected overlay gone after reset")
		}
		if len(resp.Pages) != 2 || resp.Pages[0].Text != "first page" {
			t.Fatalf("unexpected pages after reset: %+v", resp.Pages)
		}
	})
}

func TestChapterMarks(t *testing.T) {
	s, ts := testServer(t)
	seedDocument(s, "doc-1", "p0", "p1", "p2")

	var resp endpoints.ChaptersResponse
	doJSON(t, "PUT", ts.URL+"/api/documents/doc-1/pages/1/chapter",
		endpoints.SetChapterRequest{Title: "Chapter One"}, http.StatusOK, &resp)
	if len(resp.Chapters) != 1 || resp.Chapters[0].Title != "Chapter One" {
		t.Fatalf("unexpected chapters: %+v", resp.Chapters)
	}

	t.Run("out of range index rejected", func(t *testing.T) {
		doJSON(t, "PUT", ts.URL+"/api/documents/doc-1/pages/9/chapter",
			endpoints.SetChapterRequest{Title: "X"}, http.StatusBadRequest, nil)
	})

	t.Run("blank title clears the mark", func(t *testing.T) {
		var resp endpoints.ChaptersResponse
		doJSON(t, "PUT", ts.URL+"/api/documents/doc-1/pages/1/chapter",
			endpoints.SetChapterRequest{Title: ""}, http.StatusOK, &resp)
		if len(resp.Chapters) != 0 {
			t.Fatalf("expected no chapters, got %+v", resp.Chapters)
		}
	})
}

func TestExportEpub(t *testing.T) {
	s, ts := testServer(t)
	seedDocument(s, "doc-1", "page one", "chapter start", "more text")
	s.Services().Overlays.SetOrClearChapter("doc-1", 1, "The Chapter")

	var resp endpoints.ExportResponse
	doJSON(t, "POST", ts.URL+"/api/documents/doc-1/export", nil, http.StatusOK, &resp)

	if _, err := os.Stat(resp.Path); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	// cover + preface + one chapter
	if resp.Chapters != 3 {
		t.Errorf("chapters = %d, want 3", resp.Chapters)
	}
}

func TestTranscriptionStatusIdle(t *testing.T) {
	s, ts := testServer(t)
	seedDocument(s, "doc-1", "text")

	var resp endpoints.TranscriptionResponse
	doJSON(t, "GET", ts.URL+"/api/documents/doc-1/transcription", nil, http.StatusOK, &resp)
	if resp.Status.Running {
		t.Error("expected no running transcription")
	}
}

func TestTranscriptionRequiresConfiguredProfile(t *testing.T) {
	s, ts := testServer(t)
	seedDocument(s, "doc-1", "text")

	// Default profile has no base URL.
	doJSON(t, "POST", ts.URL+"/api/documents/doc-1/transcription/start", nil, http.StatusBadRequest, nil)
}

func TestProfileSettings(t *testing.T) {
	_, ts := testServer(t)

	var settings profile.Settings
	doJSON(t, "GET", ts.URL+"/api/profiles", nil, http.StatusOK, &settings)
	if len(settings.Profiles) != 1 {
		t.Fatalf("expected one default profile, got %d", len(settings.Profiles))
	}

	updated := profile.Settings{
		Profiles: []profile.Profile{
			{ID: "p1", Name: "Local", BaseURL: "http://localhost:11434/v1", Model: "llava"},
			{ID: "p2", Name: "Cloud", BaseURL: "https://api.example.com/v1", APIKey: "${KEY}", Model: "gpt-4o"},
		},
		ActiveID: "p1",
	}
	doJSON(t, "PUT", ts.URL+"/api/profiles", updated, http.StatusOK, nil)

	t.Run("activate switches the active profile", func(t *testing.T) {
		var after profile.Settings
		doJSON(t, "POST", ts.URL+"/api/profiles/p2/activate", nil, http.StatusOK, &after)
		if after.ActiveID != "p2" {
			t.Errorf("active id = %q, want p2", after.ActiveID)
		}
	})

	t.Run("activate unknown id fails", func(t *testing.T) {
		doJSON(t, "POST", ts.URL+"/api/profiles/ghost/activate", nil, http.StatusNotFound, nil)
	})
}

func TestServerRejectsMissingHome(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing home directory")
	}
}

func TestExportFilenameUnknownTitle(t *testing.T) {
	s, ts := testServer(t)
	s.Services().Documents.Add(document.Document{
		ID:        "doc-1",
		Title:     "???",
		PageCount: 1,
		Mode:      document.ModeText,
		CreatedAt: time.Now(),
	}, document.ExtractedSlots([]string{"text"}))

	var resp endpoints.ExportResponse
	doJSON(t, "POST", ts.URL+"/api/documents/doc-1/export", nil, http.StatusOK, &resp)
	if filepath.Base(resp.Path) != "book.epub" {
		t.Errorf("export path = %s, want book.epub fallback", resp.Path)
	}
}
