package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"cardsight/internal/config"
)

const catalogPage = `
<div class="card-list">
  <img src="/wp-content/images/cardlist/hSD04/hSD04-001_OC.png" alt="">
  <img src="/wp-content/images/cardlist/hSD04/hSD04-002_RR.png" alt="">
  <img src="/wp-content/images/cardlist/hBP01/hBP01-015_C.png" alt="">
  <img src="/img/common/logo.png" alt="site logo">
</div>`

func TestParseCardList(t *testing.T) {
	cards, err := ParseCardList(strings.NewReader(catalogPage))
	if err != nil {
		t.Fatalf("ParseCardList: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("got %d cards, want 3 (logo excluded)", len(cards))
	}
	want := []CardRef{
		{Set: "hSD04", Number: "hSD04-001_OC"},
		{Set: "hSD04", Number: "hSD04-002_RR"},
		{Set: "hBP01", Number: "hBP01-015_C"},
	}
	for i, w := range want {
		if cards[i].Set != w.Set || cards[i].Number != w.Number {
			t.Errorf("card %d = %s/%s, want %s/%s",
				i, cards[i].Set, cards[i].Number, w.Set, w.Number)
		}
	}
}

func TestParseCardListEmpty(t *testing.T) {
	cards, err := ParseCardList(strings.NewReader("<div></div>"))
	if err != nil {
		t.Fatalf("ParseCardList: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("got %d cards, want 0", len(cards))
	}
}

func TestCardRefFromSrc(t *testing.T) {
	tests := []struct {
		src        string
		wantSet    string
		wantNumber string
		ok         bool
	}{
		{"/images/hSD04/hSD04-001_OC.png", "hSD04", "hSD04-001_OC", true},
		{"https://cdn.example.com/cards/hBP01/hBP01-001.png", "hBP01", "hBP01-001", true},
		{"/img/common/logo.png", "", "", false},
		{"banner.png", "", "", false},
		{"/hSD04/", "", "", false},
	}
	for _, tt := range tests {
		ref, ok := cardRefFromSrc(tt.src)
		if ok != tt.ok {
			t.Errorf("cardRefFromSrc(%s) ok = %v, want %v", tt.src, ok, tt.ok)
			continue
		}
		if ok && (ref.Set != tt.wantSet || ref.Number != tt.wantNumber) {
			t.Errorf("cardRefFromSrc(%s) = %s/%s, want %s/%s",
				tt.src, ref.Set, ref.Number, tt.wantSet, tt.wantNumber)
		}
	}
}

func TestRunDownloadsIntoReferenceLayout(t *testing.T) {
	imageBytes := []byte("fake png payload")
	mux := http.NewServeMux()
	mux.HandleFunc("/cardlist/cardsearch_ex", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if r.FormValue("page") == "1" {
			w.Write([]byte(catalogPage))
			return
		}
		w.Write([]byte("<div></div>")) // empty page ends the crawl
	})
	mux.HandleFunc("/wp-content/images/cardlist/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	})
	mux.HandleFunc("/img/common/logo.png", func(w http.ResponseWriter, r *http.Request) {
		t.Error("non-card image was downloaded")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	finalDir := t.TempDir()
	s, err := New(config.ScraperConfig{
		BaseURL:  server.URL,
		TempDir:  t.TempDir(),
		MaxPages: 10,
	}, finalDir, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantFiles := []string{
		filepath.Join(finalDir, "hSD04", "hSD04-001_OC.png"),
		filepath.Join(finalDir, "hSD04", "hSD04-002_RR.png"),
		filepath.Join(finalDir, "hBP01", "hBP01-015_C.png"),
	}
	for _, path := range wantFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("expected downloaded card at %s: %v", path, err)
			continue
		}
		if string(data) != string(imageBytes) {
			t.Errorf("%s holds wrong content", path)
		}
	}
}

func TestRunPageFailureAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	s, err := New(config.ScraperConfig{
		BaseURL:  server.URL,
		TempDir:  t.TempDir(),
		MaxPages: 10,
	}, t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); err == nil {
		t.Error("Run succeeded against a failing catalog, want error")
	}
}
