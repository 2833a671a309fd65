// Package scraper populates the reference card store from the remote
// card catalog.
//
// The catalog is paginated; each page is fetched as HTML and mined for
// card image URLs of the form .../{set}/{number}.png. Images land in a
// temp directory first and are moved into the reference layout only
// after the crawl, so a partially failed run never leaves a half-
// written set visible to the index builder.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"cardsight/internal/config"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36" +
	" (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// CardRef identifies one downloadable card image in the catalog.
type CardRef struct {
	Set      string
	Number   string
	ImageURL string
}

// Scraper crawls the catalog and downloads card images.
type Scraper struct {
	baseURL  string
	tempDir  string
	finalDir string
	maxPages int
	client   *http.Client
	logger   *zap.Logger

	processed map[string]bool
}

// New builds a scraper. finalDir is the reference root the index later
// reads from.
func New(cfg config.ScraperConfig, finalDir string, logger *zap.Logger) (*Scraper, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	// The catalog serves its image view only with these preferences set.
	jar.SetCookies(base, []*http.Cookie{
		{Name: "cardlist_view", Value: "img"},
		{Name: "cardlist_search_sort", Value: "new"},
	})

	return &Scraper{
		baseURL:   cfg.BaseURL,
		tempDir:   cfg.TempDir,
		finalDir:  finalDir,
		maxPages:  cfg.MaxPages,
		client:    &http.Client{Jar: jar},
		logger:    logger,
		processed: make(map[string]bool),
	}, nil
}

// Run crawls catalog pages until one comes back empty (or the page cap
// is reached), downloading every new card image. Per-card failures are
// logged and skipped; only transport-level page failures abort the run.
func (s *Scraper) Run(ctx context.Context) error {
	downloaded := 0
	for page := 1; page <= s.maxPages; page++ {
		cards, err := s.fetchPage(ctx, page)
		if err != nil {
			return fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
		}
		if len(cards) == 0 {
			break
		}
		for _, card := range cards {
			if s.processed[card.ImageURL] {
				continue
			}
			s.processed[card.ImageURL] = true
			if err := s.download(ctx, card); err != nil {
				s.logger.Warn("card download failed",
					zap.String("url", card.ImageURL), zap.Error(err))
				continue
			}
			downloaded++
		}
		s.logger.Info("catalog page fetched",
			zap.Int("page", page), zap.Int("cards", len(cards)))
	}

	if err := s.moveIntoFinal(); err != nil {
		return err
	}
	s.logger.Info("reference store populated", zap.Int("downloaded", downloaded))
	return nil
}

// fetchPage posts the card search form for one page and extracts the
// card image references from the returned HTML.
func (s *Scraper) fetchPage(ctx context.Context, page int) ([]CardRef, error) {
	form := url.Values{
		"keyword":        {""},
		"attribute[0]":   {"all"},
		"expansion_name": {""},
		"card_kind[0]":   {"all"},
		"rare[0]":        {"all"},
		"bloom_level[0]": {"all"},
		"parallel[0]":    {"all"},
		"page":           {strconv.Itoa(page)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/cardlist/cardsearch_ex", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return ParseCardList(resp.Body)
}

// ParseCardList extracts card image references from catalog HTML. Image
// sources that do not look like card images (no set directory in the
// path) are ignored.
func ParseCardList(r io.Reader) ([]CardRef, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog HTML: %w", err)
	}

	var cards []CardRef
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, attr := range n.Attr {
				if attr.Key != "src" {
					continue
				}
				if ref, ok := cardRefFromSrc(attr.Val); ok {
					cards = append(cards, ref)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return cards, nil
}

// cardRefFromSrc derives {set, number} from an image path like
// ".../hSD04/hSD04-001_OC.png".
func cardRefFromSrc(src string) (CardRef, bool) {
	clean := path.Clean(src)
	dir, file := path.Split(clean)
	set := path.Base(strings.TrimSuffix(dir, "/"))
	if set == "." || set == "/" || file == "" {
		return CardRef{}, false
	}
	number := strings.SplitN(file, ".", 2)[0]
	if !strings.HasPrefix(number, set) {
		// Logos, navigation art, and other non-card images.
		return CardRef{}, false
	}
	return CardRef{Set: set, Number: number, ImageURL: src}, true
}

// download fetches one card image into the temp layout.
func (s *Scraper) download(ctx context.Context, card CardRef) error {
	setDir := filepath.Join(s.tempDir, card.Set)
	if err := os.MkdirAll(setDir, 0o755); err != nil {
		return err
	}

	imgURL := card.ImageURL
	if !strings.HasPrefix(imgURL, "http") {
		imgURL = s.baseURL + "/" + strings.TrimPrefix(imgURL, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	dst := filepath.Join(setDir, card.Number+".png")
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return err
	}
	s.logger.Debug("card downloaded", zap.String("card", card.Set+"/"+card.Number))
	return nil
}

// moveIntoFinal moves every downloaded set directory into the reference
// root, file by file so existing cards are overwritten, not lost.
func (s *Scraper) moveIntoFinal() error {
	sets, err := os.ReadDir(s.tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read temp directory: %w", err)
	}
	for _, set := range sets {
		if !set.IsDir() {
			continue
		}
		srcDir := filepath.Join(s.tempDir, set.Name())
		dstDir := filepath.Join(s.finalDir, set.Name())
		if err := os.MkdirAll(dstDir, 0o755); err != nil {
			return err
		}
		files, err := os.ReadDir(srcDir)
		if err != nil {
			return err
		}
		for _, f := range files {
			src := filepath.Join(srcDir, f.Name())
			dst := filepath.Join(dstDir, f.Name())
			if err := os.Rename(src, dst); err != nil {
				return fmt.Errorf("failed to move %s: %w", src, err)
			}
		}
	}
	return nil
}
