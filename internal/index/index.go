// Package index builds and holds the in-memory library of reference
// cards a query is matched against.
//
// The index is rebuilt from the reference directory on every startup;
// nothing is persisted between runs.
package index

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"cardsight/internal/feature"
	"cardsight/internal/imaging"
)

// ErrRootMissing is returned by Build when the reference root directory
// does not exist. This is a configuration error: the caller gets it
// back, unlike per-file problems which are logged and skipped.
var ErrRootMissing = errors.New("reference root directory does not exist")

// Card is one reference entry: a known card image with its extracted
// features. Immutable after load; owned exclusively by the Index.
type Card struct {
	// ID is "{set}/{name}", e.g. "hSD04/hSD04-001". Unique within an Index.
	ID string

	// Set and Name are the two halves of the ID.
	Set  string
	Name string

	// Path is the source file the card was loaded from.
	Path string

	// Image is the decoded reference image, kept for display overlays.
	Image image.Image

	// Features is the card's extracted FeatureSet; never empty for a
	// card that made it into the index.
	Features *feature.FeatureSet
}

// Index is the registry of reference cards. Read-only after Build, so
// it is safe for concurrent readers without locking.
type Index struct {
	cards map[string]*Card
	ids   []string // sorted, for deterministic iteration
}

// Build walks one level of subdirectories under root (one per card set)
// and indexes every image file inside, keyed "{set}/{filename-without-ext}".
//
// Per-file failures never abort the build: a file that fails to decode
// or yields zero descriptors is skipped with a logged warning. An
// existing-but-empty root is valid and yields an empty index; a missing
// root returns ErrRootMissing.
//
// A later file with an ID that collides with an earlier one replaces it
// (last-write-wins). The rule is deliberate and logged rather than
// silent; whether colliding IDs across sets should instead be rejected
// is an open question inherited from the data layout.
func Build(root string, extractor *feature.Extractor, logger *zap.Logger) (*Index, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootMissing, root)
		}
		return nil, fmt.Errorf("failed to stat reference root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootMissing, root)
	}

	idx := &Index{cards: make(map[string]*Card)}

	sets, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference root: %w", err)
	}
	for _, setEntry := range sets {
		if !setEntry.IsDir() {
			continue
		}
		setName := setEntry.Name()
		setDir := filepath.Join(root, setName)
		files, err := os.ReadDir(setDir)
		if err != nil {
			logger.Warn("skipping unreadable set directory",
				zap.String("dir", setDir), zap.Error(err))
			continue
		}
		for _, f := range files {
			if f.IsDir() || !imaging.IsImageFile(f.Name()) {
				continue
			}
			path := filepath.Join(setDir, f.Name())
			name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
			idx.add(setName, name, path, extractor, logger)
		}
	}

	idx.ids = make([]string, 0, len(idx.cards))
	for id := range idx.cards {
		idx.ids = append(idx.ids, id)
	}
	sort.Strings(idx.ids)

	logger.Info("reference index built",
		zap.String("root", root), zap.Int("cards", len(idx.ids)))
	return idx, nil
}

// add loads, extracts, and registers a single card file.
func (idx *Index) add(set, name, path string, extractor *feature.Extractor, logger *zap.Logger) {
	img, err := imaging.Load(path)
	if err != nil {
		logger.Warn("skipping unreadable reference image",
			zap.String("path", path), zap.Error(err))
		return
	}
	fs := extractor.Extract(img)
	if fs.Empty() {
		logger.Warn("skipping reference image with no detectable features",
			zap.String("path", path))
		return
	}

	id := set + "/" + name
	if prev, ok := idx.cards[id]; ok {
		logger.Warn("reference card ID collision, keeping the later file",
			zap.String("id", id),
			zap.String("replaced", prev.Path),
			zap.String("kept", path))
	}
	idx.cards[id] = &Card{
		ID:       id,
		Set:      set,
		Name:     name,
		Path:     path,
		Image:    img,
		Features: fs,
	}
}

// Len returns the number of indexed cards.
func (idx *Index) Len() int {
	return len(idx.cards)
}

// Get returns the card with the given ID, or nil.
func (idx *Index) Get(id string) *Card {
	return idx.cards[id]
}

// Cards returns all cards in ascending ID order.
func (idx *Index) Cards() []*Card {
	out := make([]*Card, 0, len(idx.ids))
	for _, id := range idx.ids {
		out = append(out, idx.cards[id])
	}
	return out
}

// IDs returns the sorted card identities.
func (idx *Index) IDs() []string {
	out := make([]string, len(idx.ids))
	copy(out, idx.ids)
	return out
}
