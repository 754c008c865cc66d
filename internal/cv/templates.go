package cv

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"
)

// ErrTemplateUnavailable is returned when a configured reference image cannot
// be loaded. Callers fall back to color-only matching rather than skipping
// detection.
var ErrTemplateUnavailable = errors.New("template reference unavailable")

// hashSize is the square edge both images are normalized to before hashing.
const hashSize = 64

// maxHashDistance is the Hamming distance treated as complete dissimilarity.
// Perceptual hashes of unrelated images usually differ by well under a
// quarter of the hash bits, so normalizing against the full hash width
// would score almost everything above common thresholds.
const maxHashDistance = 16

// Reference is a loaded template image plus its match threshold.
type Reference struct {
	Name      string
	Threshold float64
	hash      *goimagehash.ImageHash
}

// ReferenceConfig describes a template to load.
type ReferenceConfig struct {
	Name      string
	Path      string
	Threshold float64
}

// ReferenceLibrary loads and caches template reference images by name.
type ReferenceLibrary struct {
	configs map[string]ReferenceConfig
	cache   map[string]*Reference
	mu      sync.Mutex
}

// NewReferenceLibrary creates a library over the configured templates.
// Images are loaded lazily on first use so a broken template only affects
// the entries that reference it.
func NewReferenceLibrary(configs []ReferenceConfig) *ReferenceLibrary {
	byName := make(map[string]ReferenceConfig, len(configs))
	for _, c := range configs {
		byName[c.Name] = c
	}
	return &ReferenceLibrary{
		configs: byName,
		cache:   make(map[string]*Reference),
	}
}

// Configured reports whether any templates are defined.
func (l *ReferenceLibrary) Configured() bool {
	return len(l.configs) > 0
}

// Get returns the loaded reference for name, loading it on first use.
func (l *ReferenceLibrary) Get(name string) (*Reference, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ref, ok := l.cache[name]; ok {
		return ref, nil
	}

	cfg, ok := l.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: template %q not defined in configuration", ErrTemplateUnavailable, name)
	}

	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrTemplateUnavailable, cfg.Path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrTemplateUnavailable, cfg.Path, err)
	}

	hash, err := hashImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: hash %s: %v", ErrTemplateUnavailable, cfg.Path, err)
	}

	ref := &Reference{Name: cfg.Name, Threshold: cfg.Threshold, hash: hash}
	l.cache[name] = ref
	return ref, nil
}

// Match compares a captured frame against a loaded reference. Similarity is
// derived from the perceptual hash Hamming distance, normalized to [0,1]
// against maxHashDistance so that distinct images score near zero; the match
// decision compares it against the reference threshold inclusively.
// A degenerate frame is a no-match with confidence 0, not an error.
func Match(frame *image.RGBA, ref *Reference) (MatchResult, error) {
	if frame == nil || frame.Bounds().Dx() <= 0 || frame.Bounds().Dy() <= 0 {
		return MatchResult{}, nil
	}

	frameHash, err := hashImage(frame)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to hash frame: %w", err)
	}

	dist, err := ref.hash.Distance(frameHash)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to compare hashes: %w", err)
	}

	if dist > maxHashDistance {
		dist = maxHashDistance
	}
	similarity := 1.0 - float64(dist)/float64(maxHashDistance)
	return MatchResult{
		IsMatch:    similarity >= ref.Threshold,
		Confidence: similarity,
	}, nil
}

// hashImage normalizes an image to hashSize and computes its perception hash.
func hashImage(img image.Image) (*goimagehash.ImageHash, error) {
	normalized := resize.Resize(hashSize, hashSize, img, resize.Bilinear)
	return goimagehash.PerceptionHash(normalized)
}
