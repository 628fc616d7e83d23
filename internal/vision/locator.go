// Package vision - locator.go
//
// Template store and matcher. A Locator indexes the template images under an
// asset directory by basename, decodes them on demand through gocv, and finds
// them in captured frames with normalized cross-correlation.
//
// Representations:
// Gray (*image.Gray frames) and color (any other frame, matched as BGR) have
// separate caches and separate lookup paths. A template decoded for one is
// never reused for the other.
//
// Cache Modes:
//   - Speed: every newly indexed template is decoded (gray) at index time; nothing is ever evicted
//   - Memory: nothing is cached; each lookup decodes, matches and releases
//   - Balanced: decode on first use, keep up to Size entries per representation,
//     evict the least recently used entry before inserting a new one
//
// Thread Safety:
// One mutex guards the path index, both caches and the frame memo. It is held
// for the whole of a lookup, so a Mat is never released while a match is using it.
package vision

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"gocv.io/x/gocv"

	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
)

// ErrDecode is returned when an indexed template cannot be decoded.
var ErrDecode = errors.New("vision: template decode failed")

// DefaultCacheSize is the Balanced capacity per representation.
const DefaultCacheSize = 20

// CacheMode selects the template residency policy.
type CacheMode int

const (
	CacheBalanced CacheMode = iota
	CacheSpeed
	CacheMemory
)

// String returns the config name of the mode.
func (m CacheMode) String() string {
	switch m {
	case CacheSpeed:
		return "speed"
	case CacheMemory:
		return "memory"
	default:
		return "balanced"
	}
}

// ParseCacheMode maps a config name onto a CacheMode.
func ParseCacheMode(s string) (CacheMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "speed":
		return CacheSpeed, nil
	case "memory":
		return CacheMemory, nil
	case "balanced", "":
		return CacheBalanced, nil
	}
	return CacheBalanced, fmt.Errorf("vision: unknown cache mode %q", s)
}

// Representation is the pixel format a lookup runs in.
type Representation int

const (
	Gray Representation = iota
	Color
)

func (r Representation) String() string {
	if r == Color {
		return "color"
	}
	return "gray"
}

func (r Representation) readFlag() gocv.IMReadFlag {
	if r == Color {
		return gocv.IMReadColor
	}
	return gocv.IMReadGrayScale
}

// Option configures a Locator.
type Option func(*Locator)

// WithCacheMode sets the residency policy.
func WithCacheMode(m CacheMode) Option { return func(l *Locator) { l.mode = m } }

// WithCacheSize sets the Balanced capacity per representation.
func WithCacheSize(n int) Option {
	return func(l *Locator) {
		if n > 0 {
			l.size = n
		}
	}
}

// WithScale resizes templates on decode. Values <= 0 are ignored.
func WithScale(f float64) Option {
	return func(l *Locator) {
		if f > 0 {
			l.scale = f
		}
	}
}

// Locator finds named templates in frames.
type Locator struct {
	mu      sync.Mutex
	mode    CacheMode
	size    int
	scale   float64
	paths   map[string]string
	caches  [2]*simplelru.LRU[string, gocv.Mat]
	memo    [2]frameMemo
	decodes int
}

// NewLocator creates an empty Locator.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		mode:  CacheBalanced,
		size:  DefaultCacheSize,
		scale: 1,
		paths: make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}

	capacity := l.size
	if l.mode == CacheSpeed {
		capacity = math.MaxInt
	}
	for _, rep := range []Representation{Gray, Color} {
		// NewLRU only fails on a non-positive size, which WithCacheSize never sets.
		cache, _ := simplelru.NewLRU[string, gocv.Mat](capacity, func(name string, m gocv.Mat) {
			m.Close()
			logging.Debug("Template %s released (%s)", name, rep)
		})
		l.caches[rep] = cache
	}

	logging.Info("Locator created: mode=%s size=%d scale=%.3f", l.mode, l.size, l.scale)
	return l
}

// IndexTemplates registers every png/jpg/jpeg/bmp file under dir by basename.
// Names already registered keep their first path. It returns how many new
// names were added.
func (l *Locator) IndexTemplates(dir string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var added []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isTemplateExt(path) {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		if prev, exists := l.paths[name]; exists {
			if prev != path {
				logging.Debug("Template %s at %s ignored, already registered from %s", name, path, prev)
			}
			return nil
		}
		l.paths[name] = path
		added = append(added, name)
		return nil
	})
	if err != nil {
		return len(added), fmt.Errorf("vision: index %s: %w", dir, err)
	}

	if l.mode == CacheSpeed {
		for _, name := range added {
			m, err := l.decode(l.paths[name], Gray)
			if err != nil {
				logging.Warn("Preload of %s failed: %v", name, err)
				continue
			}
			l.caches[Gray].Add(name, m)
		}
	}

	logging.Info("Indexed %d new templates from %s (%d total)", len(added), dir, len(l.paths))
	return len(added), nil
}

func isTemplateExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp":
		return true
	}
	return false
}

// Has reports whether name is indexed.
func (l *Locator) Has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.paths[name]
	return ok
}

// Names returns every indexed name, sorted.
func (l *Locator) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.paths))
	for name := range l.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resident lists cached template names for rep, most recent first.
func (l *Locator) Resident(rep Representation) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	keys := l.caches[rep].Keys()
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

// Decodes returns how many template decodes have happened.
func (l *Locator) Decodes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.decodes
}

// Unload drops name from both caches.
func (l *Locator) Unload(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.caches[Gray].Remove(name)
	l.caches[Color].Remove(name)
}

// Close releases every cached template and memoized frame.
func (l *Locator) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.caches[Gray].Purge()
	l.caches[Color].Purge()
	for i := range l.memo {
		l.memo[i].reset()
	}
}

// Find returns the bounding box of the best match for name in frame, or an
// empty rectangle when the best score is below threshold, the name is not
// indexed, or the template does not fit in the frame.
func (l *Locator) Find(frame image.Image, name string, threshold float64, useEdges bool) (image.Rectangle, error) {
	hits, err := l.lookup(frame, name, threshold, useEdges, 1)
	if err != nil || len(hits) == 0 {
		return image.Rectangle{}, err
	}
	return hits[0], nil
}

// FindAll returns every non-overlapping match at or above threshold, best first.
func (l *Locator) FindAll(frame image.Image, name string, threshold float64, useEdges bool) ([]image.Rectangle, error) {
	return l.lookup(frame, name, threshold, useEdges, maxMatches)
}

func (l *Locator) lookup(frame image.Image, name string, threshold float64, useEdges bool, limit int) ([]image.Rectangle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path, ok := l.paths[name]
	if !ok {
		logging.Debug("[MISS] %s is not indexed", name)
		return nil, nil
	}

	rep := representationOf(frame)
	frameMat, done, err := l.memo[rep].get(frame, rep)
	if err != nil {
		return nil, err
	}
	defer done()

	tmpl, release, err := l.template(name, path, rep)
	if err != nil {
		return nil, err
	}
	defer release()

	if tmpl.Cols() > frameMat.Cols() || tmpl.Rows() > frameMat.Rows() {
		logging.Debug("[MISS] %s (%dx%d) larger than frame (%dx%d)", name, tmpl.Cols(), tmpl.Rows(), frameMat.Cols(), frameMat.Rows())
		return nil, nil
	}

	var hits []image.Rectangle
	var best float64
	if useEdges {
		hits, best = correlateEdges(frameMat, tmpl, threshold, limit)
	}
	if len(hits) == 0 {
		hits, best = correlate(frameMat, tmpl, threshold, limit)
	}
	if len(hits) == 0 {
		logging.Debug("[MISS] %s best=%.3f threshold=%.2f (%s)", name, best, threshold, rep)
		return nil, nil
	}

	origin := frame.Bounds().Min
	for i := range hits {
		hits[i] = hits[i].Add(origin)
	}
	return hits, nil
}

// template returns the decoded template for rep and a release func the caller
// must run after matching.
func (l *Locator) template(name, path string, rep Representation) (gocv.Mat, func(), error) {
	noop := func() {}
	cache := l.caches[rep]

	if l.mode != CacheMemory {
		if m, ok := cache.Get(name); ok {
			return m, noop, nil
		}
	}

	m, err := l.decode(path, rep)
	if err != nil {
		return gocv.Mat{}, noop, err
	}

	if l.mode == CacheMemory {
		return m, func() { m.Close() }, nil
	}
	if cache.Add(name, m) {
		logging.Debug("Template cache full, oldest evicted for %s (%s)", name, rep)
	}
	return m, noop, nil
}

func (l *Locator) decode(path string, rep Representation) (gocv.Mat, error) {
	m := gocv.IMRead(path, rep.readFlag())
	if m.Empty() {
		m.Close()
		logging.Error("Failed to decode template %s", path)
		return gocv.Mat{}, fmt.Errorf("%w: %s", ErrDecode, path)
	}
	l.decodes++

	if l.scale != 1 {
		scaled := gocv.NewMat()
		gocv.Resize(m, &scaled, image.Point{}, l.scale, l.scale, gocv.InterpolationArea)
		m.Close()
		m = scaled
	}
	return m, nil
}
