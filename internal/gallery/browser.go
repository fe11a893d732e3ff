package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrLimitExceeded rejects an upload batch that would push a category
	// past its image cap. Nothing from the batch is uploaded.
	ErrLimitExceeded = errors.New("image limit exceeded")

	// ErrUnknownPath is returned when an operation targets a path that is
	// not in the browser's list.
	ErrUnknownPath = errors.New("unknown image path")
)

// Image is one entry of the in-memory gallery list. Path is the only
// stable identity; URL is a time-limited presigned link and changes
// across resolutions.
type Image struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	Loaded      bool   `json:"loaded"`
	Error       bool   `json:"error"`
	IsUploading bool   `json:"isUploading"`
}

// ObjectStore is the storage backend the browser depends on.
type ObjectStore interface {
	ListPage(ctx context.Context, prefix string, pageSize int, startAfter string) ([]string, error)
	PresignedGetURL(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
}

// SleepFunc waits d or until ctx is done. Tests substitute a zero-delay
// implementation.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Config wires a Browser. Store and Category are required; zero limits
// fall back to the defaults below.
type Config struct {
	Category        string
	Store           ObjectStore
	Log             zerolog.Logger
	PageSize        int
	ImageLimit      int
	EagerResolve    int
	ResolveAttempts int
	RetryDelay      time.Duration
	Sleep           SleepFunc
	Now             func() time.Time
}

const (
	defaultPageSize        = 12
	defaultImageLimit      = 30
	defaultEagerResolve    = 4
	defaultResolveAttempts = 3
	defaultRetryDelay      = time.Second
)

// Browser maintains the paginated, path-keyed image list of one gallery
// category and mediates every storage mutation for it.
type Browser struct {
	cfg   Config
	store ObjectStore
	log   zerolog.Logger

	mu      sync.Mutex
	entries []*Image
	index   map[string]*Image
	cursor  string
	hasMore bool
	primed  bool
	// generation tags listing requests so a response that raced a
	// fresh reload is discarded instead of clobbering the new list.
	generation uint64
}

func NewBrowser(cfg Config) (*Browser, error) {
	if cfg.Store == nil {
		return nil, errors.New("gallery: store is required")
	}
	if cfg.Category == "" {
		return nil, errors.New("gallery: category is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.ImageLimit <= 0 {
		cfg.ImageLimit = defaultImageLimit
	}
	if cfg.EagerResolve <= 0 {
		cfg.EagerResolve = defaultEagerResolve
	}
	if cfg.ResolveAttempts <= 0 {
		cfg.ResolveAttempts = defaultResolveAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Browser{
		cfg:     cfg,
		store:   cfg.Store,
		log:     cfg.Log.With().Str("category", cfg.Category).Logger(),
		index:   make(map[string]*Image),
		hasMore: true,
	}, nil
}

func (b *Browser) Prefix() string {
	return "gallery/" + b.cfg.Category
}

// ListPage fetches the next page of object keys and merges them into the
// list. loadMore=false reloads from the start and replaces the list;
// loadMore=true appends after the cursor. A listing failure leaves the
// current list intact.
func (b *Browser) ListPage(ctx context.Context, loadMore bool) error {
	b.mu.Lock()
	if !loadMore {
		b.generation++
	}
	gen := b.generation
	startAfter := ""
	if loadMore {
		if !b.hasMore {
			b.mu.Unlock()
			return nil
		}
		startAfter = b.cursor
	}
	b.mu.Unlock()

	keys, err := b.store.ListPage(ctx, b.Prefix(), b.cfg.PageSize, startAfter)
	if err != nil {
		return fmt.Errorf("list page: %w", err)
	}

	b.mu.Lock()
	if b.generation != gen {
		b.mu.Unlock()
		b.log.Debug().Msg("discarding stale listing response")
		return nil
	}
	b.primed = true

	if len(keys) == 0 {
		b.hasMore = false
		b.mu.Unlock()
		return nil
	}

	if len(keys) == b.cfg.PageSize {
		b.cursor = keys[len(keys)-1]
		b.hasMore = true
	} else {
		b.hasMore = false
	}

	fresh := make([]*Image, 0, len(keys))
	for _, key := range keys {
		fresh = append(fresh, &Image{Path: key})
	}

	if loadMore {
		b.setEntries(append(b.entries, fresh...))
	} else {
		b.setEntries(fresh)
	}

	eager := keys
	if len(eager) > b.cfg.EagerResolve {
		eager = eager[:b.cfg.EagerResolve]
	}
	b.mu.Unlock()

	// Resolve the head of the page in the background so the caller's
	// response is not held up; the rest resolve on demand.
	for _, key := range eager {
		go func(key string) {
			if err := b.ResolveURL(context.WithoutCancel(ctx), key); err != nil {
				b.log.Warn().Err(err).Str("path", key).Msg("eager resolve failed")
			}
		}(key)
	}

	return nil
}

// ResolveURL requests a fresh presigned URL for path, retrying a bounded
// number of times with a fixed delay. Calling it again after a terminal
// failure clears the error state and restarts the attempt counter.
func (b *Browser) ResolveURL(ctx context.Context, path string) error {
	if !b.patch(path, func(img *Image) {
		img.Error = false
	}) {
		return ErrUnknownPath
	}

	var lastErr error
	for attempt := 0; attempt < b.cfg.ResolveAttempts; attempt++ {
		if attempt > 0 {
			if err := b.cfg.Sleep(ctx, b.cfg.RetryDelay); err != nil {
				lastErr = err
				break
			}
		}

		url, err := b.store.PresignedGetURL(ctx, path)
		if err == nil {
			b.patch(path, func(img *Image) {
				img.URL = url
				img.Loaded = true
				img.Error = false
			})
			return nil
		}
		lastErr = err
	}

	b.patch(path, func(img *Image) {
		img.Error = true
		img.Loaded = false
	})
	return fmt.Errorf("resolve %s: %w", path, lastErr)
}

// File is one member of an upload batch.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// UploadOutcome reports how a single file of a batch settled.
type UploadOutcome struct {
	Path string `json:"path"`
	Name string `json:"name"`
	OK   bool   `json:"ok"`
}

// BatchResult is returned once every file of a batch has settled.
type BatchResult struct {
	Skipped  []string        `json:"skipped"`
	Outcomes []UploadOutcome `json:"outcomes"`
}

// Upload runs a batch: duplicate-named files are skipped, the whole batch
// is rejected if it would exceed the category cap, and the rest upload
// strictly one at a time. A per-file failure marks its placeholder and
// moves on; it never aborts the siblings.
func (b *Browser) Upload(ctx context.Context, files []File) (BatchResult, error) {
	var result BatchResult

	b.mu.Lock()
	accepted := make([]File, 0, len(files))
	for _, f := range files {
		if b.pathContainsLocked(f.Name) {
			result.Skipped = append(result.Skipped, f.Name)
			continue
		}
		accepted = append(accepted, f)
	}

	if len(b.entries)+len(accepted) > b.cfg.ImageLimit {
		b.mu.Unlock()
		return result, ErrLimitExceeded
	}

	ts := b.cfg.Now().UnixMilli()
	paths := make([]string, len(accepted))
	placeholders := make([]*Image, len(accepted))
	for i, f := range accepted {
		paths[i] = fmt.Sprintf("%s/%d_%s", b.Prefix(), ts, SanitizeFilename(f.Name))
		placeholders[i] = &Image{Path: paths[i], IsUploading: true}
	}
	b.setEntries(append(placeholders, b.entries...))
	b.mu.Unlock()

	for i, f := range accepted {
		ok := true
		if err := b.uploadOne(ctx, paths[i], f); err != nil {
			b.log.Error().Err(err).Str("file", f.Name).Msg("upload failed")
			ok = false
		}
		result.Outcomes = append(result.Outcomes, UploadOutcome{
			Path: paths[i],
			Name: f.Name,
			OK:   ok,
		})
	}

	return result, nil
}

func (b *Browser) uploadOne(ctx context.Context, path string, f File) error {
	if err := b.store.Put(ctx, path, f.Reader, f.Size, f.ContentType); err != nil {
		b.patch(path, func(img *Image) {
			img.Error = true
			img.IsUploading = false
		})
		return fmt.Errorf("put %s: %w", path, err)
	}

	url, err := b.store.PresignedGetURL(ctx, path)
	if err != nil {
		b.patch(path, func(img *Image) {
			img.Error = true
			img.IsUploading = false
		})
		return fmt.Errorf("presign %s: %w", path, err)
	}

	b.patch(path, func(img *Image) {
		img.URL = url
		img.Loaded = true
		img.Error = false
		img.IsUploading = false
	})
	return nil
}

// Delete removes the object and, only on success, drops its entry from
// the list. A failed delete changes nothing.
func (b *Browser) Delete(ctx context.Context, path string) error {
	if err := b.store.Remove(ctx, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}

	b.mu.Lock()
	kept := b.entries[:0]
	for _, img := range b.entries {
		if img.Path != path {
			kept = append(kept, img)
		}
	}
	b.setEntries(kept)
	b.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current list in display order.
func (b *Browser) Snapshot() []Image {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Image, len(b.entries))
	for i, img := range b.entries {
		out[i] = *img
	}
	return out
}

func (b *Browser) HasMore() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasMore
}

func (b *Browser) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Primed reports whether the first page has ever been fetched.
func (b *Browser) Primed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.primed
}

// setEntries dedupes by path (first occurrence keeps its position, the
// later record wins) and rebuilds the index. Caller holds b.mu.
func (b *Browser) setEntries(list []*Image) {
	order := make([]string, 0, len(list))
	byPath := make(map[string]*Image, len(list))
	for _, img := range list {
		if _, seen := byPath[img.Path]; !seen {
			order = append(order, img.Path)
		}
		byPath[img.Path] = img
	}

	entries := make([]*Image, 0, len(order))
	for _, path := range order {
		entries = append(entries, byPath[path])
	}
	b.entries = entries
	b.index = byPath
}

// patch applies a partial update to the record for path. It is a no-op
// returning false when the path is no longer tracked, so completions of
// removed images write nothing.
func (b *Browser) patch(path string, apply func(*Image)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	img, ok := b.index[path]
	if !ok {
		return false
	}
	apply(img)
	return true
}

// pathContainsLocked reports whether name appears as a substring of any
// tracked path. This mirrors the duplicate-name heuristic of the admin
// UI; it is best effort, not an exact-name guarantee.
func (b *Browser) pathContainsLocked(name string) bool {
	for _, img := range b.entries {
		if strings.Contains(img.Path, name) {
			return true
		}
	}
	return false
}

// SanitizeFilename replaces every character outside [A-Za-z0-9.] with an
// underscore.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
