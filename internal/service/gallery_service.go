package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eduhub/api/internal/gallery"
)

type PublicImage struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type PublicPage struct {
	Items      []PublicImage `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
	HasMore    bool          `json:"hasMore"`
}

// PublicGalleryService serves the read-only gallery pages of the
// marketing site. Presigned URLs are cached for at most half their
// lifetime so a visitor never receives one about to expire.
type PublicGalleryService struct {
	store      gallery.ObjectStore
	cache      *redis.Client
	log        zerolog.Logger
	pageSize   int
	presignTTL time.Duration
}

func NewPublicGalleryService(store gallery.ObjectStore, cache *redis.Client, log zerolog.Logger, pageSize int, presignTTL time.Duration) *PublicGalleryService {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &PublicGalleryService{
		store:      store,
		cache:      cache,
		log:        log,
		pageSize:   pageSize,
		presignTTL: presignTTL,
	}
}

func (s *PublicGalleryService) ListPage(ctx context.Context, category, cursor string) (PublicPage, error) {
	prefix := "gallery/" + category

	keys, err := s.store.ListPage(ctx, prefix, s.pageSize, cursor)
	if err != nil {
		return PublicPage{}, fmt.Errorf("list %s: %w", category, err)
	}

	page := PublicPage{Items: make([]PublicImage, 0, len(keys))}
	for _, key := range keys {
		url, err := s.resolveURL(ctx, key)
		if err != nil {
			// One broken image should not take down the page.
			s.log.Warn().Err(err).Str("path", key).Msg("public resolve failed")
			continue
		}
		page.Items = append(page.Items, PublicImage{Path: key, URL: url})
	}

	if len(keys) == s.pageSize {
		page.NextCursor = keys[len(keys)-1]
		page.HasMore = true
	}
	return page, nil
}

func (s *PublicGalleryService) resolveURL(ctx context.Context, key string) (string, error) {
	cacheKey := "gallery:url:" + key

	if s.cache != nil {
		if url, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && url != "" {
			return url, nil
		}
	}

	url, err := s.store.PresignedGetURL(ctx, key)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, url, s.presignTTL/2).Err(); err != nil {
			s.log.Warn().Err(err).Str("path", key).Msg("url cache write failed")
		}
	}
	return url, nil
}
