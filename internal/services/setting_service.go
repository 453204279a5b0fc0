package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"book-order-service/internal/cache"
	"book-order-service/internal/domain"
	"book-order-service/internal/repository"

	"golang.org/x/sync/singleflight"
)

// SettingService reads and writes the admin setting. Reads go through an
// optional cache; concurrent misses share one store lookup. mu orders the
// store read and cache fill in Current against Save.
type SettingService struct {
	repo    repository.SettingRepository
	cache   cache.SettingCache
	sfg     singleflight.Group
	mu      sync.Mutex
	timeout time.Duration
	now     func() time.Time
}

func NewSettingService(repo repository.SettingRepository, c cache.SettingCache, storeTimeout time.Duration) *SettingService {
	return &SettingService{
		repo:    repo,
		cache:   c,
		timeout: storeTimeout,
		now:     time.Now,
	}
}

// Current returns the saved setting or nil when none exists. The shared
// lookup is not bound to any single caller's cancellation; a cancelled
// caller stops waiting and gets its context error.
func (s *SettingService) Current(ctx context.Context) (*domain.AdminSetting, error) {
	res := s.sfg.DoChan(domain.SettingsKey, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.load(lctx)
	})

	select {
	case r := <-res:
		if r.Err != nil {
			return nil, r.Err
		}
		setting, _ := r.Val.(*domain.AdminSetting)
		return setting, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *SettingService) load(ctx context.Context) (*domain.AdminSetting, error) {
	if s.cache != nil {
		setting, err := s.cache.Get(ctx)
		if err == nil {
			return setting, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("settings cache get error: %v", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	setting, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, storageError("get settings", err)
	}

	if setting != nil && s.cache != nil {
		if err := s.cache.Set(ctx, setting); err != nil {
			log.Printf("settings cache set error: %v", err)
		}
	}
	return setting, nil
}

// Save stores the video URL. A nil or blank URL clears it.
func (s *SettingService) Save(ctx context.Context, url *string) (*domain.AdminSetting, error) {
	setting := &domain.AdminSetting{UpdatedAt: s.now().UTC()}
	if url != nil {
		if u := strings.TrimSpace(*url); u != "" {
			setting.YoutubeURL = &u
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.SaveSettings(sctx, setting); err != nil {
		return nil, storageError("save settings", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, setting); err != nil {
			log.Printf("settings cache set error: %v", err)
			if err := s.cache.Delete(ctx); err != nil {
				log.Printf("settings cache delete error: %v", err)
			}
		}
	}

	return setting, nil
}
