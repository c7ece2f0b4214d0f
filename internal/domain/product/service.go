// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/pkg/apierror"
)

// Lookup resolves product details by id.
// A missing product is reported as an apierror with status 404.
type Lookup interface {
	GetProductByID(ctx context.Context, id string) (*Product, error)
}

// Source is the remote catalog
type Source interface {
	Lookup
	ListProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

// Cache stores JSON values with an expiry
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Service serves catalog reads, caching product details when a cache is configured
type Service struct {
	source Source
	cache  Cache
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewService creates a new product service. cache may be nil.
func NewService(source Source, cache Cache, ttl time.Duration, log logrus.FieldLogger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		ttl:    ttl,
		log:    log,
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// GetProductByID returns product details, read through the cache.
// Only successful lookups are cached so a product that comes back is seen immediately.
func (s *Service) GetProductByID(ctx context.Context, id string) (*Product, error) {
	if s.cache != nil {
		var cached Product
		hit, err := s.cache.GetJSON(ctx, cacheKey(id), &cached)
		if err != nil {
			s.log.WithError(err).WithField("product_id", id).Warn("product cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	return s.fetch(ctx, id)
}

// Fresh returns a Lookup that always asks the backend. Each answer refreshes the
// cache, and a product the backend no longer has is evicted from it.
// Cart enrichment uses it so deletions and stock changes show on the next reload.
func (s *Service) Fresh() Lookup {
	return freshLookup{s}
}

type freshLookup struct{ s *Service }

func (f freshLookup) GetProductByID(ctx context.Context, id string) (*Product, error) {
	return f.s.fetch(ctx, id)
}

func (s *Service) fetch(ctx context.Context, id string) (*Product, error) {
	p, err := s.source.GetProductByID(ctx, id)
	if err != nil {
		if s.cache != nil && apierror.IsNotFound(err) {
			if delErr := s.cache.Delete(ctx, cacheKey(id)); delErr != nil {
				s.log.WithError(delErr).WithField("product_id", id).Warn("product cache eviction failed")
			}
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey(id), p, s.ttl); err != nil {
			s.log.WithError(err).WithField("product_id", id).Warn("product cache write failed")
		}
	}
	return p, nil
}

// GetProducts lists catalog products
func (s *Service) GetProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	return s.source.ListProducts(ctx, req)
}

// GetCategories lists catalog categories
func (s *Service) GetCategories(ctx context.Context) ([]Category, error) {
	return s.source.ListCategories(ctx)
}
