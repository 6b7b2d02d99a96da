package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"akademiku_backend/internals/features/finance/billing_configs/model"
)

const cacheKey = "billing_config:current"

type Store interface {
	Get(ctx context.Context) (*model.BillingConfigModel, error)
	Upsert(ctx context.Context, hourRate decimal.Decimal, term int) (*model.BillingConfigModel, error)
}

// Provider adalah satu-satunya jalan membaca/menulis billing config.
// Cache Redis read-through: pembaca hanya mengisi key yang kosong (SETNX),
// Save menimpa key dengan baris yang baru disimpan. Pembaca lambat yang
// membawa baris lama tidak bisa menimpa hasil Save.
// cache nil = tanpa cache.
type Provider struct {
	store Store
	cache *redis.Client
	ttl   time.Duration
}

func NewProvider(store Store, cache *redis.Client, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Provider{store: store, cache: cache, ttl: ttl}
}

func (p *Provider) Current(ctx context.Context) (*model.BillingConfigModel, error) {
	if cfg, ok := p.fromCache(ctx); ok {
		return cfg, nil
	}

	cfg, err := p.store.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrConfigMissing
		}
		return nil, fmt.Errorf("load billing config: %w", err)
	}

	p.fillCache(ctx, cfg)
	return cfg, nil
}

func (p *Provider) Save(ctx context.Context, hourRate decimal.Decimal, term int) (*model.BillingConfigModel, error) {
	// validasi setelah pembulatan: 0.004 jadi 0.00
	hourRate = hourRate.Round(2)
	if !hourRate.IsPositive() || term < 1 {
		return nil, model.ErrConfigInvalid
	}

	cfg, err := p.store.Upsert(ctx, hourRate, term)
	if err != nil {
		return nil, fmt.Errorf("save billing config: %w", err)
	}

	p.replaceCache(ctx, cfg)
	log.Printf("[INFO] billing config diperbarui: hour_rate=%s term=%d", cfg.BillingConfigHourRate, cfg.BillingConfigTerm)
	return cfg, nil
}

func (p *Provider) Invalidate(ctx context.Context) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Del(ctx, cacheKey).Err(); err != nil {
		log.Printf("[WARN] gagal invalidate cache billing config: %v", err)
	}
}

func (p *Provider) fromCache(ctx context.Context) (*model.BillingConfigModel, bool) {
	if p.cache == nil {
		return nil, false
	}
	raw, err := p.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[WARN] redis get %s: %v", cacheKey, err)
		}
		return nil, false
	}
	var cfg model.BillingConfigModel
	if err := sonic.Unmarshal(raw, &cfg); err != nil {
		log.Printf("[WARN] cache billing config rusak, dibuang: %v", err)
		p.Invalidate(ctx)
		return nil, false
	}
	return &cfg, true
}

// fillCache: jalur baca, tidak menimpa nilai yang sudah ada.
func (p *Provider) fillCache(ctx context.Context, cfg *model.BillingConfigModel) {
	if p.cache == nil {
		return
	}
	raw, err := sonic.Marshal(cfg)
	if err != nil {
		return
	}
	if err := p.cache.SetNX(ctx, cacheKey, raw, p.ttl).Err(); err != nil {
		log.Printf("[WARN] redis setnx %s: %v", cacheKey, err)
	}
}

// replaceCache: jalur tulis. Gagal set → key dihapus supaya pembaca berikutnya ke DB.
func (p *Provider) replaceCache(ctx context.Context, cfg *model.BillingConfigModel) {
	if p.cache == nil {
		return
	}
	raw, err := sonic.Marshal(cfg)
	if err == nil {
		err = p.cache.Set(ctx, cacheKey, raw, p.ttl).Err()
	}
	if err != nil {
		log.Printf("[WARN] redis set %s: %v", cacheKey, err)
		p.Invalidate(ctx)
	}
}
