package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"akademiku_backend/internals/features/finance/payments/gateway"
	"akademiku_backend/internals/features/finance/payments/model"
	"akademiku_backend/internals/features/finance/payments/service"
)

// StaleSource: antrian sesi unpaid milik ledger.
// Setiap baris yang dicek harus keluar dari antrian (release atau mark),
// kalau tidak batch berikutnya berisi baris yang sama lagi.
type StaleSource interface {
	ListStaleSessions(ctx context.Context, before time.Time, limit int) ([]model.PaymentRecordModel, error)
	ReleaseSession(ctx context.Context, id uuid.UUID, sessionID string) (bool, error)
	MarkSessionChecked(ctx context.Context, id uuid.UUID, sessionID string) error
}

type EventApplier interface {
	Apply(ctx context.Context, ev *gateway.NormalizedEvent) (service.Outcome, error)
}

type SweeperConfig struct {
	Interval    time.Duration
	StaleAfter  time.Duration
	Concurrency int
	BatchSize   int
}

// PendingSweeper menanyakan status sesi unpaid yang webhook-nya tidak pernah datang,
// lalu menerapkan hasilnya lewat Reconciler yang sama dengan webhook.
// Tidak pernah membuat sesi baru.
type PendingSweeper struct {
	source  StaleSource
	applier EventApplier
	lookups map[string]gateway.SessionLookup
	cfg     SweeperConfig
}

func NewPendingSweeper(source StaleSource, applier EventApplier, cfg SweeperConfig, lookups ...gateway.SessionLookup) *PendingSweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 30 * time.Minute
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	m := make(map[string]gateway.SessionLookup, len(lookups))
	for _, l := range lookups {
		if l != nil {
			m[l.Provider()] = l
		}
	}
	return &PendingSweeper{source: source, applier: applier, lookups: m, cfg: cfg}
}

type SweepResult struct {
	Checked  int
	Paid     int
	Released int // sesi expired/gagal yang dilepas
	Failed   int
}

// Start blocking sampai ctx selesai. Jalankan di goroutine sendiri.
func (s *PendingSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	log.Printf("[SWEEPER] started, interval=%s stale_after=%s", s.cfg.Interval, s.cfg.StaleAfter)

	for {
		select {
		case <-ctx.Done():
			log.Println("[SWEEPER] stopped")
			return
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				log.Printf("[SWEEPER ERROR] %v", err)
				continue
			}
			if res.Checked > 0 {
				log.Printf("[SWEEPER] checked=%d paid=%d released=%d failed=%d", res.Checked, res.Paid, res.Released, res.Failed)
			}
		}
	}
}

// RunOnce: satu putaran. Error per record hanya dicatat; error list dikembalikan.
func (s *PendingSweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	rows, err := s.source.ListStaleSessions(ctx, time.Now().Add(-s.cfg.StaleAfter), s.cfg.BatchSize)
	if err != nil {
		return SweepResult{}, err
	}

	var paid, released, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i := range rows {
		rec := rows[i]
		g.Go(func() error {
			out, kind, err := s.syncOne(gctx, &rec)
			switch {
			case err != nil:
				atomic.AddInt64(&failed, 1)
				log.Printf("[SWEEPER] record=%s session=%s: %v", rec.PaymentRecordID, rec.PaymentRecordCheckoutSessionID, err)
				s.markChecked(gctx, &rec)
			case out == service.OutcomePaid:
				atomic.AddInt64(&paid, 1)
			case out == service.OutcomeAlreadyPaid:
				// baris lunas sudah keluar dari antrian
			case kind == gateway.EventExpired || kind == gateway.EventFailed:
				ok, rErr := s.source.ReleaseSession(gctx, rec.PaymentRecordID, rec.PaymentRecordCheckoutSessionID)
				if rErr != nil {
					log.Printf("[SWEEPER] release record=%s: %v", rec.PaymentRecordID, rErr)
					s.markChecked(gctx, &rec)
				} else if ok {
					atomic.AddInt64(&released, 1)
				}
			default:
				s.markChecked(gctx, &rec)
			}
			return nil
		})
	}
	_ = g.Wait()

	return SweepResult{Checked: len(rows), Paid: int(paid), Released: int(released), Failed: int(failed)}, nil
}

func (s *PendingSweeper) markChecked(ctx context.Context, rec *model.PaymentRecordModel) {
	if err := s.source.MarkSessionChecked(ctx, rec.PaymentRecordID, rec.PaymentRecordCheckoutSessionID); err != nil {
		log.Printf("[SWEEPER] mark checked record=%s: %v", rec.PaymentRecordID, err)
	}
}

func (s *PendingSweeper) syncOne(ctx context.Context, rec *model.PaymentRecordModel) (service.Outcome, gateway.EventKind, error) {
	lookup, ok := s.lookups[rec.PaymentRecordProvider]
	if !ok {
		return "", "", model.ErrUnsupportedProvider
	}
	ev, err := lookup.LookupSession(ctx, rec.PaymentRecordCheckoutSessionID)
	if err != nil {
		return "", "", err
	}
	// metadata sesi bisa kosong; record-nya sudah pasti
	if ev.PaymentRecordID == "" {
		ev.PaymentRecordID = rec.PaymentRecordID.String()
	}
	out, err := s.applier.Apply(ctx, ev)
	return out, ev.Kind, err
}
