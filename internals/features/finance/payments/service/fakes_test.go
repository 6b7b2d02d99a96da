package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	billingModel "akademiku_backend/internals/features/finance/billing_configs/model"
	"akademiku_backend/internals/features/finance/payments/gateway"
	"akademiku_backend/internals/features/finance/payments/model"
	"akademiku_backend/internals/features/finance/payments/repository"
)

/* ===================== config ===================== */

type fakeConfigs struct {
	cfg *billingModel.BillingConfigModel
	err error
}

func (f *fakeConfigs) Current(ctx context.Context) (*billingModel.BillingConfigModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.cfg == nil {
		return nil, model.ErrConfigMissing
	}
	cp := *f.cfg
	return &cp, nil
}

func configOf(rate int64, term int) *fakeConfigs {
	return &fakeConfigs{cfg: &billingModel.BillingConfigModel{
		BillingConfigHourRate: decimal.NewFromInt(rate),
		BillingConfigTerm:     term,
	}}
}

/* ===================== catalog ===================== */

type fakeCatalog struct {
	students map[uuid.UUID]model.StudentRef
	enrolled map[uuid.UUID][]model.CourseDetail
	courses  map[uuid.UUID]model.CourseDetail
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		students: map[uuid.UUID]model.StudentRef{},
		enrolled: map[uuid.UUID][]model.CourseDetail{},
		courses:  map[uuid.UUID]model.CourseDetail{},
	}
}

func (f *fakeCatalog) addStudent(name string, level int, hours ...int) model.StudentRef {
	s := model.StudentRef{ID: uuid.New(), UserName: name, FullName: name, Level: level}
	f.students[s.ID] = s
	for i, h := range hours {
		c := model.CourseDetail{ID: uuid.New(), Code: name + "-" + string(rune('A'+i)), Title: "Course " + string(rune('A'+i)), Hours: h}
		f.courses[c.ID] = c
		f.enrolled[s.ID] = append(f.enrolled[s.ID], c)
	}
	return s
}

func (f *fakeCatalog) FindStudentByID(ctx context.Context, id uuid.UUID) (*model.StudentRef, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (f *fakeCatalog) FindStudentByName(ctx context.Context, name string) (*model.StudentRef, error) {
	for _, s := range f.students {
		if strings.EqualFold(s.UserName, name) {
			cp := s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalog) ListEnrolledCourses(ctx context.Context, studentID uuid.UUID) ([]model.CourseDetail, error) {
	return f.enrolled[studentID], nil
}

func (f *fakeCatalog) FindCoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.CourseDetail, error) {
	out := []model.CourseDetail{}
	for _, id := range ids {
		if c, ok := f.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

/* ===================== ledger (in-memory, semantik sama dengan SQL) ===================== */

type ledgerKey struct {
	student uuid.UUID
	level   int
	term    int
}

type memLedger struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*model.PaymentRecordModel
	byKey map[ledgerKey]uuid.UUID

	conflicts   int // berapa kali UpsertUnpaid pura-pura kena 23505
	upsertCalls int
	markErr     error
	findErr     error
}

func newMemLedger() *memLedger {
	return &memLedger{
		rows:  map[uuid.UUID]*model.PaymentRecordModel{},
		byKey: map[ledgerKey]uuid.UUID{},
	}
}

func (l *memLedger) UpsertUnpaid(ctx context.Context, in repository.UpsertInput) (*model.PaymentRecordModel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.upsertCalls++
	if l.conflicts > 0 {
		l.conflicts--
		return nil, model.ErrLedgerConflict
	}

	k := ledgerKey{in.StudentID, in.Level, in.Term}
	now := time.Now()
	if id, ok := l.byKey[k]; ok {
		r := l.rows[id]
		if r.PaymentRecordIsPaid {
			cp := *r
			return &cp, model.ErrAlreadyPaid
		}
		r.PaymentRecordCourses = append([]model.CourseSnapshot(nil), in.Courses...)
		r.PaymentRecordTotalHours = in.TotalHours
		r.PaymentRecordHourRate = in.HourRate
		r.PaymentRecordTotalAmount = in.TotalAmount
		r.PaymentRecordUpdatedAt = now
		cp := *r
		return &cp, nil
	}

	r := &model.PaymentRecordModel{
		PaymentRecordID:          uuid.New(),
		PaymentRecordStudentID:   in.StudentID,
		PaymentRecordLevel:       in.Level,
		PaymentRecordTerm:        in.Term,
		PaymentRecordCourses:     append([]model.CourseSnapshot(nil), in.Courses...),
		PaymentRecordTotalHours:  in.TotalHours,
		PaymentRecordHourRate:    in.HourRate,
		PaymentRecordTotalAmount: in.TotalAmount,
		PaymentRecordCreatedAt:   now,
		PaymentRecordUpdatedAt:   now,
	}
	l.rows[r.PaymentRecordID] = r
	l.byKey[k] = r.PaymentRecordID
	cp := *r
	return &cp, nil
}

func (l *memLedger) AttachSession(ctx context.Context, id uuid.UUID, provider, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.rows[id]; ok && !r.PaymentRecordIsPaid {
		r.PaymentRecordProvider = provider
		r.PaymentRecordCheckoutSessionID = sessionID
	}
	return nil
}

func (l *memLedger) MarkPaid(ctx context.Context, id uuid.UUID, orderRef string, settled *decimal.Decimal) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.markErr != nil {
		return false, l.markErr
	}
	r, ok := l.rows[id]
	if !ok {
		return false, model.ErrOrphanNotification
	}
	if r.PaymentRecordIsPaid {
		return false, nil
	}
	now := time.Now()
	r.PaymentRecordIsPaid = true
	r.PaymentRecordOrderReference = orderRef
	if settled != nil {
		r.PaymentRecordTotalAmount = *settled
	}
	r.PaymentRecordPaidAt = &now
	return true, nil
}

func (l *memLedger) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentRecordModel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.findErr != nil {
		return nil, l.findErr
	}
	r, ok := l.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (l *memLedger) FindByKey(ctx context.Context, studentID uuid.UUID, level, term int) (*model.PaymentRecordModel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.byKey[ledgerKey{studentID, level, term}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l.rows[id]
	return &cp, nil
}

func (l *memLedger) ListStaleSessions(ctx context.Context, before time.Time, limit int) ([]model.PaymentRecordModel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []model.PaymentRecordModel{}
	for _, r := range l.rows {
		if !r.PaymentRecordIsPaid && r.PaymentRecordCheckoutSessionID != "" && r.PaymentRecordUpdatedAt.Before(before) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentRecordUpdatedAt.Before(out[j].PaymentRecordUpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *memLedger) List(ctx context.Context, f repository.ListFilter, offset, limit int) ([]model.PaymentRecordModel, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []model.PaymentRecordModel{}
	for _, r := range l.rows {
		if f.IsPaid != nil && r.PaymentRecordIsPaid != *f.IsPaid {
			continue
		}
		if f.Level != nil && r.PaymentRecordLevel != *f.Level {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (l *memLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

/* ===================== gateway ===================== */

type fakeGateway struct {
	mu       sync.Mutex
	requests []gateway.CheckoutRequest
	err      error
}

func (g *fakeGateway) Provider() string { return model.ProviderStripe }

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	id := "cs_" + req.PaymentRecordID.String()[:8]
	return &gateway.CheckoutSession{Provider: model.ProviderStripe, SessionID: id, URL: "https://pay.test/" + id}, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

/* ===================== webhook processor ===================== */

type fakeProcessor struct {
	provider string
	parse    func(body []byte, headers map[string]string) (*gateway.NormalizedEvent, error)
}

func (p *fakeProcessor) Provider() string { return p.provider }

func (p *fakeProcessor) VerifyAndParse(body []byte, headers map[string]string) (*gateway.NormalizedEvent, error) {
	return p.parse(body, headers)
}

/* ===================== publisher ===================== */

type fakePublisher struct {
	mu     sync.Mutex
	events []model.PaymentPaidEvent
	err    error
}

func (p *fakePublisher) PublishPaymentPaid(ctx context.Context, ev model.PaymentPaidEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func studentPrincipal(s model.StudentRef, level int) Principal {
	return Principal{StudentID: s.ID, Role: "student", Level: level, HasLevel: true}
}
