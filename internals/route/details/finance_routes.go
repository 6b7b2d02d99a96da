package details

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"akademiku_backend/internals/configs"
	billingController "akademiku_backend/internals/features/finance/billing_configs/controller"
	billingRepo "akademiku_backend/internals/features/finance/billing_configs/repository"
	billingRoute "akademiku_backend/internals/features/finance/billing_configs/route"
	billingService "akademiku_backend/internals/features/finance/billing_configs/service"
	paymentController "akademiku_backend/internals/features/finance/payments/controller"
	"akademiku_backend/internals/features/finance/payments/gateway"
	paymentModel "akademiku_backend/internals/features/finance/payments/model"
	paymentRepo "akademiku_backend/internals/features/finance/payments/repository"
	paymentRoute "akademiku_backend/internals/features/finance/payments/route"
	"akademiku_backend/internals/features/finance/payments/scheduler"
	paymentService "akademiku_backend/internals/features/finance/payments/service"
)

type FinanceDeps struct {
	DB       *gorm.DB
	Redis    *redis.Client // nil = tanpa cache
	Settings configs.PaymentSettings

	// nil = event payment.paid tidak dikirim
	Publisher paymentService.PaidEventPublisher
}

// FinanceModule merakit billing config + payment lifecycle sekali saat bootstrap.
type FinanceModule struct {
	Billing  *billingController.BillingConfigController
	Payments *paymentController.PaymentController
	Gate     *paymentService.AccessGate
	Sweeper  *scheduler.PendingSweeper
}

func NewFinanceModule(d FinanceDeps) *FinanceModule {
	s := d.Settings

	cfgProvider := billingService.NewProvider(billingRepo.NewBillingConfigRepository(d.DB), d.Redis, s.ConfigCacheTTL)
	ledger := paymentRepo.NewPaymentRecordRepository(d.DB)
	catalog := paymentRepo.NewCatalogRepository(d.DB)

	// gateway aktif untuk checkout baru; webhook & lookup menerima semua provider yang dikonfigurasi
	var (
		stripeGw   *gateway.StripeGateway
		midtransGw *gateway.MidtransGateway
		processors []gateway.WebhookProcessor
		lookups    []gateway.SessionLookup
	)
	if s.StripeSecretKey != "" {
		stripeGw = gateway.NewStripeGateway(s.StripeSecretKey, s.Currency, nil)
		lookups = append(lookups, stripeGw)
		processors = append(processors, gateway.NewStripeWebhookProcessor(s.StripeWebhookSecret, nil))
	}
	if s.MidtransServerKey != "" {
		midtransGw = gateway.NewMidtransGateway(s.MidtransServerKey, s.MidtransUseProd)
		lookups = append(lookups, midtransGw)
		processors = append(processors, gateway.NewMidtransWebhookProcessor(s.MidtransServerKey, nil))
	}

	var active gateway.CheckoutGateway
	switch {
	case s.Gateway == configs.GatewayMidtrans && midtransGw != nil:
		active = midtransGw
	case stripeGw != nil:
		active = stripeGw
	default:
		log.Printf("❌ Gateway %s belum dikonfigurasi, checkout akan gagal", s.Gateway)
		active = unconfiguredGateway{provider: s.Gateway}
	}
	log.Printf("💳 Checkout gateway: %s", active.Provider())

	checkout := &paymentService.CheckoutService{
		Configs:    cfgProvider,
		Catalog:    catalog,
		Ledger:     ledger,
		Gateway:    active,
		SuccessURL: s.SuccessURL,
		CancelURL:  s.CancelURL,
	}
	gate := &paymentService.AccessGate{Configs: cfgProvider, Catalog: catalog, Ledger: ledger}
	admin := &paymentService.AdminLookup{Catalog: catalog, Ledger: ledger}
	reconciler := paymentService.NewReconciler(ledger, d.Publisher, active.Provider(), processors...)

	sweeper := scheduler.NewPendingSweeper(ledger, reconciler, scheduler.SweeperConfig{
		Interval:    s.SweeperInterval,
		StaleAfter:  s.SweeperStaleAfter,
		Concurrency: s.SweeperConcurrency,
		BatchSize:   s.SweeperBatchSize,
	}, lookups...)

	return &FinanceModule{
		Billing:  billingController.NewBillingConfigController(cfgProvider),
		Payments: paymentController.NewPaymentController(checkout, gate, reconciler, admin),
		Gate:     gate,
		Sweeper:  sweeper,
	}
}

// Base path: /api (tanpa JWT)
func (m *FinanceModule) PublicRoutes(r fiber.Router) {
	paymentRoute.PaymentWebhookRoutes(r, m.Payments)
}

// Base path: /api/u
func (m *FinanceModule) UserRoutes(r fiber.Router) {
	paymentRoute.PaymentUserRoutes(r, m.Payments, m.Gate)
}

// Base path: /api/a
func (m *FinanceModule) AdminRoutes(r fiber.Router) {
	billingRoute.BillingConfigAdminRoutes(r, m.Billing)
	paymentRoute.PaymentAdminRoutes(r, m.Payments)
}

// unconfiguredGateway menolak semua checkout; status & webhook tetap jalan.
type unconfiguredGateway struct{ provider string }

func (g unconfiguredGateway) Provider() string { return g.provider }

func (g unconfiguredGateway) CreateCheckoutSession(context.Context, gateway.CheckoutRequest) (*gateway.CheckoutSession, error) {
	return nil, fmt.Errorf("%w: %s belum dikonfigurasi", paymentModel.ErrGatewayUnavailable, g.provider)
}
