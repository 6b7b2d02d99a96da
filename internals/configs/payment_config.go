package configs

import (
	"log"
	"strings"
	"time"
)

const (
	GatewayStripe   = "stripe"
	GatewayMidtrans = "midtrans"
)

// PaymentSettings dibangun sekali saat bootstrap lalu di-inject ke service.
type PaymentSettings struct {
	Gateway  string
	Currency string

	StripeSecretKey     string
	StripeWebhookSecret string

	MidtransServerKey string
	MidtransUseProd   bool

	SuccessURL string
	CancelURL  string

	ConfigCacheTTL time.Duration

	SweeperInterval    time.Duration
	SweeperStaleAfter  time.Duration
	SweeperConcurrency int
	SweeperBatchSize   int

	KafkaBrokers []string
	KafkaTopic   string
}

func LoadPaymentSettings() PaymentSettings {
	s := PaymentSettings{
		Gateway:  strings.ToLower(strings.TrimSpace(GetEnv("PAYMENT_GATEWAY", GatewayStripe))),
		Currency: strings.ToLower(strings.TrimSpace(GetEnv("PAYMENT_CURRENCY", "usd"))),

		StripeSecretKey:     GetEnv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: GetEnv("STRIPE_WEBHOOK_SECRET"),

		MidtransServerKey: GetEnv("MIDTRANS_SERVER_KEY"),
		MidtransUseProd:   GetEnvBool("MIDTRANS_USE_PROD", false),

		SuccessURL: GetEnv("CHECKOUT_SUCCESS_URL", "http://localhost:5173/payment/success"),
		CancelURL:  GetEnv("CHECKOUT_CANCEL_URL", "http://localhost:5173/payment/cancel"),

		ConfigCacheTTL: GetEnvDuration("BILLING_CONFIG_CACHE_TTL", 10*time.Minute),

		SweeperInterval:    GetEnvDuration("SWEEPER_INTERVAL", 10*time.Minute),
		SweeperStaleAfter:  GetEnvDuration("SWEEPER_STALE_AFTER", 30*time.Minute),
		SweeperConcurrency: GetEnvInt("SWEEPER_CONCURRENCY", 4),
		SweeperBatchSize:   GetEnvInt("SWEEPER_BATCH_SIZE", 50),

		KafkaBrokers: splitCSV(GetEnv("KAFKA_BROKERS")),
		KafkaTopic:   GetEnv("KAFKA_PAYMENT_TOPIC", "payment.paid"),
	}

	switch s.Gateway {
	case GatewayStripe:
		if s.StripeSecretKey == "" || s.StripeWebhookSecret == "" {
			log.Println("❌ STRIPE_SECRET_KEY / STRIPE_WEBHOOK_SECRET belum diset!")
		}
	case GatewayMidtrans:
		if s.MidtransServerKey == "" {
			log.Println("❌ MIDTRANS_SERVER_KEY belum diset!")
		}
	default:
		log.Printf("⚠️ PAYMENT_GATEWAY=%q tidak dikenal, fallback ke %s", s.Gateway, GatewayStripe)
		s.Gateway = GatewayStripe
	}
	if s.SweeperConcurrency <= 0 {
		s.SweeperConcurrency = 1
	}
	if s.SweeperBatchSize <= 0 {
		s.SweeperBatchSize = 50
	}
	return s
}

func splitCSV(v string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
