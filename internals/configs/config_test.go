package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvFallsBackOnEmpty(t *testing.T) {
	t.Setenv("AKADEMIKU_TEST_KEY", "")
	assert.Equal(t, "def", GetEnv("AKADEMIKU_TEST_KEY", "def"))

	t.Setenv("AKADEMIKU_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("AKADEMIKU_TEST_KEY", "def"))
}

func TestLoadPaymentSettings(t *testing.T) {
	t.Setenv("PAYMENT_GATEWAY", "Midtrans")
	t.Setenv("MIDTRANS_SERVER_KEY", "SB-Mid-server-xxx")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("SWEEPER_INTERVAL", "90s")
	t.Setenv("SWEEPER_CONCURRENCY", "-3")
	t.Setenv("BILLING_CONFIG_CACHE_TTL", "nonsense")

	s := LoadPaymentSettings()

	assert.Equal(t, GatewayMidtrans, s.Gateway)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, s.KafkaBrokers)
	assert.Equal(t, 90*time.Second, s.SweeperInterval)
	assert.Equal(t, 1, s.SweeperConcurrency)
	assert.Equal(t, 10*time.Minute, s.ConfigCacheTTL)
	assert.Equal(t, "payment.paid", s.KafkaTopic)
}

func TestLoadPaymentSettingsUnknownGateway(t *testing.T) {
	t.Setenv("PAYMENT_GATEWAY", "paypal")
	s := LoadPaymentSettings()
	assert.Equal(t, GatewayStripe, s.Gateway)
}
