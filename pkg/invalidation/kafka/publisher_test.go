package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mohammed-shakir/unl-locationid/internal/invalidation"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPublish_FillsDefaultsAndSends(t *testing.T) {
	reg := prometheus.NewRegistry()
	mp := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	var sent invalidation.Event
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		return json.Unmarshal(val, &sent)
	})

	p := NewWithProducer(mp, "unl-words-invalidation", Options{Logger: quiet(), Register: reg})
	t.Cleanup(func() { _ = p.Close() })

	ev, err := p.Publish(context.Background(), invalidation.Event{
		Op:          invalidation.OpRemap,
		LocationIDs: []string{"u4pruy"},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ev.Version != 1 || ev.ID == "" || ev.TS.IsZero() {
		t.Fatalf("defaults not filled: %+v", ev)
	}
	if sent.ID != ev.ID || sent.Op != invalidation.OpRemap || len(sent.LocationIDs) != 1 {
		t.Fatalf("sent %+v want %+v", sent, ev)
	}

	want := `
# HELP invalidation_published_total Invalidation events sent to Kafka by result.
# TYPE invalidation_published_total counter
invalidation_published_total{op="remap",result="ok"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "invalidation_published_total"); err != nil {
		t.Fatalf("metrics: %v", err)
	}
}

func TestPublish_RejectsInvalidEvent(t *testing.T) {
	mp := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	p := NewWithProducer(mp, "t", Options{Logger: quiet()})
	t.Cleanup(func() { _ = p.Close() })

	// no targets
	if _, err := p.Publish(context.Background(), invalidation.Event{Op: invalidation.OpDelete}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestPublish_BrokerError(t *testing.T) {
	mp := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	mp.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)
	p := NewWithProducer(mp, "t", Options{Logger: quiet()})
	t.Cleanup(func() { _ = p.Close() })

	_, err := p.Publish(context.Background(), invalidation.Event{
		Op:    invalidation.OpDelete,
		Words: []string{"index.home.raft"},
	})
	if !errors.Is(err, sarama.ErrNotLeaderForPartition) {
		t.Fatalf("err=%v want ErrNotLeaderForPartition", err)
	}
}

func TestPublisherConfig_SASL(t *testing.T) {
	cfg := PublisherConfig{
		Brokers: []string{"localhost:9092"},
		SASL:    SASLConfig{Enable: true, Username: "u", Password: "p"},
	}
	sc, err := cfg.saramaConfig()
	if err != nil {
		t.Fatalf("saramaConfig: %v", err)
	}
	if !sc.Net.SASL.Enable || sc.Net.SASL.Mechanism != sarama.SASLTypePlaintext {
		t.Fatalf("SASL not configured: %+v", sc.Net.SASL)
	}

	cfg.SASL.Mechanism = "GSSAPI-ish"
	if _, err := cfg.saramaConfig(); err == nil {
		t.Fatalf("expected unsupported mechanism error")
	}
}

func TestPublisherConfig_TLSMissingCA(t *testing.T) {
	cfg := PublisherConfig{TLS: TLSConfig{Enable: true, CaFile: t.TempDir() + "/missing.pem"}}
	_, err := cfg.saramaConfig()
	if err == nil || !strings.Contains(err.Error(), "CA file") {
		t.Fatalf("err=%v want CA file error", err)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " a:1, b:2 ,")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_SASL_ENABLE", "TRUE")
	cfg := FromEnv()
	if fmt.Sprint(cfg.Brokers) != "[a:1 b:2]" {
		t.Fatalf("brokers=%v", cfg.Brokers)
	}
	if cfg.Topic != "unl-words-invalidation" || !cfg.SASL.Enable {
		t.Fatalf("cfg=%+v", cfg)
	}
}
