package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers: []string{"localhost:9092", "localhost:9093"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.brokers) != 2 {
		t.Fatalf("expected 2 brokers, got %d", len(p.brokers))
	}
	if p.brokers[0] != "localhost:9092" {
		t.Errorf("expected broker localhost:9092, got %s", p.brokers[0])
	}
	if p.transport != nil {
		t.Error("expected default transport when TLS and SASL are disabled")
	}
	if len(p.writers) != 0 {
		t.Errorf("expected empty writers map, got %d entries", len(p.writers))
	}
}

func TestNewProducerWithTLSAndSASL(t *testing.T) {
	p, err := NewProducer(Config{
		Brokers:       []string{"kafka:9093"},
		TLS:           true,
		SASLEnabled:   true,
		SASLMechanism: "SCRAM-SHA-512",
		SASLUsername:  "ledger",
		SASLPassword:  "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.transport == nil {
		t.Fatal("expected custom transport")
	}
	if p.transport.TLS == nil {
		t.Error("expected TLS config on transport")
	}
	if p.transport.SASL == nil {
		t.Error("expected SASL mechanism on transport")
	}
}

func TestNewProducerRejectsUnknownSASL(t *testing.T) {
	_, err := NewProducer(Config{
		Brokers:       []string{"kafka:9093"},
		SASLEnabled:   true,
		SASLMechanism: "GSSAPI",
	})
	if err == nil {
		t.Fatal("expected error for unsupported SASL mechanism")
	}
}

func TestResolveSASLPlainByDefault(t *testing.T) {
	mech, err := resolveSASL(Config{SASLUsername: "u", SASLPassword: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mech.Name() != "PLAIN" {
		t.Errorf("expected PLAIN mechanism, got %s", mech.Name())
	}
}

func TestGetOrCreateWriter(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w1 := p.getOrCreateWriter("topic-a")
	if w1 == nil {
		t.Fatal("expected non-nil writer")
	}
	if _, ok := w1.Balancer.(*kafkago.Hash); !ok {
		t.Errorf("expected hash balancer so events for one loan stay ordered, got %T", w1.Balancer)
	}

	// Same topic should return the same writer instance.
	if w2 := p.getOrCreateWriter("topic-a"); w1 != w2 {
		t.Error("expected same writer instance for same topic")
	}

	w3 := p.getOrCreateWriter("topic-b")
	if w1 == w3 {
		t.Error("expected different writer instance for different topic")
	}
	if len(p.writers) != 2 {
		t.Errorf("expected 2 writers, got %d", len(p.writers))
	}
}

func TestProducerClose(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = p.getOrCreateWriter("topic-a")
	_ = p.getOrCreateWriter("topic-b")

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}
	if len(p.writers) != 0 {
		t.Errorf("expected 0 writers after close, got %d", len(p.writers))
	}
}

func TestWriterSettings(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := p.getOrCreateWriter("topic-a")
	if w.BatchTimeout != DefaultBatchTimeout || w.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("expected default timeouts, got batch=%s write=%s", w.BatchTimeout, w.WriteTimeout)
	}
	if w.RequiredAcks != kafkago.RequireAll {
		t.Errorf("expected RequireAll acks, got %v", w.RequiredAcks)
	}

	p, err = NewProducer(Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "microcred",
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.transport == nil || p.transport.ClientID != "microcred" {
		t.Fatal("expected transport carrying the client ID")
	}
	w = p.getOrCreateWriter("topic-a")
	if w.WriteTimeout != 3*time.Second {
		t.Errorf("expected 3s write timeout, got %s", w.WriteTimeout)
	}
	if w.Transport != p.transport {
		t.Error("expected writer to use the producer transport")
	}
}
