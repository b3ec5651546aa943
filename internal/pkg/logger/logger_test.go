package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, mode := range []string{"development", "production", "prod", ""} {
		t.Run(mode, func(t *testing.T) {
			l, err := New(mode)
			if err != nil {
				t.Fatalf("New(%q) error = %v", mode, err)
			}
			if l.SugaredLogger == nil {
				t.Fatal("SugaredLogger is nil")
			}
		})
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "catalog").Info("loaded", "products", 3)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "catalog" {
		t.Errorf("component = %v, want catalog", fields["component"])
	}
	if fields["products"] != int64(3) {
		t.Errorf("products = %v, want 3", fields["products"])
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := NewNop()
	if OrNop(l) != l {
		t.Error("OrNop should return the given logger")
	}
}
