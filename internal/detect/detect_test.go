package detect

import (
	"testing"

	"go.uber.org/zap"

	"cardsight/internal/config"
)

func TestNewGeometricStrategy(t *testing.T) {
	d, err := New(config.DetectorConfig{Strategy: "geometric"}, zap.NewNop())
	if err != nil {
		t.Fatalf("New(geometric): %v", err)
	}
	if _, ok := d.(*Geometric); !ok {
		t.Errorf("got %T, want *Geometric", d)
	}
}

func TestNewUnknownStrategy(t *testing.T) {
	if _, err := New(config.DetectorConfig{Strategy: "magic"}, zap.NewNop()); err == nil {
		t.Error("unknown strategy accepted, want error")
	}
}
