package queue

import (
	"testing"

	"github.com/plpainel/tokenapi/internal/config"
)

func TestBuildServerConfigCriticalOutweighsDefault(t *testing.T) {
	_, cfg := BuildServerConfig(nil)
	if cfg.Queues[CriticalQueue] <= cfg.Queues[DefaultQueue] {
		t.Fatalf("critical weight %d must exceed default weight %d",
			cfg.Queues[CriticalQueue], cfg.Queues[DefaultQueue])
	}
}

func TestBuildServerConfigHonorsOverrides(t *testing.T) {
	qc := &config.QueueConfig{
		Concurrency: 3,
		Queues:      map[string]int{"solo": 1},
	}
	_, cfg := BuildServerConfig(qc)
	if cfg.Concurrency != 3 {
		t.Fatalf("concurrency = %d, want 3", cfg.Concurrency)
	}
	if len(cfg.Queues) != 1 || cfg.Queues["solo"] != 1 {
		t.Fatalf("queues = %v, want configured map", cfg.Queues)
	}
}
