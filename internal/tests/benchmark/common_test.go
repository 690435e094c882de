package benchmark

import (
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/storage/memory"
	"github.com/yndnr/sessionlab-go/pkg/token"
)

// SmallSessionCounts keeps CI runs short.
var SmallSessionCounts = []int{1000, 5000, 10000}

var benchClient = domain.Client{IP: "192.168.1.1", UserAgent: "BenchmarkTest/1.0"}

func newSessionID(b *testing.B) string {
	b.Helper()
	id, err := token.Generate()
	if err != nil {
		b.Fatalf("Generate failed: %v", err)
	}
	return id
}

// createSession creates a bound session that expires in ttl.
func createSession(b *testing.B, username string, ttl time.Duration) *domain.Session {
	b.Helper()
	s := domain.NewSession(newSessionID(b), username)
	s.Bind(benchClient)
	s.SetExpiration(ttl)
	return s
}

// prefillStore stores count sessions and returns them.
func prefillStore(ctx context.Context, b *testing.B, store *memory.Store, count int) []*domain.Session {
	b.Helper()
	sessions := make([]*domain.Session, count)
	for i := 0; i < count; i++ {
		sessions[i] = createSession(b, fmt.Sprintf("user-%d", i%100), time.Hour)
		if err := store.Create(ctx, sessions[i]); err != nil {
			b.Fatalf("Create failed: %v", err)
		}
	}
	return sessions
}

func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

func runWithSessionCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("sessions_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
