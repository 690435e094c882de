package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/yndnr/sessionlab-go/internal/core/domain"
	"github.com/yndnr/sessionlab-go/internal/telemetry/metric"
)

// CaptureSink persists capture log lines.
type CaptureSink interface {
	Append(line string) error
}

// DefaultRecentCaptures is how many captures are kept in memory.
const DefaultRecentCaptures = 100

// CollectorService records values sent to the collector.
type CollectorService struct {
	sink    CaptureSink
	logger  *slog.Logger
	metrics *metric.Registry

	mu     sync.RWMutex
	recent []*domain.Capture // oldest first
	keep   int
}

// NewCollectorService creates a collector keeping the newest keep captures.
func NewCollectorService(sink CaptureSink, keep int, logger *slog.Logger, metrics *metric.Registry) *CollectorService {
	if keep <= 0 {
		keep = DefaultRecentCaptures
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectorService{
		sink:    sink,
		logger:  logger,
		metrics: metrics,
		keep:    keep,
	}
}

// CaptureRequest describes an incoming capture.
type CaptureRequest struct {
	Value   string
	Client  domain.Client
	Referer string
}

// Capture appends the value to the capture log and remembers it.
func (s *CollectorService) Capture(ctx context.Context, req *CaptureRequest) (*domain.Capture, error) {
	c, err := domain.NewCapture(req.Value, req.Client, req.Referer)
	if err != nil {
		return nil, err
	}

	rule := strings.Repeat("=", 50)
	s.logger.WarnContext(ctx, rule)
	s.logger.WarnContext(ctx, fmt.Sprintf("[%s] CAPTURED: %s", c.Timestamp(), c.Value),
		"capture_id", c.ID,
		"remote_ip", c.RemoteIP,
		"user_agent", c.UserAgent,
		"referer", c.Referer,
	)
	s.logger.WarnContext(ctx, rule)

	if err := s.sink.Append(c.LogLine()); err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}

	s.mu.Lock()
	s.recent = append(s.recent, c)
	if len(s.recent) > s.keep {
		s.recent = append([]*domain.Capture(nil), s.recent[len(s.recent)-s.keep:]...)
	}
	s.mu.Unlock()

	s.metrics.ObserveCapture()
	return c, nil
}

// Recent returns up to n captures, newest first. n <= 0 returns all kept captures.
func (s *CollectorService) Recent(n int) []*domain.Capture {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.recent) {
		n = len(s.recent)
	}

	out := make([]*domain.Capture, 0, n)
	for i := len(s.recent) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.recent[i])
	}
	return out
}
