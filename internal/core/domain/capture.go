package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// CaptureTimeLayout is the timestamp format written to the capture log.
const CaptureTimeLayout = "2006-01-02 15:04:05"

// DefaultCaptureValue is recorded when the payload sent no value.
const DefaultCaptureValue = "none"

// Capture is one value received by the collector.
type Capture struct {
	ID         string    `json:"id"`
	Value      string    `json:"value"`
	RemoteIP   string    `json:"remote_ip"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Referer    string    `json:"referer,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// NewCapture creates a capture stamped with the current time and a ULID.
func NewCapture(value string, c Client, referer string) (*Capture, error) {
	if value == "" {
		value = DefaultCaptureValue
	}

	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return nil, ErrInternalServer.WithCause(err)
	}

	return &Capture{
		ID:         strings.ToLower(id.String()),
		Value:      value,
		RemoteIP:   c.IP,
		UserAgent:  c.UserAgent,
		Referer:    referer,
		CapturedAt: now,
	}, nil
}

// Timestamp formats CapturedAt with CaptureTimeLayout.
func (c *Capture) Timestamp() string {
	return c.CapturedAt.Format(CaptureTimeLayout)
}

// LogLine renders the capture as one line of the capture log.
func (c *Capture) LogLine() string {
	return fmt.Sprintf("[%s] %s\n", c.Timestamp(), c.Value)
}
