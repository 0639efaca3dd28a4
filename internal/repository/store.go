package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"support-agent/internal/domain"
)

// Option configures the fields shared by every store implementation.
type Option func(*base)

type base struct {
	now       func() time.Time
	newID     func() string
	retention time.Duration
}

func newBase(opts []Option) base {
	b := base{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// WithClock overrides the timestamp source used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator overrides UUID generation.
func WithIDGenerator(newID func() string) Option {
	return func(b *base) {
		if newID != nil {
			b.newID = newID
		}
	}
}

// WithRetention makes DynamoStore write a ttl attribute so the table expires
// records after d. Zero keeps records forever.
func WithRetention(d time.Duration) Option {
	return func(b *base) {
		b.retention = d
	}
}

// newInteraction stamps a new record. Question and answer must both be present.
func (b base) newInteraction(question, answer string) (domain.Interaction, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return domain.Interaction{}, errors.New("repository: question and answer are required")
	}
	return domain.Interaction{
		ID:        b.newID(),
		Question:  question,
		Answer:    answer,
		CreatedAt: b.now().UTC(),
	}, nil
}
