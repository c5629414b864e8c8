package usecases

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
	"github.com/mathieuadams/ukcrimerepository/internal/core/ports"
	"github.com/mathieuadams/ukcrimerepository/internal/pkg/metrics"
)

const (
	maxContactName    = 100
	maxContactEmail   = 254
	maxContactSubject = 200
	maxContactMessage = 5000

	defaultPublishTimeout = 2 * time.Second
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	errContactMissing = errors.New("all fields are required")
	errContactEmail   = errors.New("please provide a valid email address")
)

// ContactService accepts contact-form submissions. Nothing is emailed; the
// message is logged and, when a notifier is configured, published.
type ContactService struct {
	notifier       ports.ContactNotifier
	publishTimeout time.Duration
	now            func() time.Time
}

// NewContactService creates a ContactService. notifier may be nil.
func NewContactService(notifier ports.ContactNotifier) *ContactService {
	return &ContactService{notifier: notifier, publishTimeout: defaultPublishTimeout, now: time.Now}
}

// WithPublishTimeout bounds how long a submission waits on the notifier.
func (s *ContactService) WithPublishTimeout(d time.Duration) *ContactService {
	if d > 0 {
		s.publishTimeout = d
	}
	return s
}

// Submit validates and sanitizes a form.
func (s *ContactService) Submit(ctx context.Context, form domain.ContactForm) (*domain.ContactMessage, error) {
	name := strings.TrimSpace(form.Name)
	email := strings.TrimSpace(form.Email)
	subject := strings.TrimSpace(form.Subject)
	message := strings.TrimSpace(form.Message)

	if name == "" || email == "" || subject == "" || message == "" {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return nil, domain.BadRequest(&domain.ValidationError{Err: errContactMissing})
	}
	if !emailPattern.MatchString(email) {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return nil, domain.BadRequest(&domain.ValidationError{Field: "email", Value: email, Err: errContactEmail})
	}

	msg := &domain.ContactMessage{
		Name:       sanitize(name, maxContactName),
		Email:      sanitize(email, maxContactEmail),
		Subject:    sanitize(subject, maxContactSubject),
		Message:    sanitize(message, maxContactMessage),
		ReceivedAt: s.now().UTC(),
	}

	slog.InfoContext(ctx, "contact form submitted",
		"name", msg.Name, "email", msg.Email, "subject", msg.Subject, "message_length", len(msg.Message))

	if s.notifier != nil {
		pubCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
		err := s.notifier.PublishContact(pubCtx, msg)
		cancel()
		if err != nil {
			slog.WarnContext(ctx, "contact notification failed", "error", err)
		}
	}

	metrics.ContactSubmissions.WithLabelValues("accepted").Inc()
	return msg, nil
}

// sanitize truncates s to limit runes and drops angle brackets.
func sanitize(s string, limit int) string {
	r := []rune(s)
	if len(r) > limit {
		r = r[:limit]
	}
	return strings.NewReplacer("<", "", ">", "").Replace(string(r))
}
