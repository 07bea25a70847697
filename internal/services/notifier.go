package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aryansondharva/Aura/internal/observability"
	"github.com/aryansondharva/Aura/internal/platform/logger"
	"github.com/aryansondharva/Aura/internal/platform/sendgrid"
)

const emailSendTimeout = 30 * time.Second

// Notifier delivers email without blocking the caller. Delivery failures are logged only.
type Notifier interface {
	SendAsync(to, subject, htmlBody string)
	// Wait blocks until in-flight sends finish. Used on shutdown and in tests.
	Wait()
}

type notifier struct {
	log    *logger.Logger
	client sendgrid.Client
	wg     sync.WaitGroup
}

// NewNotifier returns a Notifier backed by SendGrid. A nil client gives a notifier that only
// logs what it would have sent.
func NewNotifier(baseLog *logger.Logger, client sendgrid.Client) Notifier {
	return &notifier{log: baseLog.With("service", "Notifier"), client: client}
}

func (n *notifier) SendAsync(to, subject, htmlBody string) {
	if n == nil {
		return
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return
	}
	if n.client == nil {
		n.log.Debug("email disabled; dropping message", "subject", subject)
		observability.Current().IncEmail("skipped")
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("email send panicked", "panic", r)
				observability.Current().IncEmail("error")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), emailSendTimeout)
		defer cancel()
		_, err := n.client.Send(ctx, sendgrid.SendEmailRequest{
			To:         []sendgrid.EmailAddress{{Email: to}},
			Subject:    subject,
			HTML:       htmlBody,
			Categories: []string{"aura"},
		})
		if err != nil {
			n.log.Warn("email send failed", "subject", subject, "error", err)
			observability.Current().IncEmail("error")
			return
		}
		observability.Current().IncEmail("ok")
	}()
}

func (n *notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func quizResultEmail(title string, score float64, status string, next time.Time) (string, string) {
	subject := fmt.Sprintf("Quiz result: %s", title)
	body := fmt.Sprintf(
		"<p>You scored <strong>%.1f/10</strong> on <em>%s</em>.</p><p>Status: %s</p><p>Next review: %s</p>",
		score, html.EscapeString(title), html.EscapeString(status), next.Format("2006-01-02"),
	)
	return subject, body
}

func dueTopicsEmail(titles map[uuid.UUID]string, ids []uuid.UUID) (string, string) {
	var b strings.Builder
	b.WriteString("<p>These topics are overdue and were marked Weak:</p><ul>")
	for _, id := range ids {
		t := titles[id]
		if t == "" {
			t = id.String()
		}
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(t))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return "Topics due for review", b.String()
}
