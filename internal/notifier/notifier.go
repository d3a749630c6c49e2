package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"sync"
	"time"

	"ustat-be/internal/logger"
	"ustat-be/internal/metrics"

	"go.uber.org/zap"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

// Sender performs one delivery attempt.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

type smtpSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) Send(ctx context.Context, e Email) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		s.cfg.From, e.To, e.Subject, e.Body,
	)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}

	return smtp.SendMail(s.cfg.Host+":"+s.cfg.Port, auth, s.cfg.From, []string{e.To}, []byte(msg))
}

const (
	defaultQueueSize = 128
	defaultAttempts  = 3
	defaultBackoff   = 60 * time.Second
)

// Dispatcher drains a bounded queue on its own goroutine so mutating
// requests never wait on mail delivery. Failed sends are retried a fixed
// number of times with a fixed backoff.
type Dispatcher struct {
	sender   Sender
	queue    chan Email
	attempts int
	backoff  time.Duration

	once sync.Once
	wg   sync.WaitGroup
}

type Option func(*Dispatcher)

// WithBackoff shortens the retry pause; tests use this.
func WithBackoff(d time.Duration) Option {
	return func(dp *Dispatcher) { dp.backoff = d }
}

func WithQueueSize(n int) Option {
	return func(dp *Dispatcher) { dp.queue = make(chan Email, n) }
}

func NewDispatcher(sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:   sender,
		queue:    make(chan Email, defaultQueueSize),
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e Email) {
	log := logger.L().With(
		zap.String("component", "notifier"),
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
	)

	for attempt := 1; attempt <= d.attempts; attempt++ {
		err := d.sender.Send(context.Background(), e)
		if err == nil {
			metrics.MailSent.Inc()
			log.Info("mail delivered", zap.Int("attempt", attempt))
			return
		}

		if attempt < d.attempts {
			metrics.MailRetried.Inc()
			log.Warn("mail delivery failed, will retry",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			time.Sleep(d.backoff)
			continue
		}

		metrics.MailFailed.Inc()
		log.Error("mail delivery abandoned",
			zap.Int("attempts", d.attempts),
			zap.Error(err),
		)
	}
}

// Enqueue never blocks the caller; when the queue is full the mail is
// dropped with a warning.
func (d *Dispatcher) Enqueue(e Email) {
	select {
	case d.queue <- e:
	default:
		metrics.MailFailed.Inc()
		logger.L().Warn("mail queue full, dropping message",
			zap.String("to", e.To),
			zap.String("subject", e.Subject),
		)
	}
}

// Close stops accepting mail and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}
