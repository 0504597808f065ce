package users

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// WelcomeSubject and WelcomeBody are the default welcome message copy.
var (
	WelcomeSubject = "Welcome!"
	WelcomeBody    = "Thank you for registering on our platform."
)

// Mailer delivers a welcome message. Implementations talk to whatever
// transport the host application uses.
type Mailer interface {
	SendWelcome(ctx context.Context, email string) error
}

// MailerFunc adapts a function into a Mailer.
type MailerFunc func(ctx context.Context, email string) error

func (f MailerFunc) SendWelcome(ctx context.Context, email string) error {
	return f(ctx, email)
}

// NotifierConfig tunes the async welcome queue.
type NotifierConfig struct {
	BufferSize     int
	MaxRetries     uint64
	InitialBackoff time.Duration
}

func (c NotifierConfig) withDefaults() NotifierConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = 64
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	return c
}

// Notifier queues welcome notifications and delivers them off the request
// path. Enqueueing never blocks: when the buffer is full the notification
// is dropped with a log line, registration is never held up or failed by
// delivery problems.
type Notifier struct {
	mailer  Mailer
	logger  Logger
	cfg     NotifierConfig
	queue   chan string
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// NewNotifier starts the delivery worker and returns the notifier. Callers
// own the lifecycle and should Close it on shutdown.
func NewNotifier(mailer Mailer, cfg NotifierConfig) *Notifier {
	cfg = cfg.withDefaults()
	n := &Notifier{
		mailer: mailer,
		logger: defLogger{},
		cfg:    cfg,
		queue:  make(chan string, cfg.BufferSize),
	}

	n.wg.Add(1)
	go n.worker()

	return n
}

func (n *Notifier) WithLogger(logger Logger) *Notifier {
	if logger != nil {
		n.logger = logger
	}
	return n
}

// NotifyRegistered enqueues a welcome notification for the email. Safe to
// call from request goroutines, returns immediately.
func (n *Notifier) NotifyRegistered(email string) {
	n.closeMu.Lock()
	defer n.closeMu.Unlock()

	if n.closed {
		n.logger.Warn("welcome notification dropped, notifier closed: %s", email)
		return
	}

	select {
	case n.queue <- email:
	default:
		n.logger.Warn("welcome notification dropped, queue full: %s", email)
	}
}

// Close stops accepting notifications and waits for the worker to drain
// what is already queued.
func (n *Notifier) Close() {
	n.closeMu.Lock()
	if n.closed {
		n.closeMu.Unlock()
		return
	}
	n.closed = true
	close(n.queue)
	n.closeMu.Unlock()

	n.wg.Wait()
}

func (n *Notifier) worker() {
	defer n.wg.Done()

	for email := range n.queue {
		n.deliver(email)
	}
}

func (n *Notifier) deliver(email string) {
	ctx := context.Background()
	backoff := retry.WithMaxRetries(n.cfg.MaxRetries, retry.NewExponential(n.cfg.InitialBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := n.mailer.SendWelcome(ctx, email); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if err != nil {
		n.logger.Error("welcome notification delivery failed for %s: %v", email, err)
	}
}

var _ RegistrationNotifier = (*Notifier)(nil)
