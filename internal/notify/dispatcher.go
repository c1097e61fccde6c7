package notify

import (
	"log/slog"
	"sync"
)

// Delivery is a request to send an OTP code to an email address.
type Delivery struct {
	Email string
	Code  string
}

// Sender delivers one OTP email. Implemented by service.EmailService.
type Sender interface {
	SendOTPEmail(email, code string) error
}

// Dispatcher drains deliveries off the request path. Issuance success is
// defined by persistence, never by delivery, so send failures are logged
// and swallowed here.
type Dispatcher struct {
	sender Sender
	queue  chan Delivery
	wg     sync.WaitGroup
	once   sync.Once
}

func NewDispatcher(sender Sender, buffer int) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		queue:  make(chan Delivery, buffer),
	}
}

// Start launches the consumer goroutine. Safe to call once.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for delivery := range d.queue {
			err := d.sender.SendOTPEmail(delivery.Email, delivery.Code)
			if err != nil {
				slog.Error("otp delivery failed", "error", err, "email", delivery.Email)
				continue
			}
			slog.Debug("otp delivered", "email", delivery.Email)
		}
	}()
}

// Enqueue never blocks the caller. A full queue drops the delivery; the
// user can request a fresh code.
func (d *Dispatcher) Enqueue(delivery Delivery) {
	select {
	case d.queue <- delivery:
	default:
		slog.Warn("notification queue full, dropping delivery", "email", delivery.Email)
	}
}

// Stop closes the queue and waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
