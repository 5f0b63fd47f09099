package notifier

import (
	"log"

	"github.com/gen2brain/beeep"
)

// Notifier shows desktop toasts as a second notification channel next
// to email.
type Notifier struct {
	enabled bool
}

func New() *Notifier {
	return &Notifier{
		enabled: true,
	}
}

func (n *Notifier) Send(subject, body string) {
	if !n.enabled {
		return
	}

	if err := beeep.Alert(subject, body, ""); err != nil {
		log.Printf("Failed to send desktop notification: %v", err)
	}
}

func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}
