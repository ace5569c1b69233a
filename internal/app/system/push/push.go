// Package push wraps Web Push (VAPID) delivery to browser
// subscriptions.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/harmonykeys/lessonhub/internal/domain/models"
)

// ErrSubscriptionGone means the push service no longer knows the
// endpoint; the caller should drop the subscription.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Message is the notification payload shown by the service worker.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Sender delivers Web Push messages signed with the studio's VAPID
// key pair.
type Sender struct {
	publicKey  string
	privateKey string
	subscriber string
}

// NewSender builds a Sender. subscriber is the mailto: contact the
// push services can reach the operator at.
func NewSender(publicKey, privateKey, subscriber string) *Sender {
	return &Sender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
	}
}

// Enabled reports whether VAPID keys are configured. Without them no
// push is attempted.
func (s *Sender) Enabled() bool {
	return s.publicKey != "" && s.privateKey != ""
}

// Send pushes the message to one subscription.
func (s *Sender) Send(ctx context.Context, sub models.PushSubscription, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             3600,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return ErrSubscriptionGone
	}
	if resp.StatusCode >= 400 {
		return errors.New("push service returned " + resp.Status)
	}
	return nil
}
