package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/kafka"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/sirupsen/logrus"
)

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender turns booking events into customer notifications. Delivery is a
// structured log line until an outbound mail provider is configured.
type Sender struct {
	users UserLookup
	log   *logrus.Entry
}

func NewSender(users UserLookup, log *logrus.Entry) *Sender {
	return &Sender{users: users, log: log}
}

// Send skips events for users that no longer exist and event types that
// carry nothing to tell the customer.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	user, err := s.users.GetByID(ctx, event.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.WithField("user_id", event.UserID).Warn("notification for unknown user dropped")
			return nil
		}
		return fmt.Errorf("load recipient: %w", err)
	}

	msg, ok := Compose(user, event)
	if !ok {
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"to":         msg.To,
		"subject":    msg.Subject,
		"booking_id": event.BookingID,
		"event":      event.Type,
	}).Info("email sent")
	return nil
}

func Compose(user *domain.User, event kafka.BookingEvent) (Message, bool) {
	var subject, body string
	switch event.Type {
	case kafka.EventBookingCreated:
		subject = fmt.Sprintf("Booking %s received", event.BookingReference)
		body = fmt.Sprintf("Hi %s, we received your booking %s departing %s. Total: Rp %d.",
			user.Name, event.BookingReference, event.DepartureDate.Format("2 Jan 2006"), event.TotalPrice)
	case kafka.EventBookingUpdated:
		subject = fmt.Sprintf("Booking %s updated", event.BookingReference)
		body = fmt.Sprintf("Hi %s, your booking %s is now %s.", user.Name, event.BookingReference, event.Status)
	case kafka.EventBookingCancelled:
		subject = fmt.Sprintf("Booking %s cancelled", event.BookingReference)
		body = fmt.Sprintf("Hi %s, your booking %s has been cancelled.", user.Name, event.BookingReference)
	case kafka.EventBookingCompleted:
		subject = "Thanks for flying with AirBook"
		body = fmt.Sprintf("Hi %s, we hope you enjoyed your trip (%s).", user.Name, event.BookingReference)
	default:
		return Message{}, false
	}
	return Message{To: user.Email, Subject: subject, Body: body}, true
}
