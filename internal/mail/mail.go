// Package mail delivers outbound email, either directly or through a message queue.
package mail

import (
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/streadway/amqp"
)

// Message is one outbound email.
type Message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer sends a Message.
type Mailer interface {
	Send(msg Message) error
}

// LogMailer only records that a message would have been sent. The body is
// never logged since it carries confirmation codes.
type LogMailer struct{}

func (LogMailer) Send(msg Message) error {
	log.Printf("Mail to %s: %q (%d bytes, not delivered)", msg.To, msg.Subject, len(msg.Body))
	return nil
}

// Publisher is the part of the queue client QueueMailer needs.
type Publisher interface {
	Publish(body []byte) error
}

// QueueMailer hands messages to a queue for the mail worker.
type QueueMailer struct {
	publisher Publisher
}

// NewQueueMailer creates a QueueMailer publishing through p.
func NewQueueMailer(p Publisher) *QueueMailer {
	return &QueueMailer{publisher: p}
}

func (m *QueueMailer) Send(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal mail message: %w", err)
	}
	if err := m.publisher.Publish(body); err != nil {
		return fmt.Errorf("failed to enqueue mail to %s: %w", msg.To, err)
	}
	return nil
}

// SMTPMailer delivers messages through an SMTP relay without authentication.
type SMTPMailer struct {
	Addr string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an SMTPMailer for the relay at addr (host:port).
func NewSMTPMailer(addr string) *SMTPMailer {
	return &SMTPMailer{Addr: addr, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.Body)
	if err := m.send(m.Addr, nil, msg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to deliver mail to %s: %w", msg.To, err)
	}
	return nil
}

// DeliveryHandler decodes queued messages and passes them to next.
// Undecodable messages are dropped with a log line rather than requeued.
func DeliveryHandler(next Mailer) func(amqp.Delivery) error {
	return func(d amqp.Delivery) error {
		var msg Message
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			log.Printf("Dropping malformed mail message %d: %v", d.DeliveryTag, err)
			return nil
		}
		return next.Send(msg)
	}
}
