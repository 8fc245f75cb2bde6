// internal/notification/service.go

package notification

import (
	"context"
	"log"

	"github.com/finlove/finlove-backend/internal/profile"
	"github.com/finlove/finlove-backend/internal/verification"
)

// Service delivers realtime and broadcast notifications. Realtime events go
// over the websocket hub only; a user who is offline misses them. Broadcasts
// additionally fan out over email and SMS.
type Service interface {
	NotifyLiked(ctx context.Context, targetID int64)
	NotifyMatched(ctx context.Context, userA, userB int64)

	// Broadcast sends an announcement to every non-banned user
	Broadcast(ctx context.Context, subject, body string) (*BroadcastReport, error)
}

// BroadcastReport summarizes a broadcast run
type BroadcastReport struct {
	Recipients int `json:"recipients"`
	Emails     int `json:"emails"`
	SMS        int `json:"sms"`
	Failures   int `json:"failures"`
}

type service struct {
	hub   *Hub
	users profile.Repository
	email verification.EmailProvider // optional
	sms   SMSProvider                // optional
}

// NewService creates a new notification service. email and sms may be nil,
// in which case broadcasts only reach connected websocket clients.
func NewService(hub *Hub, users profile.Repository, email verification.EmailProvider, sms SMSProvider) Service {
	return &service{
		hub:   hub,
		users: users,
		email: email,
		sms:   sms,
	}
}

func (s *service) NotifyLiked(ctx context.Context, targetID int64) {
	s.hub.Send(targetID, "new_like", map[string]string{
		"message": "Someone liked your profile",
	})
}

func (s *service) NotifyMatched(ctx context.Context, userA, userB int64) {
	s.notifyMatchedOne(ctx, userA, userB)
	s.notifyMatchedOne(ctx, userB, userA)
}

// notifyMatchedOne tells userID about their new match with partnerID,
// including the partner's card when it can be loaded. Realtime plus email;
// either channel failing is logged and swallowed.
func (s *service) notifyMatchedOne(ctx context.Context, userID, partnerID int64) {
	var card *profile.Card
	partner, err := s.users.GetByID(ctx, partnerID)
	if err != nil {
		log.Printf("Failed to load partner card for match notification: %v", err)
	} else {
		card = partner.ToCard()
	}

	s.hub.Send(userID, "new_match", card)

	if s.email == nil {
		return
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("Failed to load recipient for match email: %v", err)
		return
	}

	partnerName := "someone"
	if partner != nil {
		partnerName = partner.DisplayName()
	}

	tmpl := &verification.EmailTemplate{
		To:           user.Email,
		Subject:      "You have a new match on FinLove",
		TemplateName: "new_match",
		Data: map[string]interface{}{
			"name":    user.DisplayName(),
			"partner": partnerName,
		},
	}
	if err := s.email.SendEmail(ctx, tmpl); err != nil {
		log.Printf("Match email to %s failed: %v", user.Email, err)
	}
}

func (s *service) Broadcast(ctx context.Context, subject, body string) (*BroadcastReport, error) {
	recipients, err := s.users.ListBroadcastRecipients(ctx)
	if err != nil {
		return nil, err
	}

	report := &BroadcastReport{Recipients: len(recipients)}

	for _, r := range recipients {
		if s.email != nil && r.Email != "" {
			tmpl := &verification.EmailTemplate{
				To:           r.Email,
				Subject:      subject,
				TemplateName: "announcement",
				Data: map[string]interface{}{
					"subject": subject,
					"body":    body,
				},
			}
			if err := s.email.SendEmail(ctx, tmpl); err != nil {
				log.Printf("Broadcast email to %s failed: %v", r.Email, err)
				report.Failures++
			} else {
				report.Emails++
			}
		}

		if s.sms != nil && r.Phone != nil && *r.Phone != "" {
			msg := &SMSMessage{To: *r.Phone, Message: body}
			if err := s.sms.SendSMS(ctx, msg); err != nil {
				log.Printf("Broadcast SMS to %s failed: %v", *r.Phone, err)
				report.Failures++
			} else {
				report.SMS++
			}
		}
	}

	s.hub.SendAll("announcement", map[string]string{
		"subject": subject,
		"body":    body,
	})

	return report, nil
}
