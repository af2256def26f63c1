package service

import (
	"context"
	"fmt"

	"carehub/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FCMService sends push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client *messaging.Client
	log    *zap.Logger
}

// NewFCMService creates an FCM service. Returns nil if Firebase is not configured.
func NewFCMService(ctx context.Context, serviceAccountPath string, log *zap.Logger) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Warn("fcm: init firebase app", zap.Error(err))
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Warn("fcm: messaging client", zap.Error(err))
		return nil
	}
	return &FCMService{client: client, log: log}
}

// Push mirrors a stored notification to the recipient's device.
func (s *FCMService) Push(ctx context.Context, token string, n *models.Notification) error {
	if s == nil || token == "" {
		return nil
	}
	data := map[string]string{
		"type":            n.Type,
		"notification_id": fmt.Sprintf("%d", n.ID),
	}
	if n.RelatedID != nil {
		data["related_id"] = fmt.Sprintf("%d", *n.RelatedID)
	}
	if n.RelatedType != nil {
		data["related_type"] = *n.RelatedType
	}
	body := ""
	if n.Content != nil {
		body = *n.Content
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  body,
		},
		Data:  data,
		Token: token,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
	id, err := s.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	s.log.Debug("push sent", zap.Uint("notification_id", n.ID), zap.String("message_id", id))
	return nil
}
