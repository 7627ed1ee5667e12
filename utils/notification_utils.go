// utils/notification_utils.go
package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/config"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"
)

// SaveNotification saves a notification to the database
func SaveNotification(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	collection := config.GetCollection(db, "notifications")

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := collection.InsertOne(context.Background(), notification)
	return err
}

// SendEmail sends a plain-text email through the configured SMTP server.
func SendEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpPort := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			smtpPort = p
		}
	}

	if smtpHost == "" || smtpUser == "" {
		return fmt.Errorf("SMTP is not configured")
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = smtpUser
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}

// NotifyWholesaleDecision tells a user the outcome of their wholesale
// upgrade request through every configured channel: a persisted in-app
// notification, an email and an FCM push. Channel failures are logged and
// never propagated; the decision itself has already been committed.
func NotifyWholesaleDecision(db *mongo.Client, user models.User, approved bool, reason string) {
	var title, body, notifType string
	if approved {
		title = "Wholesale account approved"
		body = fmt.Sprintf("Dear %s,\n\nYour wholesale account request has been approved. Bulk pricing is now available on your account.\n\nAlmotamad Pharma", user.FullName)
		notifType = models.NotificationTypeWholesaleApproved
	} else {
		title = "Wholesale account request rejected"
		body = fmt.Sprintf("Dear %s,\n\nYour wholesale account request was rejected.\nReason: %s\n\nYou may submit a new request once the issue is resolved.\n\nAlmotamad Pharma", user.FullName, reason)
		notifType = models.NotificationTypeWholesaleRejected
	}

	if err := SaveNotification(db, user.ID, title, body, notifType, map[string]interface{}{
		"userId": user.ID.Hex(),
	}); err != nil {
		log.Printf("Failed to save wholesale decision notification: %v", err)
	}

	if err := SendEmail(user.Email, title, body); err != nil {
		log.Printf("Failed to email wholesale decision to %s: %v", user.Email, err)
	}

	if err := SendFCMNotificationToUser(db, user.ID, title, title, map[string]interface{}{
		"type":   notifType,
		"userId": user.ID.Hex(),
	}); err != nil {
		log.Printf("Failed to push wholesale decision to %s: %v", user.ID.Hex(), err)
	}
}

// SendFCMNotificationToUser sends a Firebase Cloud Messaging notification to a user
func SendFCMNotificationToUser(db *mongo.Client, userID primitive.ObjectID, title, message string, data map[string]interface{}) error {
	collection := config.GetCollection(db, "users")
	var user models.User
	err := collection.FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.FCMToken == "" {
		return fmt.Errorf("user has no FCM token")
	}

	if config.FirebaseApp == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	notificationData := map[string]string{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for key, value := range data {
		if str, ok := value.(string); ok {
			notificationData[key] = str
		}
	}

	fcmMessage := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: notificationData,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "almotamad_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  message,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := client.Send(ctx, fcmMessage)
	if err != nil {
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}

	log.Printf("FCM notification sent to user %s: %s", userID.Hex(), response)
	return nil
}
