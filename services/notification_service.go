package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"servicehub-server/models"
	ws "servicehub-server/websocket"
)

// NotificationService persists notifications and delivers them over every
// available channel: the WebSocket hub for connected clients and the Expo
// push API for registered device tokens. Delivery is best-effort; a failed
// send is logged and never propagated back to the state transition that
// triggered it.
type NotificationService struct {
	db      *gorm.DB
	hub     *ws.Hub
	pushURL string
}

// NewNotificationService creates a notification service. hub may be nil when
// no realtime channel is running (e.g. in tests).
func NewNotificationService(db *gorm.DB, hub *ws.Hub) *NotificationService {
	return &NotificationService{
		db:      db,
		hub:     hub,
		pushURL: "https://exp.host/--/api/v2/push/send",
	}
}

type eventMessage struct {
	title string
	body  string
}

var bookingEventMessages = map[string]eventMessage{
	models.NotificationBookingCreated:   {"New Booking Request", "You have a new booking request waiting for your response."},
	models.NotificationBookingAccepted:  {"Booking Accepted", "Your booking has been accepted. The professional will arrive as scheduled."},
	models.NotificationBookingRejected:  {"Booking Rejected", "Unfortunately your booking was rejected. Please try another professional."},
	models.NotificationBookingCompleted: {"Service Completed", "Your booking has been completed. Please rate your experience."},
	models.NotificationBookingCancelled: {"Booking Cancelled", "The booking has been cancelled by the customer."},
	models.NotificationPaymentReceived:  {"Payment Received", "Payment for your booking has been confirmed."},
	models.NotificationPayoutCompleted:  {"Payout Completed", "Your earnings for a completed booking have been paid out."},
}

// DispatchBookingEvent sends exactly one notification for a booking event to
// the given user. An identical (user, event, booking) notification that was
// already stored suppresses the dispatch, which keeps duplicate gateway
// callbacks from spamming the user while staying at-least-once overall.
func (ns *NotificationService) DispatchBookingEvent(userID, bookingID uint, event string) error {
	var existing models.Notification
	err := ns.db.Where("user_id = ? AND type = ? AND booking_id = ?",
		userID, event, bookingID).
		First(&existing).Error
	if err == nil {
		log.Printf("⚠️ Notification %s for booking %d already sent to user %d - skipping", event, bookingID, userID)
		return nil
	}

	msg, ok := bookingEventMessages[event]
	if !ok {
		msg = eventMessage{"Booking Update", "Your booking status has been updated."}
	}

	payload := map[string]interface{}{
		"booking_id": bookingID,
		"event":      event,
	}
	dataJSON, _ := json.Marshal(payload)

	notification := models.Notification{
		UserID:    userID,
		BookingID: bookingID,
		Title:     msg.title,
		Body:      msg.body,
		Type:      event,
		Data:      string(dataJSON),
		Read:      false,
	}
	if err := ns.db.Create(&notification).Error; err != nil {
		log.Printf("❌ Error creating notification record for user %d: %v", userID, err)
		return err
	}

	// Realtime channel for connected clients
	if ns.hub != nil {
		ns.hub.SendToUser(userID, &ws.Message{
			Type:      event,
			BookingID: bookingID,
			Timestamp: time.Now(),
			Data:      payload,
		})
	}

	// Push channel for registered devices
	var tokens []models.PushToken
	if err := ns.db.Where("user_id = ? AND active = ?", userID, true).Find(&tokens).Error; err != nil {
		log.Printf("❌ Error fetching push tokens for user %d: %v", userID, err)
		return nil
	}

	for _, token := range tokens {
		if err := ns.sendExpoPush(token.Token, msg.title, msg.body, payload); err != nil {
			log.Printf("❌ Error sending push notification to token %s: %v", token.Token, err)
		}
	}

	return nil
}

// sendExpoPush sends a notification via the Expo Push API
func (ns *NotificationService) sendExpoPush(token, title, body string, data map[string]interface{}) error {
	payload := map[string]interface{}{
		"to":        token,
		"title":     title,
		"body":      body,
		"data":      data,
		"sound":     "default",
		"priority":  "high",
		"channelId": "booking_updates",
	}

	bodyBytes, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", ns.pushURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("expo push failed: %s - %s", resp.Status, string(respBody))
	}

	return nil
}
