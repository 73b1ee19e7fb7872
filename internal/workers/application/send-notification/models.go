// internal/workers/application/send-notification/models.go
package sendnotification

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	NotificationType string                 `json:"notificationType"`
	ApplicationID    string                 `json:"applicationId,omitempty"`
	JobTitle         string                 `json:"jobTitle,omitempty"`
	CompanyName      string                 `json:"companyName,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	EmailStatus    string `json:"emailStatus"`
	SMSStatus      string `json:"smsStatus"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeApplicationSubmitted = "application_submitted"
	TypeApplicationReceived  = "application_received"
	TypeApplicationWithdrawn = "application_withdrawn"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusSkipped  = "skipped"
)

const PriorityHigh = "high"

type notificationTemplate struct {
	Subject string
	Body    string
}

var notificationTemplates = map[string]notificationTemplate{
	TypeApplicationSubmitted: {
		Subject: "Your application for {{jobTitle}} was submitted",
		Body:    "Hi {{recipientName}}, your application {{applicationId}} for {{jobTitle}} at {{companyName}} has been submitted. We will let you know when the employer responds.",
	},
	TypeApplicationReceived: {
		Subject: "New application for {{jobTitle}}",
		Body:    "Hi {{recipientName}}, a new application ({{applicationId}}) has arrived for your {{jobTitle}} posting.",
	},
	TypeApplicationWithdrawn: {
		Subject: "Application for {{jobTitle}} withdrawn",
		Body:    "Hi {{recipientName}}, application {{applicationId}} for {{jobTitle}} has been withdrawn.",
	},
}
