// internal/workers/notify/send-reminder/models.go
package sendreminder

type Input struct {
	RefNumber string `json:"refNumber"`
	Action    string `json:"action"`
	Letter    string `json:"letter,omitempty"`
	Email     string `json:"email,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	RefNumber      string `json:"refNumber"`
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
}
