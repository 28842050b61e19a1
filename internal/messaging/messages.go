package messaging

// EmailMessage is the notification payload queued by the API process and
// delivered by the worker. Delivery is best-effort; nothing in the donation
// lifecycle waits on it.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
