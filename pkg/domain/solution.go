package domain

import "time"

// Solution is an archived answer for a board image.
type Solution struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id,omitempty"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	Image     []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntry records one relay call. No prompt, image or credential is stored.
type AuditEntry struct {
	ID         int64         `json:"id"`
	Provider   string        `json:"provider"`
	Model      string        `json:"model"`
	Status     int           `json:"status"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	ImageBytes int           `json:"image_bytes"`
	CreatedAt  time.Time     `json:"created_at"`
}
