package model

// Document processing states. A document enters StatusProcessing when the
// upload is accepted and only ever moves to StatusReady or StatusFailed.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

type Document struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Ctime    int64  `json:"ctime"`
	Mtime    int64  `json:"mtime"`
}
