package dossier

import "time"

// Dossier is one generated client report. It lives only for the response
// that carries it.
type Dossier struct {
	RunID      string        `json:"runId"`
	ClientName string        `json:"clientName"`
	Markdown   string        `json:"markdown"`
	Tools      []string      `json:"tools"`
	Duration   time.Duration `json:"-"`
	CreatedAt  time.Time     `json:"createdAt"`
}
