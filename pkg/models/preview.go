package models

import "time"

// PreviewSession holds the runtime values of one preview of a form
type PreviewSession struct {
	ID           string         `json:"id"`
	FormID       string         `json:"formId"`
	Values       map[string]any `json:"values"`
	LastActivity time.Time      `json:"lastActivity"`
}

// PreviewSnapshot is what a client renders after every change
type PreviewSnapshot struct {
	SessionID string            `json:"sessionId"`
	FormID    string            `json:"formId"`
	Values    map[string]any    `json:"values"`
	Display   map[string]string `json:"display"`
	Errors    map[string]string `json:"errors"`
}
