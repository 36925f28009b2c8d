package responses

import "time"

type APIResponse[T any] struct {
	Status       string    `json:"status"`
	Message      string    `json:"message,omitempty"`
	ResponseTime string    `json:"response_time"`
	Timestamp    time.Time `json:"timestamp"`
	Error        string    `json:"error,omitempty"`
	Data         *T        `json:"data,omitempty"`
}
