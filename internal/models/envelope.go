package models

// Envelope is the uniform wrapper used by every backend response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}
