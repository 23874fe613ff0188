package models

// Envelope is the response wrapper shared by every endpoint
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// Message builds a successful envelope that carries only a message.
func Message(msg string) Envelope[any] {
	return Envelope[any]{Success: true, Message: msg}
}

// Fail builds a failure envelope.
func Fail(msg string) Envelope[any] {
	return Envelope[any]{Success: false, Message: msg}
}
