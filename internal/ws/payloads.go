package ws

// server → client
type ErrorPayload struct {
	Message string `json:"message"`
}
