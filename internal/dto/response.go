package dto

// Envelope is the body of every JSON response.
// @Description Standard response envelope
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail builds an error envelope. The message is shown to administrators verbatim.
func Fail(code, message string) Envelope {
	return Envelope{Success: false, Error: message, Code: code}
}
