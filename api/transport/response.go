package transport

// Envelope is the response wrapper shared by every endpoint.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Meta   *Meta       `json:"meta,omitempty"`
}

// Meta accompanies list responses.
type Meta struct {
	Count int `json:"count"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Success wraps data.
func Success(data interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

// List wraps a collection together with its size.
func List(data interface{}, count int) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: &Meta{Count: count}}
}

// Failure reports an error code and a message safe to show to API clients.
func Failure(code, message string) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: message}
}

// WithData attaches diagnostic data, e.g. dependency status on a failed health check.
func (e Envelope) WithData(data interface{}) Envelope {
	e.Data = data
	return e
}
