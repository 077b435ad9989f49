package errs

// ResultError is the outcome of an issue operation that did not succeed.
//
// It is written with HTTP 200 as
//
//	{ "error": "could not update", "_id": "..." }
//
// ID is omitted when the request carried no usable id. The cause (a storage
// or validation error) is kept for logs and never serialized.
type ResultError struct {
	Message string `json:"error"`
	ID      string `json:"_id,omitempty"`

	cause error
}

// NewResultError builds a ResultError for message, echoing id when non-empty.
func NewResultError(message, id string) *ResultError {
	return &ResultError{Message: message, ID: id}
}

// WithCause returns a copy of e carrying cause.
func (e *ResultError) WithCause(cause error) *ResultError {
	return &ResultError{Message: e.Message, ID: e.ID, cause: cause}
}

func (e *ResultError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *ResultError) Unwrap() error {
	return e.cause
}

// Cause returns the underlying error, or nil.
func (e *ResultError) Cause() error {
	return e.cause
}
