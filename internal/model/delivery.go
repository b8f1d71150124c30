package model

import "time"

// ErrorKind classifies a failed delivery attempt. Only rate_limited and
// server_error sanction repeat attempts; everything else means the
// request itself is wrong and retrying cannot help.
type ErrorKind string

const (
	ErrKindNone           ErrorKind = ""
	ErrKindValidation     ErrorKind = "validation"
	ErrKindConfiguration  ErrorKind = "configuration"
	ErrKindAuthentication ErrorKind = "authentication"
	ErrKindForbidden      ErrorKind = "forbidden"
	ErrKindRateLimited    ErrorKind = "rate_limited"
	ErrKindServerError    ErrorKind = "server_error"
	ErrKindTimeout        ErrorKind = "timeout"
	ErrKindConnection     ErrorKind = "connection"
	ErrKindBadRequest     ErrorKind = "bad_request"
	ErrKindUnexpected     ErrorKind = "unexpected"
)

func (k ErrorKind) String() string { return string(k) }

// retryableStatuses is the fixed set of HTTP statuses worth repeating.
var retryableStatuses = map[int]struct{}{
	429: {}, 500: {}, 502: {}, 503: {}, 504: {},
}

// DeliveryResult is the outcome of one send (or one retry sequence when
// produced by the retrying sender, in which case Attempts > 1 is
// possible). Not persisted; consumed immediately by the caller.
type DeliveryResult struct {
	Succeeded  bool
	HTTPStatus int           // 0 when no HTTP response was received
	MessageID  string        // provider-assigned id on success
	ErrorKind  ErrorKind
	Err        string        // human-readable failure description
	Attempts   int           // attempts actually made
	RetryAfter time.Duration // provider hint from a 429, if any
}

// Retryable reports whether another attempt is sanctioned: the error
// kind must be transient AND the status must be in the retryable set.
func (r DeliveryResult) Retryable() bool {
	if r.Succeeded {
		return false
	}
	if r.ErrorKind != ErrKindRateLimited && r.ErrorKind != ErrKindServerError {
		return false
	}
	_, ok := retryableStatuses[r.HTTPStatus]
	return ok
}
