package locker

import "fmt"

// ErrorCodeOffset is where program error codes start.
const ErrorCodeOffset = 6000

// Error is a program error with a stable numeric code.
type Error struct {
	Code uint32
	Name string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

var (
	ErrNoFundsSent  = &Error{Code: ErrorCodeOffset, Name: "NoFundsSent", Msg: "No SOL sent"}
	ErrUnauthorized = &Error{Code: ErrorCodeOffset + 1, Name: "Unauthorized", Msg: "Unauthorized"}
)

// ErrorByCode maps a code back to its error, or nil.
func ErrorByCode(code uint32) *Error {
	for _, e := range []*Error{ErrNoFundsSent, ErrUnauthorized} {
		if e.Code == code {
			return e
		}
	}
	return nil
}
