package domain

// ErrorKind classifies a rejected move or lifecycle call.
type ErrorKind string

const (
	ErrInvalidPhase      ErrorKind = "invalid_phase"
	ErrNotYourTurn       ErrorKind = "not_your_turn"
	ErrInvalidMove       ErrorKind = "invalid_move"
	ErrRuleViolation     ErrorKind = "rule_violation"
	ErrResourceExhausted ErrorKind = "resource_exhausted"
)

// Error is a structured rule error. Validation returns these without
// mutating state; callers branch on Kind.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// NewError builds a rule error of the given kind.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func InvalidPhase(msg string) *Error      { return NewError(ErrInvalidPhase, msg) }
func NotYourTurn(msg string) *Error       { return NewError(ErrNotYourTurn, msg) }
func InvalidMove(msg string) *Error       { return NewError(ErrInvalidMove, msg) }
func RuleViolation(msg string) *Error     { return NewError(ErrRuleViolation, msg) }
func ResourceExhausted(msg string) *Error { return NewError(ErrResourceExhausted, msg) }

// KindOf returns the error kind when err is a rule error.
func KindOf(err error) (ErrorKind, bool) {
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return "", false
}
