package command

import (
	apperrors "github.com/louisbranch/backgammon/internal/platform/errors"
)

// Rejection captures a domain-level reason an action was declined.
type Rejection struct {
	Code     apperrors.Code    `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Reject builds a rejection with optional template metadata.
func Reject(code apperrors.Code, message string, metadata map[string]string) *Rejection {
	return &Rejection{Code: code, Message: message, Metadata: metadata}
}

// Kind returns the taxonomy bucket of the rejection.
func (r *Rejection) Kind() apperrors.Kind {
	if r == nil {
		return ""
	}
	return r.Code.Kind()
}

// Err lifts the rejection into a domain error for callers that need one.
func (r *Rejection) Err() error {
	if r == nil {
		return nil
	}
	return apperrors.WithMetadata(r.Code, r.Message, r.Metadata)
}

// Verdict is the structured answer to a legality question.
type Verdict struct {
	Valid     bool       `json:"valid"`
	Rejection *Rejection `json:"rejection,omitempty"`
}

// Accept returns a valid verdict.
func Accept() Verdict {
	return Verdict{Valid: true}
}

// Deny returns an invalid verdict carrying r.
func Deny(r *Rejection) Verdict {
	return Verdict{Rejection: r}
}
