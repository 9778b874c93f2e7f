package api

import "fmt"

// ValidationError reports a local form check failure. No request has been
// issued when one of these is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// AuthError reports that the backend explicitly rejected credentials,
// carrying the backend-provided message when there is one.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication rejected"
	}
	return e.Message
}

// IncompleteResponseError reports an HTTP success whose body is missing
// fields the client requires. It is a failure, never a partial success.
type IncompleteResponseError struct {
	Missing []string
}

func (e *IncompleteResponseError) Error() string {
	return fmt.Sprintf("incomplete response from server, missing %v", e.Missing)
}

// ServerError reports a non-auth request the backend answered but refused
// or failed, carrying the backend-provided message.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "server error"
	}
	return e.Message
}

// NetworkError reports that a request could not complete at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
