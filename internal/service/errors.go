package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("scheduled post not found")
	ErrInvalidState = errors.New("post is no longer pending")
	ErrNotConnected = errors.New("no LinkedIn account connected")
	ErrTokenExpired = errors.New("LinkedIn token expired")
	ErrNotSignedIn  = errors.New("not signed in")
)

// ValidationError marks malformed caller input; handlers map it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UploadError is a platform-side rejection of an asset upload; Body keeps
// the raw response text for operator diagnosis.
type UploadError struct {
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload rejected with status %d: %s", e.Status, e.Body)
}

// PublishError is a platform-side rejection of post creation; Message is the
// platform's own error text.
type PublishError struct {
	Status  int
	Message string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish rejected with status %d: %s", e.Status, e.Message)
}
