package service

import "errors"

var (
	ErrFormNotFound         = errors.New("form not found")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrGalleryItemNotFound  = errors.New("gallery item not found")
	ErrLinkNotFound         = errors.New("link not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")

	// ErrInvalidInput wraps every caller mistake a handler should answer
	// with 400.
	ErrInvalidInput = errors.New("invalid input")
)
