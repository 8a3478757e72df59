package core

import "errors"

var (
	ErrInvalidAction        = errors.New("invalid action")
	ErrRecordNotFound       = errors.New("attendance record not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrNotApproved          = errors.New("account pending approval")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrRequestNotFound      = errors.New("schedule change request not found")
	ErrInvalidShift         = errors.New("invalid shift type")
	ErrInvalidRegistration  = errors.New("invalid registration")
	ErrAlreadyRegistered    = errors.New("student already registered")
	ErrInvalidAnnouncement  = errors.New("invalid announcement")
	ErrAnnouncementNotFound = errors.New("announcement not found")
)
