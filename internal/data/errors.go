package data

import "errors"

// ErrSubjectRequired is returned when a user is written without an IdP subject.
var ErrSubjectRequired = errors.New("user subject is required")
