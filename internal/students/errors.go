package students

import "errors"

var (
	ErrAdmissionNoRequired = errors.New("admission number cannot be empty")
	ErrFirstNameRequired   = errors.New("first name cannot be empty")
	ErrInvalidPAN          = errors.New("guardian PAN does not match the AAAAA9999A format")
	ErrInvalidAadhaar      = errors.New("aadhaar number must be 12 digits")
	ErrStudentNotFound     = errors.New("student not found")
	ErrImportTooLarge      = errors.New("import exceeds the maximum row count")
	ErrImportEmpty         = errors.New("import contains no data rows")
)
