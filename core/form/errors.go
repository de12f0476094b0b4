package form

import "errors"

var (
	// ErrCSRFMissing is returned when a submission ends without a token field.
	ErrCSRFMissing = errors.New("form: CSRF token missing")
	// ErrCSRFInvalid is returned when the submitted token does not verify for
	// the session and endpoint.
	ErrCSRFInvalid = errors.New("form: CSRF token invalid")
	// ErrNotMultipart is returned for requests without a multipart body.
	ErrNotMultipart = errors.New("form: request body is not multipart")
	// ErrFieldTooLarge is returned when a plain field value exceeds the cap.
	ErrFieldTooLarge = errors.New("form: field value too large")
)
