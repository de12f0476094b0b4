package form

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/csrf"
)

// TokenField is the form field name carrying the CSRF token.
const TokenField = "t"

// defaultMaxValueSize caps a single plain field value.
const defaultMaxValueSize = 1 << 20

// Reader decodes multipart submissions with CSRF enforcement.
//
// The stream is processed strictly in document order and gated on the token:
// every part before the token field is drained unread, and the moment the
// token is identified as wrong the request is rejected — no file reader runs
// for a submission that is going to be thrown away. Forms must therefore
// place the token field first; anything the client sends before it is lost.
type Reader struct {
	binder       *csrf.Binder
	maxValueSize int64
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxValueSize caps the byte length of a single plain field value.
func WithMaxValueSize(n int64) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.maxValueSize = n
		}
	}
}

// NewReader creates a form reader bound to a CSRF binder.
func NewReader(binder *csrf.Binder, opts ...ReaderOption) (*Reader, error) {
	if binder == nil {
		return nil, errors.New("form: csrf binder is required")
	}

	r := &Reader{
		binder:       binder,
		maxValueSize: defaultMaxValueSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Read decodes a multipart submission for the given schema, verifying its
// CSRF token against sessionID before any declared field is processed.
//
// Returns ErrCSRFMissing when the stream ends without a token field and
// ErrCSRFInvalid the moment a wrong token is seen; both are client errors the
// caller should surface, unlike the silent degradation of cookie handling.
func (r *Reader) Read(req *http.Request, sessionID []byte, schema Schema) (*Form, error) {
	if _, ok := schema.Fields[TokenField]; ok {
		return nil, fmt.Errorf("form: schema %q declares reserved field %q", schema.Name, TokenField)
	}

	mr, err := req.MultipartReader()
	if err != nil {
		return nil, errors.Join(ErrNotMultipart, err)
	}

	if err := r.verifyToken(mr, sessionID, schema.Name); err != nil {
		return nil, err
	}

	return r.readFields(mr, schema)
}

// verifyToken consumes parts until the token field is found, draining
// everything before it.
func (r *Reader) verifyToken(mr *multipart.Reader, sessionID []byte, endpoint string) error {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return ErrCSRFMissing
		}
		if err != nil {
			return fmt.Errorf("form: read part: %w", err)
		}

		if part.FormName() != TokenField || part.FileName() != "" {
			drain(part)
			continue
		}

		token, err := readValue(part, r.maxValueSize)
		if err != nil {
			return err
		}

		if !r.binder.VerifyString(sessionID, endpoint, token) {
			return ErrCSRFInvalid
		}
		return nil
	}
}

func (r *Reader) readFields(mr *multipart.Reader, schema Schema) (*Form, error) {
	form := newForm(schema)

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return nil, fmt.Errorf("form: read part: %w", err)
		}

		name := part.FormName()
		field, declared := schema.Fields[name]

		switch {
		case part.FileName() != "":
			if !declared || field.Reader == nil {
				drain(part)
				continue
			}
			result, err := field.Reader(part, part.FileName())
			if err != nil {
				return nil, fmt.Errorf("form: field %q: %w", name, err)
			}
			form.addFile(name, field, result)

		default:
			if !declared || field.Reader != nil {
				drain(part)
				continue
			}
			value, err := readValue(part, r.maxValueSize)
			if err != nil {
				return nil, err
			}
			form.addValue(name, field, value)
		}
	}
}

// readValue reads a plain field value, failing when it exceeds the cap.
func readValue(part *multipart.Part, limit int64) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return "", fmt.Errorf("form: read field value: %w", err)
	}
	if int64(len(b)) > limit {
		return "", ErrFieldTooLarge
	}
	return string(b), nil
}

func drain(part *multipart.Part) {
	_, _ = io.Copy(io.Discard, part)
	_ = part.Close()
}
