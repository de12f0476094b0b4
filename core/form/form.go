package form

import "io"

// FileReader consumes a file part's stream and produces its processed result
// (a stored file handle, a transcode job, a parsed document). It runs only
// after the submission's CSRF token has been verified.
type FileReader func(r io.Reader, filename string) (any, error)

// Field describes one expected form field.
type Field struct {
	// Multiple allows the field to appear more than once; otherwise later
	// occurrences overwrite earlier ones.
	Multiple bool

	// Reader handles file parts for this field. Nil means a plain value field.
	Reader FileReader
}

// Schema declares a form endpoint: its stable logical name (the CSRF binding
// scope) and the fields it accepts. Unknown fields in a submission are
// silently dropped.
type Schema struct {
	Name   string
	Fields map[string]Field
}

// Form is the decoded result of a submission, together with validation state
// accumulated by the handler.
type Form struct {
	values map[string][]string
	files  map[string][]any

	valid  bool
	errors map[string][]string
}

func newForm(schema Schema) *Form {
	return &Form{
		values: make(map[string][]string, len(schema.Fields)),
		files:  make(map[string][]any),
		valid:  true,
		errors: make(map[string][]string),
	}
}

// Value returns the first submitted value for name, or "".
func (f *Form) Value(name string) string {
	if v := f.values[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns all submitted values for name.
func (f *Form) Values(name string) []string {
	return f.values[name]
}

// File returns the first file result for name, or nil.
func (f *Form) File(name string) any {
	if v := f.files[name]; len(v) > 0 {
		return v[0]
	}
	return nil
}

// Files returns all file results for name.
func (f *Form) Files(name string) []any {
	return f.files[name]
}

// AddError records a validation error against a field and marks the form
// invalid. An empty field name records a form-level error.
func (f *Form) AddError(field, message string) {
	f.errors[field] = append(f.errors[field], message)
	f.valid = false
}

// Valid reports whether no validation errors have been recorded.
func (f *Form) Valid() bool {
	return f.valid
}

// Errors returns the validation errors recorded for a field.
// An empty field name returns form-level errors.
func (f *Form) Errors(field string) []string {
	return f.errors[field]
}

func (f *Form) addValue(name string, field Field, value string) {
	if field.Multiple {
		f.values[name] = append(f.values[name], value)
	} else {
		f.values[name] = []string{value}
	}
}

func (f *Form) addFile(name string, field Field, result any) {
	if field.Multiple {
		f.files[name] = append(f.files[name], result)
	} else {
		f.files[name] = []any{result}
	}
}
