package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"regexp"
	"strings"
)

// JSONBody encodes v as a request body.
func JSONBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(data), nil
}

// FilePart is a file field of a multipart body.
type FilePart struct {
	Field    string
	FileName string
	Data     []byte
}

// MultipartField is a plain form field of a multipart body.
type MultipartField struct {
	Name  string
	Value string
}

// MultipartBody builds a multipart/form-data body from fields in order,
// followed by file if it is not nil. It returns the body and its content
// type including the boundary.
func MultipartBody(fields []MultipartField, file *FilePart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}

	if file != nil {
		part, err := w.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// Endpoint is a path template such as "/user/profiles/{uuid}/names".
type Endpoint string

var placeholder = regexp.MustCompile(`\{[^/{}]+\}`)

// Expand fills the placeholders in order with path-escaped args. It panics
// if the number of args does not match, which is a programming error.
func (e Endpoint) Expand(args ...string) string {
	matches := placeholder.FindAllStringIndex(string(e), -1)
	if len(matches) != len(args) {
		panic(fmt.Sprintf("endpoint %s expects %d arguments, got %d", e, len(matches), len(args)))
	}

	var b strings.Builder
	last := 0
	for i, m := range matches {
		b.WriteString(string(e)[last:m[0]])
		b.WriteString(url.PathEscape(args[i]))
		last = m[1]
	}
	b.WriteString(string(e)[last:])
	return b.String()
}
