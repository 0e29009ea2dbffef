package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

// MultipartForm is an ordered set of text fields plus optional files.
type MultipartForm struct {
	fields []formField
	files  []FormFile
}

type formField struct {
	name  string
	value string
}

// FormFile is one uploaded file forwarded to the backend.
type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

func (f *MultipartForm) AddField(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: value})
}

func (f *MultipartForm) AddFile(file FormFile) {
	f.files = append(f.files, file)
}

func (f *MultipartForm) encode() (*requestBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", field.name, err)
		}
	}

	for _, file := range f.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, fmt.Errorf("copy file %s: %w", file.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return &requestBody{contentType: w.FormDataContentType(), reader: &buf}, nil
}
