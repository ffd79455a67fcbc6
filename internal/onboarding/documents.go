package onboarding

import (
	"io"
	"strings"
)

var mediaTypes = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// Document is one file picked or captured during signup.
type Document struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Documents groups the three uploads signup requires.
type Documents struct {
	Aadhar Document
	PAN    Document
	Selfie Document
}

// Extension returns the lower-case file extension, jpg when there is none.
func (d Document) Extension() string {
	return extension(d.Name)
}

// MediaType is the declared content type, or the one implied by the extension.
func (d Document) MediaType() string {
	if ct := strings.ToLower(strings.TrimSpace(d.ContentType)); ct != "" {
		return ct
	}
	return mediaTypes[d.Extension()]
}

func (d Document) validate(field string) error {
	if d.Body == nil {
		return &ValidationError{Field: field, Reason: "no document selected"}
	}
	ct := d.MediaType()
	for _, allowed := range mediaTypes {
		if ct == allowed {
			return nil
		}
	}
	return &ValidationError{Field: field, Reason: "only PDF, JPEG and PNG files are accepted"}
}

func (d Documents) validate() error {
	if err := d.Aadhar.validate("aadhar"); err != nil {
		return err
	}
	if err := d.PAN.validate("pan"); err != nil {
		return err
	}
	return d.Selfie.validate("selfie")
}
