package onboarding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verinova/onboarding/internal/logging"
	"github.com/verinova/onboarding/internal/profile"
	"github.com/verinova/onboarding/internal/session"
)

const dobLayout = "2006-01-02"

// Step is the next piece of information the signup flow needs.
type Step string

const (
	StepMobile    Step = "mobile"
	StepPersonal  Step = "personal_details"
	StepDocuments Step = "documents"
	StepMPIN      Step = "mpin"
	StepSubmit    Step = "submit"
)

// ErrIncomplete is returned by Complete when earlier steps are missing.
var ErrIncomplete = errors.New("signup is incomplete")

// ValidationError names the field that failed. It matches session.ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return session.ErrValidation }

// Uploader obtains presigned URLs and uploads documents to them.
type Uploader interface {
	UploadURL(ctx context.Context, extension string) (string, error)
	Upload(ctx context.Context, presigned, contentType string, body io.Reader) (string, error)
}

// Flow walks a new user through mobile, personal details, documents and MPIN,
// accumulating everything in the session store before the final signup call.
type Flow struct {
	session  *session.Store
	uploader Uploader
	logger   *slog.Logger
	now      func() time.Time
}

// NewFlow builds a signup flow on top of an initialised session store.
func NewFlow(store *session.Store, uploader Uploader, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Flow{session: store, uploader: uploader, logger: logger, now: time.Now}
}

// Next reports the first step whose data is still missing.
func (f *Flow) Next() Step {
	p := f.session.Profile()
	switch {
	case p.Mobile == "":
		return StepMobile
	case p.Name == "" || p.DOB == "" || p.Address == "":
		return StepPersonal
	case !p.HasDocuments():
		return StepDocuments
	case p.MPIN == "":
		return StepMPIN
	default:
		return StepSubmit
	}
}

// SetMobile records the mobile number used as login identifier.
func (f *Flow) SetMobile(mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return &ValidationError{Field: "mobile", Reason: "enter your mobile number"}
	}
	digits := strings.TrimPrefix(mobile, "+")
	if len(digits) < 6 || len(digits) > 15 {
		return &ValidationError{Field: "mobile", Reason: "must be 6 to 15 digits"}
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return &ValidationError{Field: "mobile", Reason: "must be numeric"}
		}
	}
	f.session.UpdateProfile(profile.Patch{Mobile: profile.String(mobile)})
	return nil
}

// SetPersonalDetails records name, date of birth (YYYY-MM-DD) and address.
func (f *Flow) SetPersonalDetails(name, dob, address string) error {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	dob = strings.TrimSpace(dob)

	if name == "" {
		return &ValidationError{Field: "name", Reason: "enter your name"}
	}
	if dob == "" {
		return &ValidationError{Field: "dob", Reason: "enter your date of birth"}
	}
	born, err := time.Parse(dobLayout, dob)
	if err != nil {
		return &ValidationError{Field: "dob", Reason: "use the YYYY-MM-DD format"}
	}
	if born.After(f.now()) {
		return &ValidationError{Field: "dob", Reason: "cannot be in the future"}
	}
	if address == "" {
		return &ValidationError{Field: "address", Reason: "enter your address"}
	}

	f.session.UpdateProfile(profile.Patch{
		Name:    profile.String(name),
		DOB:     profile.String(born.Format(dobLayout)),
		Address: profile.String(address),
	})
	return nil
}

// SetMPIN records the 4-digit MPIN once it has been entered twice.
func (f *Flow) SetMPIN(mpin, confirm string) error {
	if err := session.ValidateMPIN(mpin); err != nil {
		return &ValidationError{Field: "mpin", Reason: fmt.Sprintf("must be %d digits", session.MPINLength)}
	}
	if mpin != confirm {
		return &ValidationError{Field: "mpin", Reason: "entries do not match"}
	}
	f.session.UpdateProfile(profile.Patch{MPIN: profile.String(mpin)})
	return nil
}

// SetFingerprint records the biometric login opt-in.
func (f *Flow) SetFingerprint(enabled bool) {
	f.session.UpdateProfile(profile.Patch{Fingerprint: profile.Bool(enabled)})
}

// Complete creates the account from the accumulated profile.
func (f *Flow) Complete(ctx context.Context) error {
	if step := f.Next(); step != StepSubmit {
		return fmt.Errorf("%w: %s missing", ErrIncomplete, step)
	}
	return f.session.Signup(ctx)
}

// UploadDocuments uploads the three KYC documents concurrently. The profile
// is only updated when all three uploads succeed.
func (f *Flow) UploadDocuments(ctx context.Context, docs Documents) error {
	if err := docs.validate(); err != nil {
		return err
	}

	var urls [3]string
	g, gctx := errgroup.WithContext(ctx)
	fields := [3]string{"aadhar", "pan", "selfie"}
	for i, doc := range [3]Document{docs.Aadhar, docs.PAN, docs.Selfie} {
		i, doc := i, doc
		g.Go(func() error {
			url, err := f.upload(gctx, doc)
			if err != nil {
				return fmt.Errorf("upload %s: %w", fields[i], err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		f.logger.Warn("document upload failed", slog.Any("error", err))
		return err
	}

	f.session.UpdateProfile(profile.Patch{
		AadharURL: profile.String(urls[0]),
		PANURL:    profile.String(urls[1]),
		SelfieURL: profile.String(urls[2]),
	})
	return nil
}

func (f *Flow) upload(ctx context.Context, doc Document) (string, error) {
	presigned, err := f.uploader.UploadURL(ctx, doc.Extension())
	if err != nil {
		return "", err
	}
	return f.uploader.Upload(ctx, presigned, doc.MediaType(), doc.Body)
}

// extension of name without the dot, defaulting to jpg like camera captures.
func extension(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}
