package identity

import (
	"time"

	"github.com/verinova/onboarding/internal/profile"
)

// Account is a registered customer as the auth API stores it.
type Account struct {
	ID          string
	Mobile      string
	Name        string
	DOB         string
	Address     string
	AadharURL   string
	PANURL      string
	SelfieURL   string
	MPINHash    []byte
	Fingerprint bool
	CreatedAt   time.Time
	LastLogin   *time.Time
}

// Profile converts the account to the wire profile. The MPIN hash never
// leaves the server; callers pass the verified plain MPIN to echo, if any.
func (a Account) Profile(mpin string) profile.UserProfile {
	return profile.UserProfile{
		Mobile:      a.Mobile,
		Name:        a.Name,
		DOB:         a.DOB,
		Address:     a.Address,
		AadharURL:   a.AadharURL,
		PANURL:      a.PANURL,
		SelfieURL:   a.SelfieURL,
		MPIN:        mpin,
		Fingerprint: a.Fingerprint,
	}
}
