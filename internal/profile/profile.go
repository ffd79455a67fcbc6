package profile

import "strings"

// UserProfile is the account and session record kept on the device. The JSON
// field names are shared by local storage and the remote auth API.
type UserProfile struct {
	Mobile      string `json:"mobile"`
	Name        string `json:"name"`
	DOB         string `json:"dob"`
	Address     string `json:"address"`
	AadharURL   string `json:"aadharUrl"`
	PANURL      string `json:"panUrl"`
	SelfieURL   string `json:"selfieUrl"`
	MPIN        string `json:"mpin"`
	Fingerprint bool   `json:"fingerprint"`
}

// Default returns the empty profile every process starts from.
func Default() UserProfile {
	return UserProfile{}
}

// IsZero reports whether p carries no data at all.
func (p UserProfile) IsZero() bool {
	return p == UserProfile{}
}

// FirstName is the first word of the display name, or "User" when unnamed.
func (p UserProfile) FirstName() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return "User"
	}
	return fields[0]
}

// HasDocuments reports whether all three KYC documents have been uploaded.
func (p UserProfile) HasDocuments() bool {
	return p.AadharURL != "" && p.PANURL != "" && p.SelfieURL != ""
}

// MaskMobile keeps the last four digits of a mobile number for logs.
func MaskMobile(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	return strings.Repeat("*", len(mobile)-4) + mobile[len(mobile)-4:]
}
