package profile

// Patch is a partial UserProfile. Nil fields are left untouched by Apply, so a
// patch decoded from JSON only changes the keys that were present.
type Patch struct {
	Mobile      *string `json:"mobile,omitempty"`
	Name        *string `json:"name,omitempty"`
	DOB         *string `json:"dob,omitempty"`
	Address     *string `json:"address,omitempty"`
	AadharURL   *string `json:"aadharUrl,omitempty"`
	PANURL      *string `json:"panUrl,omitempty"`
	SelfieURL   *string `json:"selfieUrl,omitempty"`
	MPIN        *string `json:"mpin,omitempty"`
	Fingerprint *bool   `json:"fingerprint,omitempty"`
}

// String returns a pointer to s for building patches.
func String(s string) *string { return &s }

// Bool returns a pointer to b for building patches.
func Bool(b bool) *bool { return &b }

// PatchFrom builds a patch that sets every field of p.
func PatchFrom(p UserProfile) Patch {
	return Patch{
		Mobile:      String(p.Mobile),
		Name:        String(p.Name),
		DOB:         String(p.DOB),
		Address:     String(p.Address),
		AadharURL:   String(p.AadharURL),
		PANURL:      String(p.PANURL),
		SelfieURL:   String(p.SelfieURL),
		MPIN:        String(p.MPIN),
		Fingerprint: Bool(p.Fingerprint),
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply returns base with every non-nil field of the patch copied over it.
func (p Patch) Apply(base UserProfile) UserProfile {
	out := base
	if p.Mobile != nil {
		out.Mobile = *p.Mobile
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.DOB != nil {
		out.DOB = *p.DOB
	}
	if p.Address != nil {
		out.Address = *p.Address
	}
	if p.AadharURL != nil {
		out.AadharURL = *p.AadharURL
	}
	if p.PANURL != nil {
		out.PANURL = *p.PANURL
	}
	if p.SelfieURL != nil {
		out.SelfieURL = *p.SelfieURL
	}
	if p.MPIN != nil {
		out.MPIN = *p.MPIN
	}
	if p.Fingerprint != nil {
		out.Fingerprint = *p.Fingerprint
	}
	return out
}
