package profile

import (
	"encoding/json"
	"testing"
)

func TestApplyOnlyTouchesSetFields(t *testing.T) {
	base := UserProfile{Mobile: "9999999999", Name: "Bob", Fingerprint: true}

	got := Patch{Address: String("221B Baker St")}.Apply(base)
	want := UserProfile{Mobile: "9999999999", Name: "Bob", Address: "221B Baker St", Fingerprint: true}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	cleared := Patch{Name: String(""), Fingerprint: Bool(false)}.Apply(got)
	if cleared.Name != "" || cleared.Fingerprint {
		t.Fatalf("explicit zero values should overwrite, got %+v", cleared)
	}
	if cleared.Mobile != base.Mobile {
		t.Fatalf("mobile should survive, got %q", cleared.Mobile)
	}
}

func TestPatchFromRoundTrip(t *testing.T) {
	p := UserProfile{
		Mobile:    "9999999999",
		Name:      "Alice Doe",
		DOB:       "1990-01-01",
		Address:   "1 Main Rd",
		AadharURL: "https://cdn.example/a.pdf",
		PANURL:    "https://cdn.example/p.pdf",
		SelfieURL: "https://cdn.example/s.jpg",
		MPIN:      "1234",
	}
	if got := PatchFrom(p).Apply(Default()); got != p {
		t.Fatalf("expected %+v, got %+v", p, got)
	}
}

func TestPatchJSONKeepsAbsentKeysNil(t *testing.T) {
	var patch Patch
	if err := json.Unmarshal([]byte(`{"mobile":"9999999999","name":"Alice","fingerprint":false}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if patch.Address != nil || patch.MPIN != nil {
		t.Fatalf("absent keys must stay nil: %+v", patch)
	}
	if patch.Fingerprint == nil || *patch.Fingerprint {
		t.Fatalf("explicit false must be kept")
	}

	got := patch.Apply(UserProfile{Address: "kept", Fingerprint: true})
	if got.Address != "kept" || got.Name != "Alice" || got.Fingerprint {
		t.Fatalf("unexpected merge result %+v", got)
	}
}

func TestFirstName(t *testing.T) {
	if got := (UserProfile{Name: "  Alice  Doe "}).FirstName(); got != "Alice" {
		t.Fatalf("expected Alice, got %q", got)
	}
	if got := Default().FirstName(); got != "User" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestMaskMobile(t *testing.T) {
	cases := map[string]string{
		"9999991234": "******1234",
		"1234":       "1234",
		"":           "",
	}
	for in, want := range cases {
		if got := MaskMobile(in); got != want {
			t.Fatalf("MaskMobile(%q) = %q, want %q", in, got, want)
		}
	}
}
