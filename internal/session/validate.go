package session

import (
	"fmt"
	"strings"
)

// MPINLength is the number of digits in an MPIN.
const MPINLength = 4

func validateCredentials(mobile, mpin string) error {
	if strings.TrimSpace(mobile) == "" {
		return fmt.Errorf("%w: mobile number is required", ErrValidation)
	}
	return ValidateMPIN(mpin)
}

// ValidateMPIN checks that mpin is exactly MPINLength ASCII digits.
func ValidateMPIN(mpin string) error {
	if len(mpin) != MPINLength {
		return fmt.Errorf("%w: mpin must be %d digits", ErrValidation, MPINLength)
	}
	for _, r := range mpin {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: mpin must be numeric", ErrValidation)
		}
	}
	return nil
}
