package validation

import "strings"

const MinPasswordLength = 6

type SignupInput struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	StoreName string `json:"storeName" validate:"omitempty,min=2,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// NormalizeEmail trims and lowercases an address; users are keyed on this form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateSignup normalizes in place and reports the first violation.
func ValidateSignup(in *SignupInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	in.StoreName = strings.TrimSpace(in.StoreName)

	if fe := firstError(in, genericMessage); fe != nil {
		return fe
	}
	return nil
}

// ValidateLogin normalizes in place and reports the first violation.
func ValidateLogin(in *LoginInput) error {
	in.Email = NormalizeEmail(in.Email)

	if fe := firstError(in, genericMessage); fe != nil {
		return fe
	}
	return nil
}
