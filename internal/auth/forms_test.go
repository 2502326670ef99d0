package auth

import (
	"testing"

	"github.com/lvonguyen/sentinel-console/internal/api"
)

// =============================================================================
// Form Validation Tests
// =============================================================================

// TestValidateLogin verifies both credentials are required.
func TestValidateLogin(t *testing.T) {
	if err := ValidateLogin(api.LoginRequest{Username: "analyst", Password: "hunter22"}); err != nil {
		t.Errorf("complete form should pass: %v", err)
	}
	if err := ValidateLogin(api.LoginRequest{Username: "analyst"}); err == nil {
		t.Error("missing password should fail")
	}
	if err := ValidateLogin(api.LoginRequest{Password: "hunter22"}); err == nil {
		t.Error("missing username should fail")
	}
}

// TestValidateRegister verifies the field constraints on registration.
func TestValidateRegister(t *testing.T) {
	valid := api.RegisterRequest{
		Username: "analyst",
		Email:    "analyst@example.com",
		Password: "longenough",
	}
	if err := ValidateRegister(valid); err != nil {
		t.Fatalf("valid form should pass: %v", err)
	}

	cases := []struct {
		name string
		req  api.RegisterRequest
	}{
		{"short username", api.RegisterRequest{Username: "ab", Email: "a@b.com", Password: "longenough"}},
		{"bad email", api.RegisterRequest{Username: "analyst", Email: "not-an-email", Password: "longenough"}},
		{"short password", api.RegisterRequest{Username: "analyst", Email: "a@b.com", Password: "short"}},
		{"bad role", api.RegisterRequest{Username: "analyst", Email: "a@b.com", Password: "longenough", Role: "root"}},
	}

	for _, tc := range cases {
		if err := ValidateRegister(tc.req); err == nil {
			t.Errorf("%s: should fail validation", tc.name)
		}
	}

	valid.Role = "viewer"
	if err := ValidateRegister(valid); err != nil {
		t.Errorf("valid role should pass: %v", err)
	}
}
