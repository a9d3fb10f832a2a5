package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signupShape struct {
	Email    string `validate:"required,min=5,max=70,email"`
	Password string `validate:"required,userpassword"`
}

func TestValidate_PasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "meets policy", password: "Passw0rd", valid: true},
		{name: "too short", password: "Pa0x", valid: false},
		{name: "no uppercase", password: "passw0rdd", valid: false},
		{name: "no lowercase", password: "PASSW0RDD", valid: false},
		{name: "no digit", password: "Passwordd", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(signupShape{Email: "user@example.com", Password: tt.password})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				var verr *Error
				assert.ErrorAs(t, err, &verr)
				assert.Equal(t, "Password", verr.Field)
			}
		})
	}
}

func TestValidate_Email(t *testing.T) {
	err := Validate(signupShape{Email: "not-an-email", Password: "Passw0rd"})
	assert.Error(t, err)
	var verr *Error
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please provide a valid email address", verr.Message)

	err = Validate(signupShape{Email: "", Password: "Passw0rd"})
	assert.Error(t, err)
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email is required", verr.Message)
}
