// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/jeranaias/heartmind/internal/util"
)

// Shown when the backend rejects a login or signup without a message.
const (
	MsgLoginFailed  = "Login failed"
	MsgSignupFailed = "Signup failed"
)

var validate = validator.New()

// LoginForm is what the user types to log in.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// SignupForm is what the user types to create an account.
type SignupForm struct {
	Name     string `validate:"required,max=80"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// FormError lists every problem with a submitted form.
type FormError struct {
	Problems []string
}

func (e *FormError) Error() string {
	return strings.Join(e.Problems, ", ")
}

// Validate normalizes the fields and checks them.
func (f *LoginForm) Validate() error {
	f.Email = util.NormalizeInput(f.Email)
	return formError(validate.Struct(f))
}

// Validate normalizes the fields and checks them.
func (f *SignupForm) Validate() error {
	f.Name = util.NormalizeInput(f.Name)
	f.Email = util.NormalizeInput(f.Email)
	return formError(validate.Struct(f))
}

func formError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := &FormError{Problems: make([]string, 0, len(verrs))}
	for _, v := range verrs {
		field := strings.ToLower(v.Field())
		switch v.ActualTag() {
		case "required":
			fe.Problems = append(fe.Problems, field+" is required")
		case "email":
			fe.Problems = append(fe.Problems, field+" must be a valid email address")
		case "min":
			fe.Problems = append(fe.Problems, fmt.Sprintf("%s must be at least %s characters", field, v.Param()))
		case "max":
			fe.Problems = append(fe.Problems, fmt.Sprintf("%s must be at most %s characters", field, v.Param()))
		default:
			fe.Problems = append(fe.Problems, field+" is not valid")
		}
	}
	return fe
}
