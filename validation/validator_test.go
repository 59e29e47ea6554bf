// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validation

import (
	"strings"
	"testing"

	"github.com/danielhkuo/recipe-box/models"
)

func TestValidateStruct_CreateUser(t *testing.T) {
	valid := models.CreateUserRequest{
		Email:     "cook@example.com",
		Username:  "cook.1",
		FirstName: "Ann",
		LastName:  "Cook",
		Password:  "secret-pass",
	}

	tests := []struct {
		name      string
		mutate    func(r *models.CreateUserRequest)
		wantField string
	}{
		{"valid", func(r *models.CreateUserRequest) {}, ""},
		{"missing email", func(r *models.CreateUserRequest) { r.Email = "" }, "email"},
		{"bad email", func(r *models.CreateUserRequest) { r.Email = "nope" }, "email"},
		{"bad username", func(r *models.CreateUserRequest) { r.Username = "bad name!" }, "username"},
		{"long username", func(r *models.CreateUserRequest) { r.Username = strings.Repeat("a", 151) }, "username"},
		{"missing password", func(r *models.CreateUserRequest) { r.Password = "" }, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			verr := ValidateStruct(&req)

			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("expected no error, got %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			if _, ok := verr.Fields()[tt.wantField]; !ok {
				t.Errorf("expected field %q in %v", tt.wantField, verr.Fields())
			}
		})
	}
}

func TestValidateStruct_RecipeWrite(t *testing.T) {
	zero := 0
	empty := ""

	verr := ValidateStruct(&models.RecipeWriteRequest{
		Ingredients: []models.IngredientAmount{{ID: ""}},
		Name:        &empty,
		CookingTime: &zero,
	})
	if verr == nil {
		t.Fatal("expected validation error")
	}

	fields := verr.Fields()
	for _, f := range []string{"ingredients[0].id", "name", "cooking_time"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("expected field %q in %v", f, fields)
		}
	}

	// Absent optional fields pass
	if verr := ValidateStruct(&models.RecipeWriteRequest{}); verr != nil {
		t.Errorf("expected nil for empty patch, got %v", verr)
	}
}

func TestRequestValidationError_Add(t *testing.T) {
	var verr RequestValidationError
	if verr.HasErrors() {
		t.Fatal("fresh error should be empty")
	}

	verr.Add("email", "A user with that email already exists.")
	verr.Add("email", "second message")

	if !verr.HasErrors() {
		t.Fatal("expected errors after Add")
	}
	if got := verr.Fields()["email"]; got != "A user with that email already exists." {
		t.Errorf("Fields kept %q, want first message", got)
	}
	if !strings.Contains(verr.Error(), "email:") {
		t.Errorf("Error() = %q", verr.Error())
	}
}
