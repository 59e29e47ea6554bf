// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package validation checks request structs with go-playground/validator.

A single validator instance is built lazily and shared by every handler. Field
names in errors are the JSON names, so a failure can be returned to the client
as-is:

	if verr := validation.ValidateStruct(&req); verr != nil {
		middleware.ValidationErrorResponse(w, verr.Fields())
		return
	}

# Custom Rules

  - username: letters, digits and the characters @ . + - _

Handlers can append checks that need the database (unique email, unknown
ingredient id) with Add before replying.
*/
package validation
