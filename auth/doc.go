// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifiers, login tokens, password hashing and the
request-scoped user.

# IDs

Database records use random UUIDs:

	id := auth.NewID()

Random hex IDs of any length:

	id, err := auth.GenerateID(16)  // 32 hex characters

# Login Tokens

Login tokens are random 20-byte (160-bit) secrets, hex encoded:

	token, err := auth.GenerateAuthToken()

Clients send them as "Authorization: Token <token>". A user has at most one
token; logging out deletes it.

# Passwords

Passwords are hashed with bcrypt:

	hash, err := auth.HashPassword("s3cret")
	err = auth.CheckPassword(hash, "s3cret")

BcryptCost controls the work factor. Tests lower it to bcrypt.MinCost.

# Request Context

The authentication middleware stores the user in the request context:

	ctx = auth.WithUser(ctx, user)
	user, ok := auth.UserFromContext(r.Context())
*/
package auth
