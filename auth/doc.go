// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides organizer authentication and voting-token key
generation.

# Organizer Credentials

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, password)

Handlers resolve the acting organizer explicitly from HTTP Basic
credentials — there is no session or ambient request state:

	user, err := auth.Authenticate(db, r)

Authenticate returns ErrNoCredentials when the header is absent and
ErrInvalidCredentials for an unknown username or wrong password.

# Voting Token Keys

Token keys are 6 characters drawn from uppercase letters and digits with
crypto/rand:

	key, err := auth.GenerateTokenKey()

36^6 ≈ 2.2 billion combinations, far beyond what a small organization will
ever issue. Global uniqueness against already-issued keys is enforced by the
token issuance transaction, not here.
*/
package auth
