package model

import "time"

// User is the account document stored under `users/<uid>`. The shop
// tag is derived from the e-mail once, at account creation, and is
// immutable afterwards: every code the shop ever issues embeds it.
//
// Fields:
//  Email     – owner's e-mail address.
//  ShopTag   – short lowercase identifier scoping the shop's codes.
//  CreatedAt – account creation timestamp.
type User struct {
	Email     string    `json:"email"`
	ShopTag   string    `json:"shop_tag"`
	CreatedAt time.Time `json:"created_at"`
}

// Credential is the login document stored under
// `user-credentials/<email>`. The store offers no queries over
// document fields, so the e-mail is the key and the uid lives in the
// body; claiming the key with a create-if-absent write doubles as the
// e-mail uniqueness check.
//
// Fields:
//  UID          – identifier the rest of the system knows the user by.
//  PasswordHash – bcrypt hash of the password.
//  CreatedAt    – registration timestamp.
type Credential struct {
	UID          string    `json:"uid"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is the session document stored under
// `refresh-tokens/<sha256(token)>`. The plain token is not stored;
// only its SHA-256 hash, which is the document key. The e-mail rides
// along so a refresh can mint access tokens without a credential
// lookup.
//
// Fields:
//  UID       – owner of the session.
//  Email     – owner's e-mail, copied into new access tokens.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (nil while active).
//  CreatedAt – issuance timestamp.
type RefreshToken struct {
	UID       string     `json:"uid"`
	Email     string     `json:"email"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
