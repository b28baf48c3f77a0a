package model

// Profile represents a row in the `profiles` table.  Profiles are
// created by the external auth service; this service only looks them up
// to decorate events (organizer) and comments (author).  Empty strings
// mean the column was NULL.
//
// Fields:
//
//	ID         – user id issued by the auth service (uuid string).
//	FullName   – display name.
//	AvatarURL  – avatar image reference.
//	Email      – contact email.
//	IsVerified – whether the organizer has been verified.
type Profile struct {
	ID         string // profiles.id
	FullName   string // profiles.full_name
	AvatarURL  string // profiles.avatar_url
	Email      string // profiles.email
	IsVerified bool   // profiles.is_verified
}
