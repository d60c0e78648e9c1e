// Package model defines the data structures used throughout the application.
package model

// BlankName replaces a display name the upstream source left empty.
const BlankName = " "

// User is one harvested GitHub account.
//
// ID is assigned by GitHub, not generated locally, and is the primary key of the
// users table. Records are never mutated after the harvest builds them: the whole
// table is replaced on the next seed run.
//
// The JSON names match what the profiles endpoint has always returned, so
// clients see user_id/name/login/avatar/user_type/profile.
type User struct {
	ID         int64  `json:"user_id"   db:"user_id"`   // GitHub's numeric user ID
	Name       string `json:"name"      db:"name"`      // display name, BlankName when unset
	Login      string `json:"login"     db:"login"`     // GitHub username, e.g. "mojombo"
	AvatarURL  string `json:"avatar"    db:"avatar"`    // avatar image URL
	Type       string `json:"user_type" db:"user_type"` // "User", "Organization", ...
	ProfileURL string `json:"profile"   db:"profile"`   // html_url of the GitHub profile
}
