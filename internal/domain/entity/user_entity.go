package entity

// User is the aggregate root for the account domain
// Password holds a bcrypt hash, never plaintext.
//
// Firstname mirrors Username at signup time; the signup form collects no
// separate display name.
type User struct {
	ID        int64
	Firstname string
	Username  string
	Email     string
	Password  string
}
