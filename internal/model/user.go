package model

// User represents an account row in the `users` table.  The password is
// only ever stored as a bcrypt hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
type User struct {
	ID           uint64 // users.id
	Username     string // users.username
	Email        string // users.email
	PasswordHash string // users.password_hash
}
