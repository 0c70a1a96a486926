package entities

// UserInterest is a single interest label selected by a user.
// The persisted set for a user is always replaced as a whole on save,
// uniqueness is enforced per (user_id, interest) pair.
type UserInterest struct {
	UserID int64
	Label  string
}
