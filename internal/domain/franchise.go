package domain

type Franchise struct {
	ID     int64            `json:"id"`
	Name   string           `json:"name"`
	Admins []FranchiseAdmin `json:"admins"`
	Stores []Store          `json:"stores"`
}

// FranchiseAdmin links a franchise to an existing user. Admins are always
// resolved by email against the user table; a franchise never creates users.
type FranchiseAdmin struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Store struct {
	ID          int64  `json:"id"`
	FranchiseID int64  `json:"franchiseId"`
	Name        string `json:"name"`
}
