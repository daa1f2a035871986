package domain

// Operator is a back-office user allowed to drive the ledger API.
type Operator struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // argon2id encoded
}
