package domain

// BuildIdempotencyKey scopes a caller key to the operation kind, so the same
// key used for a mint and a burn never collides.
func BuildIdempotencyKey(kind TransactionKind, key string) string {
	return "ledger:" + string(kind) + ":" + key
}
