package model

// Classification is an accounting-category label assigned to a transaction.
type Classification string

// Unclassified is the label for transactions no rule matched.
const Unclassified Classification = "NO CLASIFICADO"

// IsClassified reports whether c is a real category.
func (c Classification) IsClassified() bool {
	return c != "" && c != Unclassified
}

func (c Classification) String() string { return string(c) }
