package model

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from an input table.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column(s): %s", e.Table, strings.Join(e.Missing, ", "))
}
