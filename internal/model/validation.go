package model

import (
	"fmt"
	"unicode/utf8"
)

// ValidationError reports a field value the store would reject through
// one of its check constraints.  Handlers translate it into a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Message }

// runeLen counts characters the way CHAR_LENGTH does for utf8mb4 columns.
func runeLen(s string) int { return utf8.RuneCountInString(s) }

func tooLong(max int) string { return fmt.Sprintf("must be at most %d characters", max) }

func outOfRange(min, max int) string { return fmt.Sprintf("must be between %d and %d", min, max) }
