package models

import (
	"fmt"
	"time"
)

// FormatReference builds a human-readable reference like CAPA-202609-0042.
func FormatReference(prefix string, t time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, t.Format("200601"), seq)
}
