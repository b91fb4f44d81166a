package reference

import (
	"github.com/segmentio/ksuid"
)

// Prefix marks transaction references
const Prefix = "TXN-"

// New returns a new time-sortable transaction reference
func New() string {
	return Prefix + ksuid.New().String()
}
