// Package model contains the domain records persisted by the repositories.
// Models carry JSON tags matching the on-disk layout of the flat files.
package model

import (
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is implemented by every collection item that is addressed by id.
type Record interface {
	RecordID() string
	Created() time.Time
}

// NewID returns an identifier of the form "<unix-millis>_<6 base36 chars>".
// Uniqueness is probabilistic and not checked.
func NewID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "_" + NewSuffix()
}

// NewSuffix returns 6 random lowercase base36 characters taken from a UUID.
func NewSuffix() string {
	u := uuid.New()
	s := strings.Repeat("0", 6) + new(big.Int).SetBytes(u[:]).Text(36)
	return s[len(s)-6:]
}
