package booking

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const confirmationAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ConfirmationGenerator produces a human-shareable confirmation number.
type ConfirmationGenerator func(now time.Time) string

// NewConfirmationNumber returns RR-<base36 millis>-<6 random chars>. Uniqueness is
// probabilistic; the store rejects collisions.
func NewConfirmationNumber(now time.Time) string {
	prefix := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return "RR-" + prefix + "-" + randomSuffix(6)
}

func randomSuffix(n int) string {
	var b strings.Builder
	limit := big.NewInt(int64(len(confirmationAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			b.WriteByte(confirmationAlphabet[time.Now().UnixNano()%int64(len(confirmationAlphabet))])
			continue
		}
		b.WriteByte(confirmationAlphabet[idx.Int64()])
	}
	return b.String()
}
