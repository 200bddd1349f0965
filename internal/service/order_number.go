package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderNumberLength   = 12

	// DefaultOrderNumberAttempts bounds order number draws per checkout.
	DefaultOrderNumberAttempts = 5
)

// OrderNumberFunc draws a candidate order number.
type OrderNumberFunc func() (string, error)

// NewOrderNumber draws a 12 character uppercase alphanumeric order number.
func NewOrderNumber() (string, error) {
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	buf := make([]byte, orderNumberLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw order number: %w", err)
		}
		buf[i] = orderNumberAlphabet[n.Int64()]
	}
	return string(buf), nil
}
