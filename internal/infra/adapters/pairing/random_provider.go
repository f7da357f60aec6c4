package pairing

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"ubot-platform/internal/domain/ports/adapter"
)

var _ adapter.PairingProvider = (*RandomProvider)(nil)

// CodeDigits is the length of a pairing code.
const CodeDigits = 6

// RandomProvider hands out random numeric codes without contacting any
// messaging platform. It stands in until a real linker is wired.
type RandomProvider struct {
	rand io.Reader
}

func NewRandomProvider() *RandomProvider {
	return &RandomProvider{rand: rand.Reader}
}

func (p *RandomProvider) Name() string { return "random" }

func (p *RandomProvider) PairingCode(ctx context.Context, sessionID, phone string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n, err := rand.Int(p.rand, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("pairing: read random: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeDigits, n.Int64()), nil
}
