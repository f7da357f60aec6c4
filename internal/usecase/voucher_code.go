package usecase

import (
	"crypto/rand"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// codeAlphabet avoids ambiguous characters like O/0, I/1, l.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeGenerator produces voucher codes of the form PREFIX-TTTT-RRRR-RRRR:
// TTTT is the low-order tail of the base-36 millisecond clock, the two RRRR
// groups are drawn from codeAlphabet with crypto/rand.
type CodeGenerator struct {
	prefix string
	rand   io.Reader
	now    func() time.Time
	format *regexp.Regexp
}

func NewCodeGenerator(prefix string) *CodeGenerator {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "UBOT"
	}
	return &CodeGenerator{
		prefix: prefix,
		rand:   rand.Reader,
		now:    time.Now,
		format: regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-[0-9A-Z]{4}-[` + codeAlphabet + `]{4}-[` + codeAlphabet + `]{4}$`),
	}
}

// Generate is side-effect free apart from consuming randomness.
func (g *CodeGenerator) Generate() (string, error) {
	const randomLength = 8

	buffer := make([]byte, randomLength)
	if _, err := io.ReadFull(g.rand, buffer); err != nil {
		return "", fmt.Errorf("read random source: %w", err)
	}
	// 256 is a multiple of 32, so the modulo is unbiased.
	for i := 0; i < randomLength; i++ {
		buffer[i] = codeAlphabet[int(buffer[i])%len(codeAlphabet)]
	}

	return g.prefix + "-" + g.timeSegment() + "-" + string(buffer[0:4]) + "-" + string(buffer[4:8]), nil
}

// Valid reports whether code has the generator's exact shape.
func (g *CodeGenerator) Valid(code string) bool { return g.format.MatchString(code) }

func (g *CodeGenerator) timeSegment() string {
	ts := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))
	if len(ts) < 4 {
		ts = strings.Repeat("0", 4-len(ts)) + ts
	}
	return ts[len(ts)-4:]
}
