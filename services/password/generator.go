package password

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"

	"github.com/customeros/fresh/interfaces"
	er "github.com/customeros/fresh/internal/errors"
)

const (
	KindChar      = "char"
	KindStr       = "str"
	KindHex       = "hex"
	KindBase64    = "base64"
	KindNanoid    = "nanoid"
	KindPrintable = "printable"
)

// printableAlphabet is every ASCII character from space to tilde.
var printableAlphabet = func() string {
	var b strings.Builder
	for c := byte(' '); c <= '~'; c++ {
		b.WriteByte(c)
	}
	return b.String()
}()

// Kinds lists the generator names accepted by New.
func Kinds() []string {
	return []string{KindBase64, KindChar, KindHex, KindNanoid, KindPrintable, KindStr}
}

// New returns the generator called kind. seed fills the char and str
// generators and is ignored by the random ones.
func New(kind, seed string) (interfaces.PasswordGenerator, error) {
	switch kind {
	case KindChar:
		r, _ := utf8.DecodeRuneInString(seed)
		if seed == "" {
			r = 'a'
		}
		return Char(r), nil
	case KindStr:
		if seed == "" {
			return nil, errors.New("str generator needs a seed")
		}
		return Str(seed), nil
	case KindHex:
		return Hex{}, nil
	case KindBase64:
		return Base64{}, nil
	case KindNanoid:
		return Nanoid{}, nil
	case KindPrintable:
		return Nanoid{Alphabet: printableAlphabet}, nil
	}
	return nil, errors.Wrapf(er.ErrUnknownGenerator, "%q", kind)
}

func checkLength(length int) error {
	if length <= 0 {
		return er.ErrInvalidPasswordSize
	}
	return nil
}

// Char repeats a single character. Only useful for testing a site's form.
type Char rune

func (c Char) Generate(length int) (string, error) {
	if err := checkLength(length); err != nil {
		return "", err
	}
	return strings.Repeat(string(rune(c)), length), nil
}

// Str cycles through a fixed string.
type Str string

func (s Str) Generate(length int) (string, error) {
	if err := checkLength(length); err != nil {
		return "", err
	}
	runes := []rune(string(s))
	if len(runes) == 0 {
		return "", errors.New("str generator needs a seed")
	}
	out := make([]rune, length)
	for i := range out {
		out[i] = runes[i%len(runes)]
	}
	return string(out), nil
}

type Hex struct{}

func (Hex) Generate(length int) (string, error) {
	if err := checkLength(length); err != nil {
		return "", err
	}
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}
	return hex.EncodeToString(buf)[:length], nil
}

// Base64 draws URL-safe base64 characters.
type Base64 struct{}

func (Base64) Generate(length int) (string, error) {
	if err := checkLength(length); err != nil {
		return "", err
	}
	buf := make([]byte, base64.RawURLEncoding.DecodedLen(length)+1)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:length], nil
}

// Nanoid draws from Alphabet, or the nanoid URL-safe alphabet when empty.
type Nanoid struct {
	Alphabet string
}

func (n Nanoid) Generate(length int) (string, error) {
	if err := checkLength(length); err != nil {
		return "", err
	}
	if n.Alphabet == "" {
		return gonanoid.New(length)
	}
	return gonanoid.Generate(n.Alphabet, length)
}
