package password

import (
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	er "github.com/customeros/fresh/internal/errors"
)

func TestGenerators_Length(t *testing.T) {
	for _, kind := range Kinds() {
		generator, err := New(kind, "foo")
		require.NoError(t, err, kind)
		for n := 1; n <= 64; n++ {
			password, err := generator.Generate(n)
			require.NoError(t, err, kind)
			assert.Equal(t, n, utf8.RuneCountInString(password), "%s/%d", kind, n)
		}
	}
}

func TestGenerators_Alphabets(t *testing.T) {
	cases := map[string]*regexp.Regexp{
		KindHex:       regexp.MustCompile(`^[0-9a-f]+$`),
		KindBase64:    regexp.MustCompile(`^[A-Za-z0-9_-]+$`),
		KindNanoid:    regexp.MustCompile(`^[A-Za-z0-9_-]+$`),
		KindPrintable: regexp.MustCompile(`^[ -~]+$`),
	}
	for kind, pattern := range cases {
		generator, err := New(kind, "")
		require.NoError(t, err)
		password, err := generator.Generate(50)
		require.NoError(t, err)
		assert.Regexp(t, pattern, password, kind)
	}
}

func TestCharAndStr(t *testing.T) {
	generator, err := New(KindChar, "")
	require.NoError(t, err)
	password, err := generator.Generate(4)
	require.NoError(t, err)
	assert.Equal(t, "aaaa", password)

	password, err = Str("foo").Generate(7)
	require.NoError(t, err)
	assert.Equal(t, "foofoof", password)

	_, err = New(KindStr, "")
	assert.Error(t, err)
}

func TestRandomGeneratorsDiffer(t *testing.T) {
	a, err := Base64{}.Generate(50)
	require.NoError(t, err)
	b, err := Base64{}.Generate(50)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNew_Errors(t *testing.T) {
	_, err := New("diceware", "")
	assert.ErrorIs(t, err, er.ErrUnknownGenerator)

	_, err = Hex{}.Generate(0)
	assert.ErrorIs(t, err, er.ErrInvalidPasswordSize)
}
