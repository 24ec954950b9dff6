package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAccountError_Messages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{Status("https://lobste.rs/login/set_new_password", 200), "unexpected status 200 at https://lobste.rs/login/set_new_password"},
		{MissingElement("https://news.ycombinator.com/forgot", `input[name="fnid"]`), `missing element input[name="fnid"] at https://news.ycombinator.com/forgot`},
		{MissingAttr("https://news.ycombinator.com/forgot", `input[name="fnid"]`, "value"), `missing attribute value on input[name="fnid"] at https://news.ycombinator.com/forgot`},
		{MissingPart("text/plain"), "message has no text/plain part"},
		{PatternMismatch("token=([a-z]+)", nil), "no match for pattern token=([a-z]+)"},
		{MissingMessage("from:(a@b.c)"), "no message matching from:(a@b.c)"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Error())
	}
}

func TestKindOf_SeesThroughWrapping(t *testing.T) {
	err := errors.Wrap(MissingAttr("u", "s", "a"), "initiate reset")
	assert.Equal(t, KindMissingAttr, KindOf(err))
	assert.True(t, IsKind(fmt.Errorf("outer: %w", err), KindMissingAttr))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestAccountError_IsKind(t *testing.T) {
	err := fmt.Errorf("poll: %w", MissingMessage("from:(a@b.c)"))
	assert.True(t, errors.Is(err, KindMissingMessage))
	assert.False(t, errors.Is(err, KindStatus))
}

func TestTransport_KeepsCause(t *testing.T) {
	err := Transport("https://example.com", context.Canceled)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, context.Canceled, errors.Cause(err))
}

func TestMultiErrors(t *testing.T) {
	m := NewMultiErrors()
	assert.Nil(t, m.ErrorOrNil())

	m.Add("lobsters/b@example.com", "no message", MissingMessage("q"))
	m.Add("hackernews/alice", "unexpected status", Status("u", 500))
	assert.True(t, m.HasErrors())
	assert.Equal(t, "hackernews/alice: unexpected status | lobsters/b@example.com: no message", m.ErrorOrNil().Error())
}
