package enum

// RedirectPolicy selects how an HTTP session treats 3xx responses.
type RedirectPolicy string

const (
	FollowAll  RedirectPolicy = "follow_all"
	FollowNone RedirectPolicy = "follow_none"
)

func (t RedirectPolicy) String() string {
	return string(t)
}

type MailBackend string

const (
	MailBackendGmail MailBackend = "gmail"
	MailBackendImap  MailBackend = "imap"
)

func (t MailBackend) String() string {
	return string(t)
}

// ResetPhase names a step of a reset attempt, used in logs and span tags.
type ResetPhase string

const (
	PhaseInitiate    ResetPhase = "initiate"
	PhaseFindMessage ResetPhase = "find_message"
	PhaseParse       ResetPhase = "parse_message"
	PhaseSetPassword ResetPhase = "set_password"
	PhaseArchive     ResetPhase = "archive"
)

func (t ResetPhase) String() string {
	return string(t)
}
