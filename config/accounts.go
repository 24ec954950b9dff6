package config

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const accountsFileName = "fresh.toml"

// AccountsFile is the operator's TOML file: accounts to rotate and any
// additional form-driven sites.
type AccountsFile struct {
	Accounts []AccountEntry `toml:"account"`
	Sites    []SiteConfig   `toml:"site"`
}

type AccountEntry struct {
	Site string `toml:"site"`
	User string `toml:"user"`
}

// Key identifies the entry in logs and batch error reports.
func (a AccountEntry) Key() string {
	return a.Site + "/" + a.User
}

type FieldConfig struct {
	Key   string `toml:"key"`
	Value string `toml:"value"`
}

// SiteConfig describes a site whose reset flow is a plain form exchange.
// ResetURL and SubmitURL may contain the {key} placeholder.
type SiteConfig struct {
	Name              string        `toml:"name"`
	LoginURL          string        `toml:"login_url"`
	ForgotURL         string        `toml:"forgot_url"`
	RequestURL        string        `toml:"request_url"`
	CsrfSelector      string        `toml:"csrf_selector"`
	CsrfField         string        `toml:"csrf_field"`
	IdentifierField   string        `toml:"identifier_field"`
	IdentifierIsEmail bool          `toml:"identifier_is_email"`
	RequestStatus     int           `toml:"request_status"`
	Fields            []FieldConfig `toml:"field"`
	QueryFrom         string        `toml:"query_from"`
	QuerySubject      string        `toml:"query_subject"`
	MimeType          string        `toml:"mime_type"`
	KeyPattern        string        `toml:"key_pattern"`
	ResetURL          string        `toml:"reset_url"`
	SubmitURL         string        `toml:"submit_url"`
	KeyField          string        `toml:"key_field"`
	PasswordField     string        `toml:"password_field"`
	ConfirmField      string        `toml:"confirm_field"`
	SubmitStatus      int           `toml:"submit_status"`
	FollowRedirects   *bool         `toml:"follow_redirects"`
}

func (s *SiteConfig) ApplyDefaults() {
	if s.RequestURL == "" {
		s.RequestURL = s.ForgotURL
	}
	if s.RequestStatus == 0 {
		s.RequestStatus = 200
	}
	if s.SubmitStatus == 0 {
		s.SubmitStatus = 200
	}
	if s.MimeType == "" {
		s.MimeType = "text/plain"
	}
	if s.PasswordField == "" {
		s.PasswordField = "password"
	}
}

func (s *SiteConfig) Validate() error {
	missing := []string{}
	for name, value := range map[string]string{
		"name":             s.Name,
		"forgot_url":       s.ForgotURL,
		"identifier_field": s.IdentifierField,
		"key_pattern":      s.KeyPattern,
		"submit_url":       s.SubmitURL,
		"query_from":       s.QueryFrom + s.QuerySubject,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Errorf("site %q is missing %s", s.Name, strings.Join(missing, ", "))
	}
	if (s.CsrfSelector == "") != (s.CsrfField == "") {
		return errors.Errorf("site %q needs both csrf_selector and csrf_field or neither", s.Name)
	}
	re, err := regexp.Compile(s.KeyPattern)
	if err != nil {
		return errors.Wrapf(err, "site %q has an invalid key_pattern", s.Name)
	}
	if re.NumSubexp() < 1 {
		return errors.Errorf("site %q key_pattern must capture the key in group 1", s.Name)
	}
	return nil
}

func DefaultAccountsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locating config dir")
	}
	return filepath.Join(dir, "fresh", accountsFileName), nil
}

// LoadAccounts reads the accounts file. A missing file yields an empty set.
func LoadAccounts(path string) (*AccountsFile, error) {
	if path == "" {
		var err error
		path, err = DefaultAccountsPath()
		if err != nil {
			return nil, err
		}
	}

	file := &AccountsFile{}
	if _, err := toml.DecodeFile(path, file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return file, nil
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	for i := range file.Sites {
		file.Sites[i].ApplyDefaults()
		if err := file.Sites[i].Validate(); err != nil {
			return nil, err
		}
	}
	for _, account := range file.Accounts {
		if account.Site == "" || account.User == "" {
			return nil, errors.Errorf("account entry %q needs both site and user", account.Key())
		}
	}
	return file, nil
}
