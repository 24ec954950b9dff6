package account

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/customeros/fresh/config"
	"github.com/customeros/fresh/interfaces"
	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/services/reset"
)

// Runner is a reset bound to one account, with its key type erased.
type Runner func(ctx context.Context, svc *reset.Service) (*reset.Result, error)

// Constructor builds the Runner for a user of a site.
type Constructor func(user string) (Runner, error)

type Registry struct {
	sites map[string]Constructor
}

// NewRegistry knows the built-in sites plus every form site in sites.
func NewRegistry(sites []config.SiteConfig) (*Registry, error) {
	r := &Registry{sites: map[string]Constructor{}}
	r.Register(HackerNewsSite, func(user string) (Runner, error) {
		account, err := NewHackerNews(user)
		if err != nil {
			return nil, err
		}
		return Bind[string](account), nil
	})
	r.Register(LobstersSite, func(user string) (Runner, error) {
		account, err := NewLobsters(user)
		if err != nil {
			return nil, err
		}
		return Bind[string](account), nil
	})

	for _, site := range sites {
		if _, exists := r.sites[site.Name]; exists {
			return nil, errors.Errorf("site %q is defined twice", site.Name)
		}
		site := site
		r.Register(site.Name, func(user string) (Runner, error) {
			account, err := NewForm(site, user)
			if err != nil {
				return nil, err
			}
			return Bind[string](account), nil
		})
	}
	return r, nil
}

func (r *Registry) Register(site string, constructor Constructor) {
	r.sites[site] = constructor
}

func (r *Registry) Sites() []string {
	names := make([]string, 0, len(r.sites))
	for name := range r.sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Runner(site, user string) (Runner, error) {
	constructor, ok := r.sites[site]
	if !ok {
		return nil, errors.Wrapf(er.ErrUnknownSite, "%q", site)
	}
	return constructor(user)
}

// Bind closes over account so callers need not know its key type.
func Bind[K any](account interfaces.Account[K]) Runner {
	return func(ctx context.Context, svc *reset.Service) (*reset.Result, error) {
		return reset.Run[K](ctx, svc, account)
	}
}
