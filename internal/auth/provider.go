package auth

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

// Provider extracts the identity asserted for a request by the auth platform.
type Provider interface {
	Identity(r *http.Request) (domain.Identity, bool)
}

// HeaderProvider reads the identity from headers set by a forward-auth proxy
// (oauth2-proxy, Authelia, ...). Only requests coming through that proxy may
// reach it: the routes using it are restricted to the proxy CIDRs.
type HeaderProvider struct {
	SubjectHeader string
	EmailHeader   string
	NameHeader    string
	ImageHeader   string
}

// Identity returns the asserted identity, false when neither subject nor email is present.
func (p HeaderProvider) Identity(r *http.Request) (domain.Identity, bool) {
	id := domain.Identity{
		Subject: header(r, p.SubjectHeader),
		Email:   header(r, p.EmailHeader),
		Name:    header(r, p.NameHeader),
		Image:   header(r, p.ImageHeader),
	}
	if !id.Valid() {
		return domain.Identity{}, false
	}
	return id, true
}

func header(r *http.Request, name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimSpace(r.Header.Get(name))
}
