package ws

import (
	"net/http"
	"net/url"
	"strings"
)

type originPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
}

func newOriginPolicy(origins []string) originPolicy {
	p := originPolicy{allowed: make(map[string]struct{})}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			p.allowAll = true
			continue
		}
		if n, ok := normalizeOrigin(o); ok {
			p.allowed[n] = struct{}{}
		}
	}
	return p
}

func normalizeOrigin(origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}

func (p originPolicy) check(r *http.Request) bool {
	if p.allowAll {
		return true
	}
	n, ok := normalizeOrigin(r.Header.Get("Origin"))
	if !ok {
		return false
	}
	_, ok = p.allowed[n]
	return ok
}
