package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/zalando/go-keyring"
)

// DefaultService is the keychain service the application's secrets live under.
const DefaultService = "strengths-compare"

// ErrNotConfigured is returned when a secret is in neither source.
var ErrNotConfigured = errors.New("secret not configured")

// Resolver looks secrets up in the OS secret store, then the environment.
type Resolver struct {
	Service string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func NewResolver(service string) *Resolver {
	if service == "" {
		service = DefaultService
	}
	return &Resolver{Service: service, Getenv: os.Getenv}
}

// Lookup returns the value stored under key.
func (r *Resolver) Lookup(key string) (string, error) {
	value, err := keyring.Get(r.Service, key)
	switch {
	case err == nil && strings.TrimSpace(value) != "":
		return value, nil
	case err != nil && !errors.Is(err, keyring.ErrNotFound):
		// no keychain on this host is normal for containers
		log.Debug("secret store unavailable", "service", r.Service, "key", key, "error", err)
	}

	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if value := strings.TrimSpace(getenv(key)); value != "" {
		return value, nil
	}
	return "", ErrNotConfigured
}
