package services

import (
	"sort"
	"sync"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/ports/driven"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
)

// Provider is a registered provider's capability set. Unsupported
// capabilities are nil; callers degrade rather than crash.
type Provider struct {
	Type     domain.ProviderType
	Auth     driven.AuthClient
	Calendar driven.CalendarClient
	Mail     driven.MailClient
	Meeting  driven.MeetingClient
}

// Registry holds the configured providers by type. It is constructed at
// startup and injected into the services that need it; registration is
// write-once during wiring, lookups are concurrent after that.
type Registry struct {
	mu        sync.RWMutex
	providers map[domain.ProviderType]*Provider
	def       domain.ProviderType
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[domain.ProviderType]*Provider),
	}
}

// Register adds a provider under its type. The client is probed for each
// capability interface; anything it does not implement stays nil.
func (r *Registry) Register(name domain.ProviderType, client any) {
	p := &Provider{Type: name}
	if auth, ok := client.(driven.AuthClient); ok {
		p.Auth = auth
	}
	if cal, ok := client.(driven.CalendarClient); ok {
		p.Calendar = cal
	}
	if mail, ok := client.(driven.MailClient); ok {
		p.Mail = mail
	}
	if meeting, ok := client.(driven.MeetingClient); ok {
		p.Meeting = meeting
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		logger.Warn("registry: provider %s registered twice, replacing", name)
	}
	r.providers[name] = p
}

// SetDefault marks the default provider. Returns false, leaving the
// current default untouched, if the provider is not registered.
func (r *Registry) SetDefault(name domain.ProviderType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return false
	}
	r.def = name
	return true
}

// Get returns the provider registered under name, or nil.
func (r *Registry) Get(name domain.ProviderType) *Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}

// Default returns the default provider, or nil if none was set.
func (r *Registry) Default() *Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.def == "" {
		return nil
	}
	return r.providers[r.def]
}

// Auth returns the auth capability of a provider, or nil.
func (r *Registry) Auth(name domain.ProviderType) driven.AuthClient {
	if p := r.Get(name); p != nil {
		return p.Auth
	}
	return nil
}

// Calendar returns the calendar capability of a provider, or nil.
func (r *Registry) Calendar(name domain.ProviderType) driven.CalendarClient {
	if p := r.Get(name); p != nil {
		return p.Calendar
	}
	return nil
}

// Mail returns the mail capability of a provider, or nil.
func (r *Registry) Mail(name domain.ProviderType) driven.MailClient {
	if p := r.Get(name); p != nil {
		return p.Mail
	}
	return nil
}

// Meeting returns the meeting capability of a provider, or nil.
func (r *Registry) Meeting(name domain.ProviderType) driven.MeetingClient {
	if p := r.Get(name); p != nil {
		return p.Meeting
	}
	return nil
}

// Providers returns the registered provider types in stable order.
func (r *Registry) Providers() []domain.ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]domain.ProviderType, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
