package application

import (
	"sort"

	"atlas-core-connect-layer/internal/domain"
)

// RegistryEntry pairs an integration descriptor with its probe strategy.
type RegistryEntry struct {
	Descriptor domain.IntegrationDescriptor
	Probe      ProbeStrategy
}

// Registry is the immutable catalog of connectable integrations. It is
// built once at startup and only read afterwards.
type Registry struct {
	entries map[string]RegistryEntry
}

// NewRegistry builds the catalog with the built-in connector names.
func NewRegistry() *Registry {
	return NewRegistryWithConnectors(nil)
}

// NewRegistryWithConnectors builds the catalog, overriding backend
// connector names per integration id from the deployment's connector table.
func NewRegistryWithConnectors(connectors map[string]string) *Registry {
	entries := map[string]RegistryEntry{
		"google-calendar": {
			Descriptor: domain.IntegrationDescriptor{
				ID:          "google-calendar",
				DisplayName: "Google Calendar",
				Connector:   "googlecalendar",
				Category:    domain.CategoryCalendar,
			},
			Probe: calendarListProbe{},
		},
		"gmail": {
			Descriptor: domain.IntegrationDescriptor{
				ID:          "gmail",
				DisplayName: "Gmail",
				Connector:   "gmail",
				Category:    domain.CategoryMail,
			},
			Probe: mailProfileProbe{},
		},
		"google-drive": {
			Descriptor: domain.IntegrationDescriptor{
				ID:          "google-drive",
				DisplayName: "Google Drive",
				Connector:   "googledrive",
				Category:    domain.CategoryStorage,
			},
			Probe: storageQuotaProbe{},
		},
		"slack": {
			Descriptor: domain.IntegrationDescriptor{
				ID:          "slack",
				DisplayName: "Slack",
				Connector:   "slack",
				Category:    domain.CategoryChat,
			},
			Probe: chatAuthProbe{},
		},
	}

	for id, connector := range connectors {
		if entry, ok := entries[id]; ok && connector != "" {
			entry.Descriptor.Connector = connector
			entries[id] = entry
		}
	}

	return &Registry{entries: entries}
}

// Lookup returns the entry for an integration id.
func (r *Registry) Lookup(id string) (RegistryEntry, bool) {
	entry, ok := r.entries[id]
	return entry, ok
}

// List returns all descriptors sorted by id.
func (r *Registry) List() []domain.IntegrationDescriptor {
	list := make([]domain.IntegrationDescriptor, 0, len(r.entries))
	for _, entry := range r.entries {
		list = append(list, entry.Descriptor)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
