package application

import (
	"sort"
	"strings"

	"atlas-core-connect-layer/internal/domain"
)

// ActionMap holds the static command-mapping tables: service aliases,
// per-integration abstract-to-concrete action names, and quick-command
// shorthands. All tables are built at startup and never mutated.
type ActionMap struct {
	aliases map[string]string
	actions map[string]map[string]string
	quick   map[string]quickCommand
}

type quickCommand struct {
	service string
	action  string
	params  map[string]any
}

// NewActionMap builds the default mapping tables.
func NewActionMap() *ActionMap {
	return &ActionMap{
		aliases: map[string]string{
			"calendar":        "google-calendar",
			"google.calendar": "google-calendar",
			"googlecalendar":  "google-calendar",
			"google-calendar": "google-calendar",
			"gcal":            "google-calendar",

			"gmail":       "gmail",
			"mail":        "gmail",
			"email":       "gmail",
			"google.mail": "gmail",
			"googlemail":  "gmail",

			"drive":        "google-drive",
			"google.drive": "google-drive",
			"googledrive":  "google-drive",
			"google-drive": "google-drive",
			"storage":      "google-drive",
			"files":        "google-drive",

			"slack": "slack",
			"chat":  "slack",
		},
		actions: map[string]map[string]string{
			"google-calendar": {
				"list_events":    "calendar.events.list",
				"get_event":      "calendar.events.get",
				"create_event":   "calendar.events.insert",
				"update_event":   "calendar.events.patch",
				"delete_event":   "calendar.events.delete",
				"list_calendars": "calendar.calendarList.list",
			},
			"gmail": {
				"list_messages":   "gmail.users.messages.list",
				"search_messages": "gmail.users.messages.list",
				"get_message":     "gmail.users.messages.get",
				"send_message":    "gmail.users.messages.send",
				"list_labels":     "gmail.users.labels.list",
			},
			"google-drive": {
				"list_files":   "drive.files.list",
				"search_files": "drive.files.list",
				"get_file":     "drive.files.get",
				"create_file":  "drive.files.create",
				"get_quota":    "drive.about.get",
			},
			"slack": {
				"send_message":    "slack.chat.postMessage",
				"list_channels":   "slack.conversations.list",
				"channel_history": "slack.conversations.history",
				"list_users":      "slack.users.list",
			},
		},
		quick: map[string]quickCommand{
			"getTodaysEvents": {
				service: "google-calendar",
				action:  "list_events",
				params: map[string]any{
					"maxResults":   10,
					"singleEvents": true,
					"orderBy":      "startTime",
				},
			},
			"getUnreadEmails": {
				service: "gmail",
				action:  "list_messages",
				params: map[string]any{
					"q":          "is:unread",
					"maxResults": 10,
				},
			},
			"getRecentFiles": {
				service: "google-drive",
				action:  "list_files",
				params: map[string]any{
					"orderBy":  "modifiedTime desc",
					"pageSize": 10,
				},
			},
		},
	}
}

// ResolveService maps an abstract service alias to an integration id,
// case-insensitively.
func (m *ActionMap) ResolveService(alias string) (string, bool) {
	id, ok := m.aliases[strings.ToLower(strings.TrimSpace(alias))]
	return id, ok
}

// ResolveAction maps an abstract action to the integration's concrete
// backend action identifier.
func (m *ActionMap) ResolveAction(integrationID, action string) (string, bool) {
	table, ok := m.actions[integrationID]
	if !ok {
		return "", false
	}
	concrete, ok := table[action]
	return concrete, ok
}

// CreateQuickCommand expands a named shorthand into a full structured
// command, merging caller overrides on top of the shorthand's default
// params. Returns nil for an unknown shorthand.
func (m *ActionMap) CreateQuickCommand(name, userID string, overrides map[string]any) *domain.StructuredCommand {
	quick, ok := m.quick[name]
	if !ok {
		return nil
	}

	params := make(map[string]any, len(quick.params)+len(overrides))
	for k, v := range quick.params {
		params[k] = v
	}
	for k, v := range overrides {
		params[k] = v
	}

	return &domain.StructuredCommand{
		Service: quick.service,
		Action:  quick.action,
		Params:  params,
		UserID:  userID,
	}
}

// QuickCommandNames returns the known shorthand names sorted.
func (m *ActionMap) QuickCommandNames() []string {
	names := make([]string, 0, len(m.quick))
	for name := range m.quick {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
