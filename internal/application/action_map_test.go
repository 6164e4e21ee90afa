package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveService_Aliases(t *testing.T) {
	m := NewActionMap()

	cases := map[string]string{
		"calendar":        "google-calendar",
		"google.calendar": "google-calendar",
		"GoogleCalendar":  "google-calendar",
		" gmail ":         "gmail",
		"EMAIL":           "gmail",
		"drive":           "google-drive",
		"storage":         "google-drive",
		"chat":            "slack",
		"slack":           "slack",
	}
	for alias, want := range cases {
		got, ok := m.ResolveService(alias)
		require.True(t, ok, alias)
		assert.Equal(t, want, got, alias)
	}
}

func TestResolveService_Unknown(t *testing.T) {
	m := NewActionMap()

	_, ok := m.ResolveService("jira")
	assert.False(t, ok)
}

func TestResolveAction(t *testing.T) {
	m := NewActionMap()

	concrete, ok := m.ResolveAction("gmail", "list_messages")
	require.True(t, ok)
	assert.Equal(t, "gmail.users.messages.list", concrete)

	concrete, ok = m.ResolveAction("slack", "send_message")
	require.True(t, ok)
	assert.Equal(t, "slack.chat.postMessage", concrete)
}

func TestResolveAction_Unknown(t *testing.T) {
	m := NewActionMap()

	_, ok := m.ResolveAction("gmail", "teleport")
	assert.False(t, ok)

	_, ok = m.ResolveAction("jira", "list_messages")
	assert.False(t, ok)
}

func TestCreateQuickCommand_Defaults(t *testing.T) {
	m := NewActionMap()

	cmd := m.CreateQuickCommand("getUnreadEmails", "user-1", nil)

	require.NotNil(t, cmd)
	assert.Equal(t, "gmail", cmd.Service)
	assert.Equal(t, "list_messages", cmd.Action)
	assert.Equal(t, "user-1", cmd.UserID)
	assert.Equal(t, "is:unread", cmd.Params["q"])
	assert.Equal(t, 10, cmd.Params["maxResults"])
}

func TestCreateQuickCommand_OverridesWinWithoutMutatingDefaults(t *testing.T) {
	m := NewActionMap()

	first := m.CreateQuickCommand("getUnreadEmails", "user-1", map[string]any{
		"maxResults": 50,
		"labelIds":   []string{"INBOX"},
	})
	require.NotNil(t, first)
	assert.Equal(t, 50, first.Params["maxResults"])
	assert.Equal(t, "is:unread", first.Params["q"])
	assert.Equal(t, []string{"INBOX"}, first.Params["labelIds"])

	// The shorthand's default table must be untouched.
	second := m.CreateQuickCommand("getUnreadEmails", "user-2", nil)
	require.NotNil(t, second)
	assert.Equal(t, 10, second.Params["maxResults"])
	assert.NotContains(t, second.Params, "labelIds")
}

func TestCreateQuickCommand_Unknown(t *testing.T) {
	m := NewActionMap()

	assert.Nil(t, m.CreateQuickCommand("summonDragons", "user-1", nil))
}

func TestQuickCommandNames_Sorted(t *testing.T) {
	m := NewActionMap()

	assert.Equal(t, []string{"getRecentFiles", "getTodaysEvents", "getUnreadEmails"}, m.QuickCommandNames())
}
