package application

// ProbeStrategy describes how one integration's connectivity is checked:
// which lightweight read-only action to issue, and what in the response
// proves a live connection. A 200 whose payload lacks the integration's
// proof-of-data marker is inconclusive and reads as disconnected.
type ProbeStrategy interface {
	// BuildProbe returns the concrete backend action and params for the
	// connectivity probe.
	BuildProbe(account string) (action string, params map[string]any)

	// Interpret inspects the normalized probe payload. When connected,
	// the returned account is the upstream account identifier if the
	// payload carries one, else fallbackAccount.
	Interpret(payload any, fallbackAccount string) (connected bool, account string)
}

// mailProfileProbe proves connectivity through the mail profile endpoint;
// the profile's email address doubles as the upstream account identifier.
type mailProfileProbe struct{}

func (mailProfileProbe) BuildProbe(string) (string, map[string]any) {
	return "gmail.users.getProfile", map[string]any{"userId": "me"}
}

func (mailProfileProbe) Interpret(payload any, fallback string) (bool, string) {
	m, ok := payload.(map[string]any)
	if !ok {
		return false, ""
	}
	address, ok := m["emailAddress"].(string)
	if !ok || address == "" {
		return false, ""
	}
	return true, address
}

// calendarListProbe lists calendars; the presence of the items collection
// is the proof-of-data marker, even when the list is empty.
type calendarListProbe struct{}

func (calendarListProbe) BuildProbe(string) (string, map[string]any) {
	return "calendar.calendarList.list", map[string]any{"maxResults": 1}
}

func (calendarListProbe) Interpret(payload any, fallback string) (bool, string) {
	m, ok := payload.(map[string]any)
	if !ok {
		return false, ""
	}
	if _, ok := m["items"]; ok {
		return true, fallback
	}
	if kind, ok := m["kind"].(string); ok && kind == "calendar#calendarList" {
		return true, fallback
	}
	return false, ""
}

// storageQuotaProbe reads storage account info; the user block or quota
// figures prove the connection.
type storageQuotaProbe struct{}

func (storageQuotaProbe) BuildProbe(string) (string, map[string]any) {
	return "drive.about.get", map[string]any{"fields": "user,storageQuota"}
}

func (storageQuotaProbe) Interpret(payload any, fallback string) (bool, string) {
	m, ok := payload.(map[string]any)
	if !ok {
		return false, ""
	}
	if user, ok := m["user"].(map[string]any); ok {
		if address, ok := user["emailAddress"].(string); ok && address != "" {
			return true, address
		}
		return true, fallback
	}
	if _, ok := m["storageQuota"]; ok {
		return true, fallback
	}
	return false, ""
}

// chatAuthProbe uses the workspace auth check; a user identifier in the
// response proves the connection.
type chatAuthProbe struct{}

func (chatAuthProbe) BuildProbe(string) (string, map[string]any) {
	return "slack.auth.test", map[string]any{}
}

func (chatAuthProbe) Interpret(payload any, fallback string) (bool, string) {
	m, ok := payload.(map[string]any)
	if !ok {
		return false, ""
	}
	if connected, ok := m["ok"].(bool); ok && !connected {
		return false, ""
	}
	if _, ok := m["user_id"]; ok {
		if user, ok := m["user"].(string); ok && user != "" {
			return true, user
		}
		return true, fallback
	}
	return false, ""
}
