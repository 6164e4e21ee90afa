package domain

import "time"

// ConnectionStatus is the broker's answer for one (integration, user) pair.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Account   string `json:"account,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// CachedStatus is a connection status captured at a point in time. Entries
// expire by TTL comparison at read time; there is no background sweep.
type CachedStatus struct {
	Connected  bool          `json:"connected" bson:"connected"`
	Account    string        `json:"account,omitempty" bson:"account,omitempty"`
	CapturedAt time.Time     `json:"captured_at" bson:"captured_at"`
	TTL        time.Duration `json:"ttl" bson:"ttl"`
}

// Expired reports whether the entry is stale as of now.
func (s CachedStatus) Expired(now time.Time) bool {
	return now.After(s.CapturedAt.Add(s.TTL))
}

// Status converts the cached entry back into a broker answer.
func (s CachedStatus) Status() ConnectionStatus {
	return ConnectionStatus{Connected: s.Connected, Account: s.Account}
}

// DisconnectReceipt is returned to the route layer after a disconnect.
// Local state is authoritative, so OK is false only when the integration
// id is unknown; RevokeFailed records whether the best-effort upstream
// revoke went through.
type DisconnectReceipt struct {
	OK           bool   `json:"ok"`
	Message      string `json:"message,omitempty"`
	RevokeFailed bool   `json:"revoke_failed,omitempty"`
}
