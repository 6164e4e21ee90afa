package domain

// Category groups integrations by the kind of productivity surface they expose
type Category string

const (
	CategoryCalendar Category = "calendar"
	CategoryMail     Category = "mail"
	CategoryStorage  Category = "storage"
	CategoryChat     Category = "chat"
)

// IntegrationDescriptor describes one externally-connectable service.
// Descriptors are defined once at startup and never mutated; identity is ID.
type IntegrationDescriptor struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Connector   string   `json:"connector"` // upstream gateway's name for the backend adapter
	Category    Category `json:"category"`
}
