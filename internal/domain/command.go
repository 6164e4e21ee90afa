package domain

// StructuredCommand is the caller-facing abstract request. Service and
// Action are abstract names resolved against the alias and action tables;
// Params are passed through to the gateway untouched.
type StructuredCommand struct {
	Service string         `json:"service"`
	Action  string         `json:"action"`
	Params  map[string]any `json:"params"`
	UserID  string         `json:"user_id"`
}

// CommandResult is the uniform envelope every command resolves to. No error
// is ever thrown across the command-processing boundary; failures are
// normal results with Success=false.
type CommandResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failure builds a failed result with an optional caller-facing message.
func Failure(errText, message string) CommandResult {
	return CommandResult{Success: false, Error: errText, Message: message}
}
