package action

import "errors"

// Rejection codes. Messages may change; codes are stable.
const (
	CodeUnknownAction  = "UNKNOWN_ACTION"
	CodeGameFinished   = "GAME_FINISHED"
	CodeNotParticipant = "NOT_PARTICIPANT"
	CodeAdminOnly      = "ADMIN_ONLY"
	CodeAgentDead      = "AGENT_DEAD"
	CodeWrongPhase     = "WRONG_PHASE"
	CodeInvalidTarget  = "INVALID_TARGET"
	CodeDuplicate      = "DUPLICATE"
	CodeChatLimit      = "CHAT_LIMIT"
	CodeInvalidContent = "INVALID_CONTENT"
)

// Rejection is a validation failure. It is never retried.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func reject(code, message string) error {
	return &Rejection{Code: code, Message: message}
}

// AsRejection extracts a Rejection from err's chain.
func AsRejection(err error) (*Rejection, bool) {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection, true
	}
	return nil, false
}
