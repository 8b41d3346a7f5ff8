package errors

import (
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeInvalidRequest  Code = "INVALID_REQUEST"
	CodeAdminOnly       Code = "ADMIN_ONLY"

	// Action rejections
	CodeUnknownAction  Code = "UNKNOWN_ACTION"
	CodeGameFinished   Code = "GAME_FINISHED"
	CodeNotParticipant Code = "NOT_PARTICIPANT"
	CodeAgentDead      Code = "AGENT_DEAD"
	CodeWrongPhase     Code = "WRONG_PHASE"
	CodeInvalidTarget  Code = "INVALID_TARGET"
	CodeDuplicate      Code = "DUPLICATE"
	CodeChatLimit      Code = "CHAT_LIMIT"
	CodeInvalidContent Code = "INVALID_CONTENT"

	// Lobby and lifecycle errors
	CodePlayerCountInvalid Code = "PLAYER_COUNT_INVALID"
	CodeCompositionInvalid Code = "COMPOSITION_INVALID"
	CodeNotEnoughPlayers   Code = "NOT_ENOUGH_PLAYERS"
	CodeAlreadyInGame      Code = "ALREADY_IN_GAME"
	CodeNotInPool          Code = "NOT_IN_POOL"
	CodeNameRequired       Code = "NAME_REQUIRED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"

	// Server errors
	CodeCommitFailed Code = "COMMIT_FAILED"
	CodeInternal     Code = "INTERNAL"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - malformed input
	case CodeInvalidRequest,
		CodeUnknownAction,
		CodeInvalidTarget,
		CodeInvalidContent,
		CodePlayerCountInvalid,
		CodeCompositionInvalid,
		CodeNameRequired:
		return codes.InvalidArgument
	// FailedPrecondition - game or lobby state doesn't allow the operation
	case CodeGameFinished,
		CodeNotParticipant,
		CodeAgentDead,
		CodeWrongPhase,
		CodeDuplicate,
		CodeChatLimit,
		CodeNotEnoughPlayers,
		CodeAlreadyInGame,
		CodeNotInPool:
		return codes.FailedPrecondition
	case CodeUnauthenticated:
		return codes.Unauthenticated
	case CodeAdminOnly:
		return codes.PermissionDenied
	case CodeNotFound:
		return codes.NotFound
	case CodeConflict:
		return codes.Aborted
	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes the same way the gRPC
// gateway does.
func (c Code) HTTPStatus() int {
	return runtime.HTTPStatusFromCode(c.GRPCCode())
}

// Internal reports whether the code hides server-side detail from callers.
func (c Code) Internal() bool {
	return c.GRPCCode() == codes.Internal
}
