// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

// Kind groups codes into the rule engine's error taxonomy.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindIllegalMove       Kind = "ILLEGAL_MOVE"
	KindIllegalCubeAction Kind = "ILLEGAL_CUBE_ACTION"
	KindIllegalTurn       Kind = "ILLEGAL_TURN"
	KindCorruption        Kind = "CORRUPTION"
	KindNotFound          Kind = "NOT_FOUND"
	KindInternal          Kind = "INTERNAL"
)

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Move shape errors
	CodeMoveInvalidPlayer Code = "MOVE_INVALID_PLAYER"
	CodeMoveInvalidKind   Code = "MOVE_INVALID_KIND"
	CodeMovePointRange    Code = "MOVE_POINT_OUT_OF_RANGE"
	CodeMoveDieRange      Code = "MOVE_DIE_OUT_OF_RANGE"

	// Move rule errors
	CodeMoveDieUnavailable     Code = "MOVE_DIE_UNAVAILABLE"
	CodeMoveSourceEmpty        Code = "MOVE_SOURCE_EMPTY"
	CodeMoveBarFirst           Code = "MOVE_BAR_FIRST"
	CodeMoveWrongDirection     Code = "MOVE_WRONG_DIRECTION"
	CodeMoveDistanceMismatch   Code = "MOVE_DISTANCE_MISMATCH"
	CodeMoveBlocked            Code = "MOVE_BLOCKED"
	CodeMoveEntryOutsideHome   Code = "MOVE_ENTRY_OUTSIDE_HOME"
	CodeMoveBearOffNotHome     Code = "MOVE_BEAR_OFF_NOT_ALL_HOME"
	CodeMoveBearOffDieTooSmall Code = "MOVE_BEAR_OFF_DIE_TOO_SMALL"
	CodeMoveBearOffHigherDie   Code = "MOVE_BEAR_OFF_HIGHER_DIE"
	CodeMoveMustUseLargerDie   Code = "MOVE_MUST_USE_LARGER_DIE"
	CodeMoveMustUseMaximumDice Code = "MOVE_MUST_USE_MAXIMUM_DICE"
	CodeMoveNoMovesAvailable   Code = "MOVE_NO_MOVES_AVAILABLE"
	CodeMoveBearOffFromOutside Code = "MOVE_BEAR_OFF_FROM_OUTSIDE_HOME"

	// Cube shape errors
	CodeCubeUnknownAction Code = "CUBE_UNKNOWN_ACTION"
	CodeCubeInvalidActor  Code = "CUBE_INVALID_ACTOR"

	// Cube rule errors
	CodeCubeOfferPending          Code = "CUBE_OFFER_PENDING"
	CodeCubeNotOwner              Code = "CUBE_NOT_OWNER"
	CodeCubeRedoubleCentered      Code = "CUBE_REDOUBLE_CENTERED"
	CodeCubeCrawford              Code = "CUBE_CRAWFORD_GAME"
	CodeCubeDead                  Code = "CUBE_DEAD"
	CodeCubeNoPendingOffer        Code = "CUBE_NO_PENDING_OFFER"
	CodeCubeOwnOffer              Code = "CUBE_OWN_OFFER"
	CodeCubeBeaverDisabled        Code = "CUBE_BEAVER_DISABLED"
	CodeCubeRaccoonDisabled       Code = "CUBE_RACCOON_DISABLED"
	CodeCubeBeaverNotAfterDouble  Code = "CUBE_BEAVER_NOT_AFTER_DOUBLE"
	CodeCubeRaccoonNotOfferer     Code = "CUBE_RACCOON_NOT_ORIGINAL_OFFERER"
	CodeCubeRaccoonNotAfterBeaver Code = "CUBE_RACCOON_NOT_AFTER_BEAVER"

	// Turn and lifecycle errors
	CodeTurnNotPlaying       Code = "TURN_GAME_NOT_PLAYING"
	CodeTurnNotYourTurn      Code = "TURN_NOT_YOUR_TURN"
	CodeTurnCubePending      Code = "TURN_CUBE_RESPONSE_PENDING"
	CodeTurnAlreadyMoved     Code = "TURN_ALREADY_MOVED"
	CodeTurnAlreadyStarted   Code = "TURN_GAME_ALREADY_STARTED"
	CodeTurnGameNotFinished  Code = "TURN_GAME_NOT_FINISHED"
	CodeTurnMatchFinished    Code = "TURN_MATCH_FINISHED"
	CodeTurnInvalidResult    Code = "TURN_INVALID_RESULT"
	CodeTurnOpeningUndecided Code = "TURN_OPENING_UNDECIDED"

	// Integrity errors
	CodeBoardCheckerCount Code = "BOARD_CHECKER_COUNT"

	// Registry errors
	CodeGameIDRequired Code = "GAME_ID_REQUIRED"
	CodeGameNotFound   Code = "GAME_NOT_FOUND"
)

// Kind reports which taxonomy bucket the code belongs to.
func (c Code) Kind() Kind {
	switch c {
	case CodeMoveInvalidPlayer,
		CodeMoveInvalidKind,
		CodeMovePointRange,
		CodeMoveDieRange,
		CodeCubeUnknownAction,
		CodeCubeInvalidActor,
		CodeTurnInvalidResult,
		CodeGameIDRequired:
		return KindValidation

	case CodeMoveDieUnavailable,
		CodeMoveSourceEmpty,
		CodeMoveBarFirst,
		CodeMoveWrongDirection,
		CodeMoveDistanceMismatch,
		CodeMoveBlocked,
		CodeMoveEntryOutsideHome,
		CodeMoveBearOffNotHome,
		CodeMoveBearOffDieTooSmall,
		CodeMoveBearOffHigherDie,
		CodeMoveBearOffFromOutside,
		CodeMoveMustUseLargerDie,
		CodeMoveMustUseMaximumDice,
		CodeMoveNoMovesAvailable:
		return KindIllegalMove

	case CodeCubeOfferPending,
		CodeCubeNotOwner,
		CodeCubeRedoubleCentered,
		CodeCubeCrawford,
		CodeCubeDead,
		CodeCubeNoPendingOffer,
		CodeCubeOwnOffer,
		CodeCubeBeaverDisabled,
		CodeCubeRaccoonDisabled,
		CodeCubeBeaverNotAfterDouble,
		CodeCubeRaccoonNotOfferer,
		CodeCubeRaccoonNotAfterBeaver:
		return KindIllegalCubeAction

	case CodeTurnNotPlaying,
		CodeTurnNotYourTurn,
		CodeTurnCubePending,
		CodeTurnAlreadyMoved,
		CodeTurnAlreadyStarted,
		CodeTurnGameNotFinished,
		CodeTurnMatchFinished:
		return KindIllegalTurn

	case CodeBoardCheckerCount:
		return KindCorruption

	case CodeTurnOpeningUndecided:
		return KindInternal

	case CodeGameNotFound:
		return KindNotFound

	default:
		return KindInternal
	}
}

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c.Kind() {
	// InvalidArgument - malformed requests
	case KindValidation:
		return codes.InvalidArgument

	// FailedPrecondition - well formed but the position or cube disallows it
	case KindIllegalMove, KindIllegalCubeAction, KindIllegalTurn:
		return codes.FailedPrecondition

	case KindNotFound:
		return codes.NotFound

	// DataLoss - an un-vetted snapshot reached the engine
	case KindCorruption:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}
