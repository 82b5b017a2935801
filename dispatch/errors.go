package dispatch

import "errors"

// Sentinel errors returned by the dispatcher. Handlers map these onto HTTP
// status codes.
var (
	// ErrInvalidRequest means the emergency request failed validation.
	ErrInvalidRequest = errors.New("invalid emergency request")

	// ErrEmergencyNotFound means no emergency matches the given id.
	ErrEmergencyNotFound = errors.New("emergency not found")

	// ErrInvalidTransition means the requested status change is not allowed
	// from the emergency's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTerminalStatus means the emergency is completed or cancelled and
	// admits no further changes.
	ErrTerminalStatus = errors.New("emergency is in a terminal status")

	// ErrAmbulanceConflict means the targeted ambulance was claimed by a
	// concurrent dispatch before this one could reserve it.
	ErrAmbulanceConflict = errors.New("ambulance already reserved")

	// ErrDispatchDegraded means the emergency was recorded but the ambulance
	// search could not run. No assignment was made and no placeholder data is
	// substituted; callers should retry dispatch.
	ErrDispatchDegraded = errors.New("dispatch degraded: ambulance search unavailable")
)
