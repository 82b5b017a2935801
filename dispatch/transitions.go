package dispatch

import "github.com/healx-platform/healx-api/models"

// transitions is the set of legal emergency status changes. Anything not
// listed is rejected, including re-entering the current status.
var transitions = map[models.EmergencyStatus][]models.EmergencyStatus{
	models.StatusPending:    {models.StatusAccepted, models.StatusCancelled},
	models.StatusAccepted:   {models.StatusArrived, models.StatusCancelled},
	models.StatusArrived:    {models.StatusInTransit, models.StatusCancelled},
	models.StatusInTransit:  {models.StatusAtHospital, models.StatusCancelled},
	models.StatusAtHospital: {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted:  {},
	models.StatusCancelled:  {},
}

// CanTransition reports whether an emergency may move from one status to
// another
func CanTransition(from, to models.EmergencyStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition distinguishes a terminal emergency from a merely illegal
// move so handlers can report the difference
func ValidateTransition(from, to models.EmergencyStatus) error {
	if from.Terminal() {
		return ErrTerminalStatus
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}
