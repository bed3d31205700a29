// store/transitions.go - Legal status transitions for the query workflow
package store

import "officeflow/internal/models"

// Query status moves one way: OPEN -> REPLIED -> CLOSED. HR may close
// straight from OPEN. CLOSED is terminal.
var queryTransitions = map[string][]models.QueryStatus{
	"reply":    {models.QueryOpen, models.QueryReplied},
	"close":    {models.QueryOpen, models.QueryReplied},
	"reassign": {models.QueryOpen, models.QueryReplied},
}

func ValidQueryTransition(action string, from models.QueryStatus) bool {
	allowed, ok := queryTransitions[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}
