package moderation

import (
	"strings"

	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// RemovalOrder picks which strike RemoveStrike deletes
type RemovalOrder int

const (
	RemoveNewestFirst RemovalOrder = iota
	RemoveOldestFirst
)

// ParseRemovalOrder maps "oldest" to RemoveOldestFirst; anything else is
// newest first.
func ParseRemovalOrder(s string) RemovalOrder {
	if strings.EqualFold(strings.TrimSpace(s), "oldest") {
		return RemoveOldestFirst
	}
	return RemoveNewestFirst
}

func (o RemovalOrder) String() string {
	if o == RemoveOldestFirst {
		return "oldest"
	}
	return "newest"
}

// Pick selects the strike to delete from a newest first list
func (o RemovalOrder) Pick(newestFirst []models.Strike) (models.Strike, bool) {
	if len(newestFirst) == 0 {
		return models.Strike{}, false
	}
	if o == RemoveOldestFirst {
		return newestFirst[len(newestFirst)-1], true
	}
	return newestFirst[0], true
}
