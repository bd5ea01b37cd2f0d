package cache

import (
	"fmt"

	"trashbeta-service/internal/model"

	"github.com/google/uuid"
)

// AllReportsPrefix is the key family holding paginated/filtered list
// snapshots; writes invalidate the whole family rather than trying to
// recompute individual pages.
const AllReportsPrefix = "reports:all:"

func ReportKey(id uuid.UUID) string {
	return "report:" + id.String()
}

func TrackingKey(trackingID string) string {
	return "report:tracking:" + trackingID
}

func UserReportsKey(userID uuid.UUID) string {
	return "reports:user:" + userID.String()
}

func AllReportsKey(filter model.ListFilter) string {
	category := "all"
	if filter.Category != "" {
		category = string(filter.Category)
	}
	return fmt.Sprintf("%spage=%d:limit=%d:category=%s", AllReportsPrefix, filter.Page, filter.Limit, category)
}
