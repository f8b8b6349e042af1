// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/healthcredit/internal/app/store/audit"
	"github.com/dalemusser/healthcredit/internal/app/system/paging"
)

// listResponse is the body of GET /api/admin/audit.
type listResponse struct {
	Events     []audit.Event `json:"events"`
	Filters    filters       `json:"filters"`
	Pagination paging.Meta   `json:"pagination"`
}

// filters echoes the applied filters and lists the valid choices.
type filters struct {
	Category   string           `json:"category"`
	EventType  string           `json:"eventType"`
	StartDate  string           `json:"startDate"`
	EndDate    string           `json:"endDate"`
	Categories []categoryOption `json:"categories"`
	EventTypes []string         `json:"eventTypes"`
}

type categoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
	}
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailedUnknownMobile,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedRateLimit,
		audit.EventLogout,
		audit.EventRegistered,
		audit.EventProfileUpdated,
	}

	adminEvents := []string{
		audit.EventEmployeeCreated,
		audit.EventEmployeeDeleted,
		audit.EventUserDeleted,
		audit.EventPaymentStatusChanged,
		audit.EventPaymentSettingsUpdated,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return all
	default:
		return nil
	}
}
