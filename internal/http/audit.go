package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// recentAuditLimit is the number of events returned by the audit endpoint.
const recentAuditLimit = 100

type AuditController struct {
	events AuditService
}

func NewAuditController(events AuditService) *AuditController {
	return &AuditController{events: events}
}

// RecentEvents returns the latest audit events, newest first.
// GET /api/audit/
func (ac *AuditController) RecentEvents(c *gin.Context) {
	events, err := ac.events.RecentEvents(recentAuditLimit)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	c.JSON(http.StatusOK, events)
}
