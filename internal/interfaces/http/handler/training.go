package handler

import (
	"net/http"

	"github.com/QodexGroup/gym-management-system-sub002/internal/application/entitlement"
	"github.com/gin-gonic/gin"
)

// PtAllocationHandler handles PT package allocation endpoints
type PtAllocationHandler struct {
	BaseHandler
	coordinator *entitlement.Coordinator
}

// NewPtAllocationHandler creates a new PtAllocationHandler
func NewPtAllocationHandler(coordinator *entitlement.Coordinator) *PtAllocationHandler {
	return &PtAllocationHandler{coordinator: coordinator}
}

// Cancel handles POST /pt-allocations/:id/cancel. The linked bill is voided.
// @ID           cancelPtAllocation
// @Summary      Cancel a PT package allocation
// @Tags         pt-allocations
// @Accept       json
// @Produce      json
// @Param        id path string true "Allocation ID" format(uuid)
// @Param        request body CancelPtPackageRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=entitlement.PtPackageResult}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /pt-allocations/{id}/cancel [post]
func (h *PtAllocationHandler) Cancel(c *gin.Context) {
	allocationID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req CancelPtPackageRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	result, err := h.coordinator.CancelPtPackage(c.Request.Context(), entitlement.CancelPtPackageRequest{
		AllocationID: allocationID,
		Reason:       req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Synced(c, http.StatusOK, result.Value, result.View)
}

// RecordSession handles POST /pt-allocations/:id/sessions
// @ID           recordPtSession
// @Summary      Consume one session of a PT package allocation
// @Tags         pt-allocations
// @Produce      json
// @Param        id path string true "Allocation ID" format(uuid)
// @Success      200 {object} dto.Response{data=entitlement.AllocationResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /pt-allocations/{id}/sessions [post]
func (h *PtAllocationHandler) RecordSession(c *gin.Context) {
	allocationID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.coordinator.ConsumePtSession(c.Request.Context(), allocationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Synced(c, http.StatusOK, result.Value, result.View)
}

// MembershipPlanHandler serves membership plan reports
type MembershipPlanHandler struct {
	BaseHandler
	coordinator *entitlement.Coordinator
}

// NewMembershipPlanHandler creates a new MembershipPlanHandler
func NewMembershipPlanHandler(coordinator *entitlement.Coordinator) *MembershipPlanHandler {
	return &MembershipPlanHandler{coordinator: coordinator}
}

// Stats handles GET /membership-plans/:id/stats
// @ID           getMembershipPlanStats
// @Summary      Get active member count and monthly revenue of a plan
// @Tags         membership-plans
// @Produce      json
// @Param        id path string true "Membership plan ID" format(uuid)
// @Success      200 {object} dto.Response{data=entitlement.PlanStatsResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /membership-plans/{id}/stats [get]
func (h *MembershipPlanHandler) Stats(c *gin.Context) {
	planID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	stats, err := h.coordinator.PlanStats(c.Request.Context(), planID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
