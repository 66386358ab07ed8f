package handler

import (
	"net/http"

	"github.com/QodexGroup/gym-management-system-sub002/internal/application/entitlement"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
)

// BillHandler handles bill and payment endpoints
type BillHandler struct {
	BaseHandler
	coordinator *entitlement.Coordinator
	currency    valueobject.Currency
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(coordinator *entitlement.Coordinator, currency valueobject.Currency) *BillHandler {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &BillHandler{
		coordinator: coordinator,
		currency:    currency,
	}
}

// GetByID handles GET /bills/:id
// @ID           getBillById
// @Summary      Get a bill
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=entitlement.BillResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /bills/{id} [get]
func (h *BillHandler) GetByID(c *gin.Context) {
	billID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	bill, err := h.coordinator.GetBill(c.Request.Context(), billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// Update handles PUT /bills/:id
// @ID           updateBill
// @Summary      Update an unlocked bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body UpdateBillRequest true "Bill update request"
// @Success      200 {object} dto.Response{data=entitlement.BillResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /bills/{id} [put]
func (h *BillHandler) Update(c *gin.Context) {
	billID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cmd, err := req.toCommand(h.currency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.coordinator.UpdateBill(c.Request.Context(), billID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Synced(c, http.StatusOK, result.Value, result.View)
}

// Delete handles DELETE /bills/:id. Its payments are removed with it.
// @ID           deleteBill
// @Summary      Delete a bill and its payments
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=entitlement.DeleteBillResult}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /bills/{id} [delete]
func (h *BillHandler) Delete(c *gin.Context) {
	billID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.coordinator.DeleteBill(c.Request.Context(), billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Synced(c, http.StatusOK, result.Value, result.View)
}

// ListPayments handles GET /bills/:id/payments
// @ID           listBillPayments
// @Summary      List a bill's payments
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]entitlement.PaymentResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /bills/{id}/payments [get]
func (h *BillHandler) ListPayments(c *gin.Context) {
	billID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	payments, err := h.coordinator.ListBillPayments(c.Request.Context(), billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if payments == nil {
		payments = []entitlement.PaymentResponse{}
	}
	h.Success(c, payments)
}

// AddPayment handles POST /bills/:id/payments
// @ID           addBillPayment
// @Summary      Record a payment against a bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body AddPaymentRequest true "Payment request"
// @Success      201 {object} dto.Response{data=entitlement.PaymentResult}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /bills/{id}/payments [post]
func (h *BillHandler) AddPayment(c *gin.Context) {
	billID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req AddPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cmd, err := req.toCommand(billID, h.currency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.coordinator.AddPayment(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Synced(c, http.StatusCreated, result.Value, result.View)
}

// DeletePayment handles DELETE /payments/:id and returns the recomputed bill
// @ID           deletePayment
// @Summary      Delete a payment and recompute its bill
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=entitlement.BillResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /payments/{id} [delete]
func (h *BillHandler) DeletePayment(c *gin.Context) {
	paymentID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.coordinator.DeletePayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Synced(c, http.StatusOK, result.Value, result.View)
}
