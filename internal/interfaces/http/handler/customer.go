package handler

import (
	"net/http"

	"github.com/QodexGroup/gym-management-system-sub002/internal/application/entitlement"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CustomerHandler serves a customer's financial and entitlement state
type CustomerHandler struct {
	BaseHandler
	coordinator *entitlement.Coordinator
	currency    valueobject.Currency
}

// NewCustomerHandler creates a new CustomerHandler. Amounts in request bodies
// are read in the given currency.
func NewCustomerHandler(coordinator *entitlement.Coordinator, currency valueobject.Currency) *CustomerHandler {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &CustomerHandler{
		coordinator: coordinator,
		currency:    currency,
	}
}

// GetDetail handles GET /customers/:id
// @ID           getCustomerDetail
// @Summary      Get a customer's balance, membership and PT summary
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=entitlement.CustomerDetail}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetDetail(c *gin.Context) {
	customerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	detail, err := h.coordinator.CustomerDetail(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// ListBills handles GET /customers/:id/bills?status=ACTIVE,PARTIAL&bill_type=&page=&page_size=
// @ID           listCustomerBills
// @Summary      List a customer's bills
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        status query string false "Comma separated statuses, e.g. ACTIVE,PARTIAL"
// @Param        bill_type query string false "Bill type" Enums(MEMBERSHIP_SUBSCRIPTION, CUSTOM_AMOUNT, PT_PACKAGE)
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(200)
// @Success      200 {object} dto.Response{data=[]entitlement.BillResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /customers/{id}/bills [get]
func (h *CustomerHandler) ListBills(c *gin.Context) {
	customerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req BillListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.toFilter()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, err := h.coordinator.ListCustomerBills(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPaginated(c, page)
}

// CreateBill handles POST /customers/:id/bills
// @ID           createCustomerBill
// @Summary      Create a bill for a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body CreateBillRequest true "Bill creation request"
// @Success      201 {object} dto.Response{data=entitlement.BillResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /customers/{id}/bills [post]
func (h *CustomerHandler) CreateBill(c *gin.Context) {
	customerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req CreateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cmd, err := req.toCommand(customerID, h.currency)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.coordinator.CreateBill(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Synced(c, http.StatusCreated, result.Value, result.View)
}

// ListPayments handles GET /customers/:id/payments
// @ID           listCustomerPayments
// @Summary      List a customer's payments
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(200)
// @Success      200 {object} dto.Response{data=[]entitlement.PaymentResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /customers/{id}/payments [get]
func (h *CustomerHandler) ListPayments(c *gin.Context) {
	customerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	page, err := h.coordinator.ListCustomerPayments(c.Request.Context(), customerID, req.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPaginated(c, page)
}

// GetMembership handles GET /customers/:id/membership.
// A customer without a membership yields status NONE, not 404.
// @ID           getCustomerMembership
// @Summary      Get a customer's current membership
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=entitlement.MembershipView}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /customers/{id}/membership [get]
func (h *CustomerHandler) GetMembership(c *gin.Context) {
	customerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	view, err := h.coordinator.CurrentMembership(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ListMemberships handles GET /customers/:id/memberships, newest first
// @ID           listCustomerMemberships
// @Summary      List a customer's membership history
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]entitlement.MembershipResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /customers/{id}/memberships [get]
func (h *CustomerHandler) ListMemberships(c *gin.Context) {
	customerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	memberships, err := h.coordinator.ListCustomerMemberships(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if memberships == nil {
		memberships = []entitlement.MembershipResponse{}
	}
	h.Success(c, memberships)
}

// AssignMembership handles POST /customers/:id/membership
// @ID           assignCustomerMembership
// @Summary      Assign a membership, superseding the active one
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body AssignMembershipRequest true "Membership assignment request"
// @Success      201 {object} dto.Response{data=entitlement.AssignMembershipResult}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /customers/{id}/membership [post]
func (h *CustomerHandler) AssignMembership(c *gin.Context) {
	customerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req AssignMembershipRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cmd, err := req.toCommand(customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.coordinator.SwapMembership(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Synced(c, http.StatusCreated, result.Value, result.View)
}

// ListPtPackages handles GET /customers/:id/pt-packages?status=ACTIVE
// @ID           listCustomerPtPackages
// @Summary      List a customer's PT package allocations
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        status query string false "Comma separated statuses, e.g. ACTIVE"
// @Success      200 {object} dto.Response{data=[]entitlement.AllocationResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /customers/{id}/pt-packages [get]
func (h *CustomerHandler) ListPtPackages(c *gin.Context) {
	customerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req AllocationListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	statuses, err := req.statuses()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	allocations, err := h.coordinator.ListCustomerAllocations(c.Request.Context(), customerID, statuses...)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if allocations == nil {
		allocations = []entitlement.AllocationResponse{}
	}
	h.Success(c, allocations)
}

// AssignPtPackage handles POST /customers/:id/pt-packages
// @ID           assignCustomerPtPackage
// @Summary      Assign a PT package and bill it
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body AssignPtPackageRequest true "PT package assignment request"
// @Success      201 {object} dto.Response{data=entitlement.PtPackageResult}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     PermissionHeader
// @Router       /customers/{id}/pt-packages [post]
func (h *CustomerHandler) AssignPtPackage(c *gin.Context) {
	customerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req AssignPtPackageRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cmd, err := req.toCommand(customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.coordinator.AssignPtPackage(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Synced(c, http.StatusCreated, result.Value, result.View)
}
