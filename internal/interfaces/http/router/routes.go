package router

import (
	"net/http"

	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/handler"
	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers mounted under the API prefix
type Handlers struct {
	Customers   *handler.CustomerHandler
	Bills       *handler.BillHandler
	Plans       *handler.MembershipPlanHandler
	Allocations *handler.PtAllocationHandler
	System      *handler.SystemHandler
}

// apiRoute is one row of the route table. An empty permission leaves the route open.
type apiRoute struct {
	method     string
	path       string
	permission string
	handle     gin.HandlerFunc
}

// RegisterAPIRoutes mounts the route table on r. Every customer route is gated
// by a permission key; health and system info are open.
func RegisterAPIRoutes(r *Router, h Handlers, gate middleware.PermissionGate) {
	table := []struct {
		prefix string
		routes []apiRoute
	}{
		{"/customers", []apiRoute{
			{http.MethodGet, "/:id", middleware.PermCustomerView, h.Customers.GetDetail},
			{http.MethodGet, "/:id/bills", middleware.PermCustomerView, h.Customers.ListBills},
			{http.MethodPost, "/:id/bills", middleware.PermBillCreate, h.Customers.CreateBill},
			{http.MethodGet, "/:id/payments", middleware.PermCustomerView, h.Customers.ListPayments},
			{http.MethodGet, "/:id/membership", middleware.PermCustomerView, h.Customers.GetMembership},
			{http.MethodGet, "/:id/memberships", middleware.PermCustomerView, h.Customers.ListMemberships},
			{http.MethodPost, "/:id/membership", middleware.PermMembershipAssign, h.Customers.AssignMembership},
			{http.MethodGet, "/:id/pt-packages", middleware.PermCustomerView, h.Customers.ListPtPackages},
			{http.MethodPost, "/:id/pt-packages", middleware.PermPtAssign, h.Customers.AssignPtPackage},
		}},
		{"/bills", []apiRoute{
			{http.MethodGet, "/:id", middleware.PermCustomerView, h.Bills.GetByID},
			{http.MethodPut, "/:id", middleware.PermBillUpdate, h.Bills.Update},
			{http.MethodDelete, "/:id", middleware.PermBillDelete, h.Bills.Delete},
			{http.MethodGet, "/:id/payments", middleware.PermCustomerView, h.Bills.ListPayments},
			{http.MethodPost, "/:id/payments", middleware.PermPaymentCreate, h.Bills.AddPayment},
		}},
		{"/payments", []apiRoute{
			{http.MethodDelete, "/:id", middleware.PermPaymentDelete, h.Bills.DeletePayment},
		}},
		{"/membership-plans", []apiRoute{
			{http.MethodGet, "/:id/stats", middleware.PermPlanView, h.Plans.Stats},
		}},
		{"/pt-allocations", []apiRoute{
			{http.MethodPost, "/:id/cancel", middleware.PermPtCancel, h.Allocations.Cancel},
			{http.MethodPost, "/:id/sessions", middleware.PermPtSessionRecord, h.Allocations.RecordSession},
		}},
		{"/system", []apiRoute{
			{http.MethodGet, "/info", "", h.System.GetSystemInfo},
		}},
	}

	for _, entry := range table {
		group := NewDomainGroup(entry.prefix)
		for _, route := range entry.routes {
			if route.permission == "" {
				group.Handle(route.method, route.path, route.handle)
				continue
			}
			group.Handle(route.method, route.path, middleware.RequirePermission(gate, route.permission), route.handle)
		}
		r.Register(group)
	}
	r.Register(HandlerFunc(func(rg *gin.RouterGroup) {
		rg.GET("/health", h.System.Health)
	}))
}
