package entitlement

import (
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/membership"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"github.com/google/uuid"
)

// CreateBillRequest represents a request to create a bill
type CreateBillRequest struct {
	CustomerID  uuid.UUID
	BillType    ledger.BillType
	GrossAmount valueobject.Money
	Discount    valueobject.Percentage
	BillDate    time.Time
	ReferenceID *uuid.UUID
	Remark      string
}

// UpdateBillRequest represents a partial bill update; nil fields are left unchanged
type UpdateBillRequest struct {
	BillType    *ledger.BillType
	GrossAmount *valueobject.Money
	Discount    *valueobject.Percentage
	BillDate    *time.Time
	Remark      *string
}

func (r UpdateBillRequest) patch() ledger.BillPatch {
	return ledger.BillPatch{
		BillType:           r.BillType,
		GrossAmount:        r.GrossAmount,
		DiscountPercentage: r.Discount,
		BillDate:           r.BillDate,
		Remark:             r.Remark,
	}
}

// AddPaymentRequest represents a payment against a bill
type AddPaymentRequest struct {
	BillID          uuid.UUID
	Amount          valueobject.Money
	Method          ledger.PaymentMethod
	ReferenceNumber string
	PaymentDate     time.Time
}

// AssignMembershipRequest assigns a plan to a customer, superseding the current membership.
// Unless SkipBill is set, a MEMBERSHIP_SUBSCRIPTION bill for the plan price is created in the
// same unit of work.
type AssignMembershipRequest struct {
	CustomerID uuid.UUID
	PlanID     uuid.UUID
	StartDate  time.Time
	Discount   valueobject.Percentage
	SkipBill   bool
}

// AssignPtPackageRequest assigns a PT package and bills its price
type AssignPtPackageRequest struct {
	CustomerID uuid.UUID
	PackageID  uuid.UUID
	CoachID    *uuid.UUID
	StartDate  time.Time
	Discount   valueobject.Percentage
}

// CancelPtPackageRequest cancels an allocation and voids its bill
type CancelPtPackageRequest struct {
	AllocationID uuid.UUID
	Reason       string
}

// BillListFilter represents filter options for a customer's bill list
type BillListFilter struct {
	Statuses []ledger.BillStatus
	BillType *ledger.BillType
	Page     int
	PageSize int
}

func (f BillListFilter) domain() ledger.BillFilter {
	return ledger.BillFilter{
		Filter:   shared.Filter{Page: f.Page, PageSize: f.PageSize}.Normalize(),
		Statuses: f.Statuses,
		BillType: f.BillType,
	}
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID                 uuid.UUID              `json:"id"`
	CustomerID         uuid.UUID              `json:"customer_id"`
	BillDate           time.Time              `json:"bill_date"`
	BillType           ledger.BillType        `json:"bill_type"`
	GrossAmount        valueobject.Money      `json:"gross_amount"`
	DiscountPercentage valueobject.Percentage `json:"discount_percentage"`
	NetAmount          valueobject.Money      `json:"net_amount"`
	PaidAmount         valueobject.Money      `json:"paid_amount"`
	Outstanding        valueobject.Money      `json:"outstanding"`
	Status             ledger.BillStatus      `json:"status"`
	ReferenceID        *uuid.UUID             `json:"reference_id,omitempty"`
	Remark             string                 `json:"remark,omitempty"`
	VoidedAt           *time.Time             `json:"voided_at,omitempty"`
	VoidReason         string                 `json:"void_reason,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// ToBillResponse converts a domain Bill to BillResponse
func ToBillResponse(b *ledger.Bill) BillResponse {
	return BillResponse{
		ID:                 b.ID,
		CustomerID:         b.CustomerID,
		BillDate:           b.BillDate,
		BillType:           b.BillType,
		GrossAmount:        b.GrossAmount,
		DiscountPercentage: b.DiscountPercentage,
		NetAmount:          b.NetAmount,
		PaidAmount:         b.PaidAmount,
		Outstanding:        b.Outstanding(),
		Status:             b.Status,
		ReferenceID:        b.ReferenceID,
		Remark:             b.Remark,
		VoidedAt:           b.VoidedAt,
		VoidReason:         b.VoidReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// ToBillResponses converts a slice of bills
func ToBillResponses(bills []ledger.Bill) []BillResponse {
	out := make([]BillResponse, len(bills))
	for i := range bills {
		out[i] = ToBillResponse(&bills[i])
	}
	return out
}

// DeleteBillResult describes a removed bill
type DeleteBillResult struct {
	BillID          uuid.UUID `json:"bill_id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	PaymentsRemoved int       `json:"payments_removed"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID            `json:"id"`
	BillID          uuid.UUID            `json:"bill_id"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	Amount          valueobject.Money    `json:"amount"`
	PaymentDate     time.Time            `json:"payment_date"`
	Method          ledger.PaymentMethod `json:"method"`
	ReferenceNumber string               `json:"reference_number,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		BillID:          p.BillID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		Method:          p.Method,
		ReferenceNumber: p.ReferenceNumber,
		CreatedAt:       p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []ledger.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// PaymentResult is a recorded payment together with the bill it was applied to
type PaymentResult struct {
	Payment PaymentResponse `json:"payment"`
	Bill    BillResponse    `json:"bill"`
}

// MembershipResponse represents a membership with its read-time status
type MembershipResponse struct {
	ID               uuid.UUID                   `json:"id"`
	CustomerID       uuid.UUID                   `json:"customer_id"`
	MembershipPlanID uuid.UUID                   `json:"membership_plan_id"`
	PlanName         string                      `json:"plan_name,omitempty"`
	StartDate        time.Time                   `json:"membership_start_date"`
	EndDate          time.Time                   `json:"membership_end_date"`
	Status           membership.MembershipStatus `json:"status"`
	SupersededAt     *time.Time                  `json:"superseded_at,omitempty"`
	SupersededBy     *uuid.UUID                  `json:"superseded_by,omitempty"`
	CreatedAt        time.Time                   `json:"created_at"`
}

// ToMembershipResponse converts a membership, computing its status at now
func ToMembershipResponse(m *membership.Membership, planName string, now time.Time) MembershipResponse {
	return MembershipResponse{
		ID:               m.ID,
		CustomerID:       m.CustomerID,
		MembershipPlanID: m.MembershipPlanID,
		PlanName:         planName,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		Status:           m.StatusAt(now),
		SupersededAt:     m.SupersededAt,
		SupersededBy:     m.SupersededBy,
		CreatedAt:        m.CreatedAt,
	}
}

// MembershipView is the membership section of the customer detail view.
// Membership is nil when Status is NONE.
type MembershipView struct {
	Status     membership.MembershipStatus `json:"status"`
	Membership *MembershipResponse         `json:"membership,omitempty"`
}

// AssignMembershipResult is the outcome of a membership swap
type AssignMembershipResult struct {
	Membership MembershipResponse  `json:"membership"`
	Superseded *MembershipResponse `json:"superseded,omitempty"`
	Bill       *BillResponse       `json:"bill,omitempty"`
}

// PlanStatsResponse holds read-time plan aggregates
type PlanStatsResponse struct {
	PlanID             uuid.UUID         `json:"plan_id"`
	PlanName           string            `json:"plan_name"`
	ActiveMembersCount int64             `json:"active_members_count"`
	MonthlyRevenue     valueobject.Money `json:"monthly_revenue"`
	ComputedAt         time.Time         `json:"computed_at"`
}

// AllocationResponse represents a PT package allocation in API responses
type AllocationResponse struct {
	ID                uuid.UUID                 `json:"id"`
	CustomerID        uuid.UUID                 `json:"customer_id"`
	PtPackageID       uuid.UUID                 `json:"pt_package_id"`
	CoachID           *uuid.UUID                `json:"coach_id,omitempty"`
	StartDate         time.Time                 `json:"start_date"`
	SessionsTotal     int                       `json:"sessions_total"`
	SessionsRemaining int                       `json:"sessions_remaining"`
	Status            training.AllocationStatus `json:"status"`
	BillID            *uuid.UUID                `json:"bill_id,omitempty"`
	CancelledAt       *time.Time                `json:"cancelled_at,omitempty"`
	CancelReason      string                    `json:"cancel_reason,omitempty"`
	CompletedAt       *time.Time                `json:"completed_at,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// ToAllocationResponse converts a domain allocation to AllocationResponse
func ToAllocationResponse(a *training.PtPackageAllocation) AllocationResponse {
	return AllocationResponse{
		ID:                a.ID,
		CustomerID:        a.CustomerID,
		PtPackageID:       a.PtPackageID,
		CoachID:           a.CoachID,
		StartDate:         a.StartDate,
		SessionsTotal:     a.SessionsTotal,
		SessionsRemaining: a.SessionsRemaining,
		Status:            a.Status,
		BillID:            a.BillID,
		CancelledAt:       a.CancelledAt,
		CancelReason:      a.CancelReason,
		CompletedAt:       a.CompletedAt,
		CreatedAt:         a.CreatedAt,
	}
}

// ToAllocationResponses converts a slice of allocations
func ToAllocationResponses(allocations []training.PtPackageAllocation) []AllocationResponse {
	out := make([]AllocationResponse, len(allocations))
	for i := range allocations {
		out[i] = ToAllocationResponse(&allocations[i])
	}
	return out
}

// PtPackageResult is an allocation together with its linked bill.
// Bill is nil when a cancelled allocation's bill had already been deleted.
type PtPackageResult struct {
	Allocation AllocationResponse `json:"allocation"`
	Bill       *BillResponse      `json:"bill,omitempty"`
}

// CustomerDetail is the aggregate customer view. Balance, open bill count, membership
// status and PT summary are recomputed from the ledger on every refresh.
type CustomerDetail struct {
	CustomerID    uuid.UUID         `json:"customer_id"`
	Name          string            `json:"name"`
	Email         string            `json:"email,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	Balance       valueobject.Money `json:"balance"`
	OpenBillCount int               `json:"open_bill_count"`
	Membership    MembershipView    `json:"membership"`
	PtSummary     training.Summary  `json:"pt_summary"`
	ComputedAt    time.Time         `json:"computed_at"`
}
