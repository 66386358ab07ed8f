package handler

import (
	"strings"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/application/entitlement"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared/valueobject"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/dto"
	"github.com/google/uuid"
)

// DateLayout is the wire format of calendar dates in request bodies
const DateLayout = "2006-01-02"

// CreateBillRequest represents a request to create a bill.
// Amounts are decimal strings in major units, e.g. "1500.00".
type CreateBillRequest struct {
	BillType           string `json:"bill_type" binding:"required"`
	GrossAmount        string `json:"gross_amount" binding:"required,money"`
	DiscountPercentage string `json:"discount_percentage" binding:"omitempty,percent"`
	BillDate           string `json:"bill_date" binding:"omitempty,datetime=2006-01-02"`
	ReferenceID        string `json:"reference_id" binding:"omitempty,uuid"`
	Remark             string `json:"remark" binding:"max=500"`
}

func (r CreateBillRequest) toCommand(customerID uuid.UUID, currency valueobject.Currency) (entitlement.CreateBillRequest, error) {
	gross, err := valueobject.NewMoneyFromString(r.GrossAmount, currency)
	if err != nil {
		return entitlement.CreateBillRequest{}, err
	}
	discount, err := valueobject.ParsePercentage(r.DiscountPercentage)
	if err != nil {
		return entitlement.CreateBillRequest{}, err
	}
	billDate, err := parseDate(r.BillDate)
	if err != nil {
		return entitlement.CreateBillRequest{}, err
	}
	cmd := entitlement.CreateBillRequest{
		CustomerID:  customerID,
		BillType:    ledger.BillType(strings.ToUpper(r.BillType)),
		GrossAmount: gross,
		Discount:    discount,
		BillDate:    billDate,
		Remark:      r.Remark,
	}
	if r.ReferenceID != "" {
		ref := uuid.MustParse(r.ReferenceID)
		cmd.ReferenceID = &ref
	}
	return cmd, nil
}

// UpdateBillRequest represents a partial bill update; omitted fields are unchanged
type UpdateBillRequest struct {
	BillType           *string `json:"bill_type"`
	GrossAmount        *string `json:"gross_amount" binding:"omitempty,money"`
	DiscountPercentage *string `json:"discount_percentage" binding:"omitempty,percent"`
	BillDate           *string `json:"bill_date" binding:"omitempty,datetime=2006-01-02"`
	Remark             *string `json:"remark" binding:"omitempty,max=500"`
}

func (r UpdateBillRequest) toCommand(currency valueobject.Currency) (entitlement.UpdateBillRequest, error) {
	var cmd entitlement.UpdateBillRequest
	if r.BillType != nil {
		t := ledger.BillType(strings.ToUpper(*r.BillType))
		cmd.BillType = &t
	}
	if r.GrossAmount != nil {
		gross, err := valueobject.NewMoneyFromString(*r.GrossAmount, currency)
		if err != nil {
			return cmd, err
		}
		cmd.GrossAmount = &gross
	}
	if r.DiscountPercentage != nil {
		discount, err := valueobject.ParsePercentage(*r.DiscountPercentage)
		if err != nil {
			return cmd, err
		}
		cmd.Discount = &discount
	}
	if r.BillDate != nil {
		billDate, err := parseDate(*r.BillDate)
		if err != nil {
			return cmd, err
		}
		cmd.BillDate = &billDate
	}
	cmd.Remark = r.Remark
	return cmd, nil
}

// AddPaymentRequest represents a payment against a bill
type AddPaymentRequest struct {
	Amount          string `json:"amount" binding:"required,money"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
	ReferenceNumber string `json:"reference_number" binding:"max=100"`
	PaymentDate     string `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
}

func (r AddPaymentRequest) toCommand(billID uuid.UUID, currency valueobject.Currency) (entitlement.AddPaymentRequest, error) {
	amount, err := valueobject.NewMoneyFromString(r.Amount, currency)
	if err != nil {
		return entitlement.AddPaymentRequest{}, err
	}
	method, err := ledger.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return entitlement.AddPaymentRequest{}, err
	}
	paymentDate, err := parseDate(r.PaymentDate)
	if err != nil {
		return entitlement.AddPaymentRequest{}, err
	}
	return entitlement.AddPaymentRequest{
		BillID:          billID,
		Amount:          amount,
		Method:          method,
		ReferenceNumber: r.ReferenceNumber,
		PaymentDate:     paymentDate,
	}, nil
}

// AssignMembershipRequest assigns a plan, superseding the current membership
type AssignMembershipRequest struct {
	MembershipPlanID   string `json:"membership_plan_id" binding:"required,uuid"`
	StartDate          string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	DiscountPercentage string `json:"discount_percentage" binding:"omitempty,percent"`
	SkipBill           bool   `json:"skip_bill"`
}

func (r AssignMembershipRequest) toCommand(customerID uuid.UUID) (entitlement.AssignMembershipRequest, error) {
	discount, err := valueobject.ParsePercentage(r.DiscountPercentage)
	if err != nil {
		return entitlement.AssignMembershipRequest{}, err
	}
	startDate, err := parseDate(r.StartDate)
	if err != nil {
		return entitlement.AssignMembershipRequest{}, err
	}
	return entitlement.AssignMembershipRequest{
		CustomerID: customerID,
		PlanID:     uuid.MustParse(r.MembershipPlanID),
		StartDate:  startDate,
		Discount:   discount,
		SkipBill:   r.SkipBill,
	}, nil
}

// AssignPtPackageRequest assigns a PT package and bills its price
type AssignPtPackageRequest struct {
	PtPackageID        string `json:"pt_package_id" binding:"required,uuid"`
	CoachID            string `json:"coach_id" binding:"omitempty,uuid"`
	StartDate          string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	DiscountPercentage string `json:"discount_percentage" binding:"omitempty,percent"`
}

func (r AssignPtPackageRequest) toCommand(customerID uuid.UUID) (entitlement.AssignPtPackageRequest, error) {
	discount, err := valueobject.ParsePercentage(r.DiscountPercentage)
	if err != nil {
		return entitlement.AssignPtPackageRequest{}, err
	}
	startDate, err := parseDate(r.StartDate)
	if err != nil {
		return entitlement.AssignPtPackageRequest{}, err
	}
	cmd := entitlement.AssignPtPackageRequest{
		CustomerID: customerID,
		PackageID:  uuid.MustParse(r.PtPackageID),
		StartDate:  startDate,
		Discount:   discount,
	}
	if r.CoachID != "" {
		coach := uuid.MustParse(r.CoachID)
		cmd.CoachID = &coach
	}
	return cmd, nil
}

// CancelPtPackageRequest carries the optional cancellation reason
type CancelPtPackageRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// BillListRequest represents the query parameters of a customer's bill list
type BillListRequest struct {
	dto.ListRequest
	Status   string `form:"status"`
	BillType string `form:"bill_type"`
}

// toFilter parses a comma separated status list such as "ACTIVE,PARTIAL"
func (r BillListRequest) toFilter() (entitlement.BillListFilter, error) {
	filter := entitlement.BillListFilter{Page: r.Page, PageSize: r.PageSize}
	for _, raw := range splitList(r.Status) {
		status := ledger.BillStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			return filter, shared.NewValidationError("INVALID_STATUS", "Unknown bill status "+raw)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if r.BillType != "" {
		billType := ledger.BillType(strings.ToUpper(r.BillType))
		if !billType.IsValid() {
			return filter, shared.ErrInvalidBillType.WithMessage("unknown bill type %q", r.BillType)
		}
		filter.BillType = &billType
	}
	return filter, nil
}

// AllocationListRequest represents the query parameters of a customer's PT package list
type AllocationListRequest struct {
	Status string `form:"status"`
}

func (r AllocationListRequest) statuses() ([]training.AllocationStatus, error) {
	var statuses []training.AllocationStatus
	for _, raw := range splitList(r.Status) {
		status := training.AllocationStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			return nil, shared.NewValidationError("INVALID_STATUS", "Unknown allocation status "+raw)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, shared.NewValidationError("INVALID_DATE", "Dates must use the YYYY-MM-DD format")
	}
	return t, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
