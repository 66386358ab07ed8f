package entitlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/ledger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/training"
	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PtAllocationService is PT Package Allocation. Assigning a package and billing it,
// and cancelling a package and voiding its bill, each run as one unit of work.
type PtAllocationService struct {
	base
}

// NewPtAllocationService creates a new PtAllocationService
func NewPtAllocationService(scope TransactionScope, repos TransactionalRepositories, opts ...Option) *PtAllocationService {
	return &PtAllocationService{base: newBase(scope, repos, opts...)}
}

// Assign allocates a PT package to a customer and creates the PT_PACKAGE bill for its
// price. Either both records are committed or neither is.
func (s *PtAllocationService) Assign(ctx context.Context, req AssignPtPackageRequest) (*PtPackageResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pt_allocation", "assign_pt_package")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrPackageID, req.PackageID.String(),
	)

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = s.now()
	}

	var (
		allocation *training.PtPackageAllocation
		bill       *ledger.Bill
	)
	err := s.atomic(ctx, "assign_pt_package", func(repos TransactionalRepositories) error {
		if err := requireCustomer(ctx, repos, req.CustomerID); err != nil {
			return err
		}
		pkg, err := repos.PackageCatalog().Get(ctx, req.PackageID)
		if err != nil {
			return err
		}

		allocation, err = training.NewPtPackageAllocation(req.CustomerID, pkg, req.CoachID, startDate)
		if err != nil {
			return err
		}
		bill, err = ledger.NewBill(req.CustomerID, ledger.BillTypePtPackage, pkg.Price, req.Discount, startDate, &allocation.ID)
		if err != nil {
			return err
		}
		bill.Remark = pkg.Name
		allocation.LinkBill(bill.ID)

		if err := repos.BillRepo().Save(ctx, bill); err != nil {
			return fmt.Errorf("save package bill: %w", err)
		}
		if err := repos.AllocationRepo().Save(ctx, allocation); err != nil {
			return fmt.Errorf("save allocation: %w", err)
		}
		return nil
	})
	s.metrics.RecordCompositeOperation(ctx, "assign_pt_package", err == nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordBillCreated(ctx, bill.BillType.String())
	s.publishDomainEvents(ctx, allocation, bill)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAllocationID, allocation.ID.String(),
		telemetry.SpanAttrBillID, bill.ID.String(),
	)
	telemetry.SetOK(span)

	billResp := ToBillResponse(bill)
	return &PtPackageResult{
		Allocation: ToAllocationResponse(allocation),
		Bill:       &billResp,
	}, nil
}

// Cancel moves the allocation to CANCELLED and voids its linked bill in one unit of work.
// A PAID bill is voided too: cancellation is the one cascade allowed past the PAID lock.
func (s *PtAllocationService) Cancel(ctx context.Context, req CancelPtPackageRequest) (*PtPackageResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pt_allocation", "cancel_pt_package")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrAllocationID, req.AllocationID.String())

	var (
		allocation *training.PtPackageAllocation
		bill       *ledger.Bill
	)
	err := s.atomic(ctx, "cancel_pt_package", func(repos TransactionalRepositories) error {
		var err error
		allocation, err = repos.AllocationRepo().FindByID(ctx, req.AllocationID)
		if err != nil {
			return err
		}
		if err := allocation.Cancel(req.Reason); err != nil {
			return err
		}

		bill, err = s.linkedBill(ctx, repos, allocation)
		if err != nil {
			return err
		}
		if bill != nil && !bill.IsVoided() {
			if err := bill.Void(voidReason(req.Reason)); err != nil {
				return err
			}
			if err := repos.BillRepo().Save(ctx, bill); err != nil {
				return fmt.Errorf("void package bill: %w", err)
			}
			telemetry.AddEvent(span, "bill_voided", telemetry.SpanAttrBillID, bill.ID.String())
		}

		if err := repos.AllocationRepo().Save(ctx, allocation); err != nil {
			return fmt.Errorf("save allocation: %w", err)
		}
		return nil
	})
	s.metrics.RecordCompositeOperation(ctx, "cancel_pt_package", err == nil)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &PtPackageResult{Allocation: ToAllocationResponse(allocation)}
	if bill != nil {
		billResp := ToBillResponse(bill)
		result.Bill = &billResp
		s.publishDomainEvents(ctx, allocation, bill)
	} else {
		s.publishDomainEvents(ctx, allocation)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerID, allocation.CustomerID.String())
	telemetry.SetOK(span)
	return result, nil
}

// ConsumeSession uses one session of an allocation
func (s *PtAllocationService) ConsumeSession(ctx context.Context, allocationID uuid.UUID) (*AllocationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pt_allocation", "consume_session")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrAllocationID, allocationID.String())

	var allocation *training.PtPackageAllocation
	err := s.atomic(ctx, "consume_session", func(repos TransactionalRepositories) error {
		var err error
		allocation, err = repos.AllocationRepo().FindByID(ctx, allocationID)
		if err != nil {
			return err
		}
		if err := allocation.ConsumeSession(); err != nil {
			return err
		}
		if err := repos.AllocationRepo().Save(ctx, allocation); err != nil {
			return fmt.Errorf("save allocation: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishDomainEvents(ctx, allocation)
	telemetry.SetOK(span)

	response := ToAllocationResponse(allocation)
	return &response, nil
}

// ListCustomerAllocations lists a customer's allocations, newest first.
// No statuses means every status.
func (s *PtAllocationService) ListCustomerAllocations(ctx context.Context, customerID uuid.UUID, statuses ...training.AllocationStatus) ([]AllocationResponse, error) {
	if err := requireCustomer(ctx, s.repos, customerID); err != nil {
		return nil, err
	}
	allocations, err := s.repos.AllocationRepo().FindByCustomer(ctx, customerID, statuses...)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return ToAllocationResponses(allocations), nil
}

// linkedBill finds the allocation's bill. A bill deleted earlier leaves nothing to void.
func (s *PtAllocationService) linkedBill(ctx context.Context, repos TransactionalRepositories, allocation *training.PtPackageAllocation) (*ledger.Bill, error) {
	var (
		bill *ledger.Bill
		err  error
	)
	if allocation.BillID != nil {
		bill, err = repos.BillRepo().FindByID(ctx, *allocation.BillID)
	} else {
		bill, err = repos.BillRepo().FindByReference(ctx, allocation.CustomerID, allocation.ID, ledger.BillTypePtPackage)
	}
	if errors.Is(err, shared.ErrBillNotFound) {
		s.log(ctx).Warn("PT allocation has no bill to void",
			zap.String("allocation_id", allocation.ID.String()))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load package bill: %w", err)
	}
	return bill, nil
}

func voidReason(reason string) string {
	if reason == "" {
		return "PT package cancelled"
	}
	return reason
}
