package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/logger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Permission keys checked before entitlement operations
const (
	PermCustomerView     = "customer.view"
	PermBillCreate       = "bill.create"
	PermBillUpdate       = "bill.update"
	PermBillDelete       = "bill.delete"
	PermPaymentCreate    = "payment.create"
	PermPaymentDelete    = "payment.delete"
	PermMembershipAssign = "membership.assign"
	PermPlanView         = "membership_plan.view"
	PermPtAssign         = "pt_package.assign"
	PermPtCancel         = "pt_package.cancel"
	PermPtSessionRecord  = "pt_session.record"
)

// PermissionsHeader carries the caller's granted keys, comma separated.
// An upstream gateway is expected to set it after authentication.
const PermissionsHeader = "X-Permissions"

// StaffIDHeader identifies the staff member acting on the request. It is only
// used to tag logs.
const StaffIDHeader = "X-Staff-ID"

// PermissionGate answers whether the caller may perform the action named by key
type PermissionGate interface {
	HasPermission(ctx context.Context, key string) bool
}

type permissionsKey struct{}

// WithPermissions stores granted permission keys on ctx
func WithPermissions(ctx context.Context, keys []string) context.Context {
	return context.WithValue(ctx, permissionsKey{}, keys)
}

// PermissionsFromContext returns the keys stored by WithPermissions
func PermissionsFromContext(ctx context.Context) []string {
	keys, _ := ctx.Value(permissionsKey{}).([]string)
	return keys
}

// HeaderPermissionGate grants the keys listed in PermissionsHeader.
// "*" grants everything and "bill.*" grants every bill action.
type HeaderPermissionGate struct{}

// HasPermission implements PermissionGate
func (HeaderPermissionGate) HasPermission(ctx context.Context, key string) bool {
	return grants(PermissionsFromContext(ctx), key)
}

// Middleware parses PermissionsHeader and StaffIDHeader into the request context
func (HeaderPermissionGate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithPermissions(c.Request.Context(), ParsePermissions(c.GetHeader(PermissionsHeader)))
		if staffID := strings.TrimSpace(c.GetHeader(StaffIDHeader)); staffID != "" {
			ctx = logger.WithStaffID(ctx, staffID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AllowAllGate grants every permission. Use only in development.
type AllowAllGate struct{}

// HasPermission implements PermissionGate
func (AllowAllGate) HasPermission(context.Context, string) bool { return true }

// ParsePermissions splits a comma separated header value, dropping blanks
func ParsePermissions(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

func grants(granted []string, key string) bool {
	if slices.Contains(granted, "*") || slices.Contains(granted, key) {
		return true
	}
	if i := strings.LastIndex(key, "."); i > 0 {
		return slices.Contains(granted, key[:i]+".*")
	}
	return false
}

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
	// OnDenied is called when permission is denied (optional)
	OnDenied func(c *gin.Context, key string)
}

// RequirePermission aborts with 403 unless gate grants key
func RequirePermission(gate PermissionGate, key string) gin.HandlerFunc {
	return RequirePermissionWithConfig(gate, key, PermissionConfig{})
}

// RequirePermissionWithConfig is RequirePermission with logging and a denial hook
func RequirePermissionWithConfig(gate PermissionGate, key string, cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gate.HasPermission(c.Request.Context(), key) {
			c.Next()
			return
		}

		logger.GetGinLogger(c, cfg.Logger).Warn("Permission denied",
			zap.String("permission", key),
			zap.String("path", c.FullPath()),
			zap.String("staff_id", logger.GetStaffID(c.Request.Context())),
		)
		if cfg.OnDenied != nil {
			cfg.OnDenied(c, key)
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
			dto.ErrorInfo{Code: dto.ErrCodeForbidden, Message: "Missing permission " + key},
			logger.GetRequestID(c.Request.Context()),
		))
	}
}
