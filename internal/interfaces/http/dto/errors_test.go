package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeInvalidID, http.StatusBadRequest},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorFor_DomainKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		kind     shared.ErrorKind
		contains string
	}{
		{"validation", shared.ErrInvalidDiscount, http.StatusBadRequest, "INVALID_DISCOUNT", shared.KindValidation, "between 0 and 100"},
		{"state conflict", shared.ErrOverPayment, http.StatusUnprocessableEntity, "OVER_PAYMENT", shared.KindStateConflict, "exceeds"},
		{"locked", shared.ErrBillLocked, http.StatusUnprocessableEntity, "BILL_LOCKED", shared.KindStateConflict, "no longer"},
		{"not found", shared.ErrBillNotFound, http.StatusNotFound, "BILL_NOT_FOUND", shared.KindNotFound, "not found"},
		{"concurrent update", shared.ErrConcurrentUpdate, http.StatusConflict, "CONCURRENT_UPDATE", shared.KindStateConflict, "retry"},
		{
			"atomicity",
			shared.NewAtomicityError("assign PT package", errors.New("disk full")),
			http.StatusInternalServerError, "ATOMICITY_ERROR", shared.KindAtomicity, "no changes were saved",
		},
		{
			"wrapped",
			fmt.Errorf("load bill: %w", shared.ErrBillNotFound),
			http.StatusNotFound, "BILL_NOT_FOUND", shared.KindNotFound, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, info := ErrorFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, info.Code)
			assert.Equal(t, string(tt.kind), info.Kind)
			assert.Contains(t, info.Message, tt.contains)
		})
	}
}

func TestErrorFor_HidesInternalDetails(t *testing.T) {
	status, info := ErrorFor(errors.New("pq: connection refused to 10.0.0.5"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrCodeInternal, info.Code)
	assert.Equal(t, InternalErrorMessage, info.Message)

	_, info = ErrorFor(shared.NewAtomicityError("swap membership", errors.New("secret cause")))
	assert.NotContains(t, info.Message, "secret cause")
}

func TestNewSyncedResponse(t *testing.T) {
	t.Run("fresh", func(t *testing.T) {
		resp := NewSyncedResponse(map[string]string{"id": "1"}, true, nil)
		require.NotNil(t, resp.Meta)
		require.NotNil(t, resp.Meta.ViewFresh)
		assert.True(t, *resp.Meta.ViewFresh)
		assert.Empty(t, resp.Meta.Warning)
	})

	t.Run("stale serializes view_fresh false", func(t *testing.T) {
		resp := NewSyncedResponse(nil, false, errors.New("view may be stale"))
		raw, err := json.Marshal(resp)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		meta := decoded["meta"].(map[string]any)
		assert.Equal(t, false, meta["view_fresh"])
		assert.Equal(t, "view may be stale", meta["warning"])
	})
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := NewPaginatedResponse(shared.NewPaginated[string](nil, 0, 1, 20))

	assert.True(t, resp.Success)
	assert.Equal(t, []string{}, resp.Data)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 20, resp.Meta.PageSize)
	assert.Nil(t, resp.Meta.ViewFresh)
}

func TestListRequest_Filter(t *testing.T) {
	f := ListRequest{}.Filter()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 50, f.PageSize)
	assert.Equal(t, "desc", f.OrderDir)

	f = ListRequest{Page: 3, PageSize: 10, OrderDir: "asc"}.Filter()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 10, f.PageSize)
	assert.Equal(t, "asc", f.OrderDir)
}
