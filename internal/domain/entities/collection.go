package entities

import (
	"errors"

	apperrors "github.com/zatekoja/mediflow-admin/pkg/errors"
)

// CollectionStatus describes the progress of the last refresh
type CollectionStatus string

const (
	CollectionStatusIdle    CollectionStatus = "idle"
	CollectionStatusLoading CollectionStatus = "loading"
	CollectionStatusReady   CollectionStatus = "ready"
	CollectionStatusError   CollectionStatus = "error"
)

// CollectionState is a snapshot of a locally mirrored collection
type CollectionState[T Entity] struct {
	Items     []T              `json:"items"`
	Status    CollectionStatus `json:"status"`
	LastError string           `json:"lastError,omitempty"`
}

// OperationResult is returned by every mutating collection call
type OperationResult struct {
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Kind    apperrors.ErrorType `json:"kind,omitempty"`
	// Fields carries per-field validation messages when Kind is VALIDATION.
	Fields map[string]string `json:"fields,omitempty"`
}

// Succeeded returns a successful result
func Succeeded() OperationResult {
	return OperationResult{Success: true}
}

// Failed converts err into an unsuccessful result
func Failed(err error) OperationResult {
	result := OperationResult{
		Success: false,
		Error:   apperrors.Message(err),
		Kind:    apperrors.TypeOf(err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
		result.Fields = appErr.Fields
	}
	return result
}
