package approval

import (
	"time"

	"github.com/google/uuid"

	"github.com/arenex-logistics/arenex-backend/internal/modules/recommend"
)

// AssignmentStatus is the state of a single-level assignment request.
type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "PENDING_APPROVAL"
	AssignmentApproved AssignmentStatus = "APPROVED"
	AssignmentRejected AssignmentStatus = "REJECTED"
)

// AssignmentRequest is one human-in-the-loop assignment attempt. Terminal
// states are never re-opened.
type AssignmentRequest struct {
	ID              uuid.UUID            `json:"id"`
	OrderID         uuid.UUID            `json:"order_id"`
	SourceType      recommend.SourceType `json:"source_type"`
	SourceID        string               `json:"source_id,omitempty"`
	TruckID         *uuid.UUID           `json:"truck_id,omitempty"`
	FromOrderID     *uuid.UUID           `json:"from_order_id,omitempty"`
	Status          AssignmentStatus     `json:"status"`
	RequestedBy     string               `json:"requested_by,omitempty"`
	ApprovedBy      string               `json:"approved_by,omitempty"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	ResolvedAt      *time.Time           `json:"resolved_at,omitempty"`
}

// RedirectStatus is the state of a redirect request.
type RedirectStatus string

const (
	RedirectPendingApproval RedirectStatus = "PENDING_APPROVAL" // single-level short-circuit path
	RedirectPendingJefatura RedirectStatus = "PENDING_JEFATURA"
	RedirectPendingGerencia RedirectStatus = "PENDING_GERENCIA"
	RedirectApproved        RedirectStatus = "APPROVED"
	RedirectRejected        RedirectStatus = "REJECTED"
)

// redirectTransitions is the explicit transition table for the redirect
// state machine. Both approval paths (single-step approve and the
// jefatura/gerencia two-step) are named transitions over this one machine.
var redirectTransitions = map[RedirectStatus][]RedirectStatus{
	RedirectPendingApproval: {RedirectApproved, RedirectRejected},
	RedirectPendingJefatura: {RedirectPendingGerencia, RedirectApproved, RedirectRejected},
	RedirectPendingGerencia: {RedirectApproved, RedirectRejected},
}

// canRedirectTransition reports whether moving from current to next is a
// named transition. Terminal states allow nothing.
func canRedirectTransition(current, next RedirectStatus) bool {
	for _, s := range redirectTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status is final.
func (s RedirectStatus) Terminal() bool {
	return s == RedirectApproved || s == RedirectRejected
}

// RedirectRequest is a request to pull a truck off one order and send it to
// another, gated behind up to two approval levels.
type RedirectRequest struct {
	ID               uuid.UUID      `json:"id"`
	FromOrderID      uuid.UUID      `json:"from_order_id"`
	ToOrderID        uuid.UUID      `json:"to_order_id"`
	TruckID          uuid.UUID      `json:"truck_id"`
	Status           RedirectStatus `json:"status"`
	RequestedBy      string         `json:"requested_by,omitempty"`
	JefaturaApprover string         `json:"jefatura_approver,omitempty"`
	JefaturaAt       *time.Time     `json:"jefatura_at,omitempty"`
	GerenciaApprover string         `json:"gerencia_approver,omitempty"`
	GerenciaAt       *time.Time     `json:"gerencia_at,omitempty"`
	RejectionReason  string         `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// CreateAssignmentRequest is the payload for opening an assignment request.
type CreateAssignmentRequest struct {
	OrderID     string               `json:"order_id"`
	SourceType  recommend.SourceType `json:"source_type"`
	SourceID    string               `json:"source_id,omitempty"`
	TruckID     string               `json:"truck_id,omitempty"`
	FromOrderID string               `json:"from_order_id,omitempty"`
}

// CreateRedirectRequest is the payload for opening a redirect request.
// SingleLevel opens the request on the short-circuit PENDING_APPROVAL path
// instead of the two-step jefatura/gerencia chain.
type CreateRedirectRequest struct {
	FromOrderID string `json:"from_order_id"`
	ToOrderID   string `json:"to_order_id"`
	TruckID     string `json:"truck_id"`
	SingleLevel bool   `json:"single_level,omitempty"`
}

// RejectRequest is the payload for rejecting either request kind.
type RejectRequest struct {
	Reason string `json:"reason"`
}
