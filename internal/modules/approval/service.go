package approval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arenex-logistics/arenex-backend/internal/modules/assignment"
	"github.com/arenex-logistics/arenex-backend/internal/platform/metrics"
)

// Service drives the approval workflows that gate the assignment executor.
type Service interface {
	// Assignment requests: single approval level.
	CreateAssignmentRequest(ctx context.Context, req CreateAssignmentRequest, requester string) (*AssignmentRequest, error)
	ListAssignmentRequests(ctx context.Context, status string) ([]*AssignmentRequest, error)
	ApproveAssignment(ctx context.Context, id, approver string) (*AssignmentRequest, error)
	RejectAssignment(ctx context.Context, id, reason string) (*AssignmentRequest, error)

	// Redirect requests: two sequential levels, plus a single-step
	// operational shortcut.
	CreateRedirectRequest(ctx context.Context, req CreateRedirectRequest, requester string) (*RedirectRequest, error)
	ListRedirectRequests(ctx context.Context, status string) ([]*RedirectRequest, error)
	ApproveRedirectByJefatura(ctx context.Context, id, approver string) (*RedirectRequest, error)
	ApproveRedirectByGerencia(ctx context.Context, id, approver string) (*RedirectRequest, error)
	ApproveRedirect(ctx context.Context, id, approver string) (*RedirectRequest, error)
	RejectRedirect(ctx context.Context, id, reason string) (*RedirectRequest, error)
}

type service struct {
	repo     Repository
	executor assignment.Executor
	metrics  *metrics.Collector
}

// NewService creates the approval workflow service. The metrics collector may
// be nil in tests.
func NewService(repo Repository, executor assignment.Executor, collector *metrics.Collector) Service {
	return &service{repo: repo, executor: executor, metrics: collector}
}

// ── assignment requests ──────────────────────────────────────────────────────

func (s *service) CreateAssignmentRequest(ctx context.Context, req CreateAssignmentRequest, requester string) (*AssignmentRequest, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order_id: %w", err)
	}
	if req.SourceType == "" {
		return nil, fmt.Errorf("source_type is required")
	}

	a := &AssignmentRequest{
		ID:          uuid.New(),
		OrderID:     orderID,
		SourceType:  req.SourceType,
		SourceID:    req.SourceID,
		Status:      AssignmentPending,
		RequestedBy: requester,
	}
	if req.TruckID != "" {
		uid, err := uuid.Parse(req.TruckID)
		if err != nil {
			return nil, fmt.Errorf("invalid truck_id: %w", err)
		}
		a.TruckID = &uid
	}
	if req.FromOrderID != "" {
		uid, err := uuid.Parse(req.FromOrderID)
		if err != nil {
			return nil, fmt.Errorf("invalid from_order_id: %w", err)
		}
		a.FromOrderID = &uid
	}
	if err := s.repo.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) ListAssignmentRequests(ctx context.Context, status string) ([]*AssignmentRequest, error) {
	return s.repo.ListAssignments(ctx, status)
}

// ApproveAssignment re-validates the request is still pending, runs the
// executor, and only then marks the row approved. A failed execution leaves
// the request pending for a retry or a different choice.
func (s *service) ApproveAssignment(ctx context.Context, id, approver string) (*AssignmentRequest, error) {
	a, err := s.repo.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != AssignmentPending {
		return nil, fmt.Errorf("assignment request is not pending (status %s)", a.Status)
	}

	req := assignment.Request{
		OrderID:    a.OrderID.String(),
		SourceType: a.SourceType,
		SourceID:   a.SourceID,
	}
	if a.TruckID != nil {
		req.TruckID = a.TruckID.String()
	}
	if a.FromOrderID != nil {
		req.FromOrderID = a.FromOrderID.String()
	}
	if err := s.executor.Assign(ctx, req); err != nil {
		return nil, err
	}

	updated, err := s.repo.ResolveAssignment(ctx, id, AssignmentApproved, approver, "")
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("assignment request is not pending")
	}
	if s.metrics != nil {
		s.metrics.ApprovalResolved("assignment", "approved")
	}
	zap.S().Infow("assignment request approved", "request", id, "approver", approver)
	return s.repo.GetAssignment(ctx, id)
}

func (s *service) RejectAssignment(ctx context.Context, id, reason string) (*AssignmentRequest, error) {
	updated, err := s.repo.ResolveAssignment(ctx, id, AssignmentRejected, "", reason)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("assignment request is not pending")
	}
	if s.metrics != nil {
		s.metrics.ApprovalResolved("assignment", "rejected")
	}
	return s.repo.GetAssignment(ctx, id)
}

// ── redirect requests ────────────────────────────────────────────────────────

func (s *service) CreateRedirectRequest(ctx context.Context, req CreateRedirectRequest, requester string) (*RedirectRequest, error) {
	fromID, err := uuid.Parse(req.FromOrderID)
	if err != nil {
		return nil, fmt.Errorf("invalid from_order_id: %w", err)
	}
	toID, err := uuid.Parse(req.ToOrderID)
	if err != nil {
		return nil, fmt.Errorf("invalid to_order_id: %w", err)
	}
	truckID, err := uuid.Parse(req.TruckID)
	if err != nil {
		return nil, fmt.Errorf("invalid truck_id: %w", err)
	}

	status := RedirectPendingJefatura
	if req.SingleLevel {
		status = RedirectPendingApproval
	}
	rr := &RedirectRequest{
		ID:          uuid.New(),
		FromOrderID: fromID,
		ToOrderID:   toID,
		TruckID:     truckID,
		Status:      status,
		RequestedBy: requester,
	}
	if err := s.repo.CreateRedirect(ctx, rr); err != nil {
		return nil, err
	}
	return rr, nil
}

func (s *service) ListRedirectRequests(ctx context.Context, status string) ([]*RedirectRequest, error) {
	return s.repo.ListRedirects(ctx, status)
}

// ApproveRedirectByJefatura promotes the request to the second approval
// level. It performs no fulfillment side effects.
func (s *service) ApproveRedirectByJefatura(ctx context.Context, id, approver string) (*RedirectRequest, error) {
	rr, err := s.repo.GetRedirect(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRedirectTransition(rr.Status, RedirectPendingGerencia) {
		return nil, fmt.Errorf("redirect request is not awaiting jefatura approval (status %s)", rr.Status)
	}
	updated, err := s.repo.PromoteRedirect(ctx, id, approver)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("redirect request is not awaiting jefatura approval")
	}
	return s.repo.GetRedirect(ctx, id)
}

// ApproveRedirectByGerencia is the final step of the two-level chain.
func (s *service) ApproveRedirectByGerencia(ctx context.Context, id, approver string) (*RedirectRequest, error) {
	rr, err := s.repo.GetRedirect(ctx, id)
	if err != nil {
		return nil, err
	}
	if rr.Status != RedirectPendingGerencia {
		return nil, fmt.Errorf("redirect request is not awaiting gerencia approval (status %s)", rr.Status)
	}
	return s.executeRedirect(ctx, rr, approver)
}

// ApproveRedirect is the single-step operational shortcut: it executes
// immediately from any non-terminal status.
func (s *service) ApproveRedirect(ctx context.Context, id, approver string) (*RedirectRequest, error) {
	rr, err := s.repo.GetRedirect(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRedirectTransition(rr.Status, RedirectApproved) {
		return nil, fmt.Errorf("redirect request already resolved (status %s)", rr.Status)
	}
	return s.executeRedirect(ctx, rr, approver)
}

// executeRedirect is the one shared execution step behind both approval
// entry points: run the truck rebind, then mark the row approved.
func (s *service) executeRedirect(ctx context.Context, rr *RedirectRequest, approver string) (*RedirectRequest, error) {
	if err := s.executor.ExecuteRedirect(ctx, rr.FromOrderID, rr.ToOrderID, rr.TruckID); err != nil {
		return nil, err
	}

	updated, err := s.repo.ResolveRedirect(ctx, rr.ID.String(), RedirectApproved, approver, "")
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("redirect request already resolved")
	}
	if s.metrics != nil {
		s.metrics.ApprovalResolved("redirect", "approved")
	}
	zap.S().Infow("redirect request approved",
		"request", rr.ID, "approver", approver, "truck", rr.TruckID)
	return s.repo.GetRedirect(ctx, rr.ID.String())
}

// RejectRedirect is allowed from any non-terminal status.
func (s *service) RejectRedirect(ctx context.Context, id, reason string) (*RedirectRequest, error) {
	updated, err := s.repo.ResolveRedirect(ctx, id, RedirectRejected, "", reason)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("redirect request already resolved")
	}
	if s.metrics != nil {
		s.metrics.ApprovalResolved("redirect", "rejected")
	}
	return s.repo.GetRedirect(ctx, id)
}
