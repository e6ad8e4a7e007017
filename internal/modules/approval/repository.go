package approval

import "context"

// Repository defines data access for approval workflow rows. The resolve
// methods are conditional updates guarded on the current status; they report
// whether a row was actually updated so services can detect stale requests
// without a read-modify-write race.
type Repository interface {
	CreateAssignment(ctx context.Context, r *AssignmentRequest) error
	GetAssignment(ctx context.Context, id string) (*AssignmentRequest, error)
	ListAssignments(ctx context.Context, status string) ([]*AssignmentRequest, error)

	// ResolveAssignment moves a PENDING_APPROVAL request to a terminal
	// status, stamping approver or rejection reason.
	ResolveAssignment(ctx context.Context, id string, to AssignmentStatus, approver, reason string) (bool, error)

	CreateRedirect(ctx context.Context, r *RedirectRequest) error
	GetRedirect(ctx context.Context, id string) (*RedirectRequest, error)
	ListRedirects(ctx context.Context, status string) ([]*RedirectRequest, error)

	// PromoteRedirect moves a PENDING_JEFATURA request to PENDING_GERENCIA,
	// stamping the level-1 approver.
	PromoteRedirect(ctx context.Context, id string, approver string) (bool, error)

	// ResolveRedirect moves a request from any non-terminal status to a
	// terminal one, stamping the level-2 approver or rejection reason.
	ResolveRedirect(ctx context.Context, id string, to RedirectStatus, approver, reason string) (bool, error)
}
