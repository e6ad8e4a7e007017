package approval

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenex-logistics/arenex-backend/internal/modules/assignment"
	"github.com/arenex-logistics/arenex-backend/internal/modules/recommend"
)

// ── fakes ──────────────────────────────────────────────────────────────

type fakeExecutor struct {
	assignCalls   int
	redirectCalls int
	assignErr     error
	redirectErr   error
	lastRedirect  [3]uuid.UUID
}

func (f *fakeExecutor) Assign(context.Context, assignment.Request) error {
	f.assignCalls++
	return f.assignErr
}

func (f *fakeExecutor) ExecuteRedirect(_ context.Context, fromOrderID, toOrderID, truckID uuid.UUID) error {
	f.redirectCalls++
	f.lastRedirect = [3]uuid.UUID{fromOrderID, toOrderID, truckID}
	return f.redirectErr
}

type memRepo struct {
	assignments map[string]*AssignmentRequest
	redirects   map[string]*RedirectRequest
}

func newMemRepo() *memRepo {
	return &memRepo{
		assignments: make(map[string]*AssignmentRequest),
		redirects:   make(map[string]*RedirectRequest),
	}
}

func (m *memRepo) CreateAssignment(_ context.Context, r *AssignmentRequest) error {
	m.assignments[r.ID.String()] = r
	return nil
}

func (m *memRepo) GetAssignment(_ context.Context, id string) (*AssignmentRequest, error) {
	r, ok := m.assignments[id]
	if !ok {
		return nil, fmt.Errorf("assignment request %s not found", id)
	}
	return r, nil
}

func (m *memRepo) ListAssignments(_ context.Context, status string) ([]*AssignmentRequest, error) {
	var out []*AssignmentRequest
	for _, r := range m.assignments {
		if status == "" || string(r.Status) == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) ResolveAssignment(_ context.Context, id string, to AssignmentStatus, approver, reason string) (bool, error) {
	r, ok := m.assignments[id]
	if !ok || r.Status != AssignmentPending {
		return false, nil
	}
	now := time.Now()
	r.Status = to
	r.ApprovedBy = approver
	r.RejectionReason = reason
	r.ResolvedAt = &now
	return true, nil
}

func (m *memRepo) CreateRedirect(_ context.Context, r *RedirectRequest) error {
	m.redirects[r.ID.String()] = r
	return nil
}

func (m *memRepo) GetRedirect(_ context.Context, id string) (*RedirectRequest, error) {
	r, ok := m.redirects[id]
	if !ok {
		return nil, fmt.Errorf("redirect request %s not found", id)
	}
	return r, nil
}

func (m *memRepo) ListRedirects(_ context.Context, status string) ([]*RedirectRequest, error) {
	var out []*RedirectRequest
	for _, r := range m.redirects {
		if status == "" || string(r.Status) == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) PromoteRedirect(_ context.Context, id string, approver string) (bool, error) {
	r, ok := m.redirects[id]
	if !ok || r.Status != RedirectPendingJefatura {
		return false, nil
	}
	now := time.Now()
	r.Status = RedirectPendingGerencia
	r.JefaturaApprover = approver
	r.JefaturaAt = &now
	return true, nil
}

func (m *memRepo) ResolveRedirect(_ context.Context, id string, to RedirectStatus, approver, reason string) (bool, error) {
	r, ok := m.redirects[id]
	if !ok || r.Status.Terminal() {
		return false, nil
	}
	now := time.Now()
	r.Status = to
	r.GerenciaApprover = approver
	r.RejectionReason = reason
	r.UpdatedAt = now
	return true, nil
}

// ── fixture ────────────────────────────────────────────────────────────

func newService() (Service, *memRepo, *fakeExecutor) {
	repo := newMemRepo()
	exec := &fakeExecutor{}
	return NewService(repo, exec, nil), repo, exec
}

func assignmentPayload() CreateAssignmentRequest {
	return CreateAssignmentRequest{
		OrderID:    uuid.NewString(),
		SourceType: recommend.SourceQuarryWarehouse,
		SourceID:   "quarry",
	}
}

func redirectPayload() CreateRedirectRequest {
	return CreateRedirectRequest{
		FromOrderID: uuid.NewString(),
		ToOrderID:   uuid.NewString(),
		TruckID:     uuid.NewString(),
	}
}

// ── assignment request tests ───────────────────────────────────────────

func TestCreateAssignmentRequest(t *testing.T) {
	svc, _, _ := newService()

	a, err := svc.CreateAssignmentRequest(context.Background(), assignmentPayload(), "operator-7")

	require.NoError(t, err)
	assert.Equal(t, AssignmentPending, a.Status)
	assert.Equal(t, "operator-7", a.RequestedBy)
}

func TestCreateAssignmentRequestValidation(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.CreateAssignmentRequest(context.Background(),
		CreateAssignmentRequest{OrderID: "not-a-uuid"}, "operator-7")
	assert.ErrorContains(t, err, "invalid order_id")

	_, err = svc.CreateAssignmentRequest(context.Background(),
		CreateAssignmentRequest{OrderID: uuid.NewString()}, "operator-7")
	assert.ErrorContains(t, err, "source_type is required")
}

func TestApproveAssignmentRunsExecutor(t *testing.T) {
	svc, _, exec := newService()
	ctx := context.Background()
	a, err := svc.CreateAssignmentRequest(ctx, assignmentPayload(), "operator-7")
	require.NoError(t, err)

	approved, err := svc.ApproveAssignment(ctx, a.ID.String(), "jefa-1")

	require.NoError(t, err)
	assert.Equal(t, 1, exec.assignCalls)
	assert.Equal(t, AssignmentApproved, approved.Status)
	assert.Equal(t, "jefa-1", approved.ApprovedBy)
	assert.NotNil(t, approved.ResolvedAt)
}

func TestApproveAssignmentExecutorFailureLeavesPending(t *testing.T) {
	svc, repo, exec := newService()
	ctx := context.Background()
	exec.assignErr = fmt.Errorf("No drivers available")
	a, err := svc.CreateAssignmentRequest(ctx, assignmentPayload(), "operator-7")
	require.NoError(t, err)

	_, err = svc.ApproveAssignment(ctx, a.ID.String(), "jefa-1")

	require.EqualError(t, err, "No drivers available")
	stored, err := repo.GetAssignment(ctx, a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, AssignmentPending, stored.Status)
}

func TestApproveAssignmentTwiceFails(t *testing.T) {
	svc, _, exec := newService()
	ctx := context.Background()
	a, err := svc.CreateAssignmentRequest(ctx, assignmentPayload(), "operator-7")
	require.NoError(t, err)

	_, err = svc.ApproveAssignment(ctx, a.ID.String(), "jefa-1")
	require.NoError(t, err)

	_, err = svc.ApproveAssignment(ctx, a.ID.String(), "jefa-2")
	assert.ErrorContains(t, err, "not pending")
	assert.Equal(t, 1, exec.assignCalls)
}

func TestRejectAssignmentIsTerminal(t *testing.T) {
	svc, _, exec := newService()
	ctx := context.Background()
	a, err := svc.CreateAssignmentRequest(ctx, assignmentPayload(), "operator-7")
	require.NoError(t, err)

	rejected, err := svc.RejectAssignment(ctx, a.ID.String(), "fleet needed elsewhere")
	require.NoError(t, err)
	assert.Equal(t, AssignmentRejected, rejected.Status)
	assert.Equal(t, "fleet needed elsewhere", rejected.RejectionReason)

	_, err = svc.RejectAssignment(ctx, a.ID.String(), "again")
	assert.ErrorContains(t, err, "not pending")

	_, err = svc.ApproveAssignment(ctx, a.ID.String(), "jefa-1")
	assert.ErrorContains(t, err, "not pending")
	assert.Zero(t, exec.assignCalls)
}

// ── redirect request tests ─────────────────────────────────────────────

func TestCreateRedirectRequestLevels(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	twoStep, err := svc.CreateRedirectRequest(ctx, redirectPayload(), "operator-7")
	require.NoError(t, err)
	assert.Equal(t, RedirectPendingJefatura, twoStep.Status)

	payload := redirectPayload()
	payload.SingleLevel = true
	single, err := svc.CreateRedirectRequest(ctx, payload, "operator-7")
	require.NoError(t, err)
	assert.Equal(t, RedirectPendingApproval, single.Status)
}

func TestTwoStepRedirectFlow(t *testing.T) {
	svc, _, exec := newService()
	ctx := context.Background()
	rr, err := svc.CreateRedirectRequest(ctx, redirectPayload(), "operator-7")
	require.NoError(t, err)

	promoted, err := svc.ApproveRedirectByJefatura(ctx, rr.ID.String(), "jefa-1")
	require.NoError(t, err)
	assert.Equal(t, RedirectPendingGerencia, promoted.Status)
	assert.Equal(t, "jefa-1", promoted.JefaturaApprover)
	assert.Zero(t, exec.redirectCalls, "level-1 approval must not execute the redirect")

	final, err := svc.ApproveRedirectByGerencia(ctx, rr.ID.String(), "gerente-1")
	require.NoError(t, err)
	assert.Equal(t, RedirectApproved, final.Status)
	assert.Equal(t, "gerente-1", final.GerenciaApprover)
	assert.Equal(t, 1, exec.redirectCalls)
	assert.Equal(t, [3]uuid.UUID{rr.FromOrderID, rr.ToOrderID, rr.TruckID}, exec.lastRedirect)
}

func TestGerenciaCannotSkipJefatura(t *testing.T) {
	svc, _, exec := newService()
	ctx := context.Background()
	rr, err := svc.CreateRedirectRequest(ctx, redirectPayload(), "operator-7")
	require.NoError(t, err)

	_, err = svc.ApproveRedirectByGerencia(ctx, rr.ID.String(), "gerente-1")

	assert.ErrorContains(t, err, "not awaiting gerencia approval")
	assert.Zero(t, exec.redirectCalls)
}

func TestJefaturaApprovalIsNotRepeatable(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	rr, err := svc.CreateRedirectRequest(ctx, redirectPayload(), "operator-7")
	require.NoError(t, err)

	_, err = svc.ApproveRedirectByJefatura(ctx, rr.ID.String(), "jefa-1")
	require.NoError(t, err)

	_, err = svc.ApproveRedirectByJefatura(ctx, rr.ID.String(), "jefa-2")
	assert.ErrorContains(t, err, "not awaiting jefatura approval")
}

func TestApproveRedirectShortcut(t *testing.T) {
	svc, _, exec := newService()
	ctx := context.Background()
	rr, err := svc.CreateRedirectRequest(ctx, redirectPayload(), "operator-7")
	require.NoError(t, err)

	final, err := svc.ApproveRedirect(ctx, rr.ID.String(), "gerente-1")

	require.NoError(t, err)
	assert.Equal(t, RedirectApproved, final.Status)
	assert.Equal(t, 1, exec.redirectCalls)
}

func TestRedirectRejectIsTerminal(t *testing.T) {
	svc, _, exec := newService()
	ctx := context.Background()
	rr, err := svc.CreateRedirectRequest(ctx, redirectPayload(), "operator-7")
	require.NoError(t, err)

	rejected, err := svc.RejectRedirect(ctx, rr.ID.String(), "truck too far out")
	require.NoError(t, err)
	assert.Equal(t, RedirectRejected, rejected.Status)
	assert.Equal(t, "truck too far out", rejected.RejectionReason)

	_, err = svc.RejectRedirect(ctx, rr.ID.String(), "again")
	assert.ErrorContains(t, err, "already resolved")

	_, err = svc.ApproveRedirect(ctx, rr.ID.String(), "gerente-1")
	assert.ErrorContains(t, err, "already resolved")
	assert.Zero(t, exec.redirectCalls)
}

func TestRedirectExecutorFailureLeavesStatus(t *testing.T) {
	svc, repo, exec := newService()
	ctx := context.Background()
	exec.redirectErr = fmt.Errorf("Target order must have a QC certificate before redirect.")
	rr, err := svc.CreateRedirectRequest(ctx, redirectPayload(), "operator-7")
	require.NoError(t, err)

	_, err = svc.ApproveRedirectByJefatura(ctx, rr.ID.String(), "jefa-1")
	require.NoError(t, err)

	_, err = svc.ApproveRedirectByGerencia(ctx, rr.ID.String(), "gerente-1")

	require.EqualError(t, err, "Target order must have a QC certificate before redirect.")
	stored, err := repo.GetRedirect(ctx, rr.ID.String())
	require.NoError(t, err)
	assert.Equal(t, RedirectPendingGerencia, stored.Status)
}

func TestRedirectTransitionTable(t *testing.T) {
	assert.True(t, canRedirectTransition(RedirectPendingJefatura, RedirectPendingGerencia))
	assert.True(t, canRedirectTransition(RedirectPendingApproval, RedirectApproved))
	assert.False(t, canRedirectTransition(RedirectApproved, RedirectRejected))
	assert.False(t, canRedirectTransition(RedirectRejected, RedirectApproved))
	assert.False(t, canRedirectTransition(RedirectPendingApproval, RedirectPendingGerencia))
}
