package rules

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuleRepo struct {
	rules           map[uuid.UUID]*Rule
	listActiveCalls int
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[uuid.UUID]*Rule)}
}

func (f *fakeRuleRepo) Create(_ context.Context, r *Rule) error {
	f.rules[r.ID] = r
	return nil
}

func (f *fakeRuleRepo) GetByID(_ context.Context, id string) (*Rule, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	r, ok := f.rules[uid]
	if !ok {
		return nil, assert.AnError
	}
	return r, nil
}

func (f *fakeRuleRepo) List(context.Context) ([]*Rule, error) {
	var out []*Rule
	for _, r := range f.rules {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRuleRepo) ListActive(context.Context) ([]*Rule, error) {
	f.listActiveCalls++
	var out []*Rule
	for _, r := range f.rules {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) Update(_ context.Context, r *Rule) error {
	f.rules[r.ID] = r
	return nil
}

func (f *fakeRuleRepo) Delete(_ context.Context, id string) error {
	uid, _ := uuid.Parse(id)
	delete(f.rules, uid)
	return nil
}

func upsert() UpsertRequest {
	return UpsertRequest{
		Name:      "big orders from quarry",
		Condition: &Condition{Field: FieldOrderSize, Operator: OpGt, Value: json.RawMessage(`150`)},
		Action:    &Action{Type: ActionPreferQuarry},
	}
}

func TestCreateRuleDefaults(t *testing.T) {
	svc := NewService(newFakeRuleRepo())

	r, err := svc.CreateRule(context.Background(), upsert())

	require.NoError(t, err)
	assert.True(t, r.Active)
	assert.Equal(t, 100, r.Priority)
}

func TestCreateRuleValidation(t *testing.T) {
	svc := NewService(newFakeRuleRepo())

	_, err := svc.CreateRule(context.Background(), UpsertRequest{Name: "no condition"})
	assert.ErrorContains(t, err, "condition is required")

	_, err = svc.CreateRule(context.Background(), UpsertRequest{})
	assert.ErrorContains(t, err, "name is required")
}

func TestListActiveUsesCache(t *testing.T) {
	repo := newFakeRuleRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, upsert())
	require.NoError(t, err)

	_, err = svc.ListActive(ctx)
	require.NoError(t, err)
	_, err = svc.ListActive(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listActiveCalls)
}

func TestRuleWritesInvalidateCache(t *testing.T) {
	repo := newFakeRuleRepo()
	svc := NewService(repo)
	ctx := context.Background()

	r, err := svc.CreateRule(ctx, upsert())
	require.NoError(t, err)

	_, err = svc.ListActive(ctx)
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateRule(ctx, r.ID.String(), UpsertRequest{Active: &inactive})
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Equal(t, 2, repo.listActiveCalls)
}
