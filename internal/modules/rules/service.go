package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const activeRulesKey = "rules:active"

// Service defines rule management and lookup for the recommendation engine.
type Service interface {
	CreateRule(ctx context.Context, req UpsertRequest) (*Rule, error)
	GetRule(ctx context.Context, id string) (*Rule, error)
	ListRules(ctx context.Context) ([]*Rule, error)
	UpdateRule(ctx context.Context, id string, req UpsertRequest) (*Rule, error)
	DeleteRule(ctx context.Context, id string) error

	// ListActive returns active rules in priority order. The result is
	// served from a short TTL cache; every recommendation request reads it.
	ListActive(ctx context.Context) ([]*Rule, error)
}

type service struct {
	repo  Repository
	cache *cache.Cache
}

// NewService creates a new rule service with a 30 second active-rule cache.
func NewService(repo Repository) Service {
	return &service{
		repo:  repo,
		cache: cache.New(30*time.Second, time.Minute),
	}
}

func (s *service) CreateRule(ctx context.Context, req UpsertRequest) (*Rule, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("rule name is required")
	}
	if req.Condition == nil {
		return nil, fmt.Errorf("rule condition is required")
	}
	if req.Action == nil {
		return nil, fmt.Errorf("rule action is required")
	}
	priority := req.Priority
	if priority <= 0 {
		priority = 100
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rule := &Rule{
		ID:        uuid.New(),
		Name:      req.Name,
		Condition: *req.Condition,
		Action:    *req.Action,
		Priority:  priority,
		Active:    active,
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.cache.Delete(activeRulesKey)
	return rule, nil
}

func (s *service) GetRule(ctx context.Context, id string) (*Rule, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListRules(ctx context.Context) ([]*Rule, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateRule(ctx context.Context, id string, req UpsertRequest) (*Rule, error) {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("rule not found: %w", err)
	}
	if req.Name != "" {
		rule.Name = req.Name
	}
	if req.Condition != nil {
		rule.Condition = *req.Condition
	}
	if req.Action != nil {
		rule.Action = *req.Action
	}
	if req.Priority > 0 {
		rule.Priority = req.Priority
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}
	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.cache.Delete(activeRulesKey)
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(activeRulesKey)
	return nil
}

func (s *service) ListActive(ctx context.Context) ([]*Rule, error) {
	if cached, ok := s.cache.Get(activeRulesKey); ok {
		return cached.([]*Rule), nil
	}
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(activeRulesKey, active, cache.DefaultExpiration)
	return active, nil
}
