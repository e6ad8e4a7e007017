package rules

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ConditionField is the order attribute a rule condition inspects.
type ConditionField string

const (
	FieldOrderSize ConditionField = "order_size"
	FieldUrgency   ConditionField = "urgency"
	FieldCustomer  ConditionField = "customer"
	FieldRegion    ConditionField = "region"
	FieldProduct   ConditionField = "product"
)

// Operator compares the condition value against the order attribute.
type Operator string

const (
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpEq  Operator = "eq"
	OpIn  Operator = "in"
)

// ActionType is what a matching rule does to the recommendation set.
type ActionType string

const (
	ActionPreferQuarry    ActionType = "prefer_quarry"
	ActionPreferWarehouse ActionType = "prefer_warehouse"
	// Reserved scoring hooks, currently no-ops at apply time.
	ActionAllowRedirect       ActionType = "allow_redirect"
	ActionMaxDelayMin         ActionType = "max_delay_min"
	ActionSafetyStockIfUrgent ActionType = "use_safety_stock_if_urgent"
	ActionOptimization        ActionType = "optimization"
)

// Condition is a field/operator/value triple. Value holds a JSON number,
// string, or list of strings depending on the field and operator.
type Condition struct {
	Field    ConditionField  `json:"field"`
	Operator Operator        `json:"operator"`
	Value    json.RawMessage `json:"value"`
}

// Action is what to do when the condition matches.
type Action struct {
	Type  ActionType      `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Rule is a user-configured fulfillment rule. All active rules whose
// condition matches are applied cumulatively; Priority orders the rule list
// for display only.
type Rule struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Condition Condition `json:"condition"`
	Action    Action    `json:"action"`
	Priority  int       `json:"priority"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertRequest is the payload for creating or updating a rule.
type UpsertRequest struct {
	Name      string     `json:"name"`
	Condition *Condition `json:"condition,omitempty"`
	Action    *Action    `json:"action,omitempty"`
	Priority  int        `json:"priority,omitempty"`
	Active    *bool      `json:"active,omitempty"`
}
