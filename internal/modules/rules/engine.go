package rules

import (
	"encoding/json"
	"strings"
)

// Context carries the order attributes a rule condition can inspect.
type Context struct {
	OrderTons        float64
	Urgency          string // "" reads as "normal"
	CustomerID       string
	DeliveryLocation string
	ProductIDs       []string
}

// Matches evaluates one rule's condition against the order context. Unknown
// fields and operators never match.
func Matches(r *Rule, ctx Context) bool {
	switch r.Condition.Field {
	case FieldOrderSize:
		return matchNumeric(r.Condition, ctx.OrderTons)
	case FieldUrgency:
		urgency := ctx.Urgency
		if urgency == "" {
			urgency = "normal"
		}
		return matchMembership(r.Condition, urgency, false)
	case FieldCustomer:
		return matchMembership(r.Condition, ctx.CustomerID, false)
	case FieldRegion:
		return matchMembership(r.Condition, ctx.DeliveryLocation, true)
	case FieldProduct:
		for _, id := range ctx.ProductIDs {
			if matchMembership(r.Condition, id, false) {
				return true
			}
		}
		return false
	}
	return false
}

// matchNumeric compares a numeric order attribute. "in" is not meaningful for
// numbers and never matches.
func matchNumeric(c Condition, actual float64) bool {
	want, ok := numberValue(c.Value)
	if !ok {
		return false
	}
	switch c.Operator {
	case OpGt:
		return actual > want
	case OpGte:
		return actual >= want
	case OpLt:
		return actual < want
	case OpLte:
		return actual <= want
	case OpEq:
		return actual == want
	}
	return false
}

// matchMembership handles eq (equality against a single value) and in
// (membership of a value list), case-insensitively. With substring=true the
// comparison is containment instead of equality, which is how region
// conditions match a free-form delivery location.
func matchMembership(c Condition, actual string, substring bool) bool {
	candidates := stringValues(c.Value)
	if len(candidates) == 0 {
		return false
	}
	switch c.Operator {
	case OpEq, OpIn:
		for _, want := range candidates {
			if substring {
				if strings.Contains(strings.ToLower(actual), strings.ToLower(want)) {
					return true
				}
			} else if strings.EqualFold(actual, want) {
				return true
			}
		}
	}
	return false
}

func numberValue(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

func stringValues(raw json.RawMessage) []string {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}
