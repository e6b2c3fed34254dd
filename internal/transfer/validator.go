package transfer

import (
	"fmt"
	"math"
	"strings"

	"fintrack/internal/core"
)

// BalancePolicy selects how a transfer amount is compared with the source
// account's remaining amount.
type BalancePolicy string

const (
	// PolicyMagnitude accepts when |amount| <= |remaining|. A negative
	// remaining balance is compared by its magnitude.
	PolicyMagnitude BalancePolicy = "magnitude"
	// PolicyStrict accepts only when remaining >= amount.
	PolicyStrict BalancePolicy = "strict"
)

// ParseBalancePolicy parses TRANSFER_BALANCE_POLICY. Empty means magnitude.
func ParseBalancePolicy(s string) (BalancePolicy, error) {
	switch BalancePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyMagnitude:
		return PolicyMagnitude, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown balance policy %q (want magnitude or strict)", s)
	}
}

// Validator checks a transfer before anything is written.
type Validator struct {
	Policy BalancePolicy
}

// NewValidator returns a validator using the given balance policy.
func NewValidator(policy BalancePolicy) Validator {
	if policy == "" {
		policy = PolicyMagnitude
	}
	return Validator{Policy: policy}
}

// ValidateRequest runs the checks that need no balance: a positive amount
// and two distinct accounts.
func (v Validator) ValidateRequest(sourceID, targetID string, amount int64) error {
	if amount <= 0 {
		return core.ErrInvalidAmount
	}
	if sourceID == targetID {
		return core.ErrSameAccount
	}
	return nil
}

// Validate runs every rule in order; the first failure wins.
func (v Validator) Validate(sourceID, targetID string, amount, remaining int64) error {
	if err := v.ValidateRequest(sourceID, targetID, amount); err != nil {
		return err
	}
	if !v.covers(amount, remaining) {
		return fmt.Errorf("%w: need %s, have %s", core.ErrInsufficientFunds,
			core.FormatMiliunits(amount), core.FormatMiliunits(remaining))
	}
	return nil
}

func (v Validator) covers(amount, remaining int64) bool {
	if v.Policy == PolicyStrict {
		return remaining >= amount
	}
	return abs(amount) <= abs(remaining)
}

func abs(v int64) int64 {
	switch {
	case v == math.MinInt64:
		return math.MaxInt64
	case v < 0:
		return -v
	default:
		return v
	}
}
