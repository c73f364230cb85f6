package infra

import (
	"fmt"

	"github.com/casbin/casbin/v2"
)

// NewEnforcer builds a policy-less enforcer from the model file; the rbac
// service fills in grants and groupings via LoadPolicy.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	e, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		return nil, fmt.Errorf("init casbin enforcer: %w", err)
	}
	return e, nil
}
