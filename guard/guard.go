// Package guard carries the opaque token-data record described in
// spec.md §6 through a resolver frame and gives external collaborators a
// place to hang an authn/authz decision. Per spec.md §1's Non-goal
// ("authn/authz policy evaluation beyond passing a token context through"),
// this repository ships no Rule of its own — the resolver package attaches
// TokenData to the context it threads through a resolution and calls
// Eval only on a caller-supplied Rule set as Dispatcher.Guard.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/the-devoyage/subgraph-go/config"
)

// Policy decision sentinel errors, adapted from the teacher's
// privacy.Allow/Deny/Skip. Use errors.Is() to check which decision a Rule
// returned.
var (
	// Allow indicates the operation is permitted; evaluation stops.
	Allow = errors.New("subgraph/guard: allow")
	// Deny indicates the operation is rejected; evaluation stops.
	Deny = errors.New("subgraph/guard: deny")
	// Skip indicates this rule abstains; evaluation continues.
	Skip = errors.New("subgraph/guard: skip")
)

// Denyf returns a formatted decision wrapping Deny.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, error(Deny))...)
}

// TokenData is the opaque, caller-supplied record spec.md §6 says travels
// with every request. The core never inspects its fields; it is typed as
// an interface purely so a caller's concrete token type can be recovered
// with a type assertion inside their own Rule implementation.
type TokenData any

type tokenCtxKey struct{}

// WithTokenData returns a new context carrying the opaque token-data
// record. The Resolver Dispatcher calls this at the start of every Resolve,
// including the recursive ones for as-type fields (spec.md §4.6 step:
// "attach the token context to the resolver frame").
func WithTokenData(ctx context.Context, token TokenData) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, tokenDataBox{v: token})
}

// TokenDataFromContext retrieves the token-data record attached by
// WithTokenData, if any.
func TokenDataFromContext(ctx context.Context) (TokenData, bool) {
	t, ok := ctx.Value(tokenCtxKey{}).(tokenDataBox)
	if !ok {
		return nil, false
	}
	return t.v, true
}

type tokenDataBox struct{ v TokenData }

// Rule decides whether an operation on an entity is permitted. It is an
// extension point: the resolver package will invoke a configured Rule (if
// one is set on the Dispatcher) immediately after attaching TokenData, but
// ships with none wired in by default, since policy evaluation itself is
// out of scope for this repository (spec.md §1).
type Rule interface {
	Eval(ctx context.Context, entity string, op config.OperationKind) error
}

// RuleFunc adapts an ordinary function to Rule.
type RuleFunc func(ctx context.Context, entity string, op config.OperationKind) error

// Eval calls f(ctx, entity, op).
func (f RuleFunc) Eval(ctx context.Context, entity string, op config.OperationKind) error {
	return f(ctx, entity, op)
}

// Chain evaluates rules in order, stopping at the first non-Skip decision.
// A chain that runs out of rules without a decision is treated as Allow,
// matching the teacher's Policies.eval fallthrough.
type Chain []Rule

// Eval implements Rule.
func (c Chain) Eval(ctx context.Context, entity string, op config.OperationKind) error {
	for _, rule := range c {
		switch decision := rule.Eval(ctx, entity, op); {
		case decision == nil || errors.Is(decision, Skip):
			continue
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}
