package guard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/the-devoyage/subgraph-go/config"
	"github.com/the-devoyage/subgraph-go/guard"
)

type viewer struct {
	userID string
}

func TestWithTokenData_RoundTrip(t *testing.T) {
	ctx := guard.WithTokenData(context.Background(), viewer{userID: "u1"})
	got, ok := guard.TokenDataFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, viewer{userID: "u1"}, got)
}

func TestTokenDataFromContext_Absent(t *testing.T) {
	_, ok := guard.TokenDataFromContext(context.Background())
	assert.False(t, ok)
}

func TestChain_StopsOnDeny(t *testing.T) {
	var called []string
	chain := guard.Chain{
		guard.RuleFunc(func(ctx context.Context, entity string, op config.OperationKind) error {
			called = append(called, "first")
			return guard.Skip
		}),
		guard.RuleFunc(func(ctx context.Context, entity string, op config.OperationKind) error {
			called = append(called, "second")
			return guard.Denyf("no access to %s", entity)
		}),
		guard.RuleFunc(func(ctx context.Context, entity string, op config.OperationKind) error {
			called = append(called, "third")
			return nil
		}),
	}
	err := chain.Eval(context.Background(), "car", config.FindOne)
	assert.Error(t, err)
	assert.Equal(t, []string{"first", "second"}, called)
}

func TestChain_AllowStopsEvaluation(t *testing.T) {
	chain := guard.Chain{
		guard.RuleFunc(func(ctx context.Context, entity string, op config.OperationKind) error {
			return guard.Allow
		}),
	}
	err := chain.Eval(context.Background(), "car", config.FindOne)
	assert.NoError(t, err)
}

func TestChain_EmptyChainAllows(t *testing.T) {
	var chain guard.Chain
	err := chain.Eval(context.Background(), "car", config.FindOne)
	assert.NoError(t, err)
}
