package foxops

import (
	"context"
	"testing"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingClient_ListIsCachedUntilMutation(t *testing.T) {
	ctx := context.Background()
	next := &mocks.IncarnationAPI{}
	list := []domain.IncarnationSummary{{ID: 1, IncarnationRepository: "a"}}
	next.On("ListIncarnations", ctx).Return(list, nil).Twice()
	next.On("ResetIncarnation", ctx, 1).Return(nil).Once()

	c := NewCachingClient(next, time.Minute)

	first, err := c.ListIncarnations(ctx)
	require.NoError(t, err)
	first[0].IncarnationRepository = "mutated by caller"

	second, err := c.ListIncarnations(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", second[0].IncarnationRepository, "cached copy is isolated from callers")

	require.NoError(t, c.ResetIncarnation(ctx, 1))
	_, err = c.ListIncarnations(ctx)
	require.NoError(t, err)

	next.AssertExpectations(t)
}

func TestCachingClient_GetExpires(t *testing.T) {
	ctx := context.Background()
	next := &mocks.IncarnationAPI{}
	next.On("GetIncarnation", ctx, 3).Return(&domain.Incarnation{ID: 3, TemplateRepositoryVersion: "1.0.0"}, nil).Twice()

	c := NewCachingClient(next, time.Minute)
	now := time.Now()
	c.cache.now = func() time.Time { return now }

	_, err := c.GetIncarnation(ctx, 3)
	require.NoError(t, err)
	_, err = c.GetIncarnation(ctx, 3)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	inc, err := c.GetIncarnation(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", inc.TemplateRepositoryVersion)

	next.AssertNumberOfCalls(t, "GetIncarnation", 2)
}

func TestCachingClient_DisabledWithZeroTTL(t *testing.T) {
	ctx := context.Background()
	next := &mocks.IncarnationAPI{}
	next.On("GetIncarnationDiff", ctx, 1).Return("diff", nil).Twice()
	next.On("GetIncarnation", ctx, 1).Return(&domain.Incarnation{ID: 1}, nil).Twice()

	c := NewCachingClient(next, 0)
	for i := 0; i < 2; i++ {
		_, err := c.GetIncarnation(ctx, 1)
		require.NoError(t, err)
		_, err = c.GetIncarnationDiff(ctx, 1)
		require.NoError(t, err)
	}
	next.AssertExpectations(t)
}

func TestFactory_ReusesClientPerToken(t *testing.T) {
	f := NewFactory("http://foxops", time.Second, time.Minute, nil)
	a := f.ClientFor("token-a")
	assert.Same(t, a, f.ClientFor("token-a"))
	assert.NotSame(t, a, f.ClientFor("token-b"))
}

func TestFactory_EvictDropsClient(t *testing.T) {
	f := NewFactory("http://foxops", time.Second, time.Minute, nil)
	a := f.ClientFor("token-a")
	b := f.ClientFor("token-b")

	f.Evict("token-a")
	f.Evict("never-seen")

	assert.NotSame(t, a, f.ClientFor("token-a"))
	assert.Same(t, b, f.ClientFor("token-b"))
}
