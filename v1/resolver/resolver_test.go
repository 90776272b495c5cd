package resolver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/outbox-router/v1/observability"
	"github.com/Aleph-Alpha/outbox-router/v1/schema_registry"
)

const ordersSchema = `{"type":"record","name":"OrderCreated","fields":[
	{"name":"amount","type":"double"},
	{"name":"currency","type":"string"}
]}`

func ordersMeta() *schema_registry.Metadata {
	return &schema_registry.Metadata{ID: 5, Version: 2, Schema: ordersSchema, Subject: "orders-value"}
}

func TestResolveCachesBySubject(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").Return(ordersMeta(), nil).Times(1)

	r := New(registry)

	first, err := r.Resolve(context.Background(), "orders")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "orders")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "OrderCreated", first.Name)
	assert.Equal(t, 5, first.ID)
	assert.Equal(t, 2, first.Version)
	assert.Equal(t, "orders-value", first.Subject)
}

func TestResolveFetchErrorIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	gomock.InOrder(
		registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").Return(nil, schema_registry.ErrSubjectNotFound),
		registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").Return(ordersMeta(), nil),
	)

	r := New(registry)

	_, err := r.Resolve(context.Background(), "orders")
	require.ErrorIs(t, err, ErrSchemaFetch)
	assert.ErrorIs(t, err, schema_registry.ErrSubjectNotFound)
	assert.True(t, IsFetchError(err))

	def, err := r.Resolve(context.Background(), "orders")
	require.NoError(t, err)
	assert.NotNil(t, def)
}

func TestResolveParseErrorIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").
		Return(&schema_registry.Metadata{ID: 1, Schema: `{"type":"record"`}, nil).Times(2)

	r := New(registry)

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), "orders")
		require.Error(t, err)
		assert.True(t, IsParseError(err))
		assert.False(t, IsFetchError(err))
	}
	assert.Equal(t, 0, r.cache.Len())
}

func TestResolveNilMetadataIsFetchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").Return(nil, nil)

	_, err := New(registry).Resolve(context.Background(), "orders")
	require.ErrorIs(t, err, ErrSchemaFetch)
}

func TestResolveConcurrentMissesShareOneFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)

	var calls atomic.Int32
	release := make(chan struct{})
	registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").
		DoAndReturn(func(ctx context.Context, subject string) (*schema_registry.Metadata, error) {
			calls.Add(1)
			<-release
			return ordersMeta(), nil
		}).MinTimes(1).MaxTimes(8)

	r := New(registry)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			def, err := r.Resolve(context.Background(), "orders")
			if err == nil && def.Name != "OrderCreated" {
				err = errors.New("unexpected definition")
			}
			results <- err
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for err := range results {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, r.cache.Len())
	assert.LessOrEqual(t, calls.Load(), int32(workers))
}

func TestResolveCancelledCallerDoesNotFailOtherWaiters(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)

	started := make(chan struct{})
	release := make(chan struct{})
	registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").
		DoAndReturn(func(ctx context.Context, subject string) (*schema_registry.Metadata, error) {
			close(started)
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return ordersMeta(), nil
		}).Times(1)

	r := New(registry)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctxA, "orders")
		errA <- err
	}()
	<-started

	type result struct {
		name string
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		def, err := r.Resolve(context.Background(), "orders")
		if err != nil {
			resB <- result{err: err}
			return
		}
		resB <- result{name: def.Name}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	err := <-errA
	require.ErrorIs(t, err, ErrSchemaFetch)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, "OrderCreated", b.name)
	assert.Equal(t, 1, r.cache.Len())
}

func TestResolveReportsHitsAndMisses(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").Return(ordersMeta(), nil)

	var mu sync.Mutex
	var seen []string
	observer := observability.ObserverFunc(func(op observability.OperationContext) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, op.Operation+":"+op.SubResource)
	})

	r := New(registry, WithObserver(observer))
	_, err := r.Resolve(context.Background(), "orders")
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "orders")
	require.NoError(t, err)

	assert.Equal(t, []string{"resolve:miss", "fetch:", "resolve:hit"}, seen)
}

func TestCustomSubjectStrategyAndSharedCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().GetLatestSchema(gomock.Any(), "events.orders").Return(ordersMeta(), nil)

	cache := NewCache()
	r := New(registry,
		WithCache(cache),
		WithSubjectStrategy(func(topic string) string { return "events." + topic }),
	)

	assert.Equal(t, "events.orders", r.Subject("orders"))
	_, err := r.Resolve(context.Background(), "orders")
	require.NoError(t, err)

	_, ok := cache.Get("events.orders")
	assert.True(t, ok)
}

func TestCloseClearsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().GetLatestSchema(gomock.Any(), "orders-value").Return(ordersMeta(), nil).Times(2)

	r := New(registry)
	_, err := r.Resolve(context.Background(), "orders")
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.Equal(t, 0, r.cache.Len())

	_, err = r.Resolve(context.Background(), "orders")
	require.NoError(t, err)
}

func TestCacheStoreKeepsFirstEntry(t *testing.T) {
	cache := NewCache()
	ctrl := gomock.NewController(t)
	registry := schema_registry.NewMockRegistry(ctrl)
	registry.EXPECT().GetLatestSchema(gomock.Any(), gomock.Any()).Return(ordersMeta(), nil).Times(2)

	a, err := New(registry).Resolve(context.Background(), "a")
	require.NoError(t, err)
	b, err := New(registry).Resolve(context.Background(), "b")
	require.NoError(t, err)

	assert.Same(t, a, cache.Store("orders-value", a))
	assert.Same(t, a, cache.Store("orders-value", b))
	assert.Nil(t, cache.Store("other", nil))
	assert.Equal(t, 1, cache.Len())
}
