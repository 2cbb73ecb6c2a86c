package servicecenter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contract-intake/internal/resilience"
)

// scriptedClient answers LookupOrder from a fixed sequence.
type scriptedClient struct {
	results []lookupResult
	calls   int
}

type lookupResult struct {
	id    string
	found bool
	err   error
}

func (c *scriptedClient) CreateLead(ctx context.Context, lead Lead) (string, error) {
	return "ORD-TEST", nil
}

func (c *scriptedClient) LookupOrder(ctx context.Context, orderNumber string) (string, bool, error) {
	idx := c.calls
	c.calls++
	if idx >= len(c.results) {
		return "", false, nil
	}
	r := c.results[idx]
	return r.id, r.found, r.err
}

func fastAcquire() AcquireOptions {
	return AcquireOptions{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   1.5,
	}
}

func TestAcquireID_ResolvedOnFourthPoll(t *testing.T) {
	c := &scriptedClient{results: []lookupResult{
		{}, {}, {},
		{id: "F54933529", found: true},
	}}

	id, err := AcquireID(context.Background(), c, "ORD-TEST", fastAcquire())
	require.NoError(t, err)
	assert.Equal(t, "F54933529", id)
	assert.Equal(t, 4, c.calls)
}

func TestAcquireID_Exhausted(t *testing.T) {
	c := &scriptedClient{}

	id, err := AcquireID(context.Background(), c, "ORD-TEST", fastAcquire())
	assert.Empty(t, id)
	require.Error(t, err)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, "ORD-TEST", ex.OrderNumber)
	assert.Equal(t, 5, ex.Attempts)
	assert.ErrorIs(t, err, ErrAcquisitionExhausted)
	assert.Equal(t, 5, c.calls)
}

func TestAcquireID_TransientLookupConsumesAttempt(t *testing.T) {
	transient := resilience.NewTransientError(errors.New("503"), 503)
	c := &scriptedClient{results: []lookupResult{
		{err: transient},
		{id: "F00000001", found: true},
	}}

	id, err := AcquireID(context.Background(), c, "ORD-TEST", fastAcquire())
	require.NoError(t, err)
	assert.Equal(t, "F00000001", id)
	assert.Equal(t, 2, c.calls)
}

func TestAcquireID_PermanentLookupErrorAborts(t *testing.T) {
	boom := errors.New("unauthorized")
	c := &scriptedClient{results: []lookupResult{{err: boom}}}

	_, err := AcquireID(context.Background(), c, "ORD-TEST", fastAcquire())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.calls)
}

func TestAcquireID_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &scriptedClient{}
	_, err := AcquireID(ctx, c, "ORD-TEST", AcquireOptions{
		MaxAttempts:  3,
		InitialDelay: time.Minute,
		MaxDelay:     time.Minute,
		Multiplier:   2,
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, c.calls)
}
