package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/testdb"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/mmdatafocus/bakery_backend/workflow"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []workflow.TransactionEvent
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, event workflow.TransactionEvent) error {
	n.events = append(n.events, event)
	return n.err
}

// callLog records the order in which fakes are called.
type callLog []string

func (c *callLog) add(call string) {
	if c != nil {
		*c = append(*c, call)
	}
}

type recordingExporter struct {
	kinds []string
	calls *callLog
}

func (e *recordingExporter) Export(kind string, header any, lines any) ([]byte, error) {
	e.kinds = append(e.kinds, kind)
	e.calls.add("export")
	return []byte(kind), nil
}

type fakeLocker struct {
	keys     []string
	released int
	err      error
	calls    *callLog
}

func (l *fakeLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.keys = append(l.keys, key)
	l.calls.add("lock")
	if l.err != nil {
		return nil, l.err
	}
	return func() {
		l.released++
		l.calls.add("release")
	}, nil
}

func TestNotify_CarriesArtifactsAndCorrelation(t *testing.T) {
	f := testdb.Seed(t)
	notifier := &recordingNotifier{}
	exporter := &recordingExporter{}
	engine := newTestEngine(t, f, workflow.EngineOptions{Notifier: notifier, Exporter: exporter})
	ctx := utils.SetCorrelationIdInContext(userCtx(7), "corr-1")

	sale, lines := newSale(f.Primary.ID)
	id, err := engine.Sales.Save(ctx, sale, lines)
	require.NoError(t, err)

	require.Len(t, notifier.events, 1)
	created := notifier.events[0]
	assert.Equal(t, workflow.ActionCreated, created.Action)
	assert.Equal(t, id, created.TransactionId)
	assert.Equal(t, "Sale", created.Kind)
	assert.Equal(t, sale.TransactionNo, created.TransactionNo)
	assert.Equal(t, "corr-1", created.CorrelationId)
	assert.Equal(t, fixedNow, created.OccurredAt)
	assert.Nil(t, created.Previous)
	assert.Equal(t, []byte("Sale"), created.Current)

	_, err = engine.Sales.Save(ctx, sale, lines)
	require.NoError(t, err)
	require.Len(t, notifier.events, 2)
	assert.Equal(t, workflow.ActionUpdated, notifier.events[1].Action)
	assert.NotNil(t, notifier.events[1].Previous)
	assert.NotNil(t, notifier.events[1].Current)

	require.NoError(t, engine.Sales.Delete(userCtx(7), id))
	require.Len(t, notifier.events, 3)
	deleted := notifier.events[2]
	assert.Equal(t, workflow.ActionDeleted, deleted.Action)
	assert.NotNil(t, deleted.Previous)
	assert.Nil(t, deleted.Current)
	assert.NotEmpty(t, deleted.CorrelationId)

	require.NoError(t, engine.Sales.Recover(userCtx(7), id))
	require.Len(t, notifier.events, 4)
	assert.Equal(t, workflow.ActionRecovered, notifier.events[3].Action)
}

func TestNotify_FailureDoesNotUndoCommit(t *testing.T) {
	f := testdb.Seed(t)
	logger, hook := test.NewNullLogger()
	notifier := &recordingNotifier{err: errors.New("broker down")}
	engine := newTestEngine(t, f, workflow.EngineOptions{Notifier: notifier, Logger: logger})

	sale, lines := newSale(f.Primary.ID)
	id, err := engine.Sales.Save(userCtx(7), sale, lines)
	require.NoError(t, err)
	assert.Equal(t, int64(1), testdb.Count(t, f.DB, &models.Sale{}, "id = ?", id))
	assert.Len(t, notifier.events, 1)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "broker down")
}

func TestNotify_WithoutNotifyAndFailedCalls(t *testing.T) {
	f := testdb.Seed(t)
	notifier := &recordingNotifier{}
	engine := newTestEngine(t, f, workflow.EngineOptions{Notifier: notifier})

	sale, lines := newSale(f.Primary.ID)
	_, err := engine.Sales.Save(userCtx(7), sale, lines, workflow.WithoutNotify())
	require.NoError(t, err)

	locked, lockedLines := newSale(f.Primary.ID)
	locked.TransactionDateTime = testdb.InLockedYear
	_, err = engine.Sales.Save(userCtx(7), locked, lockedLines)
	require.Error(t, err)

	assert.Empty(t, notifier.events)
}

func TestPostingLock(t *testing.T) {
	f := testdb.Seed(t)
	locker := &fakeLocker{}
	engine := newTestEngine(t, f, workflow.EngineOptions{Locker: locker})
	ctx := userCtx(7)

	sale, lines := newSale(f.Primary.ID)
	id, err := engine.Sales.Save(ctx, sale, lines)
	require.NoError(t, err)
	assert.Empty(t, locker.keys, "a new transaction has nothing to lock")

	_, err = engine.Sales.Save(ctx, sale, lines)
	require.NoError(t, err)
	require.NoError(t, engine.Sales.Delete(ctx, id))
	assert.Equal(t, 2, locker.released)
	key := fmt.Sprintf("Sale:%d", id)
	assert.Equal(t, []string{key, key}, locker.keys)

	locker.err = utils.ErrTransactionBusy
	err = engine.Sales.Recover(ctx, id)
	assert.ErrorIs(t, err, utils.ErrTransactionBusy)
	var stored models.Sale
	require.NoError(t, f.DB.First(&stored, id).Error)
	assert.False(t, stored.Status)

	// an unreachable lock store only costs the lock
	locker.err = errors.New("dial tcp: connection refused")
	require.NoError(t, engine.Sales.Recover(ctx, id))
}

func TestPostingLock_HeldWhileCapturingPreviousState(t *testing.T) {
	f := testdb.Seed(t)
	calls := &callLog{}
	locker := &fakeLocker{calls: calls}
	exporter := &recordingExporter{calls: calls}
	engine := newTestEngine(t, f, workflow.EngineOptions{Notifier: &recordingNotifier{}, Exporter: exporter, Locker: locker})
	ctx := userCtx(7)

	sale, lines := newSale(f.Primary.ID)
	id, err := engine.Sales.Save(ctx, sale, lines)
	require.NoError(t, err)

	*calls = nil
	_, err = engine.Sales.Save(ctx, sale, lines)
	require.NoError(t, err)
	assert.Equal(t, callLog{"lock", "export", "export", "release"}, *calls)

	*calls = nil
	require.NoError(t, engine.Sales.Delete(ctx, id))
	assert.Equal(t, callLog{"lock", "export", "release"}, *calls)
}
