package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/csvexport"
	"ledger/internal/mirror"
	"ledger/internal/mirror/memory"
)

func sampleTx(desc string) core.Transaction {
	return core.Transaction{
		Date:        core.NewDate(2024, time.April, 2),
		Description: desc,
		Amount:      decimal.RequireFromString("3.5"),
		Type:        core.Expense,
	}
}

// blockingMirror counts calls and holds each one until release is closed.
type blockingMirror struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
	persist int32
	fetch   int32
	txs     []core.Transaction
	err     error
}

func newBlockingMirror() *blockingMirror {
	return &blockingMirror{release: make(chan struct{}), started: make(chan struct{})}
}

func (b *blockingMirror) Persist(ctx context.Context, tx core.Transaction) (mirror.Ack, error) {
	atomic.AddInt32(&b.persist, 1)
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return mirror.Ack{Status: "recorded"}, b.err
	case <-ctx.Done():
		return mirror.Ack{}, &mirror.SyncError{Op: mirror.OpPersist, Err: ctx.Err()}
	}
}

func (b *blockingMirror) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	atomic.AddInt32(&b.fetch, 1)
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return b.txs, b.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestPersistAsyncDoesNotBlock(t *testing.T) {
	m := newBlockingMirror()
	s := NewSyncService(m, time.Second, nil)

	done := make(chan struct{})
	go func() {
		s.PersistAsync(sampleTx("Coffee"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PersistAsync blocked on the mirror")
	}

	<-m.started
	close(m.release)
	require.NoError(t, s.Wait(context.Background()))
	assert.EqualValues(t, 1, atomic.LoadInt32(&m.persist))
}

func TestPersistAsyncStoresInMirror(t *testing.T) {
	m := memory.New()
	s := NewSyncService(m, time.Second, nil)

	s.PersistAsync(sampleTx("a"))
	s.PersistAsync(sampleTx("b"))
	require.NoError(t, s.Close(context.Background()))

	assert.Equal(t, 2, m.Len())
}

func TestPersistFailureIsNotRetried(t *testing.T) {
	m := newBlockingMirror()
	m.err = errors.New("500")
	close(m.release)
	s := NewSyncService(m, time.Second, nil)

	s.PersistAsync(sampleTx("x"))
	require.NoError(t, s.Wait(context.Background()))
	assert.EqualValues(t, 1, atomic.LoadInt32(&m.persist))
}

func TestPersistTimesOut(t *testing.T) {
	m := newBlockingMirror()
	s := NewSyncService(m, 20*time.Millisecond, nil)

	s.PersistAsync(sampleTx("slow"))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func TestCloseRejectsNewWork(t *testing.T) {
	m := memory.New()
	s := NewSyncService(m, time.Second, nil)
	require.NoError(t, s.Close(context.Background()))

	s.PersistAsync(sampleTx("late"))
	require.NoError(t, s.Wait(context.Background()))
	assert.Equal(t, 0, m.Len())
}

func TestCloseHonoursDeadline(t *testing.T) {
	m := newBlockingMirror()
	defer close(m.release)
	s := NewSyncService(m, time.Minute, nil)
	s.PersistAsync(sampleTx("stuck"))
	<-m.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Close(ctx), context.DeadlineExceeded)
}

func TestExportUsesMirrorNotLocalState(t *testing.T) {
	m := memory.New(sampleTx("Remote one"), sampleTx("Remote two"))
	s := NewSyncService(m, time.Second, nil)

	content, err := s.Export(context.Background())
	require.NoError(t, err)

	lines := strings.Split(string(content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(csvexport.Header, ","), lines[0])
	assert.Equal(t, "02/04/2024,Remote one,3.5,expense", lines[1])
	assert.False(t, strings.HasSuffix(string(content), "\n"))
}

func TestExportFailureReturnsNothing(t *testing.T) {
	m := memory.New(sampleTx("x"))
	m.FailWith(errors.New("unreachable"))
	s := NewSyncService(m, time.Second, nil)

	content, err := s.Export(context.Background())
	assert.Nil(t, content)
	var se *mirror.SyncError
	assert.ErrorAs(t, err, &se)
}

func TestExportWithoutMirror(t *testing.T) {
	s := NewSyncService(nil, time.Second, nil)
	_, err := s.Export(context.Background())
	assert.ErrorIs(t, err, mirror.ErrDisabled)
}

func TestConcurrentExportsShareOneFetch(t *testing.T) {
	m := newBlockingMirror()
	m.txs = []core.Transaction{sampleTx("shared")}
	s := NewSyncService(m, time.Second, nil)

	const callers = 5
	var wg sync.WaitGroup
	results := make([][]byte, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = s.Export(context.Background())
		}(i)
	}

	<-m.started
	time.Sleep(100 * time.Millisecond)
	close(m.release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&m.fetch))
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestFetchAllCallerCancel(t *testing.T) {
	m := newBlockingMirror()
	defer close(m.release)
	s := NewSyncService(m, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.FetchAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
