package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-widget/domain"
	"loan-widget/money"
	"loan-widget/repository"
)

type recordingPresenter struct {
	mu        sync.Mutex
	validated []domain.ValidationResult
	busy      []bool
	results   []domain.FormattedResult
	notices   []string
	cleared   int
}

func (p *recordingPresenter) FieldValidated(res domain.ValidationResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.validated = append(p.validated, res)
}

func (p *recordingPresenter) BusyChanged(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = append(p.busy, busy)
}

func (p *recordingPresenter) ResultReady(res domain.FormattedResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, res)
}

func (p *recordingPresenter) Notice(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, msg)
}

func (p *recordingPresenter) Cleared() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared++
}

func (p *recordingPresenter) busyEvents() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.busy...)
}

type widgetFixture struct {
	widget    *LoanWidget
	kv        *repository.MemoryStore
	history   *repository.LoanRepositoryMemory
	presenter *recordingPresenter
}

func newWidgetFixture(t *testing.T, opts ...Option) widgetFixture {
	t.Helper()

	kv := repository.NewMemoryStore()
	history := repository.NewLoanRepositoryMemory()
	presenter := &recordingPresenter{}

	base := []Option{
		WithSimulatedLatency(0),
		WithPresenter(presenter),
		WithHistory(history),
		WithLogger(zerolog.Nop()),
	}
	w := NewLoanWidget(
		NewValidator(),
		NewStateStore(kv, "", zerolog.Nop()),
		money.MustFormatter("en-US", "USD"),
		append(base, opts...)...,
	)
	return widgetFixture{widget: w, kv: kv, history: history, presenter: presenter}
}

func TestLoanWidget_SubmitSuccess(t *testing.T) {
	f := newWidgetFixture(t)
	ctx := context.Background()

	outcome, err := f.widget.Submit(ctx, domain.RawInput{Amount: "10000", Interest: "5", Years: "5"})
	require.NoError(t, err)
	require.Equal(t, SubmitSucceeded, outcome.Status)
	require.NotNil(t, outcome.Result)
	assert.InDelta(t, 188.71, outcome.Result.MonthlyPayment, 0.01)
	assert.Contains(t, outcome.Formatted.TotalPayment, "11,322.74")

	view := f.widget.View()
	assert.Equal(t, domain.StateIdle, view.State)
	require.NotNil(t, view.Result)
	assert.Equal(t, *outcome.Formatted, *view.Result)
	assert.Len(t, view.Validation, 3)

	assert.Equal(t, []bool{true, false}, f.presenter.busyEvents())
	assert.Len(t, f.presenter.results, 1)

	calcs, err := f.history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, calcs, 1)
	assert.Equal(t, 5, calcs[0].Input.TermYears)
}

func TestLoanWidget_SubmitPersistsRawValues(t *testing.T) {
	f := newWidgetFixture(t)
	ctx := context.Background()

	_, err := f.widget.Submit(ctx, domain.RawInput{Amount: " 1000", Interest: "5", Years: "10"})
	require.NoError(t, err)

	raw, err := f.kv.Get(ctx, DefaultStorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":" 1000","interest":"5","years":"10"}`, raw)
}

func TestLoanWidget_SubmitRejectedKeepsIdleAndDoesNotPersist(t *testing.T) {
	f := newWidgetFixture(t)
	ctx := context.Background()

	outcome, err := f.widget.Submit(ctx, domain.RawInput{Amount: "99.99", Interest: "", Years: "10"})
	require.NoError(t, err)
	assert.Equal(t, SubmitRejected, outcome.Status)
	require.Len(t, outcome.Validation, 3)
	assert.False(t, outcome.Validation[0].Valid)
	assert.False(t, outcome.Validation[1].Valid)
	assert.True(t, outcome.Validation[2].Valid)

	assert.Equal(t, domain.StateIdle, f.widget.State())
	assert.Empty(t, f.presenter.busyEvents())
	_, err = f.kv.Get(ctx, DefaultStorageKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoanWidget_CalculationFailureShowsTransientNotice(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	f := newWidgetFixture(t,
		WithClock(clock),
		WithNoticeDuration(3*time.Second),
		WithCalculator(func(float64, float64, int) (domain.LoanResult, error) {
			return domain.LoanResult{}, domain.NewCalcError(domain.KindNonFinite, "overflow")
		}),
	)
	raw := domain.RawInput{Amount: "1000", Interest: "5", Years: "10"}

	outcome, err := f.widget.Submit(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, SubmitFailed, outcome.Status)
	assert.ErrorIs(t, outcome.Err, domain.ErrNonFinite)
	assert.NotEmpty(t, outcome.Notice)

	view := f.widget.View()
	assert.Equal(t, domain.StateIdle, view.State)
	assert.Equal(t, raw, view.Fields)
	assert.Nil(t, view.Result)
	assert.Equal(t, outcome.Notice, view.Notice)

	now = now.Add(3 * time.Second)
	assert.Empty(t, f.widget.View().Notice)
	assert.Equal(t, []string{outcome.Notice}, f.presenter.notices)
}

func TestLoanWidget_DismissNotice(t *testing.T) {
	f := newWidgetFixture(t, WithCalculator(func(float64, float64, int) (domain.LoanResult, error) {
		return domain.LoanResult{}, domain.NewCalcError(domain.KindInvalidInput, "n=0")
	}))

	_, err := f.widget.Submit(context.Background(), domain.RawInput{Amount: "1000", Interest: "5", Years: "10"})
	require.NoError(t, err)
	require.NotEmpty(t, f.widget.View().Notice)

	f.widget.DismissNotice()
	assert.Empty(t, f.widget.View().Notice)
}

func TestLoanWidget_CalculatorPanicClearsBusy(t *testing.T) {
	f := newWidgetFixture(t, WithCalculator(func(float64, float64, int) (domain.LoanResult, error) {
		panic("division by zero")
	}))

	outcome, err := f.widget.Submit(context.Background(), domain.RawInput{Amount: "1000", Interest: "5", Years: "10"})
	require.NoError(t, err)
	assert.Equal(t, SubmitFailed, outcome.Status)
	assert.Equal(t, domain.StateIdle, f.widget.State())
	assert.Equal(t, []bool{true, false}, f.presenter.busyEvents())
}

func TestLoanWidget_IgnoresSubmitWhileComputing(t *testing.T) {
	var calls int
	var mu sync.Mutex
	f := newWidgetFixture(t,
		WithSimulatedLatency(time.Hour),
		WithCalculator(func(p, r float64, y int) (domain.LoanResult, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return ComputeAmortization(p, r, y)
		}),
	)
	raw := domain.RawInput{Amount: "1000", Interest: "5", Years: "10"}

	first := make(chan SubmitOutcome, 1)
	go func() {
		outcome, _ := f.widget.Submit(context.Background(), raw)
		first <- outcome
	}()

	require.Eventually(t, func() bool {
		return len(f.presenter.busyEvents()) == 1
	}, time.Second, time.Millisecond)
	require.Equal(t, domain.StateComputing, f.widget.State())

	second, err := f.widget.OnSubmit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SubmitIgnored, second.Status)

	third, err := f.widget.Submit(context.Background(), domain.RawInput{Amount: "5"})
	require.NoError(t, err)
	assert.Equal(t, SubmitIgnored, third.Status)
	assert.Equal(t, raw, f.widget.View().Fields)

	f.widget.OnReset()

	select {
	case outcome := <-first:
		assert.Equal(t, SubmitCanceled, outcome.Status)
	case <-time.After(time.Second):
		t.Fatal("pending submission did not stop after reset")
	}

	mu.Lock()
	assert.Zero(t, calls)
	mu.Unlock()
	assert.Equal(t, domain.StateIdle, f.widget.State())
	assert.Equal(t, []bool{true, false}, f.presenter.busyEvents())
}

func TestLoanWidget_ContextCanceledDuringLatency(t *testing.T) {
	f := newWidgetFixture(t, WithSimulatedLatency(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := f.widget.Submit(ctx, domain.RawInput{Amount: "1000", Interest: "5", Years: "10"})
	require.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, SubmitCanceled, outcome.Status)
	assert.Equal(t, domain.StateIdle, f.widget.State())
}

func TestLoanWidget_ResetIsIdempotentAndKeepsStorage(t *testing.T) {
	f := newWidgetFixture(t)
	ctx := context.Background()

	_, err := f.widget.Submit(ctx, domain.RawInput{Amount: "1000", Interest: "5", Years: "10"})
	require.NoError(t, err)

	f.widget.OnReset()
	once := f.widget.View()
	f.widget.OnReset()
	twice := f.widget.View()

	assert.Equal(t, once, twice)
	assert.Equal(t, WidgetView{State: domain.StateIdle}, twice)
	assert.Equal(t, 2, f.presenter.cleared)

	_, err = f.kv.Get(ctx, DefaultStorageKey)
	assert.NoError(t, err)
}

func TestLoanWidget_OnFieldChanged(t *testing.T) {
	f := newWidgetFixture(t)

	res, err := f.widget.OnFieldChanged(domain.FieldAmount, "99.99")
	require.NoError(t, err)
	assert.False(t, res.Valid)

	res, err = f.widget.OnFieldChanged(domain.FieldAmount, "100")
	require.NoError(t, err)
	assert.True(t, res.Valid)

	view := f.widget.View()
	assert.Equal(t, "100", view.Fields.Amount)
	require.Len(t, view.Validation, 1)
	assert.True(t, view.Validation[0].Valid)

	_, err = f.widget.OnFieldChanged(domain.FieldID("color"), "red")
	require.ErrorIs(t, err, domain.ErrUnknownField)
	require.ErrorIs(t, f.widget.SetField(domain.FieldID("color"), "red"), domain.ErrUnknownField)
}

func TestLoanWidget_InitRestoresAndRevalidates(t *testing.T) {
	f := newWidgetFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, DefaultStorageKey, `{"amount":"50","interest":"5","theme":"dark"}`))

	raw := f.widget.Init(ctx)
	assert.Equal(t, domain.RawInput{Amount: "50", Interest: "5"}, raw)

	view := f.widget.View()
	assert.Equal(t, raw, view.Fields)
	require.Len(t, view.Validation, 2)
	assert.False(t, view.Validation[0].Valid)
	assert.True(t, view.Validation[1].Valid)
}

func TestLoanWidget_InitWithCorruptedRecord(t *testing.T) {
	f := newWidgetFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, DefaultStorageKey, "%%%"))

	assert.True(t, f.widget.Init(ctx).IsEmpty())
	assert.Empty(t, f.widget.View().Validation)
}

func TestLoanWidget_SubmitAfterFieldEdits(t *testing.T) {
	f := newWidgetFixture(t)

	require.NoError(t, f.widget.SetField(domain.FieldAmount, "1200"))
	require.NoError(t, f.widget.SetField(domain.FieldInterest, "0.01"))
	require.NoError(t, f.widget.SetField(domain.FieldYears, "1"))

	outcome, err := f.widget.OnSubmit(context.Background())
	require.NoError(t, err)
	require.Equal(t, SubmitSucceeded, outcome.Status)
	assert.InDelta(t, 100.0, outcome.Result.MonthlyPayment, 0.01)
}

func TestLoanWidget_SubmitSucceedsWhenSaveFails(t *testing.T) {
	boom := errors.New("disk full")
	kv := &failingStore{getErr: boom, setErr: boom}
	w := NewLoanWidget(
		NewValidator(),
		NewStateStore(kv, "", zerolog.Nop()),
		money.MustFormatter("en-US", "USD"),
		WithSimulatedLatency(0),
		WithLogger(zerolog.Nop()),
	)
	ctx := context.Background()

	assert.True(t, w.Init(ctx).IsEmpty())

	outcome, err := w.Submit(ctx, domain.RawInput{Amount: "10000", Interest: "5", Years: "5"})
	require.NoError(t, err)
	assert.Equal(t, SubmitSucceeded, outcome.Status)
	assert.Equal(t, domain.StateIdle, w.State())
}
