package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"loan-widget/domain"
	"loan-widget/money"
	"loan-widget/repository"
)

// CalculatorFunc computes a loan result from validated numbers.
type CalculatorFunc func(principal, annualRatePercent float64, termYears int) (domain.LoanResult, error)

// SubmitStatus tells the host what a submission did.
type SubmitStatus string

const (
	SubmitSucceeded SubmitStatus = "succeeded"
	SubmitRejected  SubmitStatus = "rejected"
	SubmitFailed    SubmitStatus = "failed"
	SubmitIgnored   SubmitStatus = "ignored"
	SubmitCanceled  SubmitStatus = "canceled"
)

type SubmitOutcome struct {
	Status     SubmitStatus              `json:"status" yaml:"status"`
	Validation []domain.ValidationResult `json:"validation,omitempty" yaml:"validation,omitempty"`
	Input      *domain.LoanInput         `json:"input,omitempty" yaml:"input,omitempty"`
	Result     *domain.LoanResult        `json:"result,omitempty" yaml:"result,omitempty"`
	Formatted  *domain.FormattedResult   `json:"formatted,omitempty" yaml:"formatted,omitempty"`
	Notice     string                    `json:"notice,omitempty" yaml:"notice,omitempty"`
	Err        error                     `json:"-" yaml:"-"`
}

// WidgetView is a snapshot of what the widget currently shows.
type WidgetView struct {
	State      domain.WidgetState        `json:"state" yaml:"state"`
	Fields     domain.RawInput           `json:"fields" yaml:"fields"`
	Validation []domain.ValidationResult `json:"validation,omitempty" yaml:"validation,omitempty"`
	Result     *domain.FormattedResult   `json:"result,omitempty" yaml:"result,omitempty"`
	Notice     string                    `json:"notice,omitempty" yaml:"notice,omitempty"`
}

// Option configures a LoanWidget.
type Option func(*LoanWidget)

// WithSimulatedLatency sets the pause between an accepted submission and the
// calculation. Zero disables it.
func WithSimulatedLatency(d time.Duration) Option {
	return func(w *LoanWidget) { w.latency = d }
}

// WithNoticeDuration sets how long a calculation notice stays visible.
func WithNoticeDuration(d time.Duration) Option {
	return func(w *LoanWidget) { w.noticeDuration = d }
}

func WithPresenter(p Presenter) Option {
	return func(w *LoanWidget) { w.presenter = p }
}

// WithHistory records every successful calculation in repo.
func WithHistory(repo repository.LoanRepository) Option {
	return func(w *LoanWidget) { w.history = repo }
}

func WithCalculator(fn CalculatorFunc) Option {
	return func(w *LoanWidget) { w.calculate = fn }
}

// WithClock is useful for tests.
func WithClock(now func() time.Time) Option {
	return func(w *LoanWidget) { w.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(w *LoanWidget) { w.log = log }
}

// LoanWidget coordinates validation, calculation, persistence and
// presentation of the loan form. It is either idle or computing; while
// computing, further submissions are ignored.
type LoanWidget struct {
	validator      *Validator
	store          *StateStore
	formatter      *money.Formatter
	presenter      Presenter
	history        repository.LoanRepository
	calculate      CalculatorFunc
	latency        time.Duration
	noticeDuration time.Duration
	now            func() time.Time
	log            zerolog.Logger

	mu            sync.Mutex
	state         domain.WidgetState
	fields        domain.RawInput
	markers       map[domain.FieldID]domain.ValidationResult
	result        *domain.FormattedResult
	notice        string
	noticeUntil   time.Time
	generation    uint64
	cancelPending context.CancelFunc
}

// NewLoanWidget creates an idle widget with empty fields.
func NewLoanWidget(
	validator *Validator,
	store *StateStore,
	formatter *money.Formatter,
	opts ...Option,
) *LoanWidget {
	w := &LoanWidget{
		validator:      validator,
		store:          store,
		formatter:      formatter,
		presenter:      NopPresenter{},
		calculate:      ComputeAmortization,
		latency:        DefaultSimulatedLatency,
		noticeDuration: DefaultNoticeDuration,
		now:            time.Now,
		log:            zerolog.Nop(),
		state:          domain.StateIdle,
		markers:        make(map[domain.FieldID]domain.ValidationResult),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Init restores the last persisted field values and re-validates the ones
// that are not blank.
func (w *LoanWidget) Init(ctx context.Context) domain.RawInput {
	raw := w.store.Load(ctx).Raw()

	var validated []domain.ValidationResult
	w.mu.Lock()
	w.fields = raw
	for _, field := range domain.Fields() {
		if raw.Get(field) == "" {
			continue
		}
		res := w.validator.Validate(field, raw.Get(field))
		w.markers[field] = res
		validated = append(validated, res)
	}
	w.mu.Unlock()

	for _, res := range validated {
		w.presenter.FieldValidated(res)
	}
	if !raw.IsEmpty() {
		w.log.Debug().Msg("restored persisted field values")
	}
	return raw
}

// SetField stores a field's contents without validating it.
func (w *LoanWidget) SetField(field domain.FieldID, raw string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.fields.Set(field, raw) {
		return fmt.Errorf("set %q: %w", field, domain.ErrUnknownField)
	}
	return nil
}

// OnFieldChanged stores and validates a field, typically when it loses focus.
func (w *LoanWidget) OnFieldChanged(field domain.FieldID, raw string) (domain.ValidationResult, error) {
	if _, ok := w.validator.Rule(field); !ok {
		return domain.ValidationResult{}, fmt.Errorf("validate %q: %w", field, domain.ErrUnknownField)
	}

	res := w.validator.Validate(field, raw)

	w.mu.Lock()
	w.fields.Set(field, raw)
	w.markers[field] = res
	w.mu.Unlock()

	w.presenter.FieldValidated(res)
	return res, nil
}

// Submit replaces every field with raw and submits.
func (w *LoanWidget) Submit(ctx context.Context, raw domain.RawInput) (SubmitOutcome, error) {
	w.mu.Lock()
	if w.state == domain.StateComputing {
		w.mu.Unlock()
		w.log.Debug().Msg("submit ignored while computing")
		return SubmitOutcome{Status: SubmitIgnored}, nil
	}
	w.fields = raw
	w.mu.Unlock()

	return w.OnSubmit(ctx)
}

// OnSubmit validates every field and, if they all pass, persists the raw
// values and runs the calculation after the simulated latency. The returned
// error is only set when ctx ends before the calculation runs.
func (w *LoanWidget) OnSubmit(ctx context.Context) (SubmitOutcome, error) {
	w.mu.Lock()
	if w.state == domain.StateComputing {
		w.mu.Unlock()
		w.log.Debug().Msg("submit ignored while computing")
		return SubmitOutcome{Status: SubmitIgnored}, nil
	}

	report := w.validator.ValidateAll(w.fields)
	for _, res := range report.Results {
		w.markers[res.Field] = res
	}
	if !report.AllValid {
		w.mu.Unlock()
		w.publishValidation(report.Results)
		w.log.Debug().Int("invalid", len(report.Invalid())).Msg("submit rejected")
		return SubmitOutcome{Status: SubmitRejected, Validation: report.Results}, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.state = domain.StateComputing
	w.generation++
	gen := w.generation
	w.cancelPending = cancel
	fields := w.fields
	w.mu.Unlock()

	defer w.finish(gen, cancel)
	w.publishValidation(report.Results)
	w.presenter.BusyChanged(true)

	// The store logs the cause; the submission goes on without it.
	if !w.store.Save(ctx, domain.StateFromRaw(fields)) {
		w.log.Debug().Msg("last entry not saved")
	}

	input := report.Input
	outcome := SubmitOutcome{Validation: report.Results, Input: &input}

	if err := wait(runCtx, w.latency); err != nil {
		outcome.Status = SubmitCanceled
		if ctx.Err() != nil {
			return outcome, ctx.Err()
		}
		return outcome, nil
	}

	result, err := w.safeCalculate(input)

	w.mu.Lock()
	if w.generation != gen {
		w.mu.Unlock()
		outcome.Status = SubmitCanceled
		return outcome, nil
	}
	if err != nil {
		w.result = nil
		w.notice = domain.UserMessage(err)
		w.noticeUntil = w.now().Add(w.noticeDuration)
		notice := w.notice
		w.mu.Unlock()

		w.log.Warn().Err(err).
			Float64("amount", input.Amount).
			Float64("rate", input.AnnualRatePercent).
			Int("years", input.TermYears).
			Msg("calculation failed")
		w.presenter.Notice(notice)

		outcome.Status = SubmitFailed
		outcome.Notice = notice
		outcome.Err = err
		return outcome, nil
	}

	formatted := w.formatter.Result(result)
	w.result = &formatted
	w.notice = ""
	w.mu.Unlock()

	if w.history != nil {
		calc := domain.Calculation{Input: input, Result: result, CreatedAt: w.now()}
		if err := w.history.Save(ctx, calc); err != nil {
			w.log.Warn().Err(err).Msg("failed to record calculation")
		}
	}
	w.presenter.ResultReady(formatted)

	outcome.Status = SubmitSucceeded
	outcome.Result = &result
	outcome.Formatted = &formatted
	return outcome, nil
}

// OnReset clears fields, validation markers, results and any notice, and
// abandons a pending calculation. Persisted values are left alone.
func (w *LoanWidget) OnReset() {
	w.mu.Lock()
	wasComputing := w.state == domain.StateComputing
	if w.cancelPending != nil {
		w.cancelPending()
		w.cancelPending = nil
	}
	w.generation++
	w.state = domain.StateIdle
	w.fields = domain.RawInput{}
	w.markers = make(map[domain.FieldID]domain.ValidationResult)
	w.result = nil
	w.notice = ""
	w.noticeUntil = time.Time{}
	w.mu.Unlock()

	if wasComputing {
		w.presenter.BusyChanged(false)
	}
	w.presenter.Cleared()
}

// DismissNotice hides the current notice before it expires.
func (w *LoanWidget) DismissNotice() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notice = ""
	w.noticeUntil = time.Time{}
}

// State returns the current state.
func (w *LoanWidget) State() domain.WidgetState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// NoticeDuration returns how long notices stay visible.
func (w *LoanWidget) NoticeDuration() time.Duration {
	return w.noticeDuration
}

// View returns a snapshot of the widget. Expired notices are not included.
func (w *LoanWidget) View() WidgetView {
	w.mu.Lock()
	defer w.mu.Unlock()

	view := WidgetView{
		State:  w.state,
		Fields: w.fields,
	}
	for _, field := range domain.Fields() {
		if res, ok := w.markers[field]; ok {
			view.Validation = append(view.Validation, res)
		}
	}
	if w.result != nil {
		r := *w.result
		view.Result = &r
	}
	if w.notice != "" && w.now().Before(w.noticeUntil) {
		view.Notice = w.notice
	}
	return view
}

func (w *LoanWidget) finish(gen uint64, cancel context.CancelFunc) {
	cancel()

	w.mu.Lock()
	current := w.generation == gen
	if current {
		w.state = domain.StateIdle
		w.cancelPending = nil
	}
	w.mu.Unlock()

	if current {
		w.presenter.BusyChanged(false)
	}
}

func (w *LoanWidget) safeCalculate(input domain.LoanInput) (result domain.LoanResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("calculator panicked: %v", r)
		}
	}()
	return w.calculate(input.Amount, input.AnnualRatePercent, input.TermYears)
}

func (w *LoanWidget) publishValidation(results []domain.ValidationResult) {
	for _, res := range results {
		w.presenter.FieldValidated(res)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
