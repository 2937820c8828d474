package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-widget/domain"
	"loan-widget/money"
	"loan-widget/repository"
	"loan-widget/service"
)

// fakeDriver replays scripted answers. Rejected inputs are re-asked with the
// next answer, the way survey re-prompts.
type fakeDriver struct {
	answers  []string
	confirms []bool

	defaults []string
	rejected []string
	infos    []string
}

func (d *fakeDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.defaults = append(d.defaults, cfg.Default)
	for {
		if len(d.answers) == 0 {
			return "", ErrAborted
		}
		answer := d.answers[0]
		d.answers = d.answers[1:]
		if cfg.Validator != nil {
			if err := cfg.Validator(answer); err != nil {
				d.rejected = append(d.rejected, err.Error())
				continue
			}
		}
		return answer, nil
	}
}

func (d *fakeDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, ErrAborted
	}
	v := d.confirms[0]
	d.confirms = d.confirms[1:]
	return v, nil
}

func (d *fakeDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func newTestWidget(t *testing.T, kv repository.KeyValueStore) *service.LoanWidget {
	t.Helper()
	return service.NewLoanWidget(
		service.NewValidator(),
		service.NewStateStore(kv, "", zerolog.Nop()),
		money.MustFormatter("en-US", "USD"),
		service.WithSimulatedLatency(0),
		service.WithLogger(zerolog.Nop()),
	)
}

func TestSession_CalculatesOnce(t *testing.T) {
	kv := repository.NewMemoryStore()
	driver := &fakeDriver{
		answers:  []string{"10000", "5", "5"},
		confirms: []bool{false},
	}

	err := NewSession(newTestWidget(t, kv), driver).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, driver.infos, 1)
	assert.Contains(t, driver.infos[0], "188.71")

	raw, err := kv.Get(context.Background(), service.DefaultStorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"10000","interest":"5","years":"5"}`, raw)
}

func TestSession_ReasksInvalidAnswers(t *testing.T) {
	driver := &fakeDriver{
		answers:  []string{"50", "10000", "abc", "5", "2.5", "5"},
		confirms: []bool{false},
	}

	err := NewSession(newTestWidget(t, repository.NewMemoryStore()), driver).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Amount must be between 100 and 99,999,999",
		"Interest rate must be between 0.01% and 100%",
		"Term must be a whole number of years between 1 and 50",
	}, driver.rejected)
	require.Len(t, driver.infos, 1)
}

func TestSession_UsesPersistedValuesAsDefaults(t *testing.T) {
	kv := repository.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), service.DefaultStorageKey,
		`{"amount":"2500","interest":"3.5","years":"4"}`))

	driver := &fakeDriver{answers: []string{"2500", "3.5", "4"}, confirms: []bool{false}}
	err := NewSession(newTestWidget(t, kv), driver).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2500", "3.5", "4"}, driver.defaults)
}

func TestSession_StartOverResetsDefaults(t *testing.T) {
	driver := &fakeDriver{
		answers:  []string{"10000", "5", "5", "20000", "4", "10"},
		confirms: []bool{true, false, false},
	}

	w := newTestWidget(t, repository.NewMemoryStore())
	err := NewSession(w, driver).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"10000", "5", "5", "", "", ""}, driver.defaults)
	assert.Len(t, driver.infos, 2)
	assert.Equal(t, "20000", w.View().Fields.Amount)
}

func TestSession_KeepValuesOffersThemAgain(t *testing.T) {
	driver := &fakeDriver{
		answers:  []string{"10000", "5", "5", "10000", "5", "6"},
		confirms: []bool{true, true, false},
	}

	err := NewSession(newTestWidget(t, repository.NewMemoryStore()), driver).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"10000", "5", "5", "10000", "5", "5"}, driver.defaults)
}

func TestSession_AbortIsNotAnError(t *testing.T) {
	driver := &fakeDriver{answers: []string{"10000"}}

	err := NewSession(newTestWidget(t, repository.NewMemoryStore()), driver).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, driver.infos)
}

func TestSession_ReportsCalculationFailure(t *testing.T) {
	failing := func(float64, float64, int) (domain.LoanResult, error) {
		return domain.LoanResult{}, domain.NewCalcError(domain.KindNonFinite, "overflow")
	}
	w := service.NewLoanWidget(
		service.NewValidator(),
		service.NewStateStore(repository.NewMemoryStore(), "", zerolog.Nop()),
		money.MustFormatter("en-US", "USD"),
		service.WithSimulatedLatency(0),
		service.WithCalculator(failing),
		service.WithLogger(zerolog.Nop()),
	)
	driver := &fakeDriver{answers: []string{"10000", "5", "5"}, confirms: []bool{false}}

	require.NoError(t, NewSession(w, driver).Run(context.Background()))
	require.Len(t, driver.infos, 1)
	assert.Equal(t, "! "+domain.UserMessage(domain.ErrNonFinite), driver.infos[0])
}

func TestTranslateSurveyErr(t *testing.T) {
	other := errors.New("boom")
	assert.Equal(t, other, translateSurveyErr(other))
}
