package service

import "loan-widget/domain"

// Presenter receives everything the widget wants shown. Implementations must
// not call back into the widget.
type Presenter interface {
	FieldValidated(res domain.ValidationResult)
	BusyChanged(busy bool)
	ResultReady(res domain.FormattedResult)
	Notice(msg string)
	Cleared()
}

// NopPresenter ignores every event.
type NopPresenter struct{}

func (NopPresenter) FieldValidated(domain.ValidationResult) {}
func (NopPresenter) BusyChanged(bool)                       {}
func (NopPresenter) ResultReady(domain.FormattedResult)     {}
func (NopPresenter) Notice(string)                          {}
func (NopPresenter) Cleared()                               {}
