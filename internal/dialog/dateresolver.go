package dialog

import (
	"context"

	"github.com/tripware/travel-skill/internal/timex"
)

// DateResolverDialogID identifies the date disambiguation sub-dialog.
const DateResolverDialogID = "DateResolverDialog"

const (
	datePromptText = "On what date would you like to travel?"
	dateRetryText  = "I'm sorry, for best results, please enter your travel date " +
		"including the month, day and year."
)

type dateResolverDialog struct{}

// NewDateResolverDialog creates the sub-dialog that turns a vague date
// expression into a concrete, or explicitly accepted, one.
func NewDateResolverDialog() *Waterfall {
	d := &dateResolverDialog{}
	return NewWaterfall(DateResolverDialogID, d.initialStep, d.finalStep)
}

func (d *dateResolverDialog) initialStep(ctx context.Context, sc *StepContext) (StepResult, error) {
	var candidate string
	if err := sc.Frame.Options(&candidate); err != nil {
		return StepResult{}, err
	}

	if candidate == "" || timex.IsAmbiguous(candidate) {
		return PromptWithRetry(AwaitDate, datePromptText, dateRetryText), nil
	}

	return Next(candidate), nil
}

func (d *dateResolverDialog) finalStep(ctx context.Context, sc *StepContext) (StepResult, error) {
	return End(sc.ResultText()), nil
}
