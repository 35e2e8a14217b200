package registration

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/usajili/core"
)

// Steps of the registration flow, in order.
type Step int

const (
	StepEmail Step = iota
	StepPersonal
	StepEducation
	StepApplication
	StepDocuments
	StepAdditional
	StepReview
)

var stepNames = map[Step]string{
	StepEmail:       "email",
	StepPersonal:    "personal",
	StepEducation:   "education",
	StepApplication: "application",
	StepDocuments:   "documents",
	StepAdditional:  "additional",
	StepReview:      "review",
}

func (s Step) String() string { return stepNames[s] }

var (
	ErrStepMismatch   = errors.New("payload does not belong to the current step")
	ErrNotOnReview    = errors.New("operation only allowed on the review step")
	ErrStepIncomplete = errors.New("current step has not been completed")
)

type (
	// StepPayload is one step's validated outcome. Each payload knows the
	// step it belongs to and how to merge itself into the draft.
	StepPayload interface {
		Step() Step
		apply(d *Draft)
	}

	EmailPayload struct {
		Email string `json:"email" validate:"required,email"`
	}

	// Draft accumulates step outcomes for one registration attempt. Nothing
	// is persisted until Submit succeeds.
	Draft struct {
		Email       string
		Personal    *PersonalInfo
		Education   *EducationInfo
		Application *ApplicationDetails
		Documents   *DocumentSet
		Additional  *AdditionalInfo
	}

	// Flow is the step sequence controller. It owns the draft exclusively for
	// the duration of the authoring session; it is not safe for concurrent use.
	Flow struct {
		svc      ServiceInterface
		validate *validator.Validate

		step  Step
		draft Draft
	}
)

func (p EmailPayload) Step() Step       { return StepEmail }
func (p EmailPayload) apply(d *Draft)   { d.Email = core.CleanString(p.Email, true /* lower */) }
func (p PersonalInfo) Step() Step       { return StepPersonal }
func (p PersonalInfo) apply(d *Draft)   { d.Personal = &p }
func (p EducationInfo) Step() Step      { return StepEducation }
func (p EducationInfo) apply(d *Draft)  { d.Education = &p }
func (p ApplicationDetails) Step() Step { return StepApplication }
func (p ApplicationDetails) apply(d *Draft) {
	d.Application = &p
}
func (p DocumentSet) Step() Step        { return StepDocuments }
func (p DocumentSet) apply(d *Draft)    { d.Documents = &p }
func (p AdditionalInfo) Step() Step     { return StepAdditional }
func (p AdditionalInfo) apply(d *Draft) { d.Additional = &p }

// stepDone reports whether a step's payload has been recorded in the draft.
func (d Draft) stepDone(s Step) bool {
	switch s {
	case StepEmail:
		return d.Email != ""
	case StepPersonal:
		return d.Personal != nil
	case StepEducation:
		return d.Education != nil
	case StepApplication:
		return d.Application != nil
	case StepDocuments:
		return d.Documents != nil
	case StepAdditional:
		return d.Additional != nil
	}
	return true
}

func NewFlow(svc ServiceInterface, validate *validator.Validate) *Flow {
	return &Flow{svc: svc, validate: validate}
}

func (f *Flow) Step() Step   { return f.step }
func (f *Flow) Draft() Draft { return f.draft }

// Advance validates the current step's payload, persists it into the draft
// and moves one step forward. An invalid payload leaves the flow untouched.
// Advancing past the review step is a no-op.
func (f *Flow) Advance(payload StepPayload) error {
	if f.step >= StepReview {
		return nil
	}
	if payload.Step() != f.step {
		return ErrStepMismatch
	}

	if pi, ok := payload.(PersonalInfo); ok {
		pi.Clean()
		payload = pi
	}
	if err := f.validate.Struct(payload); err != nil {
		return err
	}

	payload.apply(&f.draft)
	f.step++
	return nil
}

// Retreat moves one step back. Entered data is kept for all steps.
func (f *Flow) Retreat() {
	if f.step > 0 {
		f.step--
	}
}

// JumpTo re-enters an earlier step for correction. Only permitted from the
// review step; data of the skipped-over steps is kept.
func (f *Flow) JumpTo(step Step) error {
	if f.step != StepReview {
		return ErrNotOnReview
	}
	if step < StepEmail || step > StepReview {
		return errors.Errorf("no such step: %d", step)
	}
	f.step = step
	return nil
}

// Resume returns to the review step after a JumpTo correction, revalidating
// the corrected payload on the way.
func (f *Flow) Resume(payload StepPayload) error {
	if err := f.Advance(payload); err != nil {
		return err
	}
	f.step = StepReview
	return nil
}

// Submit hands the assembled draft to the submission service. Only permitted
// from the review step with every prior step complete. On failure the flow
// stays on review with all entered data intact.
func (f *Flow) Submit(ctx context.Context) (string, error) {
	if f.step != StepReview {
		return "", ErrNotOnReview
	}
	for s := StepEmail; s < StepReview; s++ {
		if !f.draft.stepDone(s) {
			return "", errors.Wrap(ErrStepIncomplete, s.String())
		}
	}

	data := CompleteRegistration{
		Email:       f.draft.Email,
		Personal:    *f.draft.Personal,
		Education:   *f.draft.Education,
		Application: *f.draft.Application,
		Documents:   *f.draft.Documents,
		Additional:  *f.draft.Additional,
	}
	return f.svc.Submit(ctx, data)
}
