// Package validate checks job payloads against structural and business
// rules. Every check reports the complete list of violated rules, never
// just the first, so callers can surface all corrections in a single round
// trip.
//
// Validation runs on the raw payload: sanitization happens separately
// before persistence, and no rule here relies on sanitized lengths.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/job"
)

var (
	zipRe   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9\s().-]+$`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

// Validator checks payloads. Safe for concurrent use.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the time source used by the scheduled-date rule.
func WithClock(now func() time.Time) Option {
	return func(val *Validator) {
		val.now = now
	}
}

// New creates a Validator with all fieldops rules registered.
func New(opts ...Option) *Validator {
	val := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(val)
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json field names instead of Go identifiers.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "uszip", func(fl validator.FieldLevel) bool {
		return zipRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "clock24", func(fl validator.FieldLevel) bool {
		return clockRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "phone", validPhone)

	v.RegisterStructValidation(timeSlotRules, job.TimeSlot{})
	v.RegisterStructValidation(val.jobRules, job.Job{})

	val.v = v
	return val
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %q: %v", tag, err))
	}
}

// validPhone accepts an optional leading plus, separators, and 7 to 15
// digits.
func validPhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !phoneRe.MatchString(s) {
		return false
	}
	digits := len(digitRe.FindAllString(s, -1))
	return digits >= 7 && digits <= 15
}

// timeSlotRules rejects slots whose end is not strictly after the start.
// Same-day arithmetic only: slots spanning midnight are not supported.
func timeSlotRules(sl validator.StructLevel) {
	ts := sl.Current().Interface().(job.TimeSlot)
	if !clockRe.MatchString(ts.Start) || !clockRe.MatchString(ts.End) {
		return // field rules already flag malformed values
	}
	// Zero-padded HH:MM compares correctly as strings.
	if ts.End <= ts.Start {
		sl.ReportError(ts.End, "end", "End", "timeslot_order", "")
	}
}

// jobRules holds the creation checks that need the clock.
func (val *Validator) jobRules(sl validator.StructLevel) {
	j := sl.Current().Interface().(job.Job)
	if !j.ScheduledDate.IsZero() && j.ScheduledDate.Before(val.now()) {
		sl.ReportError(j.ScheduledDate, "scheduled_date", "ScheduledDate", "schedule_past", "")
	}
}

// JobCreation validates a job-creation payload. It returns nil or a
// *fieldops.ValidationError listing every violated rule.
func (val *Validator) JobCreation(j *job.Job) error {
	return translate(val.v.Struct(j))
}

// JobCompletion validates a completion payload.
func (val *Validator) JobCompletion(c *job.Completion) error {
	return translate(val.v.Struct(c))
}

// assignmentPayload mirrors the three required assignment inputs.
type assignmentPayload struct {
	JobID        string `json:"job_id" validate:"required"`
	TechnicianID string `json:"technician_id" validate:"required"`
	AssignedBy   string `json:"assigned_by" validate:"required"`
}

// JobAssignment validates the structural assignment inputs: all three must
// be non-empty.
func (val *Validator) JobAssignment(jobID, technicianID, assignedBy string) error {
	return translate(val.v.Struct(assignmentPayload{
		JobID:        jobID,
		TechnicianID: technicianID,
		AssignedBy:   assignedBy,
	}))
}

// messages maps validation tags to rule descriptions. One %s placeholder
// receives the field path, a second receives the rule parameter.
var messages = map[string]string{
	"required":       "%s is required",
	"max":            "%s exceeds the maximum of %s",
	"min":            "%s needs at least %s entries",
	"gt":             "%s must be greater than %s",
	"gte":            "%s must be at least %s",
	"lte":            "%s must be at most %s",
	"oneof":          "%s must be one of: %s",
	"email":          "%s must be a valid email address",
	"phone":          "%s must be a valid phone number",
	"uszip":          "%s must match 12345 or 12345-6789",
	"clock24":        "%s must be a 24-hour HH:MM time",
	"timeslot_order": "%s must be strictly after the slot start",
	"schedule_past":  "%s must not be in the past",
}

// translate converts validator output into a *fieldops.ValidationError
// carrying every violation.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError means the payload type itself was wrong;
		// that is a programming error, not a rule violation.
		return fmt.Errorf("validate: %w", err)
	}

	violations := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, message(fe))
	}
	return &fieldops.ValidationError{Violations: violations}
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed rule %q", field, fe.Tag())
	}
	if strings.Count(tmpl, "%s") == 2 {
		return fmt.Sprintf(tmpl, field, fe.Param())
	}
	return fmt.Sprintf(tmpl, field)
}

// fieldPath strips the root struct name from the error namespace, leaving
// the json path of the offending field ("customer.phone").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
