package events

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Togather-Foundation/planner/internal/sanitize"
	"github.com/go-playground/validator/v10"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	minVolunteerName = 2
	maxVolunteerName = 100
)

var (
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegex = regexp.MustCompile(`^\d{2}:\d{2}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return isDate(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return isClock(fl.Field().String())
	})
	return v
}

func isDate(value string) bool {
	if !dateRegex.MatchString(value) {
		return false
	}
	_, err := time.Parse(dateLayout, value)
	return err == nil
}

func isClock(value string) bool {
	if !timeRegex.MatchString(value) {
		return false
	}
	_, err := time.Parse(timeLayout, value)
	return err == nil
}

// NormalizeEventInput trims every field and checks the field rules. Text is
// otherwise stored as given; HTML markup is rejected rather than stripped.
// Start and end times are not compared with each other.
func NormalizeEventInput(input EventInput) (EventInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Date = strings.TrimSpace(input.Date)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.EndTime = strings.TrimSpace(input.EndTime)

	if sanitize.ContainsMarkup(input.Title) {
		return input, markupError("title")
	}
	if sanitize.ContainsMarkup(input.Description) {
		return input, markupError("description")
	}
	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return input, fieldError(fieldErrs[0])
		}
		return input, ValidationError{Message: err.Error()}
	}
	return input, nil
}

func markupError(field string) ValidationError {
	return ValidationError{Field: field, Message: "must not contain HTML markup"}
}

func fieldError(fe validator.FieldError) ValidationError {
	field := jsonField(fe.Field())
	switch fe.Tag() {
	case "required":
		return ValidationError{Field: field, Message: "is required"}
	case "max":
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at most %s characters", fe.Param())}
	case "isodate":
		return ValidationError{Field: field, Message: "must be a calendar date in YYYY-MM-DD format"}
	case "hhmm":
		return ValidationError{Field: field, Message: "must be a time in HH:MM format"}
	default:
		return ValidationError{Field: field, Message: "is invalid"}
	}
}

func jsonField(name string) string {
	switch name {
	case "StartTime":
		return "start_time"
	case "EndTime":
		return "end_time"
	default:
		return strings.ToLower(name)
	}
}

// NormalizeVolunteerName trims surrounding whitespace and checks the length
// bounds. Names holding HTML markup are rejected.
func NormalizeVolunteerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if sanitize.ContainsMarkup(name) {
		return "", markupError("name")
	}
	n := utf8.RuneCountInString(name)
	if n < minVolunteerName {
		return "", ValidationError{Field: "name", Message: fmt.Sprintf("must be at least %d characters", minVolunteerName)}
	}
	if n > maxVolunteerName {
		return "", ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", maxVolunteerName)}
	}
	return name, nil
}

// NormalizeRange truncates both bounds to their date part. Bounds may be
// dates or RFC 3339 date-times.
func NormalizeRange(f RangeFilter) (DateRange, error) {
	from, err := truncateBound("start", f.Start)
	if err != nil {
		return DateRange{}, err
	}
	to, err := truncateBound("end", f.End)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{From: from, To: to}, nil
}

func truncateBound(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if isDate(value) {
		return value, nil
	}
	if len(value) > len(dateLayout) && (value[len(dateLayout)] == 'T' || value[len(dateLayout)] == ' ') {
		if datePart := value[:len(dateLayout)]; isDate(datePart) {
			return datePart, nil
		}
	}
	return "", ValidationError{Field: field, Message: "must be a date (YYYY-MM-DD) or date-time"}
}
