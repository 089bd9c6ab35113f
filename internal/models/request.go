package models

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// SearchQuery is the flight search query exactly as the browser sends it.
// Every value is kept as a string so that validation can report malformed
// input instead of failing at bind time.
type SearchQuery struct {
	Origin        string `query:"origin"`
	Destination   string `query:"destination"`
	DepartureDate string `query:"departureDate"`
	ReturnDate    string `query:"returnDate"`
	Adults        string `query:"adults"`
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = `Pole "Początek podróży" jest wymagane`
	ErrMissingDestination   ValidationError = `Pole "Cel podróży" jest wymagane`
	ErrMissingDepartureDate ValidationError = `Pole "Data wylotu" jest wymagane`
	ErrMissingAdults        ValidationError = `Pole "Liczba dorosłych" jest wymagane`

	ErrInvalidOrigin        ValidationError = `Pole "Początek podróży" powinno być 3-literowym kodem IATA`
	ErrInvalidDestination   ValidationError = `Pole "Cel podróży" powinno być 3-literowym kodem IATA`
	ErrInvalidDepartureDate ValidationError = `Pole "Data wylotu" powinno być w formacie YYYY-MM-DD`
	ErrInvalidReturnDate    ValidationError = `Pole "Data powrotu" powinno być w formacie YYYY-MM-DD`
	ErrInvalidAdults        ValidationError = `Pole "Liczba dorosłych" powinno być poprawną liczbą`
)

var (
	iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "iata", func(fl validator.FieldLevel) bool {
		return iataPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		return datePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "integer", func(fl validator.FieldLevel) bool {
		_, err := parseLeadingInt(fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

type rule struct {
	value string
	tag   string
	err   ValidationError
}

// Validate checks the query against every rule and returns one message per
// violated rule. Rules never short-circuit each other and the order of the
// result is the order of the rules below. An empty result means the query is
// well-formed.
func (q SearchQuery) Validate() []string {
	rules := []rule{
		{q.Origin, "required", ErrMissingOrigin},
		{q.Destination, "required", ErrMissingDestination},
		{q.DepartureDate, "required", ErrMissingDepartureDate},
		{q.Adults, "required", ErrMissingAdults},

		{q.Origin, "omitempty,iata", ErrInvalidOrigin},
		{q.Destination, "omitempty,iata", ErrInvalidDestination},

		{q.DepartureDate, "omitempty,isodate", ErrInvalidDepartureDate},
		{q.ReturnDate, "omitempty,isodate", ErrInvalidReturnDate},

		{q.Adults, "omitempty,integer", ErrInvalidAdults},
	}

	errs := make([]string, 0)
	for _, r := range rules {
		if err := validate.Var(r.value, r.tag); err != nil {
			errs = append(errs, r.err.Error())
		}
	}
	return errs
}

// OfferParams converts a validated query into upstream search parameters.
// It fails only when adults has no leading integer, which Validate reports
// first.
func (q SearchQuery) OfferParams() (OfferSearchParams, error) {
	adults, err := parseLeadingInt(q.Adults)
	if err != nil {
		return OfferSearchParams{}, ErrInvalidAdults
	}

	params := OfferSearchParams{
		OriginLocationCode:      q.Origin,
		DestinationLocationCode: q.Destination,
		DepartureDate:           q.DepartureDate,
		Adults:                  adults,
	}
	if q.ReturnDate != "" {
		returnDate := q.ReturnDate
		params.ReturnDate = &returnDate
	}
	return params, nil
}

// parseLeadingInt reads the integer at the start of s. Leading whitespace
// and a sign are accepted and anything after the digits is ignored, so "2.5"
// and "2abc" are both 2. It fails only when no digit follows.
func parseLeadingInt(s string) (int, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, ErrInvalidAdults
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, ErrInvalidAdults
	}
	return n, nil
}
