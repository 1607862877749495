package jma

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lox/jmaetrn/internal/httputil"
)

// Kind identifies a domain failure. The set is closed.
type Kind int

const (
	KindInvalidDate Kind = iota + 1
	KindInvalidPrefecture
	KindInvalidBlock
	KindFutureDate
	KindDecode
	KindAmbiguousWeatherIcon
	KindUnrecognizedPage
	KindSchemaMismatch
	KindInvalidFrequency
)

func (k Kind) String() string {
	switch k {
	case KindInvalidDate:
		return "invalid_date"
	case KindInvalidPrefecture:
		return "invalid_prefecture"
	case KindInvalidBlock:
		return "invalid_block"
	case KindFutureDate:
		return "future_date"
	case KindDecode:
		return "decode"
	case KindAmbiguousWeatherIcon:
		return "ambiguous_weather_icon"
	case KindUnrecognizedPage:
		return "unrecognized_page"
	case KindSchemaMismatch:
		return "schema_mismatch"
	case KindInvalidFrequency:
		return "invalid_frequency"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrInvalidDate          = &Error{Kind: KindInvalidDate}
	ErrInvalidPrefecture    = &Error{Kind: KindInvalidPrefecture}
	ErrInvalidBlock         = &Error{Kind: KindInvalidBlock}
	ErrFutureDate           = &Error{Kind: KindFutureDate}
	ErrDecode               = &Error{Kind: KindDecode}
	ErrAmbiguousWeatherIcon = &Error{Kind: KindAmbiguousWeatherIcon}
	ErrUnrecognizedPage     = &Error{Kind: KindUnrecognizedPage}
	ErrSchemaMismatch       = &Error{Kind: KindSchemaMismatch}
	ErrInvalidFrequency     = &Error{Kind: KindInvalidFrequency}
)

// ErrRowsConsumed is yielded when a Rows sequence is iterated a second time.
var ErrRowsConsumed = errors.New("jma: rows already consumed")

// Error is a terminal failure of a single request. None of these are retried.
type Error struct {
	Kind    Kind
	PrecNo  string
	BlockNo string
	Date    string // YYYY-MM-DD when known
	URL     string
	Detail  string // offending value or page excerpt
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("jma: ")
	b.WriteString(e.Kind.String())
	var ctx []string
	if e.PrecNo != "" {
		ctx = append(ctx, "prec_no="+e.PrecNo)
	}
	if e.BlockNo != "" {
		ctx = append(ctx, "block_no="+e.BlockNo)
	}
	if e.Date != "" {
		ctx = append(ctx, "date="+e.Date)
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, " "))
		b.WriteString(")")
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of a domain error, or 0 for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsRetryable reports whether a caller may retry the request. Domain errors
// and client-side HTTP statuses (4xx other than 429) never are; transport
// failures and server statuses are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRowsConsumed) {
		return false
	}
	var se *httputil.StatusError
	if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests {
		return false
	}
	return KindOf(err) == 0
}
