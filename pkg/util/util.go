package util

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// error

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s", e.msg)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

var (
	ErrInternalServerError = errors.New("internal Server Error")
	ErrNotFound            = errors.New("your requested Item is not found")
	ErrBadParamInput       = errors.New("given Param is not valid")

	ErrRemote           = errors.New("remote service call failed")
	ErrNoRouteFound     = errors.New("no route found between the given points")
	ErrMissingReference = errors.New("suggestion has neither coordinates nor a reference id")
	ErrGeolocation      = errors.New("device location is unavailable")
	ErrDecode           = errors.New("malformed encoded path")
)

var MessageInternalServerError string = "internal server error"

// Code returns the sentinel code of err if it carries one, nil otherwise.
func Code(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return nil
}

func DegreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func RadiansToDegree(rad float64) float64 {
	return 180.0 * rad / math.Pi
}

func StringToFloat64(str string) (float64, error) {
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}
	return val, nil
}

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// FormatDistance renders meters as kilometers with two decimals, e.g. "12.74 km".
func FormatDistance(meters uint64) string {
	return fmt.Sprintf("%.2f km", float64(meters)/1000.0)
}

// FormatDuration renders milliseconds as whole minutes, e.g. "18 min".
func FormatDuration(ms uint64) string {
	return fmt.Sprintf("%d min", int64(math.Round(float64(ms)/60000.0)))
}

func Abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
