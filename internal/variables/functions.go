package variables

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/strftime"
)

// Func evaluates a synthetic function. Returning an error leaves the token unexpanded.
type Func func(args []any) (string, error)

type Registry map[string]Func

var now = time.Now

var builtins = Registry{
	"timestamp": timestamp,
	"randomInt": randomInt,
	"guid":      guid,
	"uuid":      guid,
	"date":      date,
}

// Builtins returns a copy of the synthetic function registry, suitable for extension.
func Builtins() Registry {
	out := make(Registry, len(builtins))
	for name, fn := range builtins {
		out[name] = fn
	}
	return out
}

var errArity = errors.New("wrong number of arguments")

func timestamp(args []any) (string, error) {
	if len(args) != 0 {
		return "", errArity
	}
	return strconv.FormatInt(now().Unix(), 10), nil
}

// randomInt() -> [0,100], randomInt(max) -> [0,max], randomInt(min,max) -> [min,max].
func randomInt(args []any) (string, error) {
	var lo, hi int64 = 0, 100
	switch len(args) {
	case 0:
	case 1:
		upper, ok := args[0].(int64)
		if !ok {
			return "", fmt.Errorf("randomInt: max must be an integer, got %v", args[0])
		}
		hi = upper
	case 2:
		lower, okLower := args[0].(int64)
		upper, okUpper := args[1].(int64)
		if !okLower || !okUpper {
			return "", fmt.Errorf("randomInt: bounds must be integers, got %v, %v", args[0], args[1])
		}
		lo, hi = lower, upper
	default:
		return "", errArity
	}
	if lo > hi {
		return "", fmt.Errorf("randomInt: min %d greater than max %d", lo, hi)
	}
	span := hi - lo + 1
	if span <= 0 {
		return "", fmt.Errorf("randomInt: range [%d, %d] too wide", lo, hi)
	}
	return strconv.FormatInt(lo+rand.Int64N(span), 10), nil
}

func guid(args []any) (string, error) {
	if len(args) != 0 {
		return "", errArity
	}
	return uuid.NewString(), nil
}

// date(format) formats the current time with strftime directives, default %Y-%m-%d.
// %s is the unix time in seconds and %L the milliseconds.
func date(args []any) (string, error) {
	format := "%Y-%m-%d"
	switch len(args) {
	case 0:
	case 1:
		f, ok := args[0].(string)
		if !ok {
			return "", fmt.Errorf("date: format must be a string, got %v", args[0])
		}
		format = f
	default:
		return "", errArity
	}
	return strftime.Format(format, now(), dateOptions...)
}

var dateOptions = []strftime.Option{
	strftime.WithUnixSeconds('s'),
	strftime.WithMilliseconds('L'),
}

// parseArgs splits a raw argument list positionally. Each argument becomes an
// int64 when it is a signed integer literal, a float64 when it parses as one,
// and a string otherwise (surrounding quotes removed).
func parseArgs(raw string) []any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	args := make([]any, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if i, err := strconv.ParseInt(part, 10, 64); err == nil {
			args = append(args, i)
			continue
		}
		if f, err := strconv.ParseFloat(part, 64); err == nil {
			args = append(args, f)
			continue
		}
		args = append(args, unquote(part))
	}
	return args
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
