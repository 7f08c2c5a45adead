package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type methodFunc func(recv Value, args []Value) (Value, error)

func wrongArgs(method string, want, got int) error {
	return fmt.Errorf("method %q expects %d argument(s), got %d", method, want, got)
}

// methods is the per-kind dispatch table. A (kind, name) miss is a TypeError.
var methods = map[Kind]map[string]methodFunc{
	KindString: {
		"first_line": func(recv Value, args []Value) (Value, error) {
			if len(args) != 0 {
				return Value{}, wrongArgs("first_line", 0, len(args))
			}
			line, _, _ := strings.Cut(recv.Str, "\n")
			return StringValue(line), nil
		},
		"short": func(recv Value, args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, wrongArgs("short", 1, len(args))
			}
			if args[0].Kind != KindInteger {
				return Value{}, fmt.Errorf("method %q expects an integer argument", "short")
			}
			n := int(args[0].Int)
			if n < 0 || n >= len(recv.Str) {
				return recv, nil
			}
			return StringValue(recv.Str[:n]), nil
		},
		"lines": func(recv Value, args []Value) (Value, error) {
			if len(args) != 0 {
				return Value{}, wrongArgs("lines", 0, len(args))
			}
			var values []Value
			for _, line := range strings.Split(strings.TrimSuffix(recv.Str, "\n"), "\n") {
				values = append(values, StringValue(line))
			}
			return ListValue(values...), nil
		},
	},
	KindTimestamp: {
		"ago": func(recv Value, args []Value) (Value, error) {
			if len(args) != 0 {
				return Value{}, wrongArgs("ago", 0, len(args))
			}
			return StringValue(humanize.Time(recv.Time)), nil
		},
		"format": func(recv Value, args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, wrongArgs("format", 1, len(args))
			}
			if args[0].Kind != KindString {
				return Value{}, fmt.Errorf("method %q expects a string argument", "format")
			}
			return StringValue(recv.Time.Format(args[0].Str)), nil
		},
	},
	KindDuration: {
		"hours": func(recv Value, args []Value) (Value, error) {
			if len(args) != 0 {
				return Value{}, wrongArgs("hours", 0, len(args))
			}
			return IntegerValue(int64(recv.Dur / time.Hour)), nil
		},
	},
	KindList: {
		"join": func(recv Value, args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, wrongArgs("join", 1, len(args))
			}
			if args[0].Kind != KindString {
				return Value{}, fmt.Errorf("method %q expects a string argument", "join")
			}
			parts := make([]string, len(recv.List))
			for i, item := range recv.List {
				parts[i] = Render(item)
			}
			return StringValue(strings.Join(parts, args[0].Str)), nil
		},
		"len": func(recv Value, args []Value) (Value, error) {
			if len(args) != 0 {
				return Value{}, wrongArgs("len", 0, len(args))
			}
			return IntegerValue(int64(len(recv.List))), nil
		},
	},
	KindSignature: {
		"name": func(recv Value, args []Value) (Value, error) {
			if len(args) != 0 {
				return Value{}, wrongArgs("name", 0, len(args))
			}
			return StringValue(recv.Signature.Name), nil
		},
		"email": func(recv Value, args []Value) (Value, error) {
			if len(args) != 0 {
				return Value{}, wrongArgs("email", 0, len(args))
			}
			return StringValue(recv.Signature.Email), nil
		},
		"timestamp": func(recv Value, args []Value) (Value, error) {
			if len(args) != 0 {
				return Value{}, wrongArgs("timestamp", 0, len(args))
			}
			return TimestampValue(recv.Signature.When), nil
		},
	},
	KindFile: {
		"path": func(recv Value, args []Value) (Value, error) {
			if len(args) != 0 {
				return Value{}, wrongArgs("path", 0, len(args))
			}
			return StringValue(recv.FilePath), nil
		},
	},
}

func (e *fieldExpr) eval(ctx Context) (Value, error) {
	v, ok := ctx.Field(e.name)
	if !ok {
		return Value{}, &KeywordError{Name: e.name}
	}
	return v, nil
}

func (e *stringExpr) eval(ctx Context) (Value, error) {
	return StringValue(e.value), nil
}

func (e *integerExpr) eval(ctx Context) (Value, error) {
	return IntegerValue(e.value), nil
}

func (e *methodExpr) eval(ctx Context) (Value, error) {
	recv, err := e.receiver.eval(ctx)
	if err != nil {
		return Value{}, err
	}
	fn, ok := methods[recv.Kind][e.method]
	if !ok {
		return Value{}, &TypeError{Method: e.method, Kind: recv.Kind}
	}
	args := make([]Value, len(e.args))
	for i, argExpr := range e.args {
		args[i], err = argExpr.eval(ctx)
		if err != nil {
			return Value{}, err
		}
	}
	return fn(recv, args)
}

// Eval renders the template against ctx
func (t *Template) Eval(ctx Context) (string, error) {
	var sb strings.Builder
	for _, node := range t.exprs {
		v, err := node.eval(ctx)
		if err != nil {
			return "", err
		}
		sb.WriteString(Render(v))
	}
	return sb.String(), nil
}
