// Package template implements the small formatting language used to render
// commits and file entries: field access and left-associative .method(args)
// chains over tagged values.
package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/grovevc/grove/pkg/graph"
)

// Kind is the closed set of value kinds. Method calls dispatch on
// (kind, method-name); calling an undefined method for a kind is a type
// error, not a runtime duck-typing gamble.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindTimestamp
	KindDuration
	KindList
	KindCommit
	KindFile
	KindSignature
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindTimestamp:
		return "timestamp"
	case KindDuration:
		return "duration"
	case KindList:
		return "list"
	case KindCommit:
		return "commit"
	case KindFile:
		return "file"
	case KindSignature:
		return "signature"
	}
	return "unknown"
}

// Value is a tagged template value
type Value struct {
	Kind      Kind
	Str       string
	Int       int64
	Time      time.Time
	Dur       time.Duration
	List      []Value
	Commit    *graph.CommitRecord
	Signature *graph.Signature
	FilePath  string
}

func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func IntegerValue(n int64) Value {
	return Value{Kind: KindInteger, Int: n}
}

func TimestampValue(t time.Time) Value {
	return Value{Kind: KindTimestamp, Time: t}
}

func ListValue(values ...Value) Value {
	return Value{Kind: KindList, List: values}
}

// TimestampFormat is the default timestamp rendering
const TimestampFormat = "2006-01-02 15:04:05.000 -07:00"

const renderShortIDLen = 12

// Render produces the textual form of a value
func Render(v Value) string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInteger:
		return fmt.Sprintf("%d", v.Int)
	case KindTimestamp:
		return v.Time.Format(TimestampFormat)
	case KindDuration:
		return v.Dur.String()
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = Render(item)
		}
		return strings.Join(parts, " ")
	case KindCommit:
		id := string(v.Commit.CommitID)
		if len(id) > renderShortIDLen {
			id = id[:renderShortIDLen]
		}
		return id
	case KindFile:
		return v.FilePath
	case KindSignature:
		if v.Signature.Email == "" {
			return v.Signature.Name
		}
		return fmt.Sprintf("%s <%s>", v.Signature.Name, v.Signature.Email)
	}
	return ""
}

// TypeError reports a method call that is not defined for the receiver kind.
// It aborts rendering of the current command.
type TypeError struct {
	Method string
	Kind   Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("method %q not defined for type %s", e.Method, e.Kind)
}

// KeywordError reports an unknown top-level field name
type KeywordError struct {
	Name string
}

func (e *KeywordError) Error() string {
	return fmt.Sprintf("keyword %q not defined", e.Name)
}

// Context supplies named fields during evaluation
type Context interface {
	Field(name string) (Value, bool)
}

// CommitContext binds a commit record as the evaluation context
type CommitContext struct {
	Record *graph.CommitRecord
}

func (c CommitContext) Field(name string) (Value, bool) {
	switch name {
	case "description":
		return StringValue(c.Record.Description), true
	case "commit_id":
		return StringValue(string(c.Record.CommitID)), true
	case "change_id":
		return StringValue(string(c.Record.ChangeID)), true
	case "author":
		return Value{Kind: KindSignature, Signature: &c.Record.Author}, true
	case "committer":
		return Value{Kind: KindSignature, Signature: &c.Record.Committer}, true
	case "parents":
		values := make([]Value, len(c.Record.Parents))
		for i, parent := range c.Record.Parents {
			values[i] = StringValue(string(parent))
		}
		return ListValue(values...), true
	}
	return Value{}, false
}

// FileContext binds a file entry as the evaluation context
type FileContext struct {
	Path string
}

func (c FileContext) Field(name string) (Value, bool) {
	if name == "path" {
		return Value{Kind: KindFile, FilePath: c.Path}, true
	}
	return Value{}, false
}
