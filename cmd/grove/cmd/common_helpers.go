package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/template"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
)

var isTerminal = true

const (
	DeathMessage   = "Error: {{.Error|red}}\n"
	WarningMessage = "warning: {{.Warning|yellow}}\n"
)

const (
	CodeError = 1
	CodeUsage = 2
)

//nolint:gochecknoinits
func init() {
	// disable colors if we're not attached to interactive TTY
	if !term.IsTerminal(int(os.Stdout.Fd())) || noColorRequested {
		DisableColors()
	}
}

func DisableColors() {
	text.DisableColors()
	isTerminal = false
}

type Table struct {
	Headers []interface{}
	Rows    [][]interface{}
}

func WriteTo(tpl string, data interface{}, w io.Writer) {
	templ := template.New("output")
	templ.Funcs(template.FuncMap{
		"red": func(arg interface{}) string {
			return text.FgHiRed.Sprint(arg)
		},
		"yellow": func(arg interface{}) string {
			return text.FgHiYellow.Sprint(arg)
		},
		"bold": func(arg interface{}) string {
			return text.Bold.Sprint(arg)
		},
		"table": func(tab *Table) string {
			if isTerminal {
				buf := new(bytes.Buffer)
				t := table.NewWriter()
				t.SetOutputMirror(buf)
				t.AppendHeader(tab.Headers)
				for _, row := range tab.Rows {
					t.AppendRow(row)
				}
				t.Render()
				return buf.String()
			}
			var b strings.Builder
			for _, row := range tab.Rows {
				for ic, cell := range row {
					b.WriteString(fmt.Sprintf("%v", cell))
					if ic < len(row)-1 {
						b.WriteString("\t")
					}
				}
				b.WriteString("\n")
			}
			return b.String()
		},
	})
	t := template.Must(templ.Parse(tpl))
	err := t.Execute(w, data)
	if err != nil {
		panic(err)
	}
}

func Write(tpl string, data interface{}) {
	WriteTo(tpl, data, os.Stdout)
}

func Die(err string, code int) {
	WriteTo(DeathMessage, struct{ Error string }{err}, os.Stderr)
	os.Exit(code)
}

func DieFmt(msg string, args ...interface{}) {
	Die(fmt.Sprintf(msg, args...), CodeError)
}

func DieErr(err error) {
	Die(err.Error(), CodeError)
}

func Warning(msg string) {
	WriteTo(WarningMessage, struct{ Warning string }{msg}, os.Stderr)
}

func Fmt(msg string, args ...interface{}) {
	fmt.Printf(msg, args...)
}

func PrintTable(rows [][]interface{}, headers []interface{}) {
	Write("{{.Table | table -}}\n", struct{ Table *Table }{&Table{Headers: headers, Rows: rows}})
}

// isBrokenSink reports whether a write failed because the output consumer
// went away, e.g. a pager that exited. That ends the render early but is not
// an error.
func isBrokenSink(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}
