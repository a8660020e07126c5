// Package render turns derived table shapes and logic into T-SQL scripts.
package render

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/helper"
)

// Renderer executes a named template with a parameter record.
type Renderer interface {
	Render(name TemplateName, params interface{}) (string, error)
}

// TemplateRenderer renders the built-in T-SQL templates.
type TemplateRenderer struct {
	root *template.Template
}

var funcs = template.FuncMap{
	"join":    strings.Join,
	"literal": helper.QuoteLiteral,
}

// NewRenderer parses every template up front so a bad template fails before any table is rendered.
func NewRenderer() (*TemplateRenderer, error) {
	root := template.New("sql").Funcs(funcs)
	for _, shared := range []string{dropTableTemplate, dropProcedureTemplate, columnsTemplate} {
		if _, err := root.Parse(shared); err != nil {
			return nil, errors.Wrap(err, "unable to parse shared template")
		}
	}
	for name, text := range templateText {
		if _, err := root.New(string(name)).Parse(text); err != nil {
			return nil, errors.Wrapf(err, "unable to parse template %v", name)
		}
	}
	return &TemplateRenderer{root: root}, nil
}

func (r *TemplateRenderer) Render(name TemplateName, params interface{}) (string, error) {
	t := r.root.Lookup(string(name))
	if t == nil {
		return "", errors.Errorf("unknown template %v", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", errors.Wrapf(err, "unable to render template %v", name)
	}
	return buf.String(), nil
}

// Script is one rendered object ready to be written.
type Script struct {
	Template TemplateName
	Schema   string
	Name     string
	Dir      string // constants.OutputDirTables or constants.OutputDirStoredProcedures
	SQL      string
}

func tableScript(r Renderer, name TemplateName, p interface{}, schemaName, table string) (Script, error) {
	sql, err := r.Render(name, p)
	if err != nil {
		return Script{}, err
	}
	return Script{Template: name, Schema: schemaName, Name: table, Dir: constants.OutputDirTables, SQL: sql}, nil
}

func procedureScript(r Renderer, name TemplateName, p interface{}, schemaName, proc string) (Script, error) {
	sql, err := r.Render(name, p)
	if err != nil {
		return Script{}, err
	}
	return Script{Template: name, Schema: schemaName, Name: proc, Dir: constants.OutputDirStoredProcedures, SQL: sql}, nil
}
