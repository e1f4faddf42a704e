// Package validation проверяет пользовательский ввод по JSON Schema и
// возвращает нарушения в виде apperrors.ValidationFailure.
package validation

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Kargones/authgate/internal/pkg/apperrors"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaBaseURL: базовый адрес, под которым схемы регистрируются в компиляторе.
const schemaBaseURL = "https://authgate.local/"

// Ошибки создания и использования Validator.
var (
	ErrUnknownForm   = errors.New("validation: unknown form")
	ErrSchemaCompile = errors.New("validation: schema compile failed")
)

type compiledForm struct {
	form   Form
	schema *jsonschema.Schema
	rank   map[string]int
}

// Validator хранит скомпилированные схемы форм. После создания только читается
// и безопасен для конкурентного использования.
type Validator struct {
	forms   map[string]compiledForm
	printer *message.Printer
}

// NewValidator компилирует схемы переданных форм. Без аргументов
// используются встроенные формы SignIn и SignUp.
func NewValidator(forms ...Form) (*Validator, error) {
	if len(forms) == 0 {
		forms = []Form{SignIn, SignUp}
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()

	v := &Validator{
		forms:   make(map[string]compiledForm, len(forms)),
		printer: message.NewPrinter(language.English),
	}

	for _, f := range forms {
		data, err := schemaFS.ReadFile(f.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSchemaCompile, f.Name, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSchemaCompile, f.Name, err)
		}

		url := schemaBaseURL + f.SchemaFile
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSchemaCompile, f.Name, err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSchemaCompile, f.Name, err)
		}

		rank := make(map[string]int, len(f.FieldOrder))
		for i, field := range f.FieldOrder {
			rank[field] = i
		}
		v.forms[f.Name] = compiledForm{form: f, schema: sch, rank: rank}
	}

	return v, nil
}

// Validate проверяет input по форме name. Возвращает nil или
// *apperrors.ValidationFailure с нарушениями в порядке FieldOrder.
// Неизвестная форма: ошибка программиста, возвращается ErrUnknownForm.
func (v *Validator) Validate(name string, input map[string]any) error {
	cf, ok := v.forms[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownForm, name)
	}

	var issues []apperrors.Issue

	// Схема ожидает JSON-значение: nil-карта означает пустой объект.
	var doc any = input
	if input == nil {
		doc = map[string]any{}
	}

	if err := cf.schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return apperrors.NewOpaqueFailure(apperrors.ErrInternalUnexpected, "сбой проверки схемы", err)
		}
		issues = v.collect(cf.form, ve, issues)
		sortIssues(issues, cf.rank)
	}

	for _, refine := range cf.form.Refine {
		issues = append(issues, refine(input)...)
	}

	if len(issues) == 0 {
		return nil
	}
	return apperrors.NewValidationFailure(issues...)
}

// collect обходит дерево ошибок и превращает листья в нарушения.
func (v *Validator) collect(form Form, ve *jsonschema.ValidationError, out []apperrors.Issue) []apperrors.Issue {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			out = v.collect(form, cause, out)
		}
		return out
	}

	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		// required сообщается на уровне объекта: путь дополняется именем свойства.
		for _, prop := range k.Missing {
			out = append(out, v.issue(form, appendPath(ve.InstanceLocation, prop), "required", ve.ErrorKind))
		}
	case *kind.AdditionalProperties:
		for _, prop := range k.Properties {
			out = append(out, v.issue(form, appendPath(ve.InstanceLocation, prop), "additionalProperties", ve.ErrorKind))
		}
	default:
		keyword := ""
		if kp := ve.ErrorKind.KeywordPath(); len(kp) > 0 {
			keyword = kp[len(kp)-1]
		}
		out = append(out, v.issue(form, ve.InstanceLocation, keyword, ve.ErrorKind))
	}
	return out
}

// issue подбирает сообщение: "<путь>.<keyword>", затем "<путь>",
// затем локализованный текст самой библиотеки.
func (v *Validator) issue(form Form, path []string, keyword string, k jsonschema.ErrorKind) apperrors.Issue {
	key := apperrors.Issue{Path: path}.Key()

	msg, ok := form.Messages[key+"."+keyword]
	if !ok {
		msg, ok = form.Messages[key]
	}
	if !ok {
		msg = k.LocalizedString(v.printer)
	}

	return apperrors.Issue{Path: path, Message: msg}
}

func appendPath(base []string, elem string) []string {
	path := make([]string, 0, len(base)+1)
	path = append(path, base...)
	return append(path, elem)
}

// sortIssues упорядочивает нарушения по рангу первого сегмента пути.
// Порядок внутри одного поля сохраняется: библиотека обходит свойства
// объекта в порядке карты, а ключевые слова одного значения стабильно.
func sortIssues(issues []apperrors.Issue, rank map[string]int) {
	rankOf := func(i apperrors.Issue) int {
		if len(i.Path) == 0 {
			return -1
		}
		if r, ok := rank[i.Path[0]]; ok {
			return r
		}
		return len(rank)
	}
	sort.SliceStable(issues, func(a, b int) bool {
		ra, rb := rankOf(issues[a]), rankOf(issues[b])
		if ra != rb {
			return ra < rb
		}
		if ra == len(rank) {
			return issues[a].Key() < issues[b].Key()
		}
		return false
	})
}
