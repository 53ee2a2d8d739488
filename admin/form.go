package admin

import (
	"context"
	"fmt"
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/schema"

	"portfolio/models"
)

// Input kinds rendered by admin/form.html.
const (
	kindText     = "text"
	kindTextarea = "textarea"
	kindCheckbox = "checkbox"
	kindInt      = "number"
	kindDecimal  = "decimal"
	kindDate     = "date"
	kindDateTime = "datetime-local"
	kindSelect   = "select"
	kindFile     = "file"
	kindMulti    = "multiselect"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

// Field is one form input or list cell.
type Field struct {
	Name      string
	Label     string
	Kind      string
	Value     string
	Checked   bool
	Choices   []models.Choice
	Selected  map[string]bool
	Required  bool
	ReadOnly  bool
	MaxLength int
	UploadTo  string
	URL       string
	Source    string
	Error     string

	schema *schema.Field
	assoc  string
}

var (
	timeType = reflect.TypeOf(time.Time{})
	enumType = reflect.TypeOf((*models.Enum)(nil)).Elem()
)

// formFields describes the editable and read-only fields of the entity in
// declaration order.
func formFields(e *EntityAdmin, sch *schema.Schema) []*Field {
	var fields []*Field
	for _, sf := range sch.Fields {
		name := jsonName(sf)
		if name == "" || name == "id" {
			continue
		}

		if sf.DBName == "" {
			assoc, ok := e.ManyToMany[name]
			if !ok || assoc != sf.Name {
				continue
			}
			fields = append(fields, &Field{
				Name:   name,
				Label:  humanize(name),
				Kind:   kindMulti,
				schema: sf,
				assoc:  assoc,
			})
			continue
		}

		f := &Field{
			Name:      name,
			Label:     humanize(name),
			Kind:      inputKind(sf),
			Required:  strings.Contains(sf.Tag.Get("validate"), "required"),
			ReadOnly:  e.isReadOnly(name),
			MaxLength: sf.Size,
			UploadTo:  sf.Tag.Get("upload"),
			Source:    e.Prepopulated[name],
			schema:    sf,
		}
		if f.Kind == kindSelect {
			f.Choices = choicesOf(sf.FieldType)
		}
		fields = append(fields, f)
	}
	return fields
}

func inputKind(sf *schema.Field) string {
	t := sf.FieldType
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case sf.Tag.Get("upload") != "":
		return kindFile
	case t.Implements(enumType) || reflect.PointerTo(t).Implements(enumType):
		return kindSelect
	case t == timeType:
		if sf.Tag.Get("admin") == "datetime" {
			return kindDateTime
		}
		return kindDate
	}
	switch t.Kind() {
	case reflect.Bool:
		return kindCheckbox
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return kindInt
	case reflect.Float32, reflect.Float64:
		return kindDecimal
	}
	if strings.EqualFold(sf.TagSettings["TYPE"], "text") {
		return kindTextarea
	}
	return kindText
}

func choicesOf(t reflect.Type) []models.Choice {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if e, ok := reflect.New(t).Elem().Interface().(models.Enum); ok {
		return e.Choices()
	}
	return nil
}

// fill copies the current values of m into the fields.
func fill(ctx context.Context, fields []*Field, m any, mediaURL func(string) string) {
	rv := reflect.ValueOf(m)
	for _, f := range fields {
		fv := f.schema.ReflectValueOf(ctx, rv)
		switch f.Kind {
		case kindCheckbox:
			f.Checked = fv.Bool()
		case kindMulti:
			f.Selected = map[string]bool{}
			for i := 0; i < fv.Len(); i++ {
				if e, ok := fv.Index(i).Interface().(models.Entity); ok {
					f.Selected[strconv.FormatUint(uint64(e.GetID()), 10)] = true
				}
			}
		case kindFile:
			f.Value = fv.String()
			if mediaURL != nil {
				f.URL = mediaURL(f.Value)
			}
		default:
			f.Value = inputValue(fv, f.Kind)
		}
	}
}

func inputValue(v reflect.Value, kind string) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if t, ok := v.Interface().(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		if kind == kindDateTime {
			return t.Local().Format(dateTimeLayout)
		}
		return t.Format(dateLayout)
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', 2, 64)
	}
	return fmt.Sprint(v.Interface())
}

// displayValue renders a list cell.
func displayValue(v reflect.Value, kind string) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if e, ok := v.Interface().(models.Enum); ok {
		return models.ChoiceLabel(e, v.String())
	}
	if t, ok := v.Interface().(time.Time); ok {
		if t.IsZero() {
			return "-"
		}
		if kind == kindDateTime {
			return t.Local().Format("Jan 2, 2006, 3:04 p.m.")
		}
		return t.Format("Jan 2, 2006")
	}
	if v.Kind() == reflect.Bool {
		if v.Bool() {
			return "Yes"
		}
		return "No"
	}
	if s := fmt.Sprint(v.Interface()); s != "" {
		return s
	}
	return "-"
}

// uploader stores one uploaded file and returns the value to keep.
type uploader func(dir string, fh *multipart.FileHeader) (string, error)

// bindForm sets the non read-only fields of m from the submitted form. Input
// names are prefixed with prefix (used by inline list editing). It returns
// the selected ids of many-to-many fields and the per-field parse errors.
func bindForm(c *gin.Context, fields []*Field, m any, prefix string, upload uploader) (map[string][]uint, map[string]string) {
	ctx := c.Request.Context()
	rv := reflect.ValueOf(m)
	assocs := map[string][]uint{}
	errs := map[string]string{}

	for _, f := range fields {
		if f.ReadOnly {
			continue
		}
		key := prefix + f.Name
		fv := f.schema.ReflectValueOf(ctx, rv)

		switch f.Kind {
		case kindMulti:
			var ids []uint
			for _, raw := range c.PostFormArray(key) {
				id, err := strconv.ParseUint(raw, 10, 64)
				if err != nil {
					errs[f.Name] = "Select a valid choice."
					continue
				}
				ids = append(ids, uint(id))
			}
			assocs[f.assoc] = ids
		case kindFile:
			if c.PostForm(key+"-clear") != "" {
				fv.SetString("")
			}
			fh, err := c.FormFile(key)
			if err != nil || fh == nil {
				continue
			}
			stored, err := upload(f.UploadTo, fh)
			if err != nil {
				errs[f.Name] = "Upload failed: " + err.Error()
				continue
			}
			fv.SetString(stored)
		case kindCheckbox:
			fv.SetBool(c.PostForm(key) != "")
		default:
			if msg := setValue(fv, f.Kind, strings.TrimSpace(c.PostForm(key))); msg != "" {
				errs[f.Name] = msg
			}
		}
	}
	return assocs, errs
}

// setValue parses raw into v according to kind. It returns a form error
// message or "".
func setValue(v reflect.Value, kind, raw string) string {
	if v.Kind() == reflect.Pointer {
		if raw == "" {
			v.Set(reflect.Zero(v.Type()))
			return ""
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}

	switch kind {
	case kindDate, kindDateTime:
		if raw == "" {
			v.Set(reflect.ValueOf(time.Time{}))
			return ""
		}
		layout := dateLayout
		if kind == kindDateTime {
			layout = dateTimeLayout
		}
		t, err := time.ParseInLocation(layout, raw, time.Local)
		if err != nil {
			if kind == kindDateTime {
				return "Enter a valid date/time."
			}
			return "Enter a valid date."
		}
		v.Set(reflect.ValueOf(t))
	case kindInt:
		if raw == "" {
			v.SetInt(0)
			return ""
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "Enter a whole number."
		}
		v.SetInt(n)
	case kindDecimal:
		if raw == "" {
			v.SetFloat(0)
			return ""
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "Enter a number."
		}
		v.SetFloat(n)
	default:
		v.SetString(raw)
	}
	return ""
}

func jsonName(sf *schema.Field) string {
	name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.DBName
	}
	return name
}

var acronyms = map[string]string{"url": "URL", "id": "ID", "gpa": "GPA", "ip": "IP"}

// humanize turns a json name into a label: "field_of_study" -> "Field of study".
func humanize(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if a, ok := acronyms[w]; ok {
			words[i] = a
		} else if i == 0 && w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func newSliceOf(m any) any {
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return reflect.New(reflect.SliceOf(t)).Interface()
}

// resetID clears the primary key of m.
func resetID(m any) {
	if id := reflect.ValueOf(m).Elem().FieldByName("ID"); id.IsValid() && id.CanSet() {
		id.SetUint(0)
	}
}

// blank returns a zero value of the entity's type, without form defaults.
func blank(e *EntityAdmin) any {
	t := reflect.TypeOf(e.New())
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}
