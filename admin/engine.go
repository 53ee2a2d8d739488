package admin

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/apperror"
	"portfolio/models"
	"portfolio/store"
)

type listCell struct {
	Field    *Field
	Display  string
	Editable bool
	Input    string
	Checked  bool
	Error    string
}

type listRow struct {
	ID    uint
	Label string
	Cells []listCell
}

type filterOption struct {
	Label  string
	URL    string
	Active bool
}

type listFilter struct {
	Label   string
	Options []filterOption
}

func (a *AdminModule) entity(c *gin.Context) (*EntityAdmin, bool) {
	e, ok := a.registry.Get(c.Param("entity"))
	if !ok {
		a.renderError(c, http.StatusNotFound, fmt.Sprintf("There is no section named %q.", c.Param("entity")))
		return nil, false
	}
	return e, true
}

func (a *AdminModule) fields(e *EntityAdmin) ([]*Field, error) {
	sch, err := a.store.Schema(e.New())
	if err != nil {
		return nil, err
	}
	return formFields(e, sch), nil
}

func (a *AdminModule) canAdd(ctx context.Context, e *EntityAdmin) (bool, error) {
	if e.CanAdd == nil {
		return true, nil
	}
	return e.CanAdd(ctx, a.store)
}

func (a *AdminModule) list(c *gin.Context) {
	e, ok := a.entity(c)
	if !ok {
		return
	}
	a.renderList(c, e, http.StatusOK, nil)
}

func (a *AdminModule) renderList(c *gin.Context, e *EntityAdmin, status int, rowErrors map[uint]map[string]string) {
	ctx := c.Request.Context()
	fields, err := a.fields(e)
	if err != nil {
		a.fail(c, err)
		return
	}
	byName := make(map[string]*Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	filters, active := buildFilters(c.Request.URL, e, byName)

	rows := e.NewSlice()
	if err := a.store.Find(ctx, rows, active); err != nil {
		a.fail(c, err)
		return
	}
	canAdd, err := a.canAdd(ctx, e)
	if err != nil {
		a.fail(c, err)
		return
	}

	var columns []*Field
	for _, name := range e.ListDisplay {
		if f, ok := byName[name]; ok {
			columns = append(columns, f)
		}
	}

	rv := reflect.ValueOf(rows).Elem()
	out := make([]listRow, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Addr()
		row := listRow{
			ID:    item.Interface().(models.Entity).GetID(),
			Label: fmt.Sprint(item.Elem().Interface()),
		}
		for _, f := range columns {
			fv := f.schema.ReflectValueOf(ctx, item)
			cell := listCell{Field: f, Display: displayValue(fv, f.Kind)}
			if e.isEditable(f.Name) {
				cell.Editable = true
				if f.Kind == kindCheckbox {
					cell.Checked = fv.Bool()
				} else {
					cell.Input = inputValue(fv, f.Kind)
				}
				cell.Error = rowErrors[row.ID][f.Name]
			}
			row.Cells = append(row.Cells, cell)
		}
		out = append(out, row)
	}

	a.render(c, status, "admin/list.html", gin.H{
		"Title":    "Select " + e.Label,
		"Entity":   e,
		"Columns":  columns,
		"Rows":     out,
		"Filters":  filters,
		"CanAdd":   canAdd,
		"Editable": len(e.ListEditable) > 0,
		"HasError": len(rowErrors) > 0,
		"Action":   c.Request.URL.RequestURI(),
	})
}

// buildFilters returns the sidebar filters of e and the exact-match column
// conditions selected in the query string. Unknown values are ignored.
func buildFilters(u *url.URL, e *EntityAdmin, byName map[string]*Field) ([]listFilter, map[string]any) {
	query := u.Query()
	active := map[string]any{}
	var filters []listFilter

	for _, name := range e.ListFilter {
		f, ok := byName[name]
		if !ok {
			continue
		}

		var choices []models.Choice
		switch f.Kind {
		case kindCheckbox:
			choices = []models.Choice{{Value: "1", Label: "Yes"}, {Value: "0", Label: "No"}}
		case kindSelect:
			choices = f.Choices
		default:
			continue
		}

		current := query.Get(name)
		lf := listFilter{Label: f.Label}
		lf.Options = append(lf.Options, filterOption{Label: "All", URL: withParam(u, name, ""), Active: current == ""})
		for _, ch := range choices {
			selected := current == ch.Value
			if selected {
				if f.Kind == kindCheckbox {
					active[f.schema.DBName] = ch.Value == "1"
				} else {
					active[f.schema.DBName] = ch.Value
				}
			}
			lf.Options = append(lf.Options, filterOption{Label: ch.Label, URL: withParam(u, name, ch.Value), Active: selected})
		}
		filters = append(filters, lf)
	}
	return filters, active
}

func withParam(u *url.URL, key, value string) string {
	q := u.Query()
	if value == "" {
		q.Del(key)
	} else {
		q.Set(key, value)
	}
	if len(q) == 0 {
		return u.Path
	}
	return u.Path + "?" + q.Encode()
}

// listUpdate saves the inline-editable columns of the rows named in "ids".
// Inputs are named "<id>-<field>".
func (a *AdminModule) listUpdate(c *gin.Context) {
	e, ok := a.entity(c)
	if !ok {
		return
	}
	if len(e.ListEditable) == 0 {
		a.renderError(c, http.StatusMethodNotAllowed, e.Label+" cannot be edited from the list.")
		return
	}
	ctx := c.Request.Context()

	all, err := a.fields(e)
	if err != nil {
		a.fail(c, err)
		return
	}
	var editable []*Field
	for _, f := range all {
		if e.isEditable(f.Name) {
			editable = append(editable, f)
		}
	}

	rowErrors := map[uint]map[string]string{}
	changed := 0
	for _, raw := range c.PostFormArray("ids") {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			continue
		}
		m := blank(e)
		if err := a.store.Get(ctx, m, uint(id)); err != nil {
			a.fail(c, err)
			return
		}

		_, errs := bindForm(c, editable, m, raw+"-", nil)
		if len(errs) == 0 {
			err := a.store.Update(ctx, m)
			errs = apperror.FieldErrors(err)
			if errs == nil && err != nil {
				a.fail(c, err)
				return
			}
		}
		if len(errs) > 0 {
			rowErrors[uint(id)] = errs
			continue
		}
		changed++
	}

	if changed > 0 {
		a.pages.Flush()
	}
	if len(rowErrors) > 0 {
		a.renderList(c, e, http.StatusBadRequest, rowErrors)
		return
	}

	a.log.Info("inline edit", zap.String("entity", e.Name), zap.Int("rows", changed))
	a.flash(c, fmt.Sprintf("%d %s changed successfully.", changed, e.Label))
	c.Redirect(http.StatusFound, c.Request.URL.RequestURI())
}

func (a *AdminModule) allowAdd(c *gin.Context, e *EntityAdmin) bool {
	canAdd, err := a.canAdd(c.Request.Context(), e)
	if err != nil {
		a.fail(c, err)
		return false
	}
	if !canAdd {
		a.renderError(c, http.StatusForbidden, "Adding "+e.Label+" is disabled.")
		return false
	}
	return true
}

func (a *AdminModule) addForm(c *gin.Context) {
	e, ok := a.entity(c)
	if !ok || !a.allowAdd(c, e) {
		return
	}
	a.renderForm(c, e, e.New(), nil, nil, http.StatusOK)
}

func (a *AdminModule) addPost(c *gin.Context) {
	e, ok := a.entity(c)
	if !ok || !a.allowAdd(c, e) {
		return
	}
	a.saveForm(c, e, e.New(), true)
}

func (a *AdminModule) load(c *gin.Context, e *EntityAdmin) (any, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		a.renderError(c, http.StatusNotFound, "Invalid id.")
		return nil, false
	}
	m := blank(e)
	if err := a.store.Get(c.Request.Context(), m, uint(id)); err != nil {
		a.fail(c, err)
		return nil, false
	}
	return m, true
}

func (a *AdminModule) editForm(c *gin.Context) {
	e, ok := a.entity(c)
	if !ok {
		return
	}
	m, ok := a.load(c, e)
	if !ok {
		return
	}
	a.renderForm(c, e, m, nil, nil, http.StatusOK)
}

func (a *AdminModule) editPost(c *gin.Context) {
	e, ok := a.entity(c)
	if !ok {
		return
	}
	m, ok := a.load(c, e)
	if !ok {
		return
	}
	a.saveForm(c, e, m, false)
}

func (a *AdminModule) saveForm(c *gin.Context, e *EntityAdmin, m any, adding bool) {
	ctx := c.Request.Context()
	fields, err := a.fields(e)
	if err != nil {
		a.fail(c, err)
		return
	}

	upload := func(dir string, fh *multipart.FileHeader) (string, error) {
		return a.media.Save(ctx, dir, fh)
	}
	assocs, errs := bindForm(c, fields, m, "", upload)
	if len(errs) > 0 {
		a.renderForm(c, e, m, assocs, errs, http.StatusBadRequest)
		return
	}

	err = a.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if adding {
			err = tx.Create(ctx, m)
		} else {
			err = tx.Update(ctx, m)
		}
		if err != nil {
			return err
		}
		for name, ids := range assocs {
			if err := tx.SetAssociation(ctx, m, name, ids); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && adding {
		// The insert was rolled back; the form is still an add form.
		resetID(m)
	}
	if fieldErrs := apperror.FieldErrors(err); fieldErrs != nil {
		a.renderForm(c, e, m, assocs, fieldErrs, http.StatusBadRequest)
		return
	}
	if err != nil {
		a.fail(c, err)
		return
	}

	a.pages.Flush()

	id := m.(models.Entity).GetID()
	verb := "changed"
	if adding {
		verb = "added"
	}
	a.log.Info("entity saved", zap.String("entity", e.Name), zap.Uint("id", id), zap.String("action", verb))
	a.flash(c, fmt.Sprintf("%q was %s successfully.", fmt.Sprint(reflect.ValueOf(m).Elem().Interface()), verb))

	if c.PostForm("_continue") != "" {
		c.Redirect(http.StatusFound, fmt.Sprintf("/admin/%s/%d", e.Name, id))
		return
	}
	c.Redirect(http.StatusFound, "/admin/"+e.Name+"/")
}

func (a *AdminModule) renderForm(c *gin.Context, e *EntityAdmin, m any, assocs map[string][]uint, errs map[string]string, status int) {
	ctx := c.Request.Context()
	fields, err := a.fields(e)
	if err != nil {
		a.fail(c, err)
		return
	}
	fill(ctx, fields, m, a.media.URL)

	for _, f := range fields {
		f.Error = errs[f.Name]
		if f.Kind != kindMulti {
			continue
		}
		if err := a.loadOptions(ctx, f); err != nil {
			a.fail(c, err)
			return
		}
		if ids, ok := assocs[f.assoc]; ok {
			f.Selected = map[string]bool{}
			for _, id := range ids {
				f.Selected[strconv.FormatUint(uint64(id), 10)] = true
			}
		}
	}

	id := m.(models.Entity).GetID()
	action := "/admin/" + e.Name + "/add"
	title := "Add " + e.Label
	if id != 0 {
		action = fmt.Sprintf("/admin/%s/%d", e.Name, id)
		title = "Change " + fmt.Sprint(reflect.ValueOf(m).Elem().Interface())
	}

	a.render(c, status, "admin/form.html", gin.H{
		"Title":     title,
		"Entity":    e,
		"Fields":    fields,
		"ID":        id,
		"Action":    action,
		"HasErrors": len(errs) > 0,
	})
}

// loadOptions fills the choices of a many-to-many field from the related
// table.
func (a *AdminModule) loadOptions(ctx context.Context, f *Field) error {
	rel, ok := f.schema.Schema.Relationships.Relations[f.assoc]
	if !ok {
		return apperror.NewInternal("unknown association "+f.assoc, nil)
	}
	rows := reflect.New(reflect.SliceOf(rel.FieldSchema.ModelType))
	if err := a.store.Find(ctx, rows.Interface(), nil); err != nil {
		return err
	}

	list := rows.Elem()
	f.Choices = make([]models.Choice, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		item := list.Index(i)
		ent, ok := item.Interface().(models.Entity)
		if !ok {
			continue
		}
		f.Choices = append(f.Choices, models.Choice{
			Value: strconv.FormatUint(uint64(ent.GetID()), 10),
			Label: fmt.Sprint(item.Interface()),
		})
	}
	return nil
}

func (a *AdminModule) deletePost(c *gin.Context) {
	e, ok := a.entity(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		a.renderError(c, http.StatusNotFound, "Invalid id.")
		return
	}

	m := blank(e)
	if err := a.store.Delete(c.Request.Context(), m, uint(id)); err != nil {
		a.fail(c, err)
		return
	}
	a.pages.Flush()

	a.log.Info("entity deleted", zap.String("entity", e.Name), zap.Uint64("id", id))
	a.flash(c, fmt.Sprintf("%q was deleted successfully.", fmt.Sprint(reflect.ValueOf(m).Elem().Interface())))
	c.Redirect(http.StatusFound, "/admin/"+e.Name+"/")
}
