// Package inspector renders component structs as text using their
// `inspect` struct tags.
package inspector

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/pthm-cable/universe25/components"
)

// Widget types for rendering fields.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetBool
	WidgetSkip
)

// barWidth is the number of cells in a rendered bar.
const barWidth = 20

// Field represents a component field with rendering hints.
type Field struct {
	Name    string
	Value   any
	Widget  Widget
	Options map[string]string
}

// ParseTag parses an inspect struct tag.
// Format: `inspect:"widget[,option:value...]"`
// Examples:
//
//	`inspect:"bar,max:100"`
//	`inspect:"label,fmt:%.1f"`
//	`inspect:"skip"`
func ParseTag(tag string) (Widget, map[string]string) {
	options := make(map[string]string)
	if tag == "" {
		return WidgetAuto, options
	}

	parts := strings.Split(tag, ",")
	var widget Widget
	switch strings.TrimSpace(parts[0]) {
	case "label":
		widget = WidgetLabel
	case "bar":
		widget = WidgetBar
	case "bool":
		widget = WidgetBool
	case "skip":
		widget = WidgetSkip
	default:
		widget = WidgetAuto
	}

	for _, part := range parts[1:] {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) == 2 {
			options[kv[0]] = kv[1]
		}
	}
	return widget, options
}

// ExtractFields uses reflection to extract the visible fields of a component.
func ExtractFields(component any) []Field {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	var fields []Field
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		widget, options := ParseTag(sf.Tag.Get("inspect"))
		if widget == WidgetSkip {
			continue
		}
		fv := v.Field(i)
		if widget == WidgetAuto {
			widget = autoDetectWidget(fv)
		}

		fields = append(fields, Field{
			Name:    sf.Name,
			Value:   fv.Interface(),
			Widget:  widget,
			Options: options,
		})
	}
	return fields
}

func autoDetectWidget(v reflect.Value) Widget {
	if v.Kind() == reflect.Bool {
		return WidgetBool
	}
	return WidgetLabel
}

// FormatValue formats a field value as a string.
func FormatValue(value any, fmtStr string) string {
	if fmtStr != "" {
		return fmt.Sprintf(fmtStr, value)
	}
	switch v := value.(type) {
	case float64:
		return fmt.Sprintf("%.2f", v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}

// GetMax returns the max option as a float, defaulting to 1.0.
func GetMax(options map[string]string) float64 {
	if s, ok := options["max"]; ok {
		if m, err := strconv.ParseFloat(s, 64); err == nil && m > 0 {
			return m
		}
	}
	return 1.0
}

// Bar renders value/max as a fixed-width text bar.
func Bar(value, maxVal float64) string {
	frac := value / maxVal
	frac = max(0, min(1, frac))
	filled := int(frac*barWidth + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

// RenderField formats one field as "name value".
func RenderField(f Field) string {
	switch f.Widget {
	case WidgetBar:
		if v, ok := f.Value.(float64); ok {
			return fmt.Sprintf("%-12s %s %6.2f", f.Name, Bar(v, GetMax(f.Options)), v)
		}
	case WidgetBool:
		if v, ok := f.Value.(bool); ok {
			mark := "no"
			if v {
				mark = "yes"
			}
			return fmt.Sprintf("%-12s %s", f.Name, mark)
		}
	}
	return fmt.Sprintf("%-12s %s", f.Name, FormatValue(f.Value, f.Options["fmt"]))
}

// WriteMouse prints every component of a mouse.
func WriteMouse(w io.Writer, s components.MouseState) error {
	sections := []struct {
		name      string
		component any
	}{
		{"Identity", s.Identity},
		{"Position", s.Position},
		{"Body", s.Body},
		{"Traits", s.Traits},
		{"Mind", s.Mind},
		{"Reproduction", s.Reproduction},
	}

	for _, sec := range sections {
		if _, err := fmt.Fprintf(w, "%s\n", sec.name); err != nil {
			return err
		}
		for _, f := range ExtractFields(sec.component) {
			if _, err := fmt.Fprintf(w, "  %s\n", RenderField(f)); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "Children     %d\n", len(s.Reproduction.Children))
	return err
}
