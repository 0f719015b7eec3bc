package jsonfield

import (
	"strconv"
	"strings"
)

// RenderEditor returns the admin markup for a field: the textarea holding
// the JSON text and the container the editor widget mounts into. The
// widget writes every edit back into the textarea, so the form posts the
// full updated text. An empty value shows cfg.DefaultValue. Nothing is
// rendered without both an id and a name.
func RenderEditor(cfg FieldConfig, id, name, value string) string {
	if id == "" || name == "" {
		return ""
	}
	if value == "" {
		value = cfg.DefaultValue
	}

	p := DefaultHTMLFormatter.classPrefix()
	var b strings.Builder
	b.WriteString(`<textarea id="` + esc(id) + `" class="` + p + `-data" name="` + esc(name) + `">`)
	b.WriteString(esc(value))
	b.WriteString(`</textarea>`)
	b.WriteString(`<div id="` + esc(id) + `-editor" class="` + p + `-editor" data-editor-mode="` +
		esc(string(cfg.editorMode())) + `"`)
	if cfg.EditorHeight > 0 {
		b.WriteString(` data-editor-height="` + strconv.Itoa(cfg.EditorHeight) + `"`)
	}
	b.WriteString(`></div>`)
	return b.String()
}

func esc(s string) string {
	return escapeText(s).String()
}
