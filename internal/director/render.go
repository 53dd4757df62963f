package director

import (
	"fmt"
	"strconv"
	"strings"
)

// Params maps placeholder names to values.
type Params map[string]any

// RenderError reports a malformed template or a missing parameter.
type RenderError struct {
	Offset int
	Reason string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template error at offset %d: %s", e.Offset, e.Reason)
}

// Render substitutes every placeholder in tmpl. Text outside placeholders is
// copied unchanged.
func Render(tmpl string, params Params) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(tmpl) {
			return "", &RenderError{Offset: i, Reason: "incomplete format"}
		}
		switch tmpl[i+1] {
		case '%':
			b.WriteByte('%')
			i++
			continue
		case '(':
		default:
			return "", &RenderError{Offset: i, Reason: fmt.Sprintf("unsupported format %q", tmpl[i:i+2])}
		}

		end := strings.IndexByte(tmpl[i+2:], ')')
		if end < 0 {
			return "", &RenderError{Offset: i, Reason: "unterminated placeholder"}
		}
		name := tmpl[i+2 : i+2+end]
		verbAt := i + 2 + end + 1
		if verbAt >= len(tmpl) {
			return "", &RenderError{Offset: i, Reason: fmt.Sprintf("placeholder %q has no conversion", name)}
		}
		value, ok := params[name]
		if !ok {
			return "", &RenderError{Offset: i, Reason: fmt.Sprintf("missing parameter %q", name)}
		}

		s, err := convert(tmpl[verbAt], value)
		if err != nil {
			return "", &RenderError{Offset: i, Reason: fmt.Sprintf("parameter %q: %v", name, err)}
		}
		b.WriteString(s)
		i = verbAt
	}
	return b.String(), nil
}

func convert(verb byte, value any) (string, error) {
	switch verb {
	case 's':
		return fmt.Sprint(value), nil
	case 'd':
		switch v := value.(type) {
		case int:
			return strconv.Itoa(v), nil
		case int32:
			return strconv.FormatInt(int64(v), 10), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case uint:
			return strconv.FormatUint(uint64(v), 10), nil
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return "", fmt.Errorf("%%d requires a number, got %q", v)
			}
			return strconv.Itoa(n), nil
		default:
			return "", fmt.Errorf("%%d requires a number, got %T", value)
		}
	default:
		return "", fmt.Errorf("unsupported conversion %q", verb)
	}
}
