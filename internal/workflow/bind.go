package workflow

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z][A-Za-z0-9_]*)\}`)

// Placeholders returns the sorted, distinct ${Name} placeholders referenced by
// task resources and string parameter values.
func (d *Definition) Placeholders() []string {
	seen := make(map[string]struct{})
	collect := func(s string) string {
		for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
			seen[m[1]] = struct{}{}
		}
		return s
	}

	for _, s := range d.States {
		collect(s.Resource)
		rewrite(s.Parameters, collect)
	}

	return slices.Sorted(maps.Keys(seen))
}

// Bind returns a copy of d with every placeholder replaced from values.
// The receiver is left untouched. Bind fails if d is invalid, if any
// placeholder has no value, or if a bound task resource is not an ARN.
func (d *Definition) Bind(values map[string]string) (*Definition, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range d.Placeholders() {
		if _, ok := values[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnboundPlaceholder, strings.Join(missing, ", "))
	}

	substitute := func(s string) string {
		return placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
			return values[m[2:len(m)-1]]
		})
	}

	bound := &Definition{
		Comment:        d.Comment,
		StartAt:        d.StartAt,
		TimeoutSeconds: d.TimeoutSeconds,
		States:         make(map[string]State, len(d.States)),
	}

	for name, s := range d.States {
		s.Resource = substitute(s.Resource)
		s.Parameters = rewrite(s.Parameters, substitute)

		if s.Type == TypeTask && !strings.HasPrefix(s.Resource, "arn:") {
			return nil, fmt.Errorf("%w: state %q resource %q", ErrInvalidResource, name, s.Resource)
		}

		bound.States[name] = s
	}

	return bound, nil
}

// rewrite deep-copies params, applying fn to every string value.
func rewrite(params map[string]any, fn func(string) string) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = rewriteValue(v, fn)
	}
	return out
}

func rewriteValue(v any, fn func(string) string) any {
	switch v := v.(type) {
	case string:
		return fn(v)
	case map[string]any:
		return rewrite(v, fn)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = rewriteValue(item, fn)
		}
		return out
	default:
		return v
	}
}
