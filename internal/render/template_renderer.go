// Package render resolves conditional blocks and placeholders in deployment templates.
//
// Template grammar:
//
//	{{NAME}}                       placeholder, replaced by values["name"]
//	{{#IF:FLAG}} ... {{/IF:FLAG}}  conditional block, kept when values["flag"] is truthy
//
// Flag names are restricted to [A-Z_]+. Blocks nest and a disabled block is dropped
// without evaluating the blocks inside it.
package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

const (
	closeMarkerPrefix = "{{/IF:"
	markerSuffix      = "}}"
)

var (
	openMarkerRegExp = regexp.MustCompile(`\{\{#IF:([A-Z_]+)\}\}`)
	anyMarkerRegExp  = regexp.MustCompile(`\{\{([#/])IF:([A-Z_]+)\}\}`)
)

type Option func(*Renderer)

// WithStrict rejects templates with unmatched, crossing or self-nested markers
// before producing any output.
func WithStrict() Option {
	return func(r *Renderer) {
		r.strict = true
	}
}

// WithMaxDepth limits conditional nesting. Zero means unlimited.
func WithMaxDepth(depth int) Option {
	return func(r *Renderer) {
		r.maxDepth = depth
	}
}

type Renderer struct {
	strict   bool
	maxDepth int
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders template with the permissive default renderer.
func Render(template string, values Values) string {
	// the permissive renderer without a depth limit has no failure path
	out, _ := NewRenderer().Render(template, values)
	return out
}

func (r *Renderer) Render(template string, values Values) (string, error) {
	if r.strict {
		if err := validateMarkers(template); err != nil {
			return "", err
		}
	}

	normalized := values.normalized()

	resolved, err := r.resolveBlocks(template, normalized, 0)
	if err != nil {
		return "", err
	}

	return placeholderReplacer(normalized).Replace(resolved), nil
}

// resolveBlocks runs passes over content until no conditional block is left to resolve.
func (r *Renderer) resolveBlocks(content string, values Values, depth int) (string, error) {
	if r.maxDepth > 0 && depth > r.maxDepth {
		return "", &TemplateError{Err: ErrDepthExceeded, Offset: -1, Message: fmt.Sprintf("nesting deeper than %d", r.maxDepth)}
	}

	for {
		next, resolvedAny, err := r.resolvePass(content, values, depth)
		if err != nil {
			return "", err
		}
		if !resolvedAny {
			return next, nil
		}
		content = next
	}
}

// resolvePass resolves every outermost block of content once. A block pairs with the nearest close marker of
// its flag, so deep nesting of one flag costs quadratic time; strict mode rejects such templates up front.
func (r *Renderer) resolvePass(content string, values Values, depth int) (string, bool, error) {
	var out strings.Builder
	out.Grow(len(content))

	resolvedAny := false
	pos := 0
	for pos < len(content) {
		loc := openMarkerRegExp.FindStringSubmatchIndex(content[pos:])
		if loc == nil {
			break
		}

		openStart, openEnd := pos+loc[0], pos+loc[1]
		flag := content[pos+loc[2] : pos+loc[3]]
		closeMarker := closeMarkerPrefix + flag + markerSuffix

		closeRel := strings.Index(content[openEnd:], closeMarker)
		if closeRel < 0 {
			// unmatched open marker stays literal
			out.WriteString(content[pos:openEnd])
			pos = openEnd
			continue
		}
		closeStart := openEnd + closeRel

		out.WriteString(content[pos:openStart])
		if isTruthy(values[strings.ToLower(flag)]) {
			inner, err := r.resolveBlocks(content[openEnd:closeStart], values, depth+1)
			if err != nil {
				return "", false, err
			}
			out.WriteString(inner)
		}

		pos = closeStart + len(closeMarker)
		resolvedAny = true
	}
	out.WriteString(content[pos:])

	return out.String(), resolvedAny, nil
}

func placeholderReplacer(values Values) *strings.Replacer {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		value := values[key]
		if value == nil {
			continue
		}
		if _, isFlag := value.(bool); isFlag {
			continue
		}

		str, err := cast.ToStringE(value)
		if err != nil {
			continue
		}
		pairs = append(pairs, "{{"+strings.ToUpper(key)+"}}", str)
	}

	return strings.NewReplacer(pairs...)
}

type openMarker struct {
	flag   string
	offset int
}

func validateMarkers(template string) error {
	matches := anyMarkerRegExp.FindAllStringSubmatchIndex(template, -1)
	stack := make([]openMarker, 0, len(matches))

	for _, match := range matches {
		offset := match[0]
		kind := template[match[2]:match[3]]
		flag := template[match[4]:match[5]]

		if kind == "#" {
			for _, open := range stack {
				if open.flag == flag {
					return &TemplateError{Err: ErrMalformedTemplate, Flag: flag, Offset: offset, Message: "block nested inside a block with the same flag"}
				}
			}
			stack = append(stack, openMarker{flag: flag, offset: offset})
			continue
		}

		if len(stack) == 0 {
			return &TemplateError{Err: ErrMalformedTemplate, Flag: flag, Offset: offset, Message: "close marker without open marker"}
		}
		top := stack[len(stack)-1]
		if top.flag != flag {
			return &TemplateError{Err: ErrMalformedTemplate, Flag: flag, Offset: offset, Message: fmt.Sprintf("close marker crosses open block %q", top.flag)}
		}
		stack = stack[:len(stack)-1]
	}

	if len(stack) > 0 {
		unclosed := stack[len(stack)-1]
		return &TemplateError{Err: ErrMalformedTemplate, Flag: unclosed.flag, Offset: unclosed.offset, Message: "open marker without close marker"}
	}

	return nil
}
