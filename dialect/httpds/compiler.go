// Package httpds implements the Input Compiler and Execution Adapter for
// the HTTP data-source kind of spec.md §6: URL templating, method
// selection, and request-body construction. Like Document, HTTP exposes
// all five operation kinds (spec.md §4.1).
package httpds

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	subgraph "github.com/the-devoyage/subgraph-go"
	"github.com/the-devoyage/subgraph-go/config"
)

// RequestPlan is the compiled (method, url, headers, body?) descriptor of
// spec.md §6.
type RequestPlan struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    map[string]any // nil for Find*
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// buildURL substitutes {name} placeholders in rawURL, drawing values first
// from entityParams, then opParams, then query — per spec.md §6's stated
// precedence — and appends any unused query entries as a sorted,
// URL-encoded query string.
func buildURL(rawURL string, entityParams, opParams map[string]string, query map[string]any) (string, error) {
	params := make(map[string]string, len(entityParams)+len(opParams))
	for k, v := range entityParams {
		params[k] = v
	}
	for k, v := range opParams {
		params[k] = v
	}
	remaining := make(map[string]any, len(query))
	for k, v := range query {
		remaining[k] = v
	}

	var missing string
	result := placeholderRe.ReplaceAllStringFunc(rawURL, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := params[name]; ok {
			return url.PathEscape(v)
		}
		if v, ok := query[name]; ok {
			delete(remaining, name)
			return url.PathEscape(fmt.Sprint(v))
		}
		missing = name
		return m
	})
	if missing != "" {
		return "", fmt.Errorf("missing path parameter %q", missing)
	}

	if len(remaining) == 0 {
		return result, nil
	}
	keys := make([]string, 0, len(remaining))
	for k := range remaining {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := url.Values{}
	for _, k := range keys {
		vals.Set(k, fmt.Sprint(remaining[k]))
	}
	return result + "?" + vals.Encode(), nil
}

func resolvedURL(ds config.HTTPDataSource, entity config.Entity) string {
	if strings.HasPrefix(entity.URL, "http://") || strings.HasPrefix(entity.URL, "https://") {
		return entity.URL
	}
	return strings.TrimRight(ds.BaseURL, "/") + "/" + strings.TrimLeft(entity.URL, "/")
}

func headers(ds config.HTTPDataSource) map[string]string {
	out := make(map[string]string, len(ds.DefaultHeaders))
	for k, v := range ds.DefaultHeaders {
		out[k] = v
	}
	return out
}

func checkKnownFields(entity config.Entity, doc map[string]any) error {
	for k := range doc {
		if _, ok := entity.FieldByName(k); !ok {
			return subgraph.NewUnknownFieldError(entity.Name, k)
		}
	}
	return nil
}

func compileFind(entity config.Entity, ds config.HTTPDataSource, opParams map[string]string, query map[string]any) (*RequestPlan, error) {
	if err := checkKnownFields(entity, query); err != nil {
		return nil, err
	}
	u, err := buildURL(resolvedURL(ds, entity), entity.PathParams, opParams, query)
	if err != nil {
		return nil, subgraph.NewInvalidInputError(entity.Name, err.Error())
	}
	return &RequestPlan{Method: "GET", URL: u, Headers: headers(ds)}, nil
}

// CompileFindOne compiles a GET request for FindOne.
func CompileFindOne(entity config.Entity, ds config.HTTPDataSource, opParams map[string]string, query map[string]any) (*RequestPlan, error) {
	return compileFind(entity, ds, opParams, query)
}

// CompileFindMany compiles a GET request for FindMany. It is structurally
// identical to FindOne; the caller distinguishes single-item vs
// collection decoding of the JSON response.
func CompileFindMany(entity config.Entity, ds config.HTTPDataSource, opParams map[string]string, query map[string]any) (*RequestPlan, error) {
	return compileFind(entity, ds, opParams, query)
}

func stripVirtual(entity config.Entity, kind config.OperationKind, values map[string]any) map[string]any {
	body := make(map[string]any, len(values))
	for k, v := range values {
		f, ok := entity.FieldByName(k)
		if !ok || f.Virtual || f.ExcludedFromInput(kind) {
			continue
		}
		body[k] = v
	}
	return body
}

// CompileCreateOne compiles a POST request whose body is the entire
// values document.
func CompileCreateOne(entity config.Entity, ds config.HTTPDataSource, values map[string]any) (*RequestPlan, error) {
	if len(values) == 0 {
		return nil, subgraph.NewInvalidInputError(entity.Name, "values must not be empty")
	}
	if err := checkKnownFields(entity, values); err != nil {
		return nil, err
	}
	// Only entity-level path params are substituted; a placeholder with no
	// entity-level value is left in the URL as written.
	u := placeholderRe.ReplaceAllStringFunc(resolvedURL(ds, entity), func(m string) string {
		if v, ok := entity.PathParams[m[1:len(m)-1]]; ok {
			return url.PathEscape(v)
		}
		return m
	})
	return &RequestPlan{
		Method:  "POST",
		URL:     u,
		Headers: headers(ds),
		Body:    stripVirtual(entity, config.CreateOne, values),
	}, nil
}

func compileUpdate(entity config.Entity, ds config.HTTPDataSource, kind config.OperationKind, opParams map[string]string, query, values map[string]any) (*RequestPlan, error) {
	if len(query) == 0 {
		return nil, subgraph.NewInvalidInputError(entity.Name, "no filter provided")
	}
	if err := checkKnownFields(entity, query); err != nil {
		return nil, err
	}
	if err := checkKnownFields(entity, values); err != nil {
		return nil, err
	}
	u, err := buildURL(resolvedURL(ds, entity), entity.PathParams, opParams, query)
	if err != nil {
		return nil, subgraph.NewInvalidInputError(entity.Name, err.Error())
	}
	body := stripVirtual(entity, kind, values)
	for k := range query {
		delete(body, k)
	}
	method := "PUT"
	if entity.HTTPMethod != "" {
		method = entity.HTTPMethod
	}
	return &RequestPlan{Method: method, URL: u, Headers: headers(ds), Body: body}, nil
}

// CompileUpdateOne compiles a PUT (or entity.HTTPMethod) request whose
// body is values minus the query's keys.
func CompileUpdateOne(entity config.Entity, ds config.HTTPDataSource, opParams map[string]string, query, values map[string]any) (*RequestPlan, error) {
	return compileUpdate(entity, ds, config.UpdateOne, opParams, query, values)
}

// CompileUpdateMany compiles a PUT (or entity.HTTPMethod) request whose
// body is values minus the query's keys.
func CompileUpdateMany(entity config.Entity, ds config.HTTPDataSource, opParams map[string]string, query, values map[string]any) (*RequestPlan, error) {
	return compileUpdate(entity, ds, config.UpdateMany, opParams, query, values)
}
