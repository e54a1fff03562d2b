package http

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

func (r *Request) hasHeader(key string) bool {
	for k := range r.Headers {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// BuildRequest turns a templated request definition into a Request. headers
// are the file level headers sent with every request.
func BuildRequest(req *parser.Request, headers parser.Headers) (*Request, error) {
	r := NewRequest(strings.ToUpper(req.Method), req.URL)

	for _, h := range headers {
		r.SetHeader(h.Key, h.Value)
	}

	switch {
	case req.FormURLEncodedBody != nil:
		r.SetBody([]byte(EncodeForm(req.FormURLEncodedBody)))
		if !r.hasHeader("Content-Type") {
			r.SetHeader("Content-Type", ContentTypeForm)
		}
	case req.JSONBody != nil:
		body, err := EncodeJSON(req.JSONBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode jsonBody: %w", err)
		}
		r.SetBody(body)
		if !r.hasHeader("Content-Type") {
			r.SetHeader("Content-Type", ContentTypeJSON)
		}
	}

	return r, nil
}

// EncodeForm encodes a form body. Nested maps and lists use bracket keys:
// {a: {b: c}, l: [x]} becomes a[b]=c&l[0]=x. Keys are sorted.
func EncodeForm(values map[string]any) string {
	var pairs []string
	appendForm(&pairs, "", values)
	return strings.Join(pairs, "&")
}

func appendForm(pairs *[]string, prefix string, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendForm(pairs, formKey(prefix, k), val[k])
		}
	case []any:
		for i, item := range val {
			appendForm(pairs, formKey(prefix, strconv.Itoa(i)), item)
		}
	case nil:
		*pairs = append(*pairs, url.QueryEscape(prefix)+"=")
	default:
		*pairs = append(*pairs, url.QueryEscape(prefix)+"="+url.QueryEscape(fmt.Sprintf("%v", val)))
	}
}

func formKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "[" + key + "]"
}

// EncodeJSON marshals a value decoded from a request file.
func EncodeJSON(v any) ([]byte, error) {
	return json.Marshal(jsonCompatible(v))
}

// jsonCompatible converts map[any]any values produced by YAML decoding,
// which encoding/json cannot marshal.
func jsonCompatible(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = jsonCompatible(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonCompatible(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonCompatible(item)
		}
		return out
	default:
		return v
	}
}
