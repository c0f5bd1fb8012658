package storage

import (
	"net/url"
	"regexp"
	"strings"
)

// Param is an ordered key/value pair used for headers and query parameters.
type Param struct {
	Key   string
	Value string
}

// CurlSpec is the structured form of a request's curl payload.
type CurlSpec struct {
	Method  string
	URL     string // Without the query string
	Query   []Param
	Headers []Param
	Body    string
}

var (
	curlMethodPattern = regexp.MustCompile(`-X\s+(\w+)`)
	curlURLPattern    = regexp.MustCompile(`(?:https?://|\{\{)[^\s'"]+`)
	curlHeaderPattern = regexp.MustCompile(`(?:-H|--header)\s+['"]([^:'"]+):\s*([^'"]+)['"]`)
	curlBodyPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?:-d|--data(?:-raw|-binary)?)\s+'([^']+)'`),
		regexp.MustCompile(`(?:-d|--data(?:-raw|-binary)?)\s+"([^"]+)"`),
		regexp.MustCompile(`(?:-d|--data(?:-raw|-binary)?)\s+(\S+)`),
	}
	bodyUnescaper = strings.NewReplacer(`\"`, `"`, `\'`, `'`, `\n`, "\n", `\t`, "\t")
)

// bodyMethods are the methods for which BuildCurl emits a body.
var bodyMethods = map[string]bool{"POST": true, "PUT": true, "PATCH": true}

// ParseCurl extracts method, URL, query, headers and body from a curl
// command. The method defaults to GET when no -X flag is present.
func ParseCurl(curl string) CurlSpec {
	spec := CurlSpec{Method: "GET", Query: []Param{}, Headers: []Param{}}

	// Headers and body are cut out before looking for the method and URL so
	// that values inside them are never mistaken for either.
	rest := curl
	for _, m := range curlHeaderPattern.FindAllStringSubmatch(curl, -1) {
		spec.Headers = append(spec.Headers, Param{
			Key:   strings.TrimSpace(m[1]),
			Value: strings.TrimSpace(m[2]),
		})
	}
	rest = curlHeaderPattern.ReplaceAllString(rest, "")

	for _, p := range curlBodyPatterns {
		if loc := p.FindStringSubmatchIndex(rest); loc != nil {
			spec.Body = bodyUnescaper.Replace(rest[loc[2]:loc[3]])
			rest = rest[:loc[0]] + rest[loc[1]:]
			break
		}
	}

	if m := curlMethodPattern.FindStringSubmatch(rest); m != nil {
		spec.Method = strings.ToUpper(m[1])
	}

	if raw := curlURLPattern.FindString(rest); raw != "" {
		raw = strings.TrimRight(raw, `'"`)
		base, query, _ := strings.Cut(raw, "?")
		spec.URL = base
		for _, pair := range strings.Split(query, "&") {
			idx := strings.Index(pair, "=")
			if idx <= 0 {
				continue
			}
			spec.Query = append(spec.Query, Param{
				Key:   unescapeComponent(pair[:idx]),
				Value: unescapeComponent(pair[idx+1:]),
			})
		}
	}

	return spec
}

// BuildCurl renders spec as a curl command. Headers with an empty key or
// value and query params with an empty key are skipped; the body is only
// emitted for POST, PUT and PATCH.
func BuildCurl(spec CurlSpec) string {
	method := strings.ToUpper(spec.Method)
	if method == "" {
		method = "GET"
	}

	var sb strings.Builder
	sb.WriteString("curl -X " + method)
	for _, h := range spec.Headers {
		if h.Key == "" || h.Value == "" {
			continue
		}
		sb.WriteString(` -H "` + h.Key + ": " + h.Value + `"`)
	}
	sb.WriteString(` "` + spec.FullURL() + `"`)
	if spec.Body != "" && bodyMethods[method] {
		sb.WriteString(" -d '" + spec.Body + "'")
	}
	return sb.String()
}

// FullURL returns the URL with its query string appended.
func (s CurlSpec) FullURL() string {
	var parts []string
	for _, q := range s.Query {
		if q.Key == "" {
			continue
		}
		parts = append(parts, escapeComponent(q.Key)+"="+escapeComponent(q.Value))
	}
	if len(parts) == 0 {
		return s.URL
	}
	return s.URL + "?" + strings.Join(parts, "&")
}

// Apply returns a copy of s with environment variables substituted into the
// URL, query values, header values and body.
func (s CurlSpec) Apply(vars []Variable) CurlSpec {
	out := CurlSpec{
		Method:  s.Method,
		URL:     SubstituteVariables(s.URL, vars),
		Query:   make([]Param, len(s.Query)),
		Headers: make([]Param, len(s.Headers)),
		Body:    SubstituteVariables(s.Body, vars),
	}
	for i, q := range s.Query {
		out.Query[i] = Param{Key: q.Key, Value: SubstituteVariables(q.Value, vars)}
	}
	for i, h := range s.Headers {
		out.Headers[i] = Param{Key: h.Key, Value: SubstituteVariables(h.Value, vars)}
	}
	return out
}

// Placeholders survive escaping so they can be substituted later.
func escapeComponent(s string) string {
	if strings.Contains(s, "{{") {
		return s
	}
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func unescapeComponent(s string) string {
	if out, err := url.PathUnescape(s); err == nil {
		return out
	}
	return s
}
