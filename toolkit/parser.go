package toolkit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TagPair is an opening and closing tag of the text protocol, e.g. <tool_call> and </tool_call>.
type TagPair struct {
	Open  string
	Close string
}

// NewTagPair builds the pair <name></name>.
func NewTagPair(name string) TagPair {
	return TagPair{Open: "<" + name + ">", Close: "</" + name + ">"}
}

// Protocol tags.
var (
	CallTags      = NewTagPair("tool_call")     // single-call style, one object per occurrence
	BatchCallTags = NewTagPair("tool_calls")    // iterative style, one object per occurrence
	ResultTags    = NewTagPair("tool_response") // host-side wrapper around each CallResult
	TerminalTags  = NewTagPair("response")      // final answer
	ReasoningTags = NewTagPair("thought")       // advisory, never parsed
	ToolsTags     = NewTagPair("tools")
	QuestionTags  = NewTagPair("question")
)

// Wrap encloses content in the pair, each tag on its own line.
func (p TagPair) Wrap(content string) string {
	return p.Open + "\n" + content + "\n" + p.Close + "\n"
}

func (p TagPair) pattern() *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + regexp.QuoteMeta(p.Open) + `(.*?)` + regexp.QuoteMeta(p.Close))
}

// Parser extracts CallRequests from tagged segments of raw model text.
type Parser struct {
	calls    TagPair
	callRe   *regexp.Regexp
	terminal *regexp.Regexp
	logger   zerolog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithParserLogger sets the logger that receives skipped-segment diagnostics.
func WithParserLogger(logger zerolog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithTerminalTags overrides the terminal tag pair (default TerminalTags).
func WithTerminalTags(tags TagPair) ParserOption {
	return func(p *Parser) {
		p.terminal = tags.pattern()
	}
}

// NewParser creates a Parser for the given call tag pair.
func NewParser(calls TagPair, opts ...ParserOption) *Parser {
	p := &Parser{
		calls:    calls,
		callRe:   calls.pattern(),
		terminal: TerminalTags.pattern(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the well-formed call requests in text, in order of occurrence.
// Malformed segments are logged and skipped.
func (p *Parser) Parse(text string) []CallRequest {
	reqs, _ := p.ParseWithDiagnostics(text)
	return reqs
}

// ParseWithDiagnostics is like Parse but also returns one ParseError per skipped segment.
func (p *Parser) ParseWithDiagnostics(text string) ([]CallRequest, []error) {
	var (
		reqs  []CallRequest
		diags []error
	)
	for i, m := range p.callRe.FindAllStringSubmatch(text, -1) {
		req, err := decodeCall(m[1])
		if err != nil {
			p.logger.Warn().Err(err).Int("segment", i).Str("tag", p.calls.Open).Msg("skipping malformed tool call")
			diags = append(diags, wrapError(KindParse, err, "segment %d: %v", i, err))
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, diags
}

// Terminal reports whether text contains a terminal tag pair and returns its trimmed content.
func (p *Parser) Terminal(text string) (string, bool) {
	m := p.terminal.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func decodeCall(body string) (CallRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &fields); err != nil {
		return CallRequest{}, fmt.Errorf("invalid JSON object: %w", err)
	}

	var req CallRequest
	raw, ok := fields["name"]
	if !ok {
		return req, errors.New("missing key 'name'")
	}
	if !bytes.HasPrefix(raw, []byte(`"`)) || json.Unmarshal(raw, &req.Name) != nil {
		return req, errors.New("key 'name' must be a string")
	}

	raw, ok = fields["arguments"]
	if !ok {
		return req, errors.New("missing key 'arguments'")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&req.Arguments); err != nil || req.Arguments == nil {
		return req, errors.New("key 'arguments' must be an object")
	}

	raw, ok = fields["id"]
	if !ok {
		return req, errors.New("missing key 'id'")
	}
	var id json.Number
	if bytes.HasPrefix(raw, []byte(`"`)) || json.Unmarshal(raw, &id) != nil {
		return req, errors.New("key 'id' must be an integer")
	}
	n, err := id.Int64()
	if err != nil {
		return req, errors.New("key 'id' must be an integer")
	}
	req.ID = n
	return req, nil
}
