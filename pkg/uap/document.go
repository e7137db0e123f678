package uap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a source document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const (
	keyDeviceParsers    = "device_parsers"
	keyOSParsers        = "os_parsers"
	keyUserAgentParsers = "user_agent_parsers"
	keyRegex            = "regex"
)

// ParseFormat accepts the format names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want yaml or json)", s)
}

// DetectFormat guesses the document format from the file extension. Anything
// that isn't .json is read as YAML, which is what uap-core ships.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ReadDocument reads and parses the source document at path.
func ReadDocument(path string) (*SourceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, stageErr(StageRead, ErrIO, err)
	}
	defer f.Close()

	log.WithField("path", path).Debug("reading source document")
	return Parse(f, DetectFormat(path))
}

// Parse decodes a source document. Read failures are reported as ErrIO,
// anything wrong with the content as ErrMalformed.
func Parse(r io.Reader, format Format) (*SourceDocument, error) {
	var parse func([]byte) (*SourceDocument, error)
	switch format {
	case FormatYAML:
		parse = parseYAML
	case FormatJSON:
		parse = parseJSON
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, stageErr(StageRead, ErrIO, err)
	}

	doc, err := parse(data)
	if err != nil {
		return nil, stageErr(StageParse, ErrMalformed, err)
	}

	return doc, nil
}

func parseYAML(data []byte) (*SourceDocument, error) {
	doc := &SourceDocument{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, err
	}

	// empty and null documents never reach UnmarshalYAML, which would have
	// filled in all three sequences.
	if doc.DeviceParsers == nil || doc.OSParsers == nil || doc.UserAgentParsers == nil {
		return nil, errors.New("empty document")
	}

	return doc, nil
}

// UnmarshalYAML checks that all three rule sequences are present before
// decoding them.
func (d *SourceDocument) UnmarshalYAML(value *yaml.Node) error {
	n := resolve(value)
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: document is not a mapping", n.Line)
	}

	for _, key := range []string{keyDeviceParsers, keyOSParsers, keyUserAgentParsers} {
		v := mappingValue(n, key)
		if v == nil {
			return fmt.Errorf("missing required field %s", key)
		}
		if v.Kind != yaml.SequenceNode {
			return fmt.Errorf("line %d: %s is not a sequence", v.Line, key)
		}
	}

	type plain SourceDocument
	return n.Decode((*plain)(d))
}

func (s *DeviceParserSource) UnmarshalYAML(value *yaml.Node) error {
	if err := requireRegex(value); err != nil {
		return err
	}
	type plain DeviceParserSource
	return value.Decode((*plain)(s))
}

func (s *OSParserSource) UnmarshalYAML(value *yaml.Node) error {
	if err := requireRegex(value); err != nil {
		return err
	}
	type plain OSParserSource
	return value.Decode((*plain)(s))
}

func (s *UserAgentParserSource) UnmarshalYAML(value *yaml.Node) error {
	if err := requireRegex(value); err != nil {
		return err
	}
	type plain UserAgentParserSource
	return value.Decode((*plain)(s))
}

// requireRegex decodes the rule's regex the same way the full decode will,
// so merge keys are honoured, and fails when it is absent or null.
func requireRegex(value *yaml.Node) error {
	n := resolve(value)
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: rule is not a mapping", n.Line)
	}

	var head struct {
		Regex *string `yaml:"regex"`
	}
	if err := n.Decode(&head); err != nil {
		return err
	}
	if head.Regex == nil {
		return fmt.Errorf("line %d: rule is missing required field %s", n.Line, keyRegex)
	}

	return nil
}

// resolve unwraps document and alias nodes.
func resolve(n *yaml.Node) *yaml.Node {
	for {
		switch {
		case n.Kind == yaml.DocumentNode && len(n.Content) == 1:
			n = n.Content[0]
		case n.Kind == yaml.AliasNode && n.Alias != nil:
			n = n.Alias
		default:
			return n
		}
	}
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolve(n.Content[i+1])
		}
	}
	return nil
}

func parseJSON(data []byte) (*SourceDocument, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid json")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("document is not an object")
	}

	devices, err := jsonRules(root, keyDeviceParsers, func(regex string, r *jsonRule) DeviceParserSource {
		return DeviceParserSource{
			Regex:             regex,
			RegexFlag:         r.optional("regex_flag"),
			DeviceReplacement: r.optional("device_replacement"),
			BrandReplacement:  r.optional("brand_replacement"),
			ModelReplacement:  r.optional("model_replacement"),
		}
	})
	if err != nil {
		return nil, err
	}

	oses, err := jsonRules(root, keyOSParsers, func(regex string, r *jsonRule) OSParserSource {
		return OSParserSource{
			Regex:           regex,
			RegexFlag:       r.optional("regex_flag"),
			OSReplacement:   r.optional("os_replacement"),
			OSV1Replacement: r.optional("os_v1_replacement"),
			OSV2Replacement: r.optional("os_v2_replacement"),
			OSV3Replacement: r.optional("os_v3_replacement"),
			OSV4Replacement: r.optional("os_v4_replacement"),
		}
	})
	if err != nil {
		return nil, err
	}

	agents, err := jsonRules(root, keyUserAgentParsers, func(regex string, r *jsonRule) UserAgentParserSource {
		return UserAgentParserSource{
			Regex:             regex,
			RegexFlag:         r.optional("regex_flag"),
			FamilyReplacement: r.optional("family_replacement"),
			V1Replacement:     r.optional("v1_replacement"),
			V2Replacement:     r.optional("v2_replacement"),
		}
	})
	if err != nil {
		return nil, err
	}

	return &SourceDocument{
		DeviceParsers:    devices,
		OSParsers:        oses,
		UserAgentParsers: agents,
	}, nil
}

// jsonRule reads the optional fields of one rule and remembers the first
// field that isn't a scalar.
type jsonRule struct {
	r   gjson.Result
	err error
}

// optional treats a missing field and an explicit null the same way.
func (j *jsonRule) optional(field string) *string {
	v := j.r.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}

	s, ok := jsonScalar(v)
	if !ok {
		if j.err == nil {
			j.err = fmt.Errorf("%s is not a string", field)
		}
		return nil
	}
	return &s
}

// jsonScalar mirrors what yaml.v3 does for string fields: any scalar is
// taken as its source text, mappings and sequences are rejected.
func jsonScalar(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.String:
		return v.String(), true
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw, true
	}
	return "", false
}

func jsonRules[T any](root gjson.Result, key string, conv func(string, *jsonRule) T) ([]T, error) {
	seq := root.Get(key)
	if !seq.Exists() {
		return nil, fmt.Errorf("missing required field %s", key)
	}
	if !seq.IsArray() {
		return nil, fmt.Errorf("%s is not a sequence", key)
	}

	rules := seq.Array()
	ret := make([]T, 0, len(rules))
	for i, r := range rules {
		if !r.IsObject() {
			return nil, fmt.Errorf("%s[%d]: rule is not an object", key, i)
		}

		v := r.Get(keyRegex)
		if !v.Exists() || v.Type == gjson.Null {
			return nil, fmt.Errorf("%s[%d]: rule is missing required field %s", key, i, keyRegex)
		}
		regex, ok := jsonScalar(v)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: %s is not a string", key, i, keyRegex)
		}

		rule := &jsonRule{r: r}
		out := conv(regex, rule)
		if rule.err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, rule.err)
		}
		ret = append(ret, out)
	}

	return ret, nil
}
