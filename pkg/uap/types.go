// Package uap converts uap-core regexes documents into the three documents
// ClickHouse expects as regexp-tree dictionary sources.
package uap

// DeviceParserSource is a device rule as it appears in a uap-core regexes document.
type DeviceParserSource struct {
	Regex             string  `yaml:"regex" json:"regex"`
	RegexFlag         *string `yaml:"regex_flag,omitempty" json:"regex_flag,omitempty"`
	DeviceReplacement *string `yaml:"device_replacement,omitempty" json:"device_replacement,omitempty"`
	BrandReplacement  *string `yaml:"brand_replacement,omitempty" json:"brand_replacement,omitempty"`
	ModelReplacement  *string `yaml:"model_replacement,omitempty" json:"model_replacement,omitempty"`
}

// OSParserSource is an operating system rule as it appears in a uap-core regexes document.
type OSParserSource struct {
	Regex           string  `yaml:"regex" json:"regex"`
	RegexFlag       *string `yaml:"regex_flag,omitempty" json:"regex_flag,omitempty"`
	OSReplacement   *string `yaml:"os_replacement,omitempty" json:"os_replacement,omitempty"`
	OSV1Replacement *string `yaml:"os_v1_replacement,omitempty" json:"os_v1_replacement,omitempty"`
	OSV2Replacement *string `yaml:"os_v2_replacement,omitempty" json:"os_v2_replacement,omitempty"`
	OSV3Replacement *string `yaml:"os_v3_replacement,omitempty" json:"os_v3_replacement,omitempty"`
	OSV4Replacement *string `yaml:"os_v4_replacement,omitempty" json:"os_v4_replacement,omitempty"`
}

// UserAgentParserSource is a user agent rule as it appears in a uap-core regexes document.
type UserAgentParserSource struct {
	Regex             string  `yaml:"regex" json:"regex"`
	RegexFlag         *string `yaml:"regex_flag,omitempty" json:"regex_flag,omitempty"`
	FamilyReplacement *string `yaml:"family_replacement,omitempty" json:"family_replacement,omitempty"`
	V1Replacement     *string `yaml:"v1_replacement,omitempty" json:"v1_replacement,omitempty"`
	V2Replacement     *string `yaml:"v2_replacement,omitempty" json:"v2_replacement,omitempty"`
}

// SourceDocument is the whole uap-core regexes document. All three sequences
// must be present in the input, but any of them may be empty.
type SourceDocument struct {
	DeviceParsers    []DeviceParserSource    `yaml:"device_parsers" json:"device_parsers"`
	OSParsers        []OSParserSource        `yaml:"os_parsers" json:"os_parsers"`
	UserAgentParsers []UserAgentParserSource `yaml:"user_agent_parsers" json:"user_agent_parsers"`
}

// DeviceParserTarget is a device rule in the ClickHouse regexp-tree layout.
type DeviceParserTarget struct {
	Regex             string `yaml:"regex" json:"regex"`
	DeviceReplacement string `yaml:"device_replacement" json:"device_replacement"`
	BrandReplacement  string `yaml:"brand_replacement" json:"brand_replacement"`
	ModelReplacement  string `yaml:"model_replacement" json:"model_replacement"`
}

// OSParserTarget is an operating system rule in the ClickHouse regexp-tree layout.
type OSParserTarget struct {
	Regex           string `yaml:"regex" json:"regex"`
	OSReplacement   string `yaml:"os_replacement" json:"os_replacement"`
	OSV1Replacement string `yaml:"os_v1_replacement" json:"os_v1_replacement"`
	OSV2Replacement string `yaml:"os_v2_replacement" json:"os_v2_replacement"`
	OSV3Replacement string `yaml:"os_v3_replacement" json:"os_v3_replacement"`
	OSV4Replacement string `yaml:"os_v4_replacement" json:"os_v4_replacement"`
}

// UserAgentParserTarget is a user agent rule in the ClickHouse regexp-tree layout.
type UserAgentParserTarget struct {
	Regex             string `yaml:"regex" json:"regex"`
	FamilyReplacement string `yaml:"family_replacement" json:"family_replacement"`
	V1Replacement     string `yaml:"v1_replacement" json:"v1_replacement"`
	V2Replacement     string `yaml:"v2_replacement" json:"v2_replacement"`
}

// TargetDocuments holds the three converted rule sequences. The slices are
// never nil so that an empty category is still written out as `[]`.
type TargetDocuments struct {
	Devices    []DeviceParserTarget    `json:"device_parsers"`
	OS         []OSParserTarget        `json:"os_parsers"`
	UserAgents []UserAgentParserTarget `json:"user_agent_parsers"`
}

// Category names a rule family. It doubles as the log field value and the
// label used in reports.
type Category string

const (
	CategoryDevice    Category = "device"
	CategoryOS        Category = "os"
	CategoryUserAgent Category = "user agent"
)

// Categories lists the rule families in the order they are written.
var Categories = []Category{CategoryDevice, CategoryOS, CategoryUserAgent}

func (d *SourceDocument) GetDeviceParsers() []DeviceParserSource {
	if d == nil {
		return nil
	}
	return d.DeviceParsers
}

func (d *SourceDocument) GetOSParsers() []OSParserSource {
	if d == nil {
		return nil
	}
	return d.OSParsers
}

func (d *SourceDocument) GetUserAgentParsers() []UserAgentParserSource {
	if d == nil {
		return nil
	}
	return d.UserAgentParsers
}

// Count returns how many rules the document holds for the given category.
func (d *SourceDocument) Count(c Category) int {
	switch c {
	case CategoryDevice:
		return len(d.GetDeviceParsers())
	case CategoryOS:
		return len(d.GetOSParsers())
	case CategoryUserAgent:
		return len(d.GetUserAgentParsers())
	}
	return 0
}
