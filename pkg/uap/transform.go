package uap

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Capture-group templates used when a rule leaves a replacement unset. Each
// field falls back to the regex group in its position, except the device
// model which reuses group 1 like uap-core does.
const (
	defaultDeviceReplacement = "$1"
	defaultBrandReplacement  = "$2"
	defaultModelReplacement  = "$1"

	defaultOSReplacement   = "$1"
	defaultOSV1Replacement = "$2"
	defaultOSV2Replacement = "$3"
	defaultOSV3Replacement = "$4"
	defaultOSV4Replacement = "$5"

	defaultFamilyReplacement = "$1"
	defaultV1Replacement     = "$2"
	defaultV2Replacement     = "$3"
)

// ApplyRegexFlag folds a uap-core regex_flag into the regex as an inline
// group modifier, e.g. flag "i" and regex "foo" become "(?i:foo)". The flag
// text is inserted verbatim.
func ApplyRegexFlag(flag *string, regex string) string {
	if flag == nil {
		return regex
	}
	return "(?" + *flag + ":" + regex + ")"
}

func orDefault(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

// Target converts the rule into its ClickHouse form.
func (s DeviceParserSource) Target() DeviceParserTarget {
	return DeviceParserTarget{
		Regex:             ApplyRegexFlag(s.RegexFlag, s.Regex),
		DeviceReplacement: orDefault(s.DeviceReplacement, defaultDeviceReplacement),
		BrandReplacement:  orDefault(s.BrandReplacement, defaultBrandReplacement),
		ModelReplacement:  orDefault(s.ModelReplacement, defaultModelReplacement),
	}
}

// Target converts the rule into its ClickHouse form.
func (s OSParserSource) Target() OSParserTarget {
	return OSParserTarget{
		Regex:           ApplyRegexFlag(s.RegexFlag, s.Regex),
		OSReplacement:   orDefault(s.OSReplacement, defaultOSReplacement),
		OSV1Replacement: orDefault(s.OSV1Replacement, defaultOSV1Replacement),
		OSV2Replacement: orDefault(s.OSV2Replacement, defaultOSV2Replacement),
		OSV3Replacement: orDefault(s.OSV3Replacement, defaultOSV3Replacement),
		OSV4Replacement: orDefault(s.OSV4Replacement, defaultOSV4Replacement),
	}
}

// Target converts the rule into its ClickHouse form.
func (s UserAgentParserSource) Target() UserAgentParserTarget {
	return UserAgentParserTarget{
		Regex:             ApplyRegexFlag(s.RegexFlag, s.Regex),
		FamilyReplacement: orDefault(s.FamilyReplacement, defaultFamilyReplacement),
		V1Replacement:     orDefault(s.V1Replacement, defaultV1Replacement),
		V2Replacement:     orDefault(s.V2Replacement, defaultV2Replacement),
	}
}

// convertAll converts in order, giving up as soon as ctx is done.
func convertAll[S any, T any](ctx context.Context, in []S, conv func(S) T) ([]T, error) {
	out := make([]T, len(in))
	for i, s := range in {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = conv(s)
	}
	return out, nil
}

// Transform converts every rule of the document, keeping the order within
// each category. The three categories share nothing, so they are converted
// side by side. The only possible error is ctx's.
func (d *SourceDocument) Transform(ctx context.Context) (*TargetDocuments, error) {
	ret := &TargetDocuments{}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() (err error) {
		ret.Devices, err = convertAll(gctx, d.GetDeviceParsers(), DeviceParserSource.Target)
		return err
	})
	grp.Go(func() (err error) {
		ret.OS, err = convertAll(gctx, d.GetOSParsers(), OSParserSource.Target)
		return err
	})
	grp.Go(func() (err error) {
		ret.UserAgents, err = convertAll(gctx, d.GetUserAgentParsers(), UserAgentParserSource.Target)
		return err
	})

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Count returns how many converted rules are held for the given category.
func (t *TargetDocuments) Count(c Category) int {
	if t == nil {
		return 0
	}
	switch c {
	case CategoryDevice:
		return len(t.Devices)
	case CategoryOS:
		return len(t.OS)
	case CategoryUserAgent:
		return len(t.UserAgents)
	}
	return 0
}
