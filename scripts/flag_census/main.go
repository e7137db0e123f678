package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/censys-research/uap2clickhouse/pkg/uap"
)

// flag_census lists every regex_flag used in a uap-core document read from
// stdin, so new flags can be checked against the ClickHouse regex dialect
// before they are folded into the output.
func main() {
	doc, err := uap.Parse(os.Stdin, uap.FormatYAML)
	if err != nil {
		panic(err)
	}

	counts := make(map[string]map[uap.Category]int)
	add := func(c uap.Category, flag *string) {
		if flag == nil {
			return
		}
		if counts[*flag] == nil {
			counts[*flag] = make(map[uap.Category]int)
		}
		counts[*flag][c]++
	}

	for _, r := range doc.DeviceParsers {
		add(uap.CategoryDevice, r.RegexFlag)
	}
	for _, r := range doc.OSParsers {
		add(uap.CategoryOS, r.RegexFlag)
	}
	for _, r := range doc.UserAgentParsers {
		add(uap.CategoryUserAgent, r.RegexFlag)
	}

	flags := make([]string, 0, len(counts))
	for f := range counts {
		flags = append(flags, f)
	}
	sort.Strings(flags)

	for _, f := range flags {
		for _, c := range uap.Categories {
			if n := counts[f][c]; n > 0 {
				fmt.Printf("%q\t%s\t%d\n", f, c, n)
			}
		}
	}
}
