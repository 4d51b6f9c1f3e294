package cpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"cpe:/a:apache:struts:2.3.15":           "cpe:/a:apache:struts:2.3.15",
		"cpe:/a:apache:*":                       "cpe:/a:apache",
		"cpe:/a:apache:struts:*":                "cpe:/a:apache:struts",
		"cpe:/o:redhat:enterprise_linux:8::":    "cpe:/o:redhat:enterprise_linux:8",
		"cpe:/a:vendor:prod:1.*":                "cpe:/a:vendor:prod:1.",
		"cpe:2.3:a:vendor:prod:*:*:*:*:*:*:*:*": "cpe:2.3:a:vendor:prod",
		"cpe:2.3:*:*:*:*:*:*:*:*:*:*:*":         "cpe:2.3:",
		`cpe:2.3:a:vendor:prod\*:1`:             `cpe:2.3:a:vendor:prod\*:1`,
		`cpe:2.3:a:vendor:prod\:`:               `cpe:2.3:a:vendor:prod\:`,
		"":                                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"cpe:/a:apache:struts:2.3.15",
		"cpe:/a:apache:*",
		"cpe:/a::::",
		"cpe:/a:*:*:*:",
		"cpe:2.3:a:*:*:*:*:*:*:*:*:*:*",
		`cpe:2.3:a:x:y\\*:`,
		`cpe:2.3:a:x:y\\*\:`,
		`a\`,
		"::::",
		"*?*",
		"cpe:",
		"CPE:/A:Vendor:*",
		"not a cpe at all:",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestStripGlobsReportsRemoval(t *testing.T) {
	out, removed := stripGlobs("1.*")
	assert.Equal(t, "1.", out)
	assert.True(t, removed)

	out, removed = stripGlobs(`a\*b`)
	assert.Equal(t, `a\*b`, out)
	assert.False(t, removed)
}
