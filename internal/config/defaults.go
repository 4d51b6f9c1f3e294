package config

const (
	defaultSBOMDir         = "data/sboms"
	defaultAdvisoryDir     = "data/vex"
	defaultDictionary      = "data/official-cpe-dictionary_v2.3.xml.gz"
	defaultChannelCapacity = 10
	defaultSBOMSuffix      = ".bz2"
	defaultAdvisoryPattern = "**/*.json"
	defaultLanguage        = "en-US"
	defaultReportFormat    = "table"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Environment variables that override file values.
const (
	EnvSBOMData   = "SBOM_DATA"
	EnvCSAFData   = "CSAF_DATA"
	EnvDictionary = "CPE_DICTIONARY"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SBOMDir:     defaultSBOMDir,
			AdvisoryDir: defaultAdvisoryDir,
			Dictionary:  defaultDictionary,
		},
		Pipeline: Pipeline{
			Workers:         0,
			ChannelCapacity: defaultChannelCapacity,
			Suffixes:        []string{defaultSBOMSuffix},
		},
		Advisories: Advisories{
			Pattern: defaultAdvisoryPattern,
		},
		Dictionary: Dictionary{
			Language: defaultLanguage,
		},
		Report: Report{
			Format: defaultReportFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
