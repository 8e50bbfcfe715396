package textscan

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/textscan/charset"
	"github.com/nao1215/textscan/convert"
	"github.com/nao1215/textscan/domain/model"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys.
// TEXTSCAN_ENCODING overrides encoding, TEXTSCAN_LAYOUT_HEADER_LINES overrides
// layout.header_lines and so on.
const EnvPrefix = "TEXTSCAN"

// Config is the declarative description of a scan. It is usually loaded from a
// YAML, JSON or TOML file with LoadConfig; start from DefaultConfig when
// building one in code.
type Config struct {
	// FileType is "csv" or "fixed"
	FileType  string `mapstructure:"file_type" yaml:"file_type"`
	Separator string `mapstructure:"separator" yaml:"separator"`
	Enclosure string `mapstructure:"enclosure" yaml:"enclosure"`
	Escape    string `mapstructure:"escape" yaml:"escape"`
	// ByteBased measures fixed-width positions in encoded bytes instead of characters
	ByteBased            bool `mapstructure:"byte_based" yaml:"byte_based"`
	LegacyByteTruncation bool `mapstructure:"legacy_byte_truncation" yaml:"legacy_byte_truncation"`

	// Encoding is a charset name, "auto" to detect it, or empty for UTF-8
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
	// LineFormat is "dos", "unix" or "mixed"
	LineFormat          string `mapstructure:"line_format" yaml:"line_format"`
	DOSDowngradeToMixed bool   `mapstructure:"dos_downgrade_to_mixed" yaml:"dos_downgrade_to_mixed"`

	Layout  LayoutConfig   `mapstructure:"layout" yaml:"layout"`
	Fields  []FieldConfig  `mapstructure:"fields" yaml:"fields"`
	Filters []FilterConfig `mapstructure:"filters" yaml:"filters"`
	Columns ColumnsConfig  `mapstructure:"columns" yaml:"columns"`
	Inputs  InputsConfig   `mapstructure:"inputs" yaml:"inputs"`

	// RowLimit stops the scan after that many rows; 0 means no limit
	RowLimit         int64 `mapstructure:"row_limit" yaml:"row_limit"`
	FailOnParseError bool  `mapstructure:"fail_on_parse_error" yaml:"fail_on_parse_error"`
	// EmptyIsNull turns empty String tokens into nulls; other types are always null when empty
	EmptyIsNull     bool `mapstructure:"empty_is_null" yaml:"empty_is_null"`
	RowNumberByFile bool `mapstructure:"row_number_by_file" yaml:"row_number_by_file"`
	// Timezone is the IANA zone of dates without an offset; empty means local time
	Timezone string `mapstructure:"timezone" yaml:"timezone"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// LayoutConfig describes headers, footers, pages and wrapped lines
type LayoutConfig struct {
	HeaderLines    int  `mapstructure:"header_lines" yaml:"header_lines"`
	FooterLines    int  `mapstructure:"footer_lines" yaml:"footer_lines"`
	Paged          bool `mapstructure:"paged" yaml:"paged"`
	LinesPerPage   int  `mapstructure:"lines_per_page" yaml:"lines_per_page"`
	DocHeaderLines int  `mapstructure:"doc_header_lines" yaml:"doc_header_lines"`
	Wrapped        bool `mapstructure:"wrapped" yaml:"wrapped"`
	NrWraps        int  `mapstructure:"nr_wraps" yaml:"nr_wraps"`
	SkipBlankLines bool `mapstructure:"skip_blank_lines" yaml:"skip_blank_lines"`
}

// FieldConfig declares one field
type FieldConfig struct {
	Name           string `mapstructure:"name" yaml:"name"`
	Type           string `mapstructure:"type" yaml:"type"`
	Position       int    `mapstructure:"position" yaml:"position,omitempty"`
	Length         int    `mapstructure:"length" yaml:"length,omitempty"`
	Precision      int    `mapstructure:"precision" yaml:"precision,omitempty"`
	Format         string `mapstructure:"format" yaml:"format,omitempty"`
	DecimalSymbol  string `mapstructure:"decimal_symbol" yaml:"decimal_symbol,omitempty"`
	GroupSymbol    string `mapstructure:"group_symbol" yaml:"group_symbol,omitempty"`
	CurrencySymbol string `mapstructure:"currency_symbol" yaml:"currency_symbol,omitempty"`
	NullString     string `mapstructure:"null_string" yaml:"null_string,omitempty"`
	IfNullValue    string `mapstructure:"if_null_value" yaml:"if_null_value,omitempty"`
	TrimType       string `mapstructure:"trim_type" yaml:"trim_type,omitempty"`
	RepeatIfEmpty  bool   `mapstructure:"repeat_if_empty" yaml:"repeat_if_empty,omitempty"`
}

// FilterConfig declares one line filter. A nil Position matches anywhere in the line.
type FilterConfig struct {
	Position    *int   `mapstructure:"position" yaml:"position,omitempty"`
	Match       string `mapstructure:"match" yaml:"match"`
	StopOnMatch bool   `mapstructure:"stop_on_match" yaml:"stop_on_match,omitempty"`
	Positive    bool   `mapstructure:"positive" yaml:"positive,omitempty"`
}

// ColumnsConfig names the synthetic columns to append; an empty name leaves one out
type ColumnsConfig struct {
	ErrorCount    string `mapstructure:"error_count" yaml:"error_count,omitempty"`
	ErrorFields   string `mapstructure:"error_fields" yaml:"error_fields,omitempty"`
	ErrorText     string `mapstructure:"error_text" yaml:"error_text,omitempty"`
	Filename      string `mapstructure:"filename" yaml:"filename,omitempty"`
	RowNumber     string `mapstructure:"row_number" yaml:"row_number,omitempty"`
	ShortFilename string `mapstructure:"short_filename" yaml:"short_filename,omitempty"`
	Extension     string `mapstructure:"extension" yaml:"extension,omitempty"`
	Path          string `mapstructure:"path" yaml:"path,omitempty"`
	Size          string `mapstructure:"size" yaml:"size,omitempty"`
	Hidden        string `mapstructure:"hidden" yaml:"hidden,omitempty"`
	LastModified  string `mapstructure:"last_modified" yaml:"last_modified,omitempty"`
	URI           string `mapstructure:"uri" yaml:"uri,omitempty"`
	RootURI       string `mapstructure:"root_uri" yaml:"root_uri,omitempty"`
}

// InputsConfig controls how directories are expanded
type InputsConfig struct {
	Recursive bool `mapstructure:"recursive" yaml:"recursive"`
	// Include lists glob masks a directory entry must match; empty keeps every file
	Include []string `mapstructure:"include" yaml:"include,omitempty"`
	// Exclude lists glob masks that drop a directory entry
	Exclude []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
}

// LogConfig selects the level and format of the CLI logger
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the configuration used for keys that are not set
func DefaultConfig() Config {
	return Config{
		FileType:    "csv",
		Separator:   ",",
		Enclosure:   `"`,
		LineFormat:  "mixed",
		EmptyIsNull: true,
		Log:         LogConfig{Level: "info", Format: "text"},
	}
}

// setDefaults registers every key so environment overrides apply even when
// the file does not mention the key
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("file_type", d.FileType)
	v.SetDefault("separator", d.Separator)
	v.SetDefault("enclosure", d.Enclosure)
	v.SetDefault("escape", "")
	v.SetDefault("byte_based", false)
	v.SetDefault("legacy_byte_truncation", false)
	v.SetDefault("encoding", "")
	v.SetDefault("line_format", d.LineFormat)
	v.SetDefault("dos_downgrade_to_mixed", false)

	v.SetDefault("layout.header_lines", 0)
	v.SetDefault("layout.footer_lines", 0)
	v.SetDefault("layout.paged", false)
	v.SetDefault("layout.lines_per_page", 0)
	v.SetDefault("layout.doc_header_lines", 0)
	v.SetDefault("layout.wrapped", false)
	v.SetDefault("layout.nr_wraps", 0)
	v.SetDefault("layout.skip_blank_lines", false)

	v.SetDefault("inputs.recursive", false)

	v.SetDefault("row_limit", 0)
	v.SetDefault("fail_on_parse_error", false)
	v.SetDefault("empty_is_null", d.EmptyIsNull)
	v.SetDefault("row_number_by_file", false)
	v.SetDefault("timezone", "")

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// LoadConfig reads the configuration file at path and applies TEXTSCAN_*
// environment overrides. An empty path loads the defaults and the
// environment only. The file type is taken from the extension.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to unmarshal config: %w", model.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML to path
func SaveConfig(path string, cfg Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("%w: config can only be written as YAML: %s", model.ErrInvalidConfig, path)
	}

	v := viper.New()
	v.Set("file_type", cfg.FileType)
	v.Set("separator", cfg.Separator)
	v.Set("enclosure", cfg.Enclosure)
	v.Set("escape", cfg.Escape)
	v.Set("byte_based", cfg.ByteBased)
	v.Set("legacy_byte_truncation", cfg.LegacyByteTruncation)
	v.Set("encoding", cfg.Encoding)
	v.Set("line_format", cfg.LineFormat)
	v.Set("dos_downgrade_to_mixed", cfg.DOSDowngradeToMixed)
	v.Set("layout", cfg.Layout)
	v.Set("fields", cfg.Fields)
	v.Set("filters", cfg.Filters)
	v.Set("columns", cfg.Columns)
	v.Set("inputs", cfg.Inputs)
	v.Set("row_limit", cfg.RowLimit)
	v.Set("fail_on_parse_error", cfg.FailOnParseError)
	v.Set("empty_is_null", cfg.EmptyIsNull)
	v.Set("row_number_by_file", cfg.RowNumberByFile)
	v.Set("timezone", cfg.Timezone)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Settings is a validated Config expressed in model types
type Settings struct {
	Format       model.FileFormat
	Charset      string
	Discipline   model.LineDiscipline
	DOSDowngrade bool
	Layout       model.Layout
	Fields       []model.FieldSpec
	Filters      []model.FilterSpec
	Columns      model.AdditionalColumns
	Convert      convert.Options
	RowLimit     int64
	Recursive    bool
	Include      []string
	Exclude      []string
}

// Validate reports the first problem Compile would find
func (c Config) Validate() error {
	_, err := c.Compile()
	return err
}

// Compile checks the configuration and converts it to Settings.
// Every problem is reported as model.ErrInvalidConfig, an unknown charset
// as model.ErrUnsupportedCharset.
func (c Config) Compile() (*Settings, error) {
	kind, err := model.ParseFormatKind(c.FileType)
	if err != nil {
		return nil, err
	}
	discipline, err := model.ParseLineDiscipline(c.LineFormat)
	if err != nil {
		return nil, err
	}
	if c.Encoding != "" && !strings.EqualFold(c.Encoding, charset.Auto) {
		if _, err := charset.Lookup(c.Encoding); err != nil {
			return nil, err
		}
	}

	s := &Settings{
		Charset:      c.Encoding,
		Discipline:   discipline,
		DOSDowngrade: c.DOSDowngradeToMixed,
		Layout: model.Layout{
			HeaderLines:    c.Layout.HeaderLines,
			FooterLines:    c.Layout.FooterLines,
			Paged:          c.Layout.Paged,
			LinesPerPage:   c.Layout.LinesPerPage,
			DocHeaderLines: c.Layout.DocHeaderLines,
			Wrapped:        c.Layout.Wrapped,
			NrWraps:        c.Layout.NrWraps,
			SkipBlankLines: c.Layout.SkipBlankLines,
		},
		Columns:   model.AdditionalColumns(c.Columns),
		RowLimit:  c.RowLimit,
		Recursive: c.Inputs.Recursive,
		Include:   append([]string(nil), c.Inputs.Include...),
		Exclude:   append([]string(nil), c.Inputs.Exclude...),
		Convert: convert.Options{
			FailOnParseError: c.FailOnParseError,
			KeepEmptyStrings: !c.EmptyIsNull,
			RowNumberByFile:  c.RowNumberByFile,
		},
	}

	switch kind {
	case model.FormatFixed:
		s.Format = model.FixedFormat(c.ByteBased)
		s.Format.LegacyByteTruncation = c.LegacyByteTruncation
	default:
		s.Format = model.CSVFormat(c.Separator, c.Enclosure, c.Escape)
		if s.Format.Separator == "" {
			return nil, fmt.Errorf("%w: separator must not be empty", model.ErrInvalidConfig)
		}
	}

	if err := validateLayout(s.Layout); err != nil {
		return nil, err
	}
	if c.RowLimit < 0 {
		return nil, fmt.Errorf("%w: row_limit must not be negative", model.ErrInvalidConfig)
	}

	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone %q: %w", model.ErrInvalidConfig, c.Timezone, err)
		}
		s.Convert.Location = loc
	}

	if s.Fields, err = compileFields(c.Fields, kind); err != nil {
		return nil, err
	}
	s.Filters = compileFilters(c.Filters)
	return s, nil
}

func validateLayout(l model.Layout) error {
	switch {
	case l.HeaderLines < 0, l.FooterLines < 0, l.DocHeaderLines < 0, l.NrWraps < 0:
		return fmt.Errorf("%w: layout line counts must not be negative", model.ErrInvalidConfig)
	case l.Paged && l.LinesPerPage <= 0:
		return fmt.Errorf("%w: a paged layout needs lines_per_page > 0", model.ErrInvalidConfig)
	}
	return nil
}

func compileFields(fields []FieldConfig, kind model.FormatKind) ([]model.FieldSpec, error) {
	specs := make([]model.FieldSpec, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: field %d has no name", model.ErrInvalidConfig, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate field name %s", model.ErrInvalidConfig, name)
		}
		seen[name] = true

		typ, err := model.ParseFieldType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		trim, err := model.ParseTrimType(f.TrimType)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		if kind == model.FormatFixed && (f.Position < 0 || f.Length <= 0) {
			return nil, fmt.Errorf("%w: fixed-width field %s needs position >= 0 and length > 0", model.ErrInvalidConfig, name)
		}

		spec := model.FieldSpec{
			Name:           name,
			Type:           typ,
			Position:       f.Position,
			Length:         f.Length,
			Precision:      f.Precision,
			Format:         f.Format,
			DecimalSymbol:  f.DecimalSymbol,
			GroupSymbol:    f.GroupSymbol,
			CurrencySymbol: f.CurrencySymbol,
			NullString:     f.NullString,
			IfNullValue:    f.IfNullValue,
			TrimType:       trim,
			RepeatIfEmpty:  f.RepeatIfEmpty,
		}
		// catches bad masks and symbol clashes before any file is opened
		if _, err := convert.NewParser(spec, false, nil); err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func compileFilters(filters []FilterConfig) []model.FilterSpec {
	specs := make([]model.FilterSpec, 0, len(filters))
	for _, f := range filters {
		spec := model.FilterSpec{
			Position:    model.FilterAnywhere,
			Match:       f.Match,
			StopOnMatch: f.StopOnMatch,
			Positive:    f.Positive,
		}
		if f.Position != nil && *f.Position >= 0 {
			spec.Position = *f.Position
		}
		specs = append(specs, spec)
	}
	return specs
}

// FieldConfigs converts field specs back to their configuration form
func FieldConfigs(specs []model.FieldSpec) []FieldConfig {
	out := make([]FieldConfig, len(specs))
	for i, f := range specs {
		out[i] = FieldConfig{
			Name:           f.Name,
			Type:           f.Type.String(),
			Position:       f.Position,
			Length:         f.Length,
			Precision:      f.Precision,
			Format:         f.Format,
			DecimalSymbol:  f.DecimalSymbol,
			GroupSymbol:    f.GroupSymbol,
			CurrencySymbol: f.CurrencySymbol,
			NullString:     f.NullString,
			IfNullValue:    f.IfNullValue,
			RepeatIfEmpty:  f.RepeatIfEmpty,
		}
		if f.TrimType != model.TrimNone {
			out[i].TrimType = f.TrimType.String()
		}
		if f.Precision < 0 {
			out[i].Precision = 0
		}
	}
	return out
}
