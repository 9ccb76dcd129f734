package transcode

// UnknownPolicy controls how unknown keys are handled.
type UnknownPolicy int

const (
	UnknownStrict UnknownPolicy = iota // Reject unknown keys with an error.
	UnknownStrip                       // Drop unknown keys.
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Ignore, Warn or Error (duplicate object keys).
}

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// ParseOpt bundles parsing options.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int   // 0 disables the nesting cap.
	MaxBytes   int64 // 0 disables the size cap.
	FailFast   bool  // Stop at the first issue instead of collecting all.
	// OnWarning receives non-fatal issues such as duplicate keys under Warn.
	OnWarning func(Issue)
}

// DefaultParseOpt is the configuration used by the CLI when no flags are given.
func DefaultParseOpt() ParseOpt {
	return ParseOpt{
		Strictness: Strictness{OnDuplicateKey: Error},
		MaxDepth:   64,
		MaxBytes:   1 << 20,
	}
}
