package types

import "errors"

// Sentinel errors for Rulegate operations.
var (
	// ErrMissingKind indicates a rule definition without a kind tag.
	ErrMissingKind = errors.New("rule definition missing kind")

	// ErrMissingField indicates a rule definition without a target field.
	ErrMissingField = errors.New("rule definition missing field")

	// ErrUnknownKind indicates a kind with no matching catalog predicate.
	ErrUnknownKind = errors.New("unknown rule kind")

	// ErrInvalidOneOf indicates a oneOf value that is neither a list nor a mapping.
	ErrInvalidOneOf = errors.New("oneOf value must be a list or a mapping")

	// ErrTooManyOneOfValues indicates a oneOf whitelist exceeds MaxOneOfValues.
	ErrTooManyOneOfValues = errors.New("oneOf whitelist has too many values")

	// ErrInvalidPattern indicates a regex rule with an uncompilable pattern.
	ErrInvalidPattern = errors.New("invalid regex pattern")

	// ErrInvalidFieldPath indicates a malformed field path expression.
	ErrInvalidFieldPath = errors.New("malformed field path expression")

	// ErrFieldPathTooDeep indicates a field path exceeds MaxFieldPathDepth.
	ErrFieldPathTooDeep = errors.New("field path exceeds maximum depth")

	// ErrWhenTooDeep indicates "when" prerequisite nesting exceeds MaxWhenDepth.
	ErrWhenTooDeep = errors.New("when nesting exceeds maximum depth")

	// ErrWhenCycle indicates a rule references itself through its "when" chain.
	ErrWhenCycle = errors.New("when chain references itself")

	// ErrPredicateConfig indicates a predicate received configuration it
	// cannot interpret (e.g. a non-numeric minLength). Misconfigured rule
	// sets must surface as errors, never as pass/fail results.
	ErrPredicateConfig = errors.New("predicate configuration invalid")

	// ErrTooManyRules indicates a rule set exceeds MaxRulesPerSet.
	ErrTooManyRules = errors.New("rule set has too many rules")

	// ErrNamespaceNotFound indicates no rule set registered under a namespace.
	ErrNamespaceNotFound = errors.New("namespace not found")

	// ErrNamespaceTooLong indicates a namespace exceeds MaxNamespaceLength.
	ErrNamespaceTooLong = errors.New("namespace too long")

	// ErrPayloadTooLarge indicates an evaluation payload exceeds MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")
)
