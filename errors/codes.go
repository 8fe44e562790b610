// Package errors provides the error handling system for the release pipeline.
// It extends Go's standard error handling with structured error codes so every
// stage failure carries a machine-checkable classification alongside the
// wrapped cause.
package errors

// Code classifies a pipeline failure. Codes are string-based for
// debuggability and stable log output.
type Code string

const (
	// CodePrecondition indicates a required toolchain location or tool is
	// missing before any build work starts.
	CodePrecondition Code = "PRECONDITION_UNSATISFIED"

	// CodeCompilation indicates the native compiler exited non-zero for a
	// target.
	CodeCompilation Code = "COMPILATION_FAILED"

	// CodeMergeInput indicates a universal-artifact merge was attempted with
	// a missing or inconsistent input; a universal binary must never be
	// produced incomplete.
	CodeMergeInput Code = "MERGE_INPUT_MISSING"

	// CodeMerge indicates the architecture-fusion tool itself exited non-zero
	// after all inputs were verified present.
	CodeMerge Code = "MERGE_FAILED"

	// CodeGeneration indicates the binding generator failed for an artifact.
	CodeGeneration Code = "GENERATION_FAILED"

	// CodePackaging indicates a platform packaging tool exited non-zero.
	CodePackaging Code = "PACKAGING_FAILED"

	// CodeTransform indicates the loader rewrite found none of the lines a
	// strip rule expects, meaning the upstream generator's output format has
	// drifted.
	CodeTransform Code = "TRANSFORM_PATTERN_MISMATCH"

	// CodeManifest indicates the release manifest is missing, malformed, or
	// fails validation.
	CodeManifest Code = "INVALID_MANIFEST"

	// CodeVCS indicates repository introspection failed.
	CodeVCS Code = "VCS_ERROR"

	// CodeIO indicates a filesystem operation failed.
	CodeIO Code = "IO_ERROR"

	// CodePipeline indicates the stage graph itself is invalid (duplicate
	// stage, unknown dependency, cycle).
	CodePipeline Code = "INVALID_PIPELINE"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown Code = "UNKNOWN"
)
