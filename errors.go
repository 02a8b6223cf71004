package jsont

import "fmt"

// ConfigErrorKind enumerates the ConfigError family of SPEC_FULL.md §4.6:
// failures detected while compiling a stylesheet.
type ConfigErrorKind int

const (
	// ErrMissingParam indicates a required configuration parameter was absent.
	ErrMissingParam ConfigErrorKind = iota
	// ErrWrongParamType indicates a parameter had the wrong JSON type.
	ErrWrongParamType
	// ErrTemplateSyntax indicates a malformed stringtemplate/json template.
	ErrTemplateSyntax
	// ErrFunctionSyntax indicates a malformed function-call-form reference.
	ErrFunctionSyntax
	// ErrUnknownKind indicates an unregistered transform kind name.
	ErrUnknownKind
	// ErrUnknownName indicates a reference to an undeclared named transform.
	ErrUnknownName
	// ErrDisabled indicates a transform whose status is "disabled".
	ErrDisabled
	// ErrCycle indicates a named transform referenced itself, directly or
	// transitively, during its own compilation.
	ErrCycle
	// ErrProtectedKey indicates an attempt to Set or Delete a "$"-prefixed
	// Context key outside of module installation.
	ErrProtectedKey
	// ErrStylesheetContent indicates unusable document content: a
	// stylesheet or input document that fails to decode, or a prefix
	// expansion that is not a string or does not parse as a data pointer.
	ErrStylesheetContent
)

func (k ConfigErrorKind) String() string {
	switch k {
	case ErrMissingParam:
		return "MissingParam"
	case ErrWrongParamType:
		return "WrongParamType"
	case ErrTemplateSyntax:
		return "TemplateSyntax"
	case ErrFunctionSyntax:
		return "FunctionSyntax"
	case ErrUnknownKind:
		return "UnknownKind"
	case ErrUnknownName:
		return "UnknownName"
	case ErrDisabled:
		return "Disabled"
	case ErrCycle:
		return "Cycle"
	case ErrProtectedKey:
		return "ProtectedKey"
	case ErrStylesheetContent:
		return "StylesheetContent"
	default:
		return "ConfigError"
	}
}

// ConfigError reports a failure detected while compiling a stylesheet: a
// bad transform name, a missing or mistyped parameter, an unparseable
// template or function form, a disabled transform, or a resolution cycle.
// It carries the compiling transform's name (if any), the offending
// parameter, and the underlying cause, matching SPEC_FULL.md §7's
// requirement that compilation errors report name + param + cause.
type ConfigError struct {
	Kind  ConfigErrorKind
	Name  string
	Param string
	Cause error
}

// NewConfigError builds a ConfigError.
func NewConfigError(kind ConfigErrorKind, name, param string, cause error) *ConfigError {
	return &ConfigError{Kind: kind, Name: name, Param: param, Cause: cause}
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("jsont: config error (%s)", e.Kind)
	if e.Name != "" {
		msg += fmt.Sprintf(" in transform %q", e.Name)
	}
	if e.Param != "" {
		msg += fmt.Sprintf(", param %q", e.Param)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *ConfigError) Unwrap() error { return e.Cause }

// ApplicationErrorKind enumerates the ApplicationError family: failures
// detected while applying a compiled transform to real input.
type ApplicationErrorKind int

const (
	// ErrWrongInputType indicates a transform received input of a type it
	// cannot operate on (e.g. map applied to a non-array with strict: true).
	ErrWrongInputType ApplicationErrorKind = iota
	// ErrDataExtraction indicates a data pointer referred to a path absent
	// from its target document.
	ErrDataExtraction
	// ErrDataPointer indicates a malformed data pointer string.
	ErrDataPointer
	// ErrNativeFailure indicates a native function call failed internally.
	ErrNativeFailure
)

func (k ApplicationErrorKind) String() string {
	switch k {
	case ErrWrongInputType:
		return "WrongInputType"
	case ErrDataExtraction:
		return "DataExtractionError"
	case ErrDataPointer:
		return "DataPointerError"
	case ErrNativeFailure:
		return "NativeFailure"
	default:
		return "ApplicationError"
	}
}

// ApplicationError reports a failure detected while applying a compiled
// transform to input data. It carries the offending transform's name, the
// offending input and context (by reference, for inclusion in diagnostics),
// and the underlying cause, per SPEC_FULL.md §7.
type ApplicationError struct {
	Kind    ApplicationErrorKind
	Name    string
	Pointer string
	Input   Value
	Context *Context
	Cause   error
}

// NewApplicationError builds an ApplicationError.
func NewApplicationError(kind ApplicationErrorKind, name, pointer string, input Value, ctx *Context, cause error) *ApplicationError {
	return &ApplicationError{Kind: kind, Name: name, Pointer: pointer, Input: input, Context: ctx, Cause: cause}
}

func (e *ApplicationError) Error() string {
	msg := fmt.Sprintf("jsont: application error (%s)", e.Kind)
	if e.Name != "" {
		msg += fmt.Sprintf(" in transform %q", e.Name)
	}
	if e.Pointer != "" {
		msg += fmt.Sprintf(", pointer %q", e.Pointer)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *ApplicationError) Unwrap() error { return e.Cause }

// RenderErrorKind enumerates the RenderError family: failures detected by
// the XML output adapter.
type RenderErrorKind int

const (
	// ErrMissingXMLData indicates an element-tree node lacked a required
	// field (e.g. name).
	ErrMissingXMLData RenderErrorKind = iota
)

func (k RenderErrorKind) String() string {
	switch k {
	case ErrMissingXMLData:
		return "MissingXMLData"
	default:
		return "RenderError"
	}
}

// RenderError reports a failure in the XML renderer.
type RenderError struct {
	Kind  RenderErrorKind
	Param string
	Cause error
}

// NewRenderError builds a RenderError.
func NewRenderError(kind RenderErrorKind, param string, cause error) *RenderError {
	return &RenderError{Kind: kind, Param: param, Cause: cause}
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("jsont: render error (%s)", e.Kind)
	if e.Param != "" {
		msg += fmt.Sprintf(", param %q", e.Param)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *RenderError) Unwrap() error { return e.Cause }
