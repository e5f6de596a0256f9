package rewrite

import "github.com/rubiojr/modflat/diag"

// Diagnostic types reported by the pass. Keys are stable; downstream
// tooling matches on them.
var (
	InvalidModuleNamespace = diag.NewError(
		"JSC_GOOG_MODULE_INVALID_MODULE_NAMESPACE",
		"goog.module parameter must be string literals")

	InvalidProvideNamespace = diag.NewError(
		"JSC_GOOG_MODULE_INVALID_PROVIDE_NAMESPACE",
		"goog.provide parameter must be a string literal.")

	InvalidRequireNamespace = diag.NewError(
		"JSC_GOOG_MODULE_INVALID_REQUIRE_NAMESPACE",
		"goog.require parameter must be a string literal.")

	InvalidForwardDeclareNamespace = diag.NewError(
		"JSC_GOOG_MODULE_INVALID_FORWARD_DECLARE_NAMESPACE",
		"goog.forwardDeclare parameter must be a string literal.")

	InvalidGetNamespace = diag.NewError(
		"JSC_GOOG_MODULE_INVALID_GET_NAMESPACE",
		"goog.module.get parameter must be a string literal.")

	InvalidProvideCall = diag.NewError(
		"JSC_GOOG_MODULE_INVALID_PROVIDE_CALL",
		"goog.provide can not be called in goog.module.")

	InvalidGetCallScope = diag.NewError(
		"JSC_GOOG_MODULE_INVALID_GET_CALL_SCOPE",
		"goog.module.get can not be called in global scope.")

	InvalidGetAlias = diag.NewError(
		"JSC_GOOG_MODULE_INVALID_GET_ALIAS",
		"goog.module.get should not be aliased.")

	InvalidExportComputedProperty = diag.NewError(
		"JSC_GOOG_MODULE_INVALID_EXPORT_COMPUTED_PROPERTY",
		"Computed properties are not yet supported in goog.module exports.")

	UselessUseStrictDirective = diag.NewDisabled(
		"JSC_USELESS_USE_STRICT_DIRECTIVE",
		"'use strict' is unnecessary in goog.module files.")

	DuplicateModule = diag.NewError(
		"JSC_DUPLICATE_MODULE",
		"Duplicate module: {0}")

	DuplicateNamespace = diag.NewError(
		"JSC_DUPLICATE_NAMESPACE",
		"Duplicate namespace: {0}")

	MissingModuleOrProvide = diag.NewError(
		"JSC_MISSING_MODULE_OR_PROVIDE",
		"Required namespace \"{0}\" never defined.")

	LateProvideError = diag.NewError(
		"JSC_LATE_PROVIDE_ERROR",
		"Required namespace \"{0}\" not provided yet.")

	ImportInliningShadowsVar = diag.NewError(
		"JSC_IMPORT_INLINING_SHADOWS_VAR",
		"Inlining of reference to import \"{1}\" shadows var \"{0}\".")

	QualifiedReferenceToGoogModule = diag.NewError(
		"JSC_QUALIFIED_REFERENCE_TO_GOOG_MODULE",
		"Fully qualified reference to name \"{0}\" provided by a goog.module.\n"+
			"Either use short import syntax or convert module to use goog.module.declareLegacyNamespace.")

	IllegalDestructuringDefaultExport = diag.NewError(
		"JSC_ILLEGAL_DESTRUCTURING_DEFAULT_EXPORT",
		"Destructuring import only allowed for importing module with named exports.")

	IllegalDestructuringNotExported = diag.NewError(
		"JSC_ILLEGAL_DESTRUCTURING_NOT_EXPORTED",
		"Destructuring import reference to name \"{0}\" was not exported in module {1}")
)
