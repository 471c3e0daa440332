// Package dsignal defines the closed enumeration of error classes
// ("dsignals") the core can report, plus the structured Report type
// every reported error carries exactly one of.
package dsignal

// Signal names a single distinct failure class. Every error the core
// reports carries exactly one.
type Signal string

const (
	// ------------------------------------------------------------------
	// Install errors
	// ------------------------------------------------------------------

	InstallInstallNameConflict Signal = "install_install_name_conflict"
	InstallMissingDepMapping   Signal = "install_missing_dep_mapping"
	InstallInvalidDepMapping   Signal = "install_invalid_dep_mapping"
	InstallDepGraphCycle       Signal = "install_dep_graph_cycle"

	// ------------------------------------------------------------------
	// Import errors
	// ------------------------------------------------------------------

	ImportModuleNotFound Signal = "import_module_not_found"
	ImportParcelNotFound Signal = "import_parcel_not_found"

	// ------------------------------------------------------------------
	// Specifier / path errors
	// ------------------------------------------------------------------

	IllegalPath       Signal = "illegal_path"
	IllegalFullname   Signal = "illegal_fullname"
	IllegalSpecifier  Signal = "illegal_specifier"

	// ------------------------------------------------------------------
	// Compile errors (surfaced from the external compiler collaborator)
	// ------------------------------------------------------------------

	CompileSyntaxError   Signal = "compile_syntax_error"
	CompileFileNotFound  Signal = "compile_file_not_found"

	// ------------------------------------------------------------------
	// Type-description / module validation errors
	// ------------------------------------------------------------------

	TypeItemNotFound        Signal = "type_item_not_found"
	TypeMemberMismatch      Signal = "type_member_mismatch"
	TypeOwnerNotFound       Signal = "type_owner_not_found"
	TypeDuplicateName       Signal = "type_duplicate_name"

	// ------------------------------------------------------------------
	// Verifier errors
	// ------------------------------------------------------------------

	VerifConstQnIllFormed      Signal = "verif_const_qn_ill_formed"
	VerifConstQnBadHead        Signal = "verif_const_qn_bad_head"
	VerifConstQnOwnerMismatch  Signal = "verif_const_qn_owner_mismatch"
	VerifCallsigBadIndex       Signal = "verif_callsig_bad_index"
	VerifCallsigNotTypeConst   Signal = "verif_callsig_not_type_const"
	VerifMethodOwnerNotFound   Signal = "verif_method_owner_not_found"

	VerifBytecodeEmpty          Signal = "verif_bytecode_empty"
	VerifRAOutOfBounds          Signal = "verif_RA_out_of_bounds"
	VerifRAWrongType            Signal = "verif_RA_wrong_type"
	VerifKtBNotTypeConst        Signal = "verif_KtB_not_type_const"
	VerifPutsExceedsMaxLocals   Signal = "verif_puts_exceeds_max_locals"
	VerifPutsPCOutOfBounds      Signal = "verif_puts_PC_out_of_bounds"
	VerifJumpOutOfBounds        Signal = "verif_jump_out_of_bounds"
	VerifCallArityMismatch      Signal = "verif_call_arity_mismatch"
	VerifCallArgTypeMismatch    Signal = "verif_call_arg_type_mismatch"
	VerifRetTypeMismatch        Signal = "verif_ret_type_mismatch"
	VerifJumpCondNotBool        Signal = "verif_jump_cond_not_bool"
	VerifViolatesRegisterCoherence Signal = "verif_violates_register_coherence"
	VerifFallsOffEnd            Signal = "verif_falls_off_end"

	// ------------------------------------------------------------------
	// Instantiation errors
	// ------------------------------------------------------------------

	VerifFailed Signal = "verif_failed"

	// ------------------------------------------------------------------
	// Domain façade errors
	// ------------------------------------------------------------------

	DomainMaxLocalsCeilingExceeded Signal = "domain_max_locals_ceiling_exceeded"
	DomainNoCompiler               Signal = "domain_no_compiler"

	// ------------------------------------------------------------------
	// Programmer errors (should never be reachable from well-formed input)
	// ------------------------------------------------------------------

	InternalInvariantViolation Signal = "internal_invariant_violation"
)
