package grantkit

// Field redaction: records are filtered per the effective field policy before
// leaving (view) or entering (create/edit) the system. Redaction is pure
// removal: values are never rewritten, so adding the removed keys back
// reconstructs the original exactly.

// redactRule decides whether a field at a given access level is removed.
type redactRule func(FieldAccess) bool

// redactHidden removes hidden fields. Applies to view responses; read-only
// fields remain visible.
func redactHidden(access FieldAccess) bool {
	return access == FieldHidden
}

// redactNonEditable removes everything the user cannot write. Applies to
// create/edit payloads before they reach storage.
func redactNonEditable(access FieldAccess) bool {
	return access != FieldEditable
}

// baselineProtected names the system fields redaction never removes, whether
// or not the module is in the registry. Registered modules extend this set
// with their own columns.
var baselineProtected = map[string]bool{
	"id":               true,
	"tenant_id":        true,
	DefaultOwnerColumn: true,
}

// redact copies a record applying one rule. Fields unmapped by the policy use
// the fallback level. Protected system fields (tenant and ownership keys) are
// never removed regardless of configured permissions: a misconfigured grant
// must not be able to break multi-tenant isolation.
func redact(record map[string]any, policy FieldPolicy, fallback FieldAccess, module *ModuleDefinition, rule redactRule) map[string]any {
	if record == nil {
		return nil
	}

	out := make(map[string]any, len(record))
	for field, value := range record {
		if baselineProtected[field] || (module != nil && module.IsProtected(field)) {
			out[field] = value
			continue
		}

		access, ok := policy[field]
		if !ok {
			access = fallback
		}
		if rule(access) {
			continue
		}
		out[field] = value
	}
	return out
}

// RedactForView copies a record with hidden fields removed, using an explicit
// policy. Most callers use Checker.RedactForView, which derives the policy
// from the grant snapshot.
func RedactForView(record map[string]any, policy FieldPolicy, fallback FieldAccess, module *ModuleDefinition) map[string]any {
	return redact(record, policy, fallback, module, redactHidden)
}

// StripReadOnly copies a payload with read-only and hidden fields removed,
// using an explicit policy.
func StripReadOnly(payload map[string]any, policy FieldPolicy, fallback FieldAccess, module *ModuleDefinition) map[string]any {
	return redact(payload, policy, fallback, module, redactNonEditable)
}
