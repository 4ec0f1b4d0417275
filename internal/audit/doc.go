// Package audit defines the operation context attached to every mutation
// and the entries of the operation log.
//
// A Context is the {user, agent, action, intent} tuple. Validation trims
// each field and rejects blanks with ErrInvalidContext; callers validate
// before touching any record so a rejected call leaves no trace.
package audit
