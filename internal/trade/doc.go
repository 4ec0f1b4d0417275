// Package trade implements the trade operation set over the record store.
//
// Mutating operations (SaveNew, SaveFullUpdate, SavePartial, DeleteByID,
// DeleteGroup, Purge) require a valid audit.Context and check it before the
// id is looked up. Each mutation commits exactly one operation log entry.
//
// Read operations (LoadByID, LoadGroup, LoadByFilter, ListByFilter,
// CountByFilter) take no context and never log. Filter queries evaluate
// against a point-in-time snapshot, optionally split across worker
// goroutines.
//
// Every failure is an *Error carrying a Code:
//
//	ALREADY_EXISTS   SaveNew on a present id
//	NOT_FOUND        SaveFullUpdate, SavePartial or LoadByID on an absent id
//	INVALID_CONTEXT  blank user, agent, action or intent
//	INVALID_FILTER   malformed filter, negative limit or offset
package trade
