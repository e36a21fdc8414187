// Package changelog manages projects, their changelog entries and
// the subscribers of each public changelog page.
//
// Mutations that count against a plan (new projects, new changelogs) ask
// the Authorizer first and fail with the gate's *billing.DenyError when
// the plan does not allow them. Ownership is enforced here: a project or
// entry owned by someone else is reported as not found.
package changelog
