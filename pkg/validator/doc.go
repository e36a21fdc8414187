// Package validator provides rule-based input validation.
//
// Rules are plain values evaluated together by Apply, which returns
// ValidationErrors listing every failure:
//
//	err := validator.Apply(
//		validator.Required("name", in.Name),
//		validator.MaxLen("name", in.Name, 120),
//	)
package validator
