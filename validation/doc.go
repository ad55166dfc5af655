// Package validation validates configuration structs through
// go-playground/validator struct tags and reports failures as
// errors.AppError values with per-field details.
package validation
