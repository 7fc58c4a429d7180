// Package command defines the verdict contract returned by the rule engines.
//
// Expected rule violations are values, never panics or errors: every engine
// answers with a Verdict or a result carrying a *Rejection whose code places
// it in the validation, illegal move, or illegal cube action bucket.
package command
