// Package review contains the prompt chain for auditing one source file.
//
// Five narrow analyses (style, types, security, complexity, documentation)
// each get their own prompt; their outputs are merged by a report prompt into
// a single structured audit, and a final fixer prompt asks the model for a
// corrected version of the code. [Engine.Run] executes the chain in order
// through an [Invoker], returning the filled-in [State].
package review
