// Codeaudit audits source code with a chain of LLM analysis prompts.
//
// Uploaded (or locally given) files are examined for style, typing, security,
// complexity, and documentation issues; the five analyses are merged into one
// audit report and the model is asked for a corrected version of the code.
// Outbound LLM calls rotate across every GROQ_API_KEY* credential in the
// environment when rate limits are hit.
//
// Usage:
//
//	codeaudit serve                 # run the HTTP service on :8000
//	codeaudit review main.py db.sql # audit local files and print the reports
//	codeaudit version
package main
