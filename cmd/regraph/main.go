// Regraph draws ECMAScript regular expressions as railroad diagrams.
//
// Usage:
//
//	# Lay out a pattern and print the diagram as JSON
//	regraph render '(?<year>\d{4})-\d{2}' --flags g
//
//	# Check a pattern and its flags
//	regraph validate 'a{3,2}'
//
//	# Run inputs against a pattern
//	regraph test '^\d+$' --case 123 --case abc
//
//	# Re-run a session file whenever it changes
//	regraph watch session.yaml
//
//	# Generate Go code embedding a diagram
//	regraph gen --pattern '[a-z]+' --name Word --output word.go --package words
//
//	# Serve the HTTP API
//	regraph serve --config regraph.yaml
package main

import "os"

func main() {
	os.Exit(Execute(os.Args[1:]))
}
