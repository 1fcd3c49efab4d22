// Package notion talks to the Notion REST API on behalf of the importer.
//
// Client wraps the HTTP calls with a response cache and bounded retries.
// On top of it the package lists shared databases (Discover), reads
// database schemas and rows, and turns page property values into strings
// (PropertyString) for the coercion step.
//
// Object and Forest model the discovered hierarchy of databases and the
// container pages above them.
package notion
