// Package importer runs import definitions: it fetches the pages of the
// target database, extracts raw property strings, coerces them into
// destination instances and writes the resulting assets.
//
// Normal definitions write one asset per page, sequentially and in query
// order. Collection definitions fetch pages in parallel into index-addressed
// slots, then group, filter, sort and write one asset per group.
package importer
