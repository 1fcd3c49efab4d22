// Package store persists imported assets.
//
// An asset is addressed by a slash-separated path without extension, such
// as "assets/items/Items_North". FileStore writes one JSON or YAML file per
// asset; SQLiteStore keeps every asset as a row of a single table.
package store
