// Package store persists analysis runs in a sqlite database via gorm, backing
// the /history endpoint. The component that talks to the LLM keeps no state
// of its own; this is the only on-disk state the service owns.
package store
