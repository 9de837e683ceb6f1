// Package stores provides the persistent device inventory backed by
// SQLite. It is an alternative source of devices to the YAML inventory
// file: records imported into the store can be converted back into
// inventory devices and fed to the orchestration engine.
//
// Run results are never persisted here. The store holds device
// definitions only; plan and apply outcomes are reported per run and
// discarded.
package stores
