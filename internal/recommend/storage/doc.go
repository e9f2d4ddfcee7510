// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package storage provides preference profile persistence for the
// recommendation engines.
//
// # Overview
//
// ProfileStore wraps any recommend.ProfileRepository and adds:
//   - GetOrCreate: a single atomic creation path for lazily created profiles
//   - Update: read-modify-write of the whole profile under a per-user lock
//   - Existence checks against the user directory before creating a profile
//
// Backends:
//   - MemoryProfileRepository: map-backed, used by tests and single-process runs
//   - BadgerProfileRepository: BadgerDB key/value store, JSON values keyed profile:{userID}
//   - internal/database: DuckDB table (the default in production)
//
// # Usage Example
//
//	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
//	if err != nil {
//	    return err
//	}
//	store := storage.NewProfileStore(storage.NewBadgerProfileRepository(db), users, clock, logger)
//
//	profile, err := store.GetOrCreate(ctx, userID)
//
// # Thread Safety
//
// All ProfileStore methods are safe for concurrent use. Writes for the same
// user id are serialized; writes for different users proceed in parallel.
// Profiles returned from the store are copies and may be modified freely.
package storage
