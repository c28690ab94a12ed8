// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

// Package services adapts long-running components to suture.Service.
//
// HTTPServerService runs an *http.Server and shuts it down gracefully when
// its context is canceled. SessionSweeperService periodically removes
// expired sessions through the data layer.
//
// Both take interfaces rather than concrete types so tests can drive them
// with fakes.
package services
