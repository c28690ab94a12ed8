// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

/*
Package models defines the entity and response types shared by the data
layer, the spatial adapter and the HTTP API.

Entities:

  - Dataset: a partition of trashpoints (all spatial queries are per dataset)
  - Account: a user; roles volunteer, leader, superadmin
  - Session: one live session per account, id derived from the account id
  - Trashpoint: a geo-tagged report of waste with status and amount
  - Image: an image attached to a trashpoint, optionally a derivative of another
  - Area: a node of the hierarchical area tree ("BG", "BG.1", "BG.1.4")

Map overview types:

  - Location: a WGS84 latitude/longitude pair convertible to orb.Point
  - PointSummary: the per-trashpoint value stored in every grid index
  - Cluster: the aggregate of all trashpoints sharing a grid cell
  - Overview: clusters and isolated points for one bounding box

Every entity is stored as a flat document; the json tags below are the stored
field names. System fields (createdAt, updatedBy, expiresAt, ...) live in the
same object as caller fields.
*/
package models
