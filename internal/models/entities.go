// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document kinds.
const (
	KindDataset    = "Dataset"
	KindAccount    = "Account"
	KindSession    = "Session"
	KindTrashpoint = "Trashpoint"
	KindImage      = "Image"
	KindArea       = "Area"
)

// Dataset types.
const (
	DatasetTypeTrashpoints = "trashpoints"
)

// Account roles.
const (
	RoleVolunteer  = "volunteer"
	RoleLeader     = "leader"
	RoleSuperAdmin = "superadmin"
)

// Trashpoint statuses.
const (
	StatusThreat   = "threat"
	StatusRegular  = "regular"
	StatusCleaned  = "cleaned"
	StatusOutdated = "outdated"
)

// Trashpoint amounts.
const (
	AmountHandful  = "handful"
	AmountBagful   = "bagful"
	AmountCartload = "cartloads"
	AmountTruck    = "truck"
)

// Image types and statuses.
const (
	ImageTypeFull      = "full"
	ImageTypeMedium    = "medium"
	ImageTypeThumbnail = "thumbnail"

	ImageStatusPending  = "pending"
	ImageStatusUploaded = "uploaded"
)

// Dataset partitions trashpoints.
type Dataset struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account is a registered user.
type Account struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	PictureURL      string     `json:"pictureURL,omitempty"`
	Country         string     `json:"country,omitempty"`
	Locked          bool       `json:"locked"`
	TermsAcceptedAt *time.Time `json:"termsAcceptedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	CreatedBy       string     `json:"createdBy,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy       string     `json:"updatedBy,omitempty"`
}

// NamePieces returns the lower-cased words of the account name, used by the
// name search index.
func (a *Account) NamePieces() []string {
	return strings.Fields(strings.ToLower(a.Name))
}

// Session is the single live session of an account.
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Expired reports whether the session has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

var sessionNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8") // RFC 4122 URL namespace

// SessionIDForAccount derives the session id of an account. The id is a
// name-based (v5) uuid, so every login of the same account lands on the same
// session document.
func SessionIDForAccount(accountID string) string {
	return uuid.NewSHA1(sessionNamespace, []byte("wcd:session:"+accountID)).String()
}

// Trashpoint is a reported location of waste.
type Trashpoint struct {
	ID          string     `json:"id"`
	DatasetID   string     `json:"datasetId"`
	Location    Location   `json:"location"`
	Status      string     `json:"status"`
	Amount      string     `json:"amount,omitempty"`
	Name        string     `json:"name,omitempty"`
	Address     string     `json:"address,omitempty"`
	Composition []string   `json:"composition,omitempty"`
	Hashtags    []string   `json:"hashtags"`
	Areas       []string   `json:"areas,omitempty"`
	Counter     int        `json:"counter"`
	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   string     `json:"createdBy"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy   string     `json:"updatedBy,omitempty"`
}

// TrashpointCreate is the caller-supplied part of a new trashpoint.
type TrashpointCreate struct {
	Location    Location `json:"location"`
	Status      string   `json:"status" validate:"required,oneof=threat regular cleaned outdated"`
	Amount      string   `json:"amount,omitempty" validate:"omitempty,oneof=handful bagful cartloads truck"`
	Name        string   `json:"name,omitempty" validate:"max=200"`
	Address     string   `json:"address,omitempty" validate:"max=500"`
	Composition []string `json:"composition,omitempty" validate:"max=20"`
	Hashtags    []string `json:"hashtags,omitempty" validate:"max=50"`
	Areas       []string `json:"areas,omitempty" validate:"dive,areacode"`
}

// Image is an uploaded (or pending) picture of a trashpoint.
type Image struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	TrashpointID string     `json:"trashpointId"`
	ParentID     string     `json:"parentId,omitempty"`
	URL          string     `json:"url,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CreatedBy    string     `json:"createdBy"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy    string     `json:"updatedBy,omitempty"`
}

// Area is a node of the area tree. Its id is the dotted area code.
type Area struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	ParentID  string     `json:"parentId,omitempty"`
	LeaderID  string     `json:"leaderId,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
}

// AreaMetadata is one entry of the area seed list.
type AreaMetadata struct {
	Code   string `json:"code" validate:"required,areacode"`
	Name   string `json:"name" validate:"required"`
	Parent string `json:"parent,omitempty" validate:"omitempty,areacode"`
}

// AncestorAreaCodes returns the codes of every strict ancestor of an area
// code, root first: "BG.1.4" -> ["BG", "BG.1"].
func AncestorAreaCodes(code string) []string {
	parts := strings.Split(code, ".")
	out := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		out = append(out, strings.Join(parts[:i], "."))
	}
	return out
}
