// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"time"

	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// View names.
const (
	ViewDatasets = "datasets"

	ViewAccountsByName              = "accountsByName"
	ViewAccountsByCountryAndName    = "accountsByCountryAndName"
	ViewAccountsByNamePieces        = "accountsByNamePieces"
	ViewSessionsByExpiry            = "sessionsByExpiry"
	ViewTrashpointsByCreationTime   = "trashpointsByCreationTime"
	ViewTrashpointsByArea           = "trashpointsByArea"
	ViewTrashpointsByCreatingUser   = "trashpointsByCreatingUser"
	ViewImagesByTrashpointStatus    = "imagesByTrashpointAndStatusAndCreation"
	ViewImagesByTrashpointAndParent = "imagesByTrashpointAndParent"

	ViewAreas         = "areas"
	ViewAreasByParent = "areasByParent"
	ViewAreasByLeader = "areasByLeader"
)

// Views returns every view the data layer queries. The spatial views are
// registered separately from spatial.Views.
func Views() []store.View {
	return []store.View{
		{Name: ViewDatasets, Kind: models.KindDataset, Map: emitID},

		{Name: ViewAccountsByName, Kind: models.KindAccount, Reduce: store.CountReducer, Map: mapAccountsByName},
		{Name: ViewAccountsByCountryAndName, Kind: models.KindAccount, Reduce: store.CountReducer, Map: mapAccountsByCountryAndName},
		{Name: ViewAccountsByNamePieces, Kind: models.KindAccount, Reduce: store.CountReducer, Map: mapAccountsByNamePieces},

		{Name: ViewSessionsByExpiry, Kind: models.KindSession, Map: mapSessionsByExpiry},

		{Name: ViewTrashpointsByCreationTime, Kind: models.KindTrashpoint, Reduce: store.CountReducer, Map: mapTrashpointsByCreationTime},
		{Name: ViewTrashpointsByArea, Kind: models.KindTrashpoint, Reduce: store.CountReducer, Map: mapTrashpointsByArea},
		{Name: ViewTrashpointsByCreatingUser, Kind: models.KindTrashpoint, Reduce: store.CountReducer, Map: mapTrashpointsByCreatingUser},

		{Name: ViewImagesByTrashpointStatus, Kind: models.KindImage, Map: mapImagesByTrashpointStatus},
		{Name: ViewImagesByTrashpointAndParent, Kind: models.KindImage, Map: mapImagesByTrashpointAndParent},

		{Name: ViewAreas, Kind: models.KindArea, Map: emitID},
		{Name: ViewAreasByParent, Kind: models.KindArea, Map: mapAreasByParent},
		{Name: ViewAreasByLeader, Kind: models.KindArea, Reduce: store.CountReducer, Map: mapAreasByLeader},
	}
}

func emitID(doc *store.RawDocument) ([]store.Emit, error) {
	return []store.Emit{{Key: doc.ID}}, nil
}

// millis is the sort key of a timestamp. RFC 3339 strings with varying
// fractional digits do not sort lexically.
func millis(t time.Time) int64 {
	return t.UnixMilli()
}

type accountFields struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

func (a accountFields) country() any {
	if a.Country == "" {
		return nil
	}
	return a.Country
}

func mapAccountsByName(doc *store.RawDocument) ([]store.Emit, error) {
	var a accountFields
	if err := doc.Decode(&a); err != nil {
		return nil, err
	}
	return []store.Emit{{Key: a.Name}}, nil
}

func mapAccountsByCountryAndName(doc *store.RawDocument) ([]store.Emit, error) {
	var a accountFields
	if err := doc.Decode(&a); err != nil {
		return nil, err
	}
	if a.Country == "" {
		return nil, nil
	}
	return []store.Emit{{Key: store.Key{a.Country, a.Name}}}, nil
}

func mapAccountsByNamePieces(doc *store.RawDocument) ([]store.Emit, error) {
	var a accountFields
	if err := doc.Decode(&a); err != nil {
		return nil, err
	}
	acc := models.Account{Name: a.Name}
	pieces := acc.NamePieces()
	emits := make([]store.Emit, 0, len(pieces))
	seen := make(map[string]bool, len(pieces))
	for _, p := range pieces {
		if seen[p] {
			continue
		}
		seen[p] = true
		emits = append(emits, store.Emit{Key: store.Key{p, a.country(), a.Name}})
	}
	return emits, nil
}

func mapSessionsByExpiry(doc *store.RawDocument) ([]store.Emit, error) {
	var s struct {
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := doc.Decode(&s); err != nil {
		return nil, err
	}
	return []store.Emit{{Key: millis(s.ExpiresAt)}}, nil
}

type trashpointIndexFields struct {
	Areas     []string  `json:"areas"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

func mapTrashpointsByCreationTime(doc *store.RawDocument) ([]store.Emit, error) {
	var f trashpointIndexFields
	if err := doc.Decode(&f); err != nil {
		return nil, err
	}
	return []store.Emit{{Key: millis(f.CreatedAt)}}, nil
}

func mapTrashpointsByArea(doc *store.RawDocument) ([]store.Emit, error) {
	var f trashpointIndexFields
	if err := doc.Decode(&f); err != nil {
		return nil, err
	}
	emits := make([]store.Emit, 0, len(f.Areas))
	for _, area := range f.Areas {
		emits = append(emits, store.Emit{Key: store.Key{area, millis(f.CreatedAt)}})
	}
	return emits, nil
}

func mapTrashpointsByCreatingUser(doc *store.RawDocument) ([]store.Emit, error) {
	var f trashpointIndexFields
	if err := doc.Decode(&f); err != nil {
		return nil, err
	}
	if f.CreatedBy == "" {
		return nil, nil
	}
	return []store.Emit{{Key: store.Key{f.CreatedBy, millis(f.CreatedAt)}}}, nil
}

type imageIndexFields struct {
	TrashpointID string    `json:"trashpointId"`
	ParentID     string    `json:"parentId"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func mapImagesByTrashpointStatus(doc *store.RawDocument) ([]store.Emit, error) {
	var f imageIndexFields
	if err := doc.Decode(&f); err != nil {
		return nil, err
	}
	return []store.Emit{{Key: store.Key{f.TrashpointID, f.Status, millis(f.CreatedAt)}}}, nil
}

func mapImagesByTrashpointAndParent(doc *store.RawDocument) ([]store.Emit, error) {
	var f imageIndexFields
	if err := doc.Decode(&f); err != nil {
		return nil, err
	}
	if f.ParentID == "" {
		return nil, nil
	}
	return []store.Emit{{Key: store.Key{f.TrashpointID, f.ParentID}}}, nil
}

func mapAreasByParent(doc *store.RawDocument) ([]store.Emit, error) {
	parent := doc.String("parentId")
	if parent == "" {
		return []store.Emit{{Key: nil}}, nil
	}
	return []store.Emit{{Key: parent}}, nil
}

func mapAreasByLeader(doc *store.RawDocument) ([]store.Emit, error) {
	leader := doc.String("leaderId")
	if leader == "" {
		return nil, nil
	}
	return []store.Emit{{Key: leader}}, nil
}
