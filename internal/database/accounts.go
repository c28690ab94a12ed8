// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kublaj/World-Cleanup-Day/internal/models"
	"github.com/kublaj/World-Cleanup-Day/internal/mutation"
	"github.com/kublaj/World-Cleanup-Day/internal/store"
)

// GetAccounts lists accounts ordered by name.
func (db *DB) GetAccounts(ctx context.Context, page models.Page) ([]models.Account, error) {
	return listEntities[models.Account](ctx, db, ViewAccountsByName, pageParams(page, store.QueryParams{}))
}

// GetAccountsByCountry lists the accounts of one country ordered by name.
func (db *DB) GetAccountsByCountry(ctx context.Context, country string, page models.Page) ([]models.Account, error) {
	return listEntities[models.Account](ctx, db, ViewAccountsByCountryAndName, pageParams(page, store.QueryParams{
		StartKey: store.Key{country},
		EndKey:   store.Key{country, store.High},
	}))
}

// nameSearchRange selects the accounts whose name contains the word search,
// optionally restricted to a country.
func nameSearchRange(search, country string) store.QueryParams {
	search = strings.ToLower(strings.TrimSpace(search))
	if country != "" {
		return store.QueryParams{
			StartKey: store.Key{search, country},
			EndKey:   store.Key{search, country, store.High},
		}
	}
	return store.QueryParams{
		StartKey: store.Key{search},
		EndKey:   store.Key{search, store.High},
	}
}

// GetAccountsByNameSearch lists accounts having a name word equal to search
// (case-insensitive), optionally within one country.
func (db *DB) GetAccountsByNameSearch(ctx context.Context, search, country string, page models.Page) ([]models.Account, error) {
	return listEntities[models.Account](ctx, db, ViewAccountsByNamePieces, pageParams(page, nameSearchRange(search, country)))
}

// CountAccounts counts every account.
func (db *DB) CountAccounts(ctx context.Context) (int, error) {
	return countRows(ctx, db, ViewAccountsByName, store.QueryParams{})
}

// CountAccountsForCountry counts the accounts of one country.
func (db *DB) CountAccountsForCountry(ctx context.Context, country string) (int, error) {
	return countRows(ctx, db, ViewAccountsByCountryAndName, store.QueryParams{
		StartKey: store.Key{country},
		EndKey:   store.Key{country, store.High},
	})
}

// CountAccountsForNameSearch counts the matches of GetAccountsByNameSearch.
func (db *DB) CountAccountsForNameSearch(ctx context.Context, search, country string) (int, error) {
	return countRows(ctx, db, ViewAccountsByNamePieces, nameSearchRange(search, country))
}

// GetAccount returns one account.
func (db *DB) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return getEntity[models.Account](ctx, db, models.KindAccount, id)
}

// CreateAccount registers an account under the id of its identity provider.
// The account is unlocked and created by itself.
func (db *DB) CreateAccount(ctx context.Context, id, name, email, role, pictureURL string) (*models.Account, error) {
	fields := store.Patch{
		"name":  name,
		"email": email,
		"role":  role,
	}
	if pictureURL != "" {
		fields["pictureURL"] = pictureURL
	}
	doc, err := db.docs.Create(ctx, models.KindAccount, id, fields, store.Patch{
		"locked":    false,
		"createdAt": db.now(),
		"createdBy": id,
	})
	if err != nil {
		return nil, fmt.Errorf("create account %s: %w", id, err)
	}
	return decodeEntity[models.Account](doc)
}

// ModifyAccount applies update to an account. snapshot may be nil.
func (db *DB) ModifyAccount(ctx context.Context, id, who string, update store.Patch, snapshot *store.RawDocument) (*models.Account, error) {
	return modifyEntity[models.Account](ctx, db, models.KindAccount, id, who, update, snapshot)
}

// UpdateAccountTerms records that the account accepted the terms. It
// reports false when the account does not exist and true when the terms
// were already accepted.
func (db *DB) UpdateAccountTerms(ctx context.Context, id string) (bool, error) {
	doc, err := db.docs.ReadOne(ctx, models.KindAccount, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get account %s: %w", id, err)
	}
	if _, ok := doc.Fields["termsAcceptedAt"]; ok {
		return true, nil
	}

	res, err := db.mutator.Apply(ctx, mutation.Request{
		Kind:     models.KindAccount,
		ID:       id,
		Snapshot: doc,
		SystemFunc: func() store.Patch {
			now := db.now()
			return store.Patch{"termsAcceptedAt": now, "updatedAt": now, "updatedBy": id}
		},
	})
	if err != nil {
		return false, fmt.Errorf("update terms of account %s: %w", id, err)
	}
	return res.Outcome == mutation.Updated, nil
}

// SetAccountLock locks or unlocks an account. It reports false when the
// account does not exist or could not be written.
func (db *DB) SetAccountLock(ctx context.Context, id string, locked bool, who string, snapshot *store.RawDocument) (bool, error) {
	res, err := db.mutator.Apply(ctx, mutation.Request{
		Kind:     models.KindAccount,
		ID:       id,
		Snapshot: snapshot,
		SystemFunc: func() store.Patch {
			return store.Patch{"locked": locked, "updatedAt": db.now(), "updatedBy": who}
		},
	})
	if err != nil {
		return false, fmt.Errorf("set lock of account %s: %w", id, err)
	}
	return res.Outcome == mutation.Updated, nil
}
