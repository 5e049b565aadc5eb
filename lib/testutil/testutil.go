package testutil

import (
	"testing"

	"offerscope-backend/lib/kvstore"
	"offerscope-backend/lib/telemetry"
)

type ServiceParams struct {
	Name string
	// if unspecified, the store is backed by an in-memory sqlite database
	DbPath string
}

type ServiceResult struct {
	Store kvstore.Store
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, "test:"+params.Name)

	db, err := kvstore.Config{File: params.DbPath}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	store, err := kvstore.NewSqlStore(db)
	if err != nil {
		t.Fatal(err)
	}

	return ServiceResult{Store: store}, cleanup
}
