// File: internal/usecase/profile_uc_test.go
package usecase

import (
	"context"
	"testing"
)

func TestGetUserInfoCreatesBareRow(t *testing.T) {
	profiles := newMemProfileRepo()
	uc := NewProfileUseCase(profiles)
	ctx := context.Background()

	res, err := uc.GetUserInfo(ctx, 10)
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}
	if res.Exists || res.Complete {
		t.Fatalf("first call: %+v, want bare row report", res)
	}
	if len(res.MissingFields) != 3 {
		t.Fatalf("missing = %v", res.MissingFields)
	}
	if _, ok := profiles.store[10]; !ok {
		t.Fatal("bare row not created")
	}

	res, _ = uc.GetUserInfo(ctx, 10)
	if !res.Exists {
		t.Fatal("second call must report an existing row")
	}
}

func TestUpdateUserInfoPartialOverwrite(t *testing.T) {
	profiles := newMemProfileRepo()
	uc := NewProfileUseCase(profiles)
	ctx := context.Background()

	if _, err := uc.UpdateUserInfo(ctx, 10, "Иванов Иван", "+79990001122", ""); err != nil {
		t.Fatalf("UpdateUserInfo: %v", err)
	}
	// empty fields leave stored values alone
	res, err := uc.UpdateUserInfo(ctx, 10, "", "", "Москва, Тверская 1")
	if err != nil {
		t.Fatalf("UpdateUserInfo: %v", err)
	}
	if res.FullName != "Иванов Иван" || res.Phone != "+79990001122" || res.Address != "Москва, Тверская 1" {
		t.Fatalf("res = %+v", res)
	}
	if !res.Complete {
		t.Fatalf("profile should be complete: %+v", res)
	}
}
