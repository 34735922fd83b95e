package service

import (
	"context"
	"errors"
	"testing"

	"growthlog/internal/validation"
)

func strp(s string) *string { return &s }
func fp(v float64) *float64 { return &v }

func TestCreateAndGetChildWithBMI(t *testing.T) {
	ctx := context.Background()
	guard, svc, _ := newTestServices(t)
	owner := provisionGuardian(t, guard)

	child, err := svc.CreateChild(ctx, owner, CreateChildInput{
		Name:      "Sam",
		BirthDate: strp("2020-01-15"),
	})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	if child.OwnerID != owner {
		t.Errorf("OwnerID = %s, want %s", child.OwnerID, owner)
	}
	if child.AgeYears == nil {
		t.Error("expected derived age for a child with a birth date")
	}

	if _, err := svc.CreateMeasurement(ctx, owner, child.ID, CreateMeasurementInput{
		Date:     strp("2024-06-01"),
		HeightCm: fp(110),
		WeightKg: fp(18.5),
	}); err != nil {
		t.Fatalf("CreateMeasurement() error = %v", err)
	}

	detail, err := svc.GetChild(ctx, owner, child.ID)
	if err != nil {
		t.Fatalf("GetChild() error = %v", err)
	}
	if len(detail.Measurements) != 1 {
		t.Fatalf("len(Measurements) = %d, want 1", len(detail.Measurements))
	}
	bmi := detail.Measurements[0].BMI
	if bmi == nil || *bmi != 15.3 {
		t.Errorf("BMI = %v, want 15.3", bmi)
	}
}

func TestCreateChildRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	guard, svc, _ := newTestServices(t)
	owner := provisionGuardian(t, guard)

	var verr validation.Error
	if _, err := svc.CreateChild(ctx, owner, CreateChildInput{Name: "  "}); !errors.As(err, &verr) {
		t.Errorf("CreateChild() error = %v, want validation.Error", err)
	} else if verr.Code != validation.MissingField {
		t.Errorf("code = %v, want MissingField", verr.Code)
	}

	if _, err := svc.CreateChild(ctx, owner, CreateChildInput{
		Name:      "Sam",
		BirthDate: strp("2099-01-01"),
	}); !errors.As(err, &verr) || verr.Code != validation.FutureDate {
		t.Errorf("CreateChild() error = %v, want FutureDate", err)
	}
}

func TestListChildrenIsOwnershipScoped(t *testing.T) {
	ctx := context.Background()
	guard, svc, _ := newTestServices(t)
	g1 := provisionGuardian(t, guard)
	g2 := provisionGuardian(t, guard)

	if _, err := svc.CreateChild(ctx, g1, CreateChildInput{Name: "Alice"}); err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	if _, err := svc.CreateChild(ctx, g1, CreateChildInput{Name: "Ben"}); err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	childOfG2, err := svc.CreateChild(ctx, g2, CreateChildInput{Name: "Carol"})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}

	list, err := svc.ListChildren(ctx, g1)
	if err != nil {
		t.Fatalf("ListChildren() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].Name != "Alice" || list[1].Name != "Ben" {
		t.Error("children not in creation order")
	}
	for _, c := range list {
		if c.OwnerID != g1 {
			t.Errorf("list contains child of %s", c.OwnerID)
		}
	}

	if _, err := svc.GetChild(ctx, g1, childOfG2.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("GetChild() across guardians error = %v, want ErrForbidden", err)
	}
}

func TestListChildrenCarriesLatestMeasurementOnly(t *testing.T) {
	ctx := context.Background()
	guard, svc, _ := newTestServices(t)
	owner := provisionGuardian(t, guard)

	child, err := svc.CreateChild(ctx, owner, CreateChildInput{Name: "Sam"})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	for _, date := range []string{"2024-01-01", "2024-06-01", "2024-03-01"} {
		if _, err := svc.CreateMeasurement(ctx, owner, child.ID, CreateMeasurementInput{
			Date:     strp(date),
			HeightCm: fp(100),
		}); err != nil {
			t.Fatalf("CreateMeasurement(%s) error = %v", date, err)
		}
	}

	list, err := svc.ListChildren(ctx, owner)
	if err != nil {
		t.Fatalf("ListChildren() error = %v", err)
	}
	if list[0].Latest == nil {
		t.Fatal("expected latest measurement on list entry")
	}
	if got := list[0].Latest.Date.Format("2006-01-02"); got != "2024-06-01" {
		t.Errorf("latest date = %s, want 2024-06-01", got)
	}

	detail, err := svc.GetChild(ctx, owner, child.ID)
	if err != nil {
		t.Fatalf("GetChild() error = %v", err)
	}
	if len(detail.Measurements) != 3 {
		t.Errorf("detail history length = %d, want 3", len(detail.Measurements))
	}
	if detail.Measurements[0].Date.Format("2006-01-02") != "2024-06-01" {
		t.Error("detail history not ordered most recent first")
	}
}

func TestUpdateChildEmptyPatchIsNoOp(t *testing.T) {
	ctx := context.Background()
	guard, svc, _ := newTestServices(t)
	owner := provisionGuardian(t, guard)

	child, err := svc.CreateChild(ctx, owner, CreateChildInput{
		Name:      "Sam",
		BirthDate: strp("2020-01-15"),
		Gender:    "m",
	})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}

	after, err := svc.UpdateChild(ctx, owner, child.ID, UpdateChildInput{})
	if err != nil {
		t.Fatalf("UpdateChild() error = %v", err)
	}
	if after.Name != "Sam" || after.Gender != "m" {
		t.Errorf("child changed by empty patch: %+v", after.Child)
	}
	if !after.UpdatedAt.Equal(child.UpdatedAt) {
		t.Error("empty patch must not bump UpdatedAt")
	}
}

func TestUpdateChildPartialFields(t *testing.T) {
	ctx := context.Background()
	guard, svc, _ := newTestServices(t)
	owner := provisionGuardian(t, guard)

	child, err := svc.CreateChild(ctx, owner, CreateChildInput{
		Name:      "Sam",
		BirthDate: strp("2020-01-15"),
		Gender:    "m",
	})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}

	after, err := svc.UpdateChild(ctx, owner, child.ID, UpdateChildInput{Name: strp("Sammy")})
	if err != nil {
		t.Fatalf("UpdateChild() error = %v", err)
	}
	if after.Name != "Sammy" {
		t.Errorf("Name = %q, want Sammy", after.Name)
	}
	if after.Gender != "m" || after.BirthDate == nil {
		t.Error("untouched fields must survive a partial update")
	}
	if after.OwnerID != owner {
		t.Error("owner must never change through update")
	}

	// Clearing the birth date with an empty string.
	cleared, err := svc.UpdateChild(ctx, owner, child.ID, UpdateChildInput{BirthDate: strp("")})
	if err != nil {
		t.Fatalf("UpdateChild() error = %v", err)
	}
	if cleared.BirthDate != nil {
		t.Error("empty birth date string must clear the field")
	}

	var verr validation.Error
	if _, err := svc.UpdateChild(ctx, owner, child.ID, UpdateChildInput{Name: strp(" ")}); !errors.As(err, &verr) {
		t.Errorf("blank name patch error = %v, want validation.Error", err)
	}
}

func TestDeleteChildCascades(t *testing.T) {
	ctx := context.Background()
	guard, svc, _ := newTestServices(t)
	owner := provisionGuardian(t, guard)

	child, err := svc.CreateChild(ctx, owner, CreateChildInput{Name: "Sam"})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	m, err := svc.CreateMeasurement(ctx, owner, child.ID, CreateMeasurementInput{Date: strp("2024-06-01")})
	if err != nil {
		t.Fatalf("CreateMeasurement() error = %v", err)
	}

	if err := svc.DeleteChild(ctx, owner, child.ID); err != nil {
		t.Fatalf("DeleteChild() error = %v", err)
	}
	if _, err := svc.GetChild(ctx, owner, child.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetChild() after delete error = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteMeasurement(ctx, owner, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteMeasurement() after cascade error = %v, want ErrNotFound", err)
	}
}

func TestUpdateMeasurementAcrossGuardiansForbidden(t *testing.T) {
	ctx := context.Background()
	guard, svc, _ := newTestServices(t)
	g1 := provisionGuardian(t, guard)
	g2 := provisionGuardian(t, guard)

	child, err := svc.CreateChild(ctx, g1, CreateChildInput{Name: "Sam"})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	m, err := svc.CreateMeasurement(ctx, g1, child.ID, CreateMeasurementInput{
		Date:     strp("2024-06-01"),
		WeightKg: fp(18.5),
	})
	if err != nil {
		t.Fatalf("CreateMeasurement() error = %v", err)
	}

	if _, err := svc.UpdateMeasurement(ctx, g2, m.ID, UpdateMeasurementInput{WeightKg: fp(20)}); !errors.Is(err, ErrForbidden) {
		t.Errorf("UpdateMeasurement() error = %v, want ErrForbidden", err)
	}
}

func TestUpdateMeasurementRevalidatesMergedRecord(t *testing.T) {
	ctx := context.Background()
	guard, svc, _ := newTestServices(t)
	owner := provisionGuardian(t, guard)

	child, err := svc.CreateChild(ctx, owner, CreateChildInput{Name: "Sam"})
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	m, err := svc.CreateMeasurement(ctx, owner, child.ID, CreateMeasurementInput{
		Date:     strp("2024-06-01"),
		HeightCm: fp(110),
		WeightKg: fp(18.5),
	})
	if err != nil {
		t.Fatalf("CreateMeasurement() error = %v", err)
	}

	var verr validation.Error
	if _, err := svc.UpdateMeasurement(ctx, owner, m.ID, UpdateMeasurementInput{HeightCm: fp(5)}); !errors.As(err, &verr) || verr.Code != validation.OutOfRange {
		t.Errorf("UpdateMeasurement() error = %v, want OutOfRange", err)
	}
	if _, err := svc.UpdateMeasurement(ctx, owner, m.ID, UpdateMeasurementInput{Date: strp("2099-01-01")}); !errors.As(err, &verr) || verr.Code != validation.FutureDate {
		t.Errorf("UpdateMeasurement() error = %v, want FutureDate", err)
	}

	// A valid patch changes only its own field and refreshes the BMI.
	updated, err := svc.UpdateMeasurement(ctx, owner, m.ID, UpdateMeasurementInput{WeightKg: fp(20)})
	if err != nil {
		t.Fatalf("UpdateMeasurement() error = %v", err)
	}
	if updated.HeightCm == nil || *updated.HeightCm != 110 {
		t.Error("height changed by weight-only patch")
	}
	if updated.BMI == nil || *updated.BMI != 16.5 {
		t.Errorf("BMI = %v, want 16.5", updated.BMI)
	}
}

func TestCreateMeasurementForUnknownChild(t *testing.T) {
	ctx := context.Background()
	guard, svc, _ := newTestServices(t)
	owner := provisionGuardian(t, guard)

	if _, err := svc.CreateMeasurement(ctx, owner, "missing", CreateMeasurementInput{Date: strp("2024-06-01")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("CreateMeasurement() error = %v, want ErrNotFound", err)
	}
}
