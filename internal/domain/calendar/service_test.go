package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"cat-care/internal/domain/activities"
	"cat-care/internal/ports/auth"
)

type testLister struct {
	items []activities.Activity
	calls int
}

func (l *testLister) List(_ context.Context, f activities.Filter) ([]activities.Activity, error) {
	l.calls++
	cats := map[string]bool{}
	for _, id := range f.CatIDs {
		cats[id] = true
	}
	statuses := map[activities.Status]bool{}
	for _, s := range f.Statuses {
		statuses[s] = true
	}

	var out []activities.Activity
	for _, a := range l.items {
		if !f.AllCats && !cats[a.CatID] {
			continue
		}
		if len(statuses) > 0 && !statuses[a.Status] {
			continue
		}
		if f.From != nil && a.StartsAt.Before(*f.From) {
			continue
		}
		if f.Before != nil && !a.StartsAt.Before(*f.Before) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

type testGate map[string][]string

func (g testGate) VisibleCatIDs(_ context.Context, id auth.Identity) ([]string, bool, error) {
	if id.IsAdmin() {
		return nil, true, nil
	}
	return g[id.UserID], false, nil
}

func as(id string, role auth.Role) auth.Identity {
	return auth.Identity{UserID: id, Role: role, Authenticated: true}
}

func at(day, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func fixture() (*Service, *testLister) {
	now := at("2024-03-05", "12:00")
	done := now.Add(-time.Hour)
	l := &testLister{items: []activities.Activity{
		{ID: "a1", CatID: "cat-1", StartsAt: at("2024-03-05", "08:00"), Status: activities.StatusDone, DoneAt: &done, DoneBy: "u"},
		{ID: "a2", CatID: "cat-1", StartsAt: at("2024-03-05", "09:00"), Status: activities.StatusPlanned}, // pasada
		{ID: "a3", CatID: "cat-1", StartsAt: at("2024-03-05", "12:00"), Status: activities.StatusPlanned}, // == now cuenta
		{ID: "a4", CatID: "cat-1", StartsAt: at("2024-03-05", "18:00"), Status: activities.StatusCancelled},
		{ID: "a5", CatID: "cat-2", StartsAt: at("2024-03-05", "19:00"), Status: activities.StatusPlanned},
		{ID: "a6", CatID: "cat-1", StartsAt: at("2024-03-07", "23:59"), Status: activities.StatusPlanned},
		{ID: "a7", CatID: "cat-1", StartsAt: at("2024-03-08", "00:00"), Status: activities.StatusPlanned}, // fuera de [from,to)
		{ID: "a8", CatID: "cat-1", StartsAt: at("2024-03-06", "10:00"), Status: activities.StatusCancelled},
	}}
	svc := NewService(l, testGate{"u": {"cat-1"}}, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, l
}

func TestRangeCounts_Buckets(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	got, err := svc.RangeCounts(ctx, as("u", auth.RoleUser), "2024-03-05", "2024-03-08")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	want := []DayCount{
		{Day: "2024-03-05", PlannedFutureCount: 1, DoneLikeCount: 1},
		{Day: "2024-03-07", PlannedFutureCount: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d days, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("day %d: got %+v want %+v", i, got[i], want[i])
		}
	}

	admin, _ := svc.RangeCounts(ctx, as("root", auth.RoleAdmin), "2024-03-05", "2024-03-06")
	if len(admin) != 1 || admin[0].PlannedFutureCount != 2 {
		t.Fatalf("admin sees every cat: %+v", admin)
	}
}

// Para cada día del rango, los conteos coinciden con el detalle.
func TestRangeCounts_ConsistentWithDayDetail(t *testing.T) {
	svc, _ := fixture()
	ctx := context.Background()

	for _, id := range []auth.Identity{as("u", auth.RoleUser), as("root", auth.RoleAdmin), as("x", auth.RoleUser)} {
		counts, err := svc.RangeCounts(ctx, id, "2024-03-04", "2024-03-09")
		if err != nil {
			t.Fatalf("range: %v", err)
		}
		byDay := map[string]DayCount{}
		for _, c := range counts {
			byDay[c.Day] = c
		}

		for d := at("2024-03-04", "00:00"); d.Before(at("2024-03-09", "00:00")); d = d.AddDate(0, 0, 1) {
			day := d.Format(activities.DateLayout)
			detail, err := svc.DayDetail(ctx, id, day)
			if err != nil {
				t.Fatalf("day %s: %v", day, err)
			}
			var planned, done int
			for i, a := range detail {
				if a.Status == activities.StatusCancelled {
					t.Fatalf("day detail must skip cancelled")
				}
				if i > 0 && a.StartsAt.Before(detail[i-1].StartsAt) {
					t.Fatalf("day detail must be ascending")
				}
				if a.Status == activities.StatusDone {
					done++
				}
				if a.Status == activities.StatusPlanned && !a.StartsAt.Before(svc.now()) {
					planned++
				}
			}
			c := byDay[day]
			if c.DoneLikeCount != done || c.PlannedFutureCount != planned {
				t.Fatalf("%s user=%s: counts %+v vs detail planned=%d done=%d", day, id.UserID, c, planned, done)
			}
		}
	}
}

// Un día cargado no se corta: el detalle y el conteo siguen coincidiendo.
func TestDayDetail_BusyDayIsNotTruncated(t *testing.T) {
	now := at("2024-03-05", "00:00")
	l := &testLister{}
	for i := 0; i < 720; i++ {
		l.items = append(l.items, activities.Activity{
			ID:       fmt.Sprintf("a%d", i),
			CatID:    "cat-1",
			StartsAt: at("2024-03-05", "08:00").Add(time.Duration(i) * time.Minute),
			Status:   activities.StatusPlanned,
		})
	}
	svc := NewService(l, testGate{"u": {"cat-1"}}, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	detail, err := svc.DayDetail(ctx, as("u", auth.RoleUser), "2024-03-05")
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	counts, err := svc.RangeCounts(ctx, as("u", auth.RoleUser), "2024-03-05", "2024-03-06")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(counts) != 1 || counts[0].PlannedFutureCount != 720 || len(detail) != 720 {
		t.Fatalf("expected 720 in both views, got counts=%+v detail=%d", counts, len(detail))
	}
}

func TestValidation(t *testing.T) {
	svc, l := fixture()
	ctx := context.Background()
	u := as("u", auth.RoleUser)

	cases := []struct {
		from, to string
		want     error
	}{
		{"", "2024-03-08", ErrMissingRange},
		{"2024-03-05", " ", ErrMissingRange},
		{"05.03.2024", "2024-03-08", ErrInvalidRange},
		{"2024-03-08", "2024-03-05", ErrInvalidRange},
	}
	for _, tc := range cases {
		if _, err := svc.RangeCounts(ctx, u, tc.from, tc.to); !errors.Is(err, tc.want) {
			t.Fatalf("range(%q,%q): expected %v, got %v", tc.from, tc.to, tc.want, err)
		}
	}
	if _, err := svc.DayDetail(ctx, u, ""); !errors.Is(err, ErrMissingDate) {
		t.Fatalf("expected missing_date, got %v", err)
	}
	if _, err := svc.DayDetail(ctx, u, "2024-13-01"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected invalid_date, got %v", err)
	}
	if l.calls != 0 {
		t.Fatalf("validation errors must not reach the store")
	}

	empty, err := svc.RangeCounts(ctx, u, "2024-03-05", "2024-03-05")
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty range: %+v %v", empty, err)
	}
}
