package utils

import (
	"testing"
	"time"
)

func TestNow(t *testing.T) {
	now := Now()
	if now.Location() != time.UTC {
		t.Errorf("Now() should be in UTC, but got %s", now.Location())
	}
	if time.Since(now) > time.Second {
		t.Errorf("Now() is not returning the current time")
	}
}

func TestNowPtr(t *testing.T) {
	nowPtr := NowPtr()
	if nowPtr == nil {
		t.Fatal("NowPtr() returned nil")
	}
	if nowPtr.Location() != time.UTC {
		t.Errorf("NowPtr() should be in UTC, but got %s", nowPtr.Location())
	}
}

func TestToDate(t *testing.T) {
	in := time.Date(2026, time.March, 5, 14, 32, 7, 0, time.UTC)
	got := ToDate(in)
	want := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ToDate() = %v, want %v", got, want)
	}
}

func TestStartAndEndOfDayInUTC(t *testing.T) {
	in := time.Date(2026, time.March, 5, 14, 32, 7, 0, time.FixedZone("PST", -8*3600))

	start := StartOfDayInUTC(in)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Errorf("StartOfDayInUTC() = %v, want midnight", start)
	}

	end := EndOfDayInUTC(in)
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("EndOfDayInUTC() = %v, want 23:59:59", end)
	}
}

func TestIsEqualTimePtr(t *testing.T) {
	now := time.Now()
	timeCopy := now
	differentTime := now.Add(time.Hour)

	cases := []struct {
		name string
		a, b *time.Time
		want bool
	}{
		{"both nil", nil, nil, true},
		{"a nil", nil, &now, false},
		{"b nil", &now, nil, false},
		{"equal", &now, &timeCopy, true},
		{"different", &now, &differentTime, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEqualTimePtr(tc.a, tc.b); got != tc.want {
				t.Errorf("IsEqualTimePtr() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsAfter(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Hour)

	if !IsAfter(nil, &now) {
		t.Error("IsAfter(nil, t) should treat nil as far future")
	}
	if IsAfter(&now, nil) {
		t.Error("IsAfter(t, nil) should be false")
	}
	if !IsAfter(&later, &now) {
		t.Error("IsAfter(later, now) should be true")
	}
	if IsAfter(&now, &later) {
		t.Error("IsAfter(now, later) should be false")
	}
}

func TestConvertToUTC(t *testing.T) {
	got, err := ConvertToUTC("Mon, 2 Jan 2006 15:04:05 -0700")
	if err != nil {
		t.Fatalf("ConvertToUTC returned error: %v", err)
	}
	if got.Location() != time.UTC {
		t.Errorf("ConvertToUTC() should return UTC time, got location %v", got.Location())
	}

	if _, err := ConvertToUTC("not a date"); err == nil {
		t.Error("ConvertToUTC() should error on unparsable input")
	}
}

func TestCloseToNow(t *testing.T) {
	if !CloseToNow(time.Now()) {
		t.Error("CloseToNow(now) should be true")
	}
	if CloseToNow(time.Now().Add(-2 * time.Hour)) {
		t.Error("CloseToNow(2h ago) should be false")
	}
}
