package validator

import (
	"context"
	"strings"
	"testing"
	"time"
)

type eventForm struct {
	Title    string `validate:"required,min=2"`
	Category string `validate:"required,category"`
	Date     string `validate:"required,eventdate"`
	Time     string `validate:"required,eventtime"`
	Capacity int    `validate:"gte=1"`
}

func validForm() eventForm {
	return eventForm{
		Title:    "Jazz Night",
		Category: "Concerts",
		Date:     time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
		Time:     "19:30",
		Capacity: 100,
	}
}

func TestValidateAcceptsWellFormedEvent(t *testing.T) {
	if err := Validate(context.Background(), validForm()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownCategory(t *testing.T) {
	f := validForm()
	f.Category = "Karaoke"
	err := Validate(context.Background(), f)
	if err == nil || !strings.Contains(err.Error(), "category") {
		t.Fatalf("err = %v, want category error", err)
	}
}

func TestValidateRejectsPastDate(t *testing.T) {
	f := validForm()
	f.Date = "2020-01-01"
	if err := Validate(context.Background(), f); err == nil {
		t.Fatal("past date accepted")
	}
}

func TestValidateAcceptsToday(t *testing.T) {
	f := validForm()
	f.Date = time.Now().UTC().Format("2006-01-02")
	if err := Validate(context.Background(), f); err != nil {
		t.Fatalf("today rejected: %v", err)
	}
}

func TestValidateRejectsMalformedTime(t *testing.T) {
	for _, bad := range []string{"7pm", "25:00", "19:60", "1930"} {
		f := validForm()
		f.Time = bad
		if err := Validate(context.Background(), f); err == nil {
			t.Fatalf("time %q accepted", bad)
		}
	}
}

func TestValidateRejectsMissingTitle(t *testing.T) {
	f := validForm()
	f.Title = ""
	if err := Validate(context.Background(), f); err == nil {
		t.Fatal("empty title accepted")
	}
}

func TestValidateRejectsNonStruct(t *testing.T) {
	if err := Validate(context.Background(), 42); err == nil {
		t.Fatal("non-struct input accepted")
	}
}
